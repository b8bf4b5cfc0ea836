package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"lichess-bot/internal/bot"

	"github.com/go-chi/httplog/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SessionSource interface {
	Active() (bot.ActiveSession, bool)
}

type StatusHandlers struct {
	sessions SessionSource
	db       Pinger
	username string
}

// NewStatusHandlers serves bot health and session state. db may be nil when
// persistence is disabled.
func NewStatusHandlers(sessions SessionSource, db Pinger, username string) *StatusHandlers {
	return &StatusHandlers{sessions: sessions, db: db, username: username}
}

func (h *StatusHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if h.db == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "disabled"})
			return
		}
		if err := h.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *StatusHandlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricStatusRequests.Add(1)
		out := map[string]any{
			"username": h.username,
			"playing":  false,
		}
		if active, ok := h.sessions.Active(); ok {
			out["playing"] = true
			out["session"] = active
			httplog.SetAttrs(r.Context(), slog.String("game_id", active.GameID))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
