package httptransport

import (
	"log/slog"
	"net/http"

	"lichess-bot/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// accessLog writes one JSON line per request to the zerolog sink. Probes use
// a lower level than API calls so they can be filtered out.
func accessLog(level slog.Level) func(http.Handler) http.Handler {
	logger := slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:              level,
		Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogRequestBody:     func(*http.Request) bool { return false },
		LogResponseBody:    func(*http.Request) bool { return false },
		LogRequestHeaders:  []string{},
		LogResponseHeaders: []string{},
		LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
			return []slog.Attr{
				slog.String("request_id", chimw.GetReqID(req.Context())),
				slog.String("route", routePattern(req)),
				slog.String("remote_ip", req.RemoteAddr),
			}
		},
	})
}

func probeLogMiddleware() func(http.Handler) http.Handler {
	return accessLog(slog.LevelDebug)
}

func APILogMiddleware() func(http.Handler) http.Handler {
	return accessLog(slog.LevelInfo)
}

func routePattern(req *http.Request) string {
	if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
		return rc.RoutePattern()
	}
	return req.URL.Path
}
