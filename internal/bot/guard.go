package bot

import (
	"sync"
	"time"
)

type ActiveSession struct {
	GameID    string    `json:"game_id"`
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// SessionGuard holds at most one active game session. Only the dispatcher
// acquires it; the mutex exists so the status endpoint can read it.
type SessionGuard struct {
	mu     sync.Mutex
	active *ActiveSession
}

func NewSessionGuard() *SessionGuard {
	return &SessionGuard{}
}

func (g *SessionGuard) Idle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active == nil
}

func (g *SessionGuard) Active() (ActiveSession, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return ActiveSession{}, false
	}
	return *g.active, true
}

// Acquire claims the guard for gameID. The returned release func is safe to
// call more than once.
func (g *SessionGuard) Acquire(gameID, sessionID string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active != nil {
		return nil, false
	}
	held := &ActiveSession{GameID: gameID, SessionID: sessionID, StartedAt: time.Now()}
	g.active = held
	metricSessionActive.Set(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.active == held {
				g.active = nil
				metricSessionActive.Set(0)
			}
		})
	}, true
}
