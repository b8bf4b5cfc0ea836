package platforms

import (
	"errors"
	"net/http"
	"strings"
	"sync"
)

// panelIDs remembers which remote message renders each keyed panel.
type panelIDs struct {
	mu  sync.Mutex
	ids map[string]string
}

func newPanelIDs() *panelIDs {
	return &panelIDs{ids: map[string]string{}}
}

func panelKey(target Target, key string) string {
	return strings.TrimSpace(target.Endpoint) + "|" + strings.TrimSpace(key)
}

func (p *panelIDs) get(target Target, key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ids[panelKey(target, key)]
}

func (p *panelIDs) set(target Target, key, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[panelKey(target, key)] = id
}

func (p *panelIDs) forget(target Target, key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, panelKey(target, key))
}

func isGone(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
