package flows

import (
	"sync"

	"github.com/charlesng35/authflow/pkg/metrics"
)

// PendingGuard allows one in-flight submission per client and flow.
type PendingGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewPendingGuard constructs an empty guard.
func NewPendingGuard() *PendingGuard {
	return &PendingGuard{inflight: make(map[string]struct{})}
}

// Acquire marks the (client, flow) pair pending. It returns false when a submission is already running.
// The returned release function must be called once the submission settles.
func (g *PendingGuard) Acquire(clientID string, flow Name) (func(), bool) {
	key := clientID + "|" + string(flow)

	g.mu.Lock()
	if _, busy := g.inflight[key]; busy {
		g.mu.Unlock()
		return func() {}, false
	}
	g.inflight[key] = struct{}{}
	g.mu.Unlock()
	metrics.PendingSubmissions.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
			metrics.PendingSubmissions.Dec()
		})
	}, true
}

// Pending reports whether a submission for the pair is in flight.
func (g *PendingGuard) Pending(clientID string, flow Name) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[clientID+"|"+string(flow)]
	return busy
}
