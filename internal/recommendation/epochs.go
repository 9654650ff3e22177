package recommendation

import "sync"

// Epochs counts cache invalidations per client. A generation records the epoch before it
// reads any state and only caches its result if no invalidation happened in between.
type Epochs struct {
	mu     sync.Mutex
	counts map[string]uint64
}

// NewEpochs creates an empty tracker
func NewEpochs() *Epochs {
	return &Epochs{counts: make(map[string]uint64)}
}

// Current returns the client's epoch
func (e *Epochs) Current(clientID string) uint64 {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[clientID]
}

// Bump advances the client's epoch; call it before invalidating the cache entry
func (e *Epochs) Bump(clientID string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.counts[clientID]++
	e.mu.Unlock()
}
