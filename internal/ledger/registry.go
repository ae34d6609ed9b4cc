package ledger

import "sync"

// Registry owns the per-user ledgers for the lifetime of the process.
// Ledgers are created on first use and never removed.
type Registry struct {
	mu      sync.RWMutex
	ledgers map[string]*Ledger
	opts    []Option
}

// NewRegistry returns an empty registry; opts are applied to every ledger it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		ledgers: make(map[string]*Ledger),
		opts:    opts,
	}
}

// Get returns the ledger for userID, creating it if needed.
// Concurrent first calls for the same user observe the same ledger.
func (r *Registry) Get(userID string) *Ledger {
	r.mu.RLock()
	l, ok := r.ledgers[userID]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.ledgers[userID]; ok {
		return l
	}
	l = New(r.opts...)
	r.ledgers[userID] = l
	return l
}

// Len returns the number of known users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ledgers)
}
