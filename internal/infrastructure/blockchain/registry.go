package blockchain

import (
	"sync"

	"stablepay.backend/internal/domain/entities"
)

// Registry holds one adapter per network.
type Registry struct {
	mu       sync.RWMutex
	adapters map[entities.Network]ChainAdapter
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...ChainAdapter) *Registry {
	r := &Registry{adapters: make(map[entities.Network]ChainAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Network()] = a
	}
	return r
}

// For returns the adapter serving a network.
func (r *Registry) For(network entities.Network) (ChainAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[network]
	return a, ok
}

// Register injects or overrides an adapter. Useful for tests.
func (r *Registry) Register(a ChainAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Network()] = a
}
