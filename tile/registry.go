package tile

import (
	"maps"
	"sync"
)

// Registry records every tile that has been seen during a session.
//
// The registry only ever grows: a tile that scrolled out of view is still
// reported as visible, which keeps completion statistics stable while the
// viewport moves. Use a new Registry to start over.
type Registry struct {
	mu    sync.RWMutex
	tiles Set
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tiles: make(Set)}
}

// Record marks the tile at (x, y) as seen. Repeated calls have no further effect.
// It reports whether the tile was new.
func (r *Registry) Record(x, y int) bool {
	k := MakeKey(x, y)

	r.mu.RLock()
	_, seen := r.tiles[k]
	r.mu.RUnlock()
	if seen {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tiles == nil {
		r.tiles = make(Set)
	}
	if _, seen = r.tiles[k]; seen {
		return false
	}
	r.tiles[k] = struct{}{}
	return true
}

// Snapshot returns a copy of the seen tiles; changing it does not affect the registry.
func (r *Registry) Snapshot() Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.tiles == nil {
		return make(Set)
	}
	return maps.Clone(r.tiles)
}

// Len returns the number of seen tiles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tiles)
}
