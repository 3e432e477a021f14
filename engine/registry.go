// ABOUTME: Process-wide session registry keyed by generated session id
// ABOUTME: Each entry locks independently; there is no implicit global session

package engine

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/markalston/placement-planner/models"
)

// Registry holds every live planning session. The registry lock only
// guards the map; each session serializes its own operations, so work in
// one session never blocks another.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	thresholds models.ThresholdTable
}

// NewRegistry creates a registry whose sessions share a threshold table.
func NewRegistry(thresholds models.ThresholdTable) *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		thresholds: thresholds,
	}
}

// Create registers a new empty session and returns it.
func (r *Registry) Create() *Session {
	s := NewSession(uuid.NewString(), r.thresholds)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id is an error so callers
// can distinguish a stale handle from a successful teardown.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns all session ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
