// Package session persists the candidate selected on the recommendation step
// so the checkout step can pick it up. This is the only client-local
// persistence in the system: one JSON-serialized candidate, cleared on a
// successful order or an explicit restart.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"bundle-wizard/pkg/api"
)

// Store is the hand-off storage between wizard steps.
type Store interface {
	// SaveSelection serializes the chosen candidate.
	SaveSelection(ctx context.Context, c *api.RecommendationCandidate) error
	// LoadSelection returns the saved candidate, or ok=false when none is set.
	LoadSelection(ctx context.Context) (*api.RecommendationCandidate, bool, error)
	// ClearSelection drops the saved candidate.
	ClearSelection(ctx context.Context) error
}

// MemoryStore keeps the selection in process memory. The default backend:
// matches the session-scoped, lost-on-exit semantics of the wizard.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveSelection(_ context.Context, c *api.RecommendationCandidate) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadSelection(_ context.Context) (*api.RecommendationCandidate, bool, error) {
	m.mu.Lock()
	raw := m.data
	m.mu.Unlock()
	if raw == nil {
		return nil, false, nil
	}
	var c api.RecommendationCandidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

func (m *MemoryStore) ClearSelection(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}
