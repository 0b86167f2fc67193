package store

import (
	"context"
	"encoding/json"
	"sync"

	"mise/internal/domain/location"
)

// MemoryStore keeps location state in process memory. Values are copied via
// JSON on both reads and writes so callers can never alias the stored state.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, locationID string) (*location.State, error) {
	s.mu.RLock()
	raw, ok := s.states[locationID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var state location.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *MemoryStore) Set(ctx context.Context, locationID string, state location.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.states[locationID] = raw
	s.mu.Unlock()
	return nil
}
