// Package favorites persists user-pinned entities so frequently used
// devices can be recalled without searching.
package favorites

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Favorite is one pinned entity with an optional note.
type Favorite struct {
	EntityID string    `json:"entity_id"`
	Note     string    `json:"note,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// Store persists favorites. Add on an existing entity updates the note
// and keeps the original timestamp.
type Store interface {
	Add(ctx context.Context, entityID, note string) error
	Remove(ctx context.Context, entityID string) error
	List(ctx context.Context) ([]Favorite, error)
	Close() error
}

// MemoryStore keeps favorites in memory, for tests and token-only
// setups without a data directory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Favorite
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Favorite),
		now:   time.Now,
	}
}

// Add pins an entity. Re-adding updates the note only.
func (s *MemoryStore) Add(ctx context.Context, entityID, note string) error {
	if entityID == "" {
		return fmt.Errorf("entity_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[entityID]; ok {
		existing.Note = note
		s.items[entityID] = existing
		return nil
	}
	s.items[entityID] = Favorite{
		EntityID: entityID,
		Note:     note,
		AddedAt:  s.now().UTC(),
	}
	return nil
}

// Remove unpins an entity. Removing an unknown entity is not an error.
func (s *MemoryStore) Remove(ctx context.Context, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, entityID)
	return nil
}

// List returns all favorites ordered by entity ID.
func (s *MemoryStore) List(ctx context.Context) ([]Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Favorite, 0, len(s.items))
	for _, f := range s.items {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
