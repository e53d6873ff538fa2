package favorites

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories lets every test run against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "favorites.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStoreAddAndList(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.Add(ctx, "light.living_room", "main lamp"))
			require.NoError(t, s.Add(ctx, "climate.hall", ""))

			got, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)

			// Ordered by entity ID.
			assert.Equal(t, "climate.hall", got[0].EntityID)
			assert.Equal(t, "light.living_room", got[1].EntityID)
			assert.Equal(t, "main lamp", got[1].Note)
			assert.False(t, got[0].AddedAt.IsZero())
		})
	}
}

func TestStoreAddUpdatesNote(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.Add(ctx, "light.a", "old note"))

			first, err := s.List(ctx)
			require.NoError(t, err)

			require.NoError(t, s.Add(ctx, "light.a", "new note"))

			got, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "new note", got[0].Note)
			assert.Equal(t, first[0].AddedAt, got[0].AddedAt)
		})
	}
}

func TestStoreRemove(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.Add(ctx, "light.a", ""))
			require.NoError(t, s.Remove(ctx, "light.a"))

			got, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			// Removing an unknown entity is fine.
			assert.NoError(t, s.Remove(ctx, "light.unknown"))
		})
	}
}

func TestStoreAddRequiresEntityID(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			assert.Error(t, s.Add(context.Background(), "", "note"))
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "favorites.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "light.a", "keep me"))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep me", got[0].Note)
}
