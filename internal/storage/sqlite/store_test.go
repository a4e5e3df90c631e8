package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-list/internal/domain"
	"task-list/internal/errors"
	"task-list/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: "id-1", Status: domain.StatusOpen, Priority: domain.PriorityLow, Name: "Buy milk", CreatedAt: "01.02.2024 08:30"},
		{ID: "id-2", Status: domain.StatusDone, Priority: domain.PriorityHigh, Name: "Pay rent", CreatedAt: "02.02.2024 09:00"},
		{ID: "id-3", Status: domain.StatusOpen, Priority: domain.PriorityMedium, Name: "Call Ännchen", CreatedAt: "03.02.2024 10:15"},
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	store := setupTestStore(t)

	tasks, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStore_KeepsIDs(t *testing.T) {
	var store storage.Store = setupTestStore(t)

	keeper, ok := store.(storage.IDKeeper)
	require.True(t, ok)
	assert.True(t, keeper.KeepsIDs())
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	t.Run("should preserve order and identifiers", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sampleTasks()))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleTasks(), loaded)
	})

	t.Run("should replace the previous collection", func(t *testing.T) {
		replacement := sampleTasks()[1:2]
		require.NoError(t, store.Save(ctx, replacement))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, replacement, loaded)
	})

	t.Run("should allow saving an empty list", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, []domain.Task{}))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestStore_SaveRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.Save(ctx, sampleTasks()))

	duplicate := []domain.Task{
		{ID: "dup", Status: domain.StatusOpen, Priority: domain.PriorityLow, Name: "A", CreatedAt: "01.01.2024 00:00"},
		{ID: "dup", Status: domain.StatusOpen, Priority: domain.PriorityLow, Name: "B", CreatedAt: "01.01.2024 00:00"},
	}
	err := store.Save(ctx, duplicate)
	require.Error(t, err)
	assert.True(t, errors.IsPersistence(err))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), loaded)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	store, err := New(ctx, dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sampleTasks()))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath, nil)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), loaded)
}

func TestStore_ClosedDatabase(t *testing.T) {
	store, err := New(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Load(context.Background())
	assert.True(t, errors.IsPersistence(err))

	err = store.Save(context.Background(), sampleTasks())
	assert.True(t, errors.IsPersistence(err))
}
