package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_CreateListRestore(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	createTestProfile(t, store, "u1")

	sm, err := store.NewSnapshotManager()
	require.NoError(t, err)

	info, err := sm.Create(ctx, "before-rollover", "end of fall term")
	require.NoError(t, err)
	assert.Equal(t, 1, info.RowCounts["profiles"])
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)

	_, err = sm.Create(ctx, "before-rollover", "again")
	assert.ErrorIs(t, err, ErrSnapshotExists)

	createTestProfile(t, store, "u2")

	list, err := sm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "before-rollover", list[0].ID)

	require.NoError(t, sm.Restore(ctx, "before-rollover"))

	reopened, err := NewSQLiteStorage(store.Path())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	_, err = reopened.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	_, err = reopened.GetUserProfile(ctx, "u2")
	assert.Error(t, err)
}

func TestSnapshot_Errors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	sm, err := store.NewSnapshotManager()
	require.NoError(t, err)

	for _, id := range []string{"../escape", "a/b", "it's", " "} {
		_, err := sm.Create(ctx, id, "")
		assert.ErrorIs(t, err, ErrInvalidSnapshotID, id)
	}

	assert.ErrorIs(t, sm.Restore(ctx, "missing"), ErrSnapshotNotFound)
	assert.ErrorIs(t, sm.Delete(ctx, "missing"), ErrSnapshotNotFound)

	_, err = sm.Create(ctx, "keep", "")
	require.NoError(t, err)
	require.NoError(t, sm.Delete(ctx, "keep"))

	list, err := sm.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
