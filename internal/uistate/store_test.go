package uistate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/asset-desk/internal/infrastructure/database"
)

func newTestStore(t *testing.T) (*SQLiteStore, *database.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath, BusyTimeout: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	require.NoError(t, db.MigrateSource(ctx, Migrations()))
	return NewSQLiteStore(db.DB), db
}

func TestSavePositionKeepsHidden(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetHidden(ctx, 3, true))
	require.NoError(t, store.SavePosition(ctx, 3, 120.5, -40))

	positions, err := store.LoadPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, Position{ConfigID: 3, X: 120.5, Y: -40, Hidden: true}, positions[3])
}

func TestSetHiddenKeepsPosition(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePosition(ctx, 1, 10, 20))
	require.NoError(t, store.SetHidden(ctx, 1, true))
	require.NoError(t, store.SetHidden(ctx, 1, false))
	require.NoError(t, store.SetHidden(ctx, 2, true))

	positions, err := store.LoadPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, Position{ConfigID: 1, X: 10, Y: 20}, positions[1])
	assert.Equal(t, Position{ConfigID: 2, Hidden: true}, positions[2], "new entry starts at the origin")
}

func TestForget(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePosition(ctx, 1, 10, 20))
	require.NoError(t, store.Forget(ctx, 1))
	require.NoError(t, store.Forget(ctx, 99))

	positions, err := store.LoadPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestCanvasState(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	st, ok, err := store.LoadCanvasState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, DefaultCanvasState, st)

	require.NoError(t, store.SaveCanvasState(ctx, CanvasState{Scale: 1.5, CenterX: 100, CenterY: 50}))
	require.NoError(t, store.SaveCanvasState(ctx, CanvasState{Scale: 0.75, CenterX: -5, CenterY: 8}))

	st, ok, err = store.LoadCanvasState(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, CanvasState{Scale: 0.75, CenterX: -5, CenterY: 8}, st)

	assert.Error(t, store.SaveCanvasState(ctx, CanvasState{Scale: 0}))
}

func TestMigrationsAreSeparateFromDomainSchema(t *testing.T) {
	_, db := newTestStore(t)
	ctx := context.Background()

	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('devices', 'configurations')`).Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, db.MigrateSource(ctx, Migrations()), "idempotent")
}
