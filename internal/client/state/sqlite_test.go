package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := OpenDatabase(context.Background(), "file:statetest?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db)
}

func TestSQLiteRepository_GetMissingKey(t *testing.T) {
	r := setupRepo(t)

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestSQLiteRepository_SetOverwrites(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", "v1"))
	require.NoError(t, r.Set(ctx, "k", "v2"))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)
}

func TestSQLiteRepository_DeleteAndClear(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", "1"))
	require.NoError(t, r.Set(ctx, "b", "2"))

	require.NoError(t, r.Delete(ctx, "a"))
	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, r.Clear(ctx))
	v, err = r.Get(ctx, "b")
	require.NoError(t, err)
	require.Empty(t, v)
}
