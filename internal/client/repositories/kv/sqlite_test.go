package kv

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/taskdesk/internal/client/migrations"
	"github.com/dmitrijs2005/taskdesk/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	originA = "http://localhost:8000"
	originB = "https://api.example.com"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "kv.db")
	db, err := dbx.OpenSQLite(context.Background(), dsn, migrations.Migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, originA, "jwt_token", "t1"))

	v, ok, err := r.Get(ctx, originA, "jwt_token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t1", v)
}

func TestGet_NotExists(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, ok, err := r.Get(context.Background(), originA, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, originA, "k", "old"))
	require.NoError(t, r.Set(ctx, originA, "k", "new"))

	v, _, err := r.Get(ctx, originA, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestOriginsAreIsolated(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, originA, "k", "a"))

	_, ok, err := r.Get(ctx, originB, "k")
	require.NoError(t, err)
	assert.False(t, ok, "value must not be visible from another origin")

	require.NoError(t, r.Set(ctx, originB, "k", "b"))
	require.NoError(t, r.Delete(ctx, originA, "k"))

	v, ok, err := r.Get(ctx, originB, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestDelete_MissingIsNoError(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	require.NoError(t, r.Delete(context.Background(), originA, "nothing"))
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, _, err := r.Get(ctx, originA, "k")
	require.ErrorContains(t, err, "failed to get kv")
	require.ErrorContains(t, r.Set(ctx, originA, "k", "v"), "failed to set kv")
	require.ErrorContains(t, r.Delete(ctx, originA, "k"), "failed to delete kv")
}
