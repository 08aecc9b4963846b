package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/userstore/internal/users"
)

func TestNew_CreatesDirectoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db", "development.sqlite")

	db, err := New(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNew_PathWithURIDelimiters(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for _, name := range []string{"weird?name.sqlite", "hash#name.sqlite", "with space%20.sqlite"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			db, err := New(ctx, path)
			require.NoError(t, err)
			defer db.Close()

			require.NoError(t, db.CreateTable(ctx))
			_, err = db.Insert(ctx, users.NewUser("Alan Kay", 65))
			require.NoError(t, err)

			_, err = os.Stat(path)
			assert.NoError(t, err, "database should be created at the exact path")
		})
	}

	_, err := os.Stat(filepath.Join(dir, "weird"))
	assert.True(t, os.IsNotExist(err), "path must not be cut at '?'")
	_, err = os.Stat(filepath.Join(dir, "hash"))
	assert.True(t, os.IsNotExist(err), "path must not be cut at '#'")
}

func TestDSNForPath(t *testing.T) {
	assert.Equal(t,
		"file:/data/weird%3Fname.sqlite?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		dsnForPath("/data/weird?name.sqlite"))
	assert.Equal(t,
		"file:./db/development.sqlite?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		dsnForPath("./db/development.sqlite"))
	assert.Equal(t,
		":memory:?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		dsnForPath(":memory:"))
}

func TestNew_Unavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	_, err := New(context.Background(), filepath.Join(blocker, "development.sqlite"))
	require.Error(t, err)
	assert.True(t, users.IsUnavailable(err))
}

func TestNew_InMemory(t *testing.T) {
	db, err := New(context.Background(), ":memory:", WithQueryTimeout(time.Second))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.CreateTable(ctx))
	u, err := db.Insert(ctx, users.NewUser("Alan Kay", 65))
	require.NoError(t, err)

	found, err := db.Find(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alan Kay", found.Name)
}

func TestClose_NilSafe(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())
}

func TestMaintenance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := db.Insert(ctx, users.NewUser("temp", i))
		require.NoError(t, err)
	}
	_, err := db.exec(ctx, "DELETE FROM users")
	require.NoError(t, err)

	require.NoError(t, db.Optimize(ctx))
	require.NoError(t, db.Vacuum(ctx))

	all, err := db.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMaintenance_NotInitialized(t *testing.T) {
	var db *DB
	assert.Error(t, db.Optimize(context.Background()))
	assert.Error(t, db.Vacuum(context.Background()))
}
