package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUp_ConcurrentDatabases(t *testing.T) {
	ctx := context.Background()
	dbs := make([]*sql.DB, 4)
	for i := range dbs {
		dbs[i] = openSQLite(t)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(dbs))
	for i, db := range dbs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = Up(ctx, db, SQLite)
		}()
	}
	wg.Wait()

	for i, db := range dbs {
		require.NoError(t, errs[i], fmt.Sprintf("db %d", i))
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identification_types`).Scan(&n))
		assert.Equal(t, 5, n)
	}
}

func TestUp_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, Up(ctx, db, SQLite))
	require.NoError(t, Up(ctx, db, SQLite))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identification_types`).Scan(&n))
	assert.Equal(t, 5, n)
}
