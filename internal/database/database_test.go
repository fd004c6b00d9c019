package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("postgresql")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = ParseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestBuilderPlaceholders(t *testing.T) {
	query, args, err := Postgres.Builder().Select("id").From("product").Where("name = ?", "Mouse").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM product WHERE name = $1", query)
	assert.Equal(t, []interface{}{"Mouse"}, args)

	query, _, err = SQLite.Builder().Select("id").From("product").Where("name = ?", "Mouse").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM product WHERE name = ?", query)
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, SQLite, dialect)

	require.NoError(t, Migrate(ctx, db, dialect))
	// running twice is a no-op
	require.NoError(t, Migrate(ctx, db, dialect))

	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('product','category')`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, _, err := Open(context.Background(), "oracle", "whatever")
	assert.Error(t, err)
}

func TestSQLiteLowerFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	db, _, err := Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	var folded string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT LOWER('ÉPICERIE Crème')`).Scan(&folded))
	assert.Equal(t, "épicerie crème", folded)

	var matched bool
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT LOWER('Épicerie fine') LIKE LOWER(?)`, "%ÉPI%").Scan(&matched))
	assert.True(t, matched)

	var null sql.NullString
	require.NoError(t, db.QueryRowContext(ctx, `SELECT LOWER(NULL)`).Scan(&null))
	assert.False(t, null.Valid)
}

func TestOpenSQLiteFilePinsOneConnection(t *testing.T) {
	ctx := context.Background()
	db, _, err := Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
