// Package database opens the relational store backing the catalog and prepares its schema.
package database

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// sqliteDriver is go-sqlite3 with LOWER replaced by a Unicode-aware version,
// so case-insensitive matching is not limited to ASCII.
const sqliteDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", unicodeLower, true)
		},
	})
}

func unicodeLower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return bytes.ToLower(s)
	}
	return v
}

// Dialect identifies the SQL flavour of an open store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// ParseDialect maps a driver name to a supported dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) driverName() string {
	if d == SQLite {
		return sqliteDriver
	}
	return string(d)
}

// Builder returns a squirrel statement builder using the dialect's placeholders.
func (d Dialect) Builder() sq.StatementBuilderType {
	if d == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Open connects to the store and verifies it is reachable.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// SQLite allows a single writer, and an in-memory database only
		// exists inside the connection that created it
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

var schema = map[Dialect][]string{
	Postgres: {
		`CREATE TABLE IF NOT EXISTS category (
			id   SERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS product (
			id              SERIAL PRIMARY KEY,
			name            VARCHAR(100) NOT NULL,
			description     TEXT,
			price           DOUBLE PRECISION NOT NULL,
			inventory_count INTEGER DEFAULT 0,
			category        VARCHAR(50) REFERENCES category(name),
			product_sales   INTEGER DEFAULT 0
		)`,
	},
	SQLite: {
		`CREATE TABLE IF NOT EXISTS category (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name VARCHAR(50) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS product (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			name            VARCHAR(100) NOT NULL,
			description     TEXT,
			price           REAL NOT NULL,
			inventory_count INTEGER DEFAULT 0,
			category        VARCHAR(50) REFERENCES category(name),
			product_sales   INTEGER DEFAULT 0
		)`,
	},
}

// Migrate creates the category and product tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts, ok := schema[dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", dialect)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
