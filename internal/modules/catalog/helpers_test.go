package catalog

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/printa-catalog/internal/database"
	"github.com/georgemunganga/printa-catalog/internal/events"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := database.Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, dialect))
	return db
}

func setupTestRepo(t *testing.T) (Repository, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewSQLRepository(db, database.SQLite), db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, key string, ev events.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType)
	}
	return out
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func newProductRequest(name string, price float64, inventory int, category string) CreateProductRequest {
	req := CreateProductRequest{
		Name:           strPtr(name),
		Description:    strPtr(name + " description"),
		Price:          floatPtr(price),
		InventoryCount: intPtr(inventory),
	}
	if category != "" {
		req.Category = strPtr(category)
	}
	return req
}
