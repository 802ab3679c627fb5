// Package dbtest opens migrated in-memory databases for repository tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/hairtrack/hairtrack-api/internal/pkg/database"
)

// Open returns a migrated in-memory SQLite database closed at test cleanup.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
