package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

func init() {
	// Repositories write "?" placeholders and Rebind them per driver.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// NewSQLite opens an embedded SQLite database (a file path or ":memory:").
// A single connection keeps in-memory databases and pragmas consistent.
func NewSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite enable foreign keys: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("Opened SQLite database")
	return db, nil
}
