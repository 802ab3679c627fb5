package database

import (
	"context"
	"testing"
)

func TestMigrationsAreOrderedPerDriver(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverSQLite} {
		migrations, err := Migrations(driver)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if len(migrations) < 2 || migrations[0].Version != "001_init" {
			t.Fatalf("%s: unexpected migrations %#v", driver, migrations)
		}
	}
	if _, err := Migrations("oracle"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	db, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	ran, err := Migrate(ctx, db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(ran) != 2 {
		t.Fatalf("expected 2 migrations applied, got %v", ran)
	}

	again, err := Migrate(ctx, db)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no migrations on second run, got %v", again)
	}

	var treatments int
	if err := db.GetContext(ctx, &treatments, `SELECT COUNT(*) FROM treatments`); err != nil {
		t.Fatalf("count treatments: %v", err)
	}
	if treatments != 9 {
		t.Fatalf("expected 9 seeded treatments, got %d", treatments)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
