// Package testutil provides shared test helpers: migrated in-memory
// databases and builders for feedback records.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	SkipMigrations bool
}

// SetupTestDB creates a new migrated in-memory test database.
// Cleanup is registered with t.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	run := db.SeedRun(records.NewBuilder().WithCount(10).Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	// Register cleanup
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SeedRun stores records under a fresh run and returns the saved run.
func (db *TestDB) SeedRun(recs []model.Record) *model.Run {
	db.t.Helper()

	run := &model.Run{
		ID:         storage.NewRunID(),
		OutputPath: "seed.csv",
		Remainder:  "drop",
		Requested:  len(recs),
		Chunks:     1,
		StartYear:  2015,
		EndYear:    2023,
	}
	if err := db.Storage.SaveRun(context.Background(), run, recs); err != nil {
		db.t.Fatalf("failed to seed run: %v", err)
	}
	return run
}
