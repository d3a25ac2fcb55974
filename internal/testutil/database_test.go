package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/feedgen/internal/storage"
	"github.com/Veraticus/feedgen/internal/testutil/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_SeedRun(t *testing.T) {
	db := SetupTestDB(t)
	run := db.SeedRun(records.NewBuilder().WithCount(7).Build())

	got, err := db.Storage.GetRecords(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Len(t, got, 7)
	assert.Equal(t, 7, run.Generated)
}

func TestSetupTestDBWithOptions_SkipMigrations(t *testing.T) {
	db := SetupTestDBWithOptions(t, TestDBOptions{SkipMigrations: true})

	version, err := db.Storage.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestSetupTestDBWithOptions_CustomSetup(t *testing.T) {
	called := false
	db := SetupTestDBWithOptions(t, TestDBOptions{
		CustomSetup: func(ctx context.Context, s *storage.SQLiteStorage) error {
			called = true
			version, err := s.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			if version != storage.ExpectedSchemaVersion {
				return errors.New("setup ran before migrations")
			}
			return nil
		},
	})

	assert.True(t, called)
	assert.NotNil(t, db.Storage)
}
