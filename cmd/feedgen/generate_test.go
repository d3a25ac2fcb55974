package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/config"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/pool"
	"github.com/Veraticus/feedgen/internal/sink"
	"github.com/Veraticus/feedgen/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdataDir = "../../internal/pool/testdata"

func testInputs() config.InputPaths {
	return config.InputPaths{
		Positive: filepath.Join(testdataDir, "positive.csv"),
		Neutral:  filepath.Join(testdataDir, "neutral.csv"),
		Negative: filepath.Join(testdataDir, "negative.csv"),
		Products: filepath.Join(testdataDir, "products.csv"),
	}
}

func testConfig(t *testing.T, rows, chunks int) *config.GenerateConfig {
	t.Helper()
	cfg := &config.GenerateConfig{
		Inputs:     testInputs(),
		OutputPath: filepath.Join(t.TempDir(), "feedback.csv"),
		Remainder:  config.RemainderDrop,
		Compress:   config.CompressNone,
		Seed:       42,
		Rows:       rows,
		Chunks:     chunks,
		Workers:    4,
		StartYear:  2015,
		EndYear:    2023,
		Quiet:      true,
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func testDeps() generateDeps {
	return generateDeps{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: io.Discard,
	}
}

type recordingSink struct {
	err     error
	records []model.Record
}

func (r *recordingSink) Write(_ context.Context, records []model.Record) error {
	r.records = append(r.records, records...)
	return r.err
}

func TestGenerate_EndToEnd(t *testing.T) {
	cfg := testConfig(t, 1000, 10)

	run, err := generate(context.Background(), cfg, testDeps())
	require.NoError(t, err)
	assert.Equal(t, 1000, run.Generated)
	assert.Equal(t, cfg.OutputPath, run.OutputPath)
	assert.NotEmpty(t, run.ID)

	records, err := sink.ReadRecords(cfg.OutputPath)
	require.NoError(t, err)
	require.Len(t, records, 1000)

	pools, err := pool.LoadSet(testInputs())
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, r.Validate())
		assert.True(t, pools.Owns(r), "record %d uses text outside its sentiment pool", r.FeedbackID)
		assert.GreaterOrEqual(t, r.PurchaseDate.Year(), 2015)
		assert.LessOrEqual(t, r.PurchaseDate.Year(), 2023)
	}
}

func TestGenerate_Remainder(t *testing.T) {
	tests := []struct {
		name      string
		remainder string
		want      int
	}{
		{"drop", config.RemainderDrop, 100},
		{"trailing", config.RemainderTrailing, 105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, 105, 10)
			cfg.Remainder = tt.remainder

			run, err := generate(context.Background(), cfg, testDeps())
			require.NoError(t, err)
			assert.Equal(t, 105, run.Requested)
			assert.Equal(t, tt.want, run.Generated)

			records, err := sink.ReadRecords(cfg.OutputPath)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestGenerate_LZ4AndSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, 200, 4)
	cfg.Compress = config.CompressLZ4
	cfg.OutputPath += ".lz4"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "db", "feedgen.db")

	run, err := generate(ctx, cfg, testDeps())
	require.NoError(t, err)

	records, err := sink.ReadRecords(cfg.OutputPath)
	require.NoError(t, err)
	assert.Len(t, records, 200)

	store, err := storage.NewSQLiteStorage(cfg.SQLitePath)
	require.NoError(t, err)
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Logf("Failed to close store: %v", closeErr)
		}
	}()

	saved, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, saved.Generated)
	assert.Equal(t, int64(42), saved.Seed)
	assert.Equal(t, cfg.OutputPath, saved.OutputPath)

	stored, err := store.GetRecords(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 200)
}

func TestGenerate_SheetsSink(t *testing.T) {
	cfg := testConfig(t, 50, 5)
	cfg.Sheets = true

	rec := &recordingSink{}
	deps := testDeps()
	deps.sheets = func(context.Context, *slog.Logger) (sink.Sink, error) { return rec, nil }

	_, err := generate(context.Background(), cfg, deps)
	require.NoError(t, err)
	assert.Len(t, rec.records, 50)
}

func TestGenerate_StageErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		cfg := testConfig(t, 10, 1)
		cfg.Inputs.Neutral = filepath.Join(t.TempDir(), "nope.csv")

		_, err := generate(context.Background(), cfg, testDeps())
		require.Error(t, err)
		assertStage(t, err, common.StageLoad)
		assert.ErrorIs(t, err, common.ErrMissingFile)
	})

	t.Run("empty pool", func(t *testing.T) {
		cfg := testConfig(t, 10, 1)
		cfg.Inputs.Positive = filepath.Join(testdataDir, "header_only.csv")

		_, err := generate(context.Background(), cfg, testDeps())
		require.Error(t, err)
		assertStage(t, err, common.StageLoad)
		assert.ErrorIs(t, err, common.ErrEmptyPool)
	})

	t.Run("bad year range", func(t *testing.T) {
		cfg := testConfig(t, 10, 1)
		cfg.StartYear, cfg.EndYear = 2024, 2020

		_, err := generate(context.Background(), cfg, testDeps())
		require.Error(t, err)
		assertStage(t, err, common.StageGenerate)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := generate(ctx, testConfig(t, 100, 10), testDeps())
		require.Error(t, err)
		assertStage(t, err, common.StageGenerate)
	})

	t.Run("missing output directory", func(t *testing.T) {
		cfg := testConfig(t, 10, 1)
		cfg.OutputPath = filepath.Join(t.TempDir(), "missing", "out.csv")

		_, err := generate(context.Background(), cfg, testDeps())
		require.Error(t, err)
		assertStage(t, err, common.StageWrite)
		assert.ErrorIs(t, err, common.ErrIO)
	})

	t.Run("sheets without factory", func(t *testing.T) {
		cfg := testConfig(t, 10, 1)
		cfg.Sheets = true

		_, err := generate(context.Background(), cfg, testDeps())
		require.Error(t, err)
		assertStage(t, err, common.StageWrite)
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("sheets write failure", func(t *testing.T) {
		cfg := testConfig(t, 10, 1)
		cfg.Sheets = true
		deps := testDeps()
		deps.sheets = func(context.Context, *slog.Logger) (sink.Sink, error) {
			return &recordingSink{err: common.ErrRateLimit}, nil
		}

		_, err := generate(context.Background(), cfg, deps)
		require.Error(t, err)
		assertStage(t, err, common.StageWrite)
		assert.ErrorIs(t, err, common.ErrRateLimit)
	})
}

func assertStage(t *testing.T, err error, stage string) {
	t.Helper()
	var userErr *common.UserError
	require.True(t, errors.As(err, &userErr), "expected a UserError, got %T", err)
	assert.Equal(t, stage, userErr.UserMessage)
}
