package synth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/config"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPools(t *testing.T) *pool.Set {
	t.Helper()
	dir := filepath.Join("..", "pool", "testdata")
	set, err := pool.LoadSet(config.InputPaths{
		Positive: filepath.Join(dir, "positive.csv"),
		Neutral:  filepath.Join(dir, "neutral.csv"),
		Negative: filepath.Join(dir, "negative.csv"),
		Products: filepath.Join(dir, "products.csv"),
	})
	require.NoError(t, err)
	return set
}

func TestSynthesizer_RecordInvariants(t *testing.T) {
	pools := loadPools(t)
	opts := DefaultOptions()
	s, err := New(pools, 1, opts)
	require.NoError(t, err)

	start, end := opts.DateRange()
	sentiments := map[model.Sentiment]int{}

	for i := 0; i < 5000; i++ {
		r := s.Record()

		require.NoError(t, r.Validate())
		require.True(t, pools.Owns(r), "record %d mixes pools: %+v", i, r)
		require.False(t, r.PurchaseDate.Before(start), "date %s before range", r.PurchaseDate)
		require.False(t, r.PurchaseDate.After(end), "date %s after range", r.PurchaseDate)
		require.NotEmpty(t, r.CustomerName)
		require.NotEmpty(t, r.Location)
		require.True(t, strings.Contains(r.CustomerEmail, "@"), "email %q", r.CustomerEmail)

		sentiments[r.Sentiment]++
	}

	assert.Len(t, sentiments, 3)
}

func TestSynthesizer_Deterministic(t *testing.T) {
	pools := loadPools(t)

	a, err := New(pools, 99, DefaultOptions())
	require.NoError(t, err)
	b, err := New(pools, 99, DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Record(), b.Record())
	}
}

func TestSynthesizer_SingleYear(t *testing.T) {
	pools := loadPools(t)
	s, err := New(pools, 3, Options{StartYear: 2020, EndYear: 2020})
	require.NoError(t, err)

	// 2020 is a leap year.
	assert.Equal(t, 365, s.days)

	for i := 0; i < 1000; i++ {
		assert.Equal(t, 2020, s.Record().PurchaseDate.Year())
	}
}

func TestSynthesizer_WideYearRange(t *testing.T) {
	pools := loadPools(t)
	s, err := New(pools, 5, Options{StartYear: 1700, EndYear: 2023})
	require.NoError(t, err)

	// Longer than time.Duration can hold.
	assert.Equal(t, 118337, s.days)
	assert.Equal(t, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), s.start.AddDate(0, 0, s.days))

	_, err = New(pools, 5, Options{StartYear: model.MinYear, EndYear: model.MaxYear})
	require.NoError(t, err)
}

func TestOptions_DateRange(t *testing.T) {
	start, end := DefaultOptions().DateRange()
	assert.Equal(t, time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestNew_Errors(t *testing.T) {
	pools := loadPools(t)

	_, err := New(nil, 1, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrEmptyPool)

	_, err = New(&pool.Set{Positive: pools.Positive}, 1, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrEmptyPool)

	_, err = New(pools, 1, Options{StartYear: 2024, EndYear: 2015})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = New(pools, 1, Options{StartYear: 0, EndYear: 2015})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = New(pools, 1, Options{StartYear: 2015, EndYear: 10000})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestGenerateChunk(t *testing.T) {
	pools := loadPools(t)
	ctx := context.Background()

	records, err := GenerateChunk(ctx, pools, 250, 11, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, records, 250)

	empty, err := GenerateChunk(ctx, pools, 0, 11, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, empty)

	again, err := GenerateChunk(ctx, pools, 250, 11, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestGenerateChunk_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateChunk(ctx, loadPools(t), 10, 1, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunkSeed(t *testing.T) {
	assert.Equal(t, int64(42), ChunkSeed(42, 0))
	assert.Equal(t, int64(45), ChunkSeed(42, 3))
	assert.NotEqual(t, ChunkSeed(0, 1), ChunkSeed(0, 2))
}
