package synth

import (
	"context"
	"time"

	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/pool"
)

const cancelCheckInterval = 1024

// ChunkSeed derives the seed for one chunk. A zero base seeds from the clock.
func ChunkSeed(base int64, chunk int) int64 {
	if base == 0 {
		return time.Now().UnixNano() + int64(chunk)*7919
	}
	return base + int64(chunk)
}

// GenerateChunk produces exactly size independent records using a private
// random source seeded with seed.
func GenerateChunk(ctx context.Context, pools *pool.Set, size int, seed int64, opts Options) ([]model.Record, error) {
	s, err := New(pools, seed, opts)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, size)
	for i := 0; i < size; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		records = append(records, s.Record())
	}
	return records, nil
}

// Generator binds pools, a base seed, and options into a function that
// generates chunk number chunk with size records.
func Generator(pools *pool.Set, baseSeed int64, opts Options) func(ctx context.Context, chunk, size int) ([]model.Record, error) {
	return func(ctx context.Context, chunk, size int) ([]model.Record, error) {
		return GenerateChunk(ctx, pools, size, ChunkSeed(baseSeed, chunk), opts)
	}
}
