// Package dispatch fans chunk generation out over a bounded worker pool.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/model"
	"golang.org/x/sync/errgroup"
)

// RemainderPolicy decides what happens to total mod chunks leftover records.
type RemainderPolicy string

// Remainder policies.
const (
	// RemainderDrop generates chunks*(total/chunks) records and discards the rest.
	RemainderDrop RemainderPolicy = "drop"
	// RemainderTrailing adds one final chunk holding the leftover records.
	RemainderTrailing RemainderPolicy = "trailing"
)

// ChunkFunc generates the records of one chunk.
type ChunkFunc func(ctx context.Context, chunk, size int) ([]model.Record, error)

// Plan is the chunk layout for one run.
type Plan struct {
	Sizes   []int
	Dropped int
}

// Total returns the number of records the plan produces.
func (p Plan) Total() int {
	n := 0
	for _, s := range p.Sizes {
		n += s
	}
	return n
}

// PlanChunks splits total into chunks of size total/chunks.
func PlanChunks(total, chunks int, policy RemainderPolicy) (Plan, error) {
	if total <= 0 {
		return Plan{}, fmt.Errorf("%w: total must be positive, got %d", common.ErrInvalidConfig, total)
	}
	if chunks <= 0 {
		return Plan{}, fmt.Errorf("%w: chunks must be positive, got %d", common.ErrInvalidConfig, chunks)
	}

	size := total / chunks
	remainder := total % chunks

	sizes := make([]int, chunks, chunks+1)
	for i := range sizes {
		sizes[i] = size
	}

	switch policy {
	case RemainderDrop, "":
		return Plan{Sizes: sizes, Dropped: remainder}, nil
	case RemainderTrailing:
		if remainder > 0 {
			sizes = append(sizes, remainder)
		}
		return Plan{Sizes: sizes}, nil
	default:
		return Plan{}, fmt.Errorf("%w: unknown remainder policy %q", common.ErrInvalidConfig, policy)
	}
}

// Options configures a Dispatcher.
type Options struct {
	Logger *slog.Logger
	// OnChunkDone is called once per finished chunk, from the worker goroutine.
	OnChunkDone func(chunk, records int)
	Remainder   RemainderPolicy
	Concurrency int
}

// Dispatcher runs chunk functions concurrently.
type Dispatcher struct {
	logger      *slog.Logger
	onChunkDone func(chunk, records int)
	remainder   RemainderPolicy
	concurrency int
}

// Result is the concatenated output of a run.
type Result struct {
	Records []model.Record
	// Completed lists chunk indexes in the order they finished.
	Completed []int
	Plan      Plan
	Elapsed   time.Duration
}

// New creates a Dispatcher. Concurrency defaults to the number of CPUs.
func New(opts Options) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Remainder == "" {
		opts.Remainder = RemainderDrop
	}
	return &Dispatcher{
		logger:      opts.Logger,
		onChunkDone: opts.OnChunkDone,
		remainder:   opts.Remainder,
		concurrency: opts.Concurrency,
	}
}

// Run generates total records split into chunks and blocks until every chunk
// is done. Records are concatenated in chunk completion order, so row order
// varies between runs. Any chunk failure fails the whole run.
func (d *Dispatcher) Run(ctx context.Context, total, chunks int, fn ChunkFunc) (*Result, error) {
	plan, err := PlanChunks(total, chunks, d.remainder)
	if err != nil {
		return nil, err
	}

	if plan.Dropped > 0 {
		d.logger.Warn("Row count not divisible by chunk count, dropping remainder",
			"requested", total,
			"chunks", chunks,
			"dropped", plan.Dropped)
	}

	start := time.Now()
	result := &Result{
		Plan:      plan,
		Records:   make([]model.Record, 0, plan.Total()),
		Completed: make([]int, 0, len(plan.Sizes)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, size := range plan.Sizes {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: chunk %d panicked: %v", common.ErrWorkerFailure, i, r)
				}
			}()

			records, err := fn(gctx, i, size)
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %w", common.ErrWorkerFailure, i, err)
			}
			if len(records) != size {
				return fmt.Errorf("%w: chunk %d produced %d records, want %d", common.ErrWorkerFailure, i, len(records), size)
			}

			mu.Lock()
			result.Records = append(result.Records, records...)
			result.Completed = append(result.Completed, i)
			mu.Unlock()

			d.logger.Debug("Chunk complete", "chunk", i, "records", len(records))
			if d.onChunkDone != nil {
				d.onChunkDone(i, len(records))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	d.logger.Info("Generated records",
		"records", len(result.Records),
		"chunks", len(plan.Sizes),
		"workers", d.concurrency,
		"elapsed", result.Elapsed.Round(time.Millisecond))

	return result, nil
}
