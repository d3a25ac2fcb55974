// Package synth fabricates feedback records from the reference pools.
//
// A Synthesizer owns its random source and faker instance, so each worker
// builds its own and nothing is shared between goroutines except the
// read-only pools.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/pool"
	"github.com/jaswdr/faker"
)

const secondsPerDay = 24 * 60 * 60

// Options bounds the purchase dates.
type Options struct {
	StartYear int
	EndYear   int
}

// DefaultOptions returns the 2015-2023 purchase window.
func DefaultOptions() Options {
	return Options{StartYear: 2015, EndYear: 2023}
}

// Validate checks the year range.
func (o Options) Validate() error {
	if o.StartYear < model.MinYear || o.EndYear > model.MaxYear {
		return fmt.Errorf("%w: years must be between %d and %d, got %d-%d",
			common.ErrInvalidConfig, model.MinYear, model.MaxYear, o.StartYear, o.EndYear)
	}
	if o.StartYear > o.EndYear {
		return fmt.Errorf("%w: start year %d is after end year %d", common.ErrInvalidConfig, o.StartYear, o.EndYear)
	}
	return nil
}

// DateRange returns the first and last purchase dates, both inclusive.
func (o Options) DateRange() (time.Time, time.Time) {
	start := time.Date(o.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(o.EndYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

// Synthesizer produces one record per call. It is not safe for concurrent use.
type Synthesizer struct {
	start time.Time
	pools *pool.Set
	rng   *rand.Rand
	fake  faker.Faker
	days  int
}

// New returns a Synthesizer seeded with seed.
func New(pools *pool.Set, seed int64, opts Options) (*Synthesizer, error) {
	if pools == nil {
		return nil, fmt.Errorf("%w: no pools", common.ErrEmptyPool)
	}
	if err := pools.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start, end := opts.DateRange()

	return &Synthesizer{
		pools: pools,
		rng:   rand.New(rand.NewSource(seed)),
		// faker gets its own source so its draws do not shift ours.
		fake:  faker.NewWithSeed(rand.NewSource(seed ^ 0x5eed)),
		start: start,
		days:  daysBetween(start, end),
	}, nil
}

// daysBetween counts whole days from start to end. time.Duration saturates at
// about 292 years, so the span is taken from Unix seconds instead.
func daysBetween(start, end time.Time) int {
	return int((end.Unix() - start.Unix()) / secondsPerDay)
}

// Record fabricates a single record.
func (s *Synthesizer) Record() model.Record {
	sentiment := model.Sentiments[s.rng.Intn(len(model.Sentiments))]

	return model.Record{
		CustomerName:  s.fake.Person().Name(),
		FeedbackID:    s.between(model.MinFeedbackID, model.MaxFeedbackID),
		Product:       s.pools.Products.Pick(s.rng),
		FeedbackText:  s.pools.Feedback(sentiment).Pick(s.rng),
		Sentiment:     sentiment,
		Rating:        s.between(model.MinRating, model.MaxRating),
		PurchaseDate:  s.start.AddDate(0, 0, s.rng.Intn(s.days+1)),
		Location:      s.fake.Address().City(),
		CustomerEmail: s.fake.Internet().Email(),
		OrderID:       s.between(model.MinOrderID, model.MaxOrderID),
	}
}

// between draws uniformly from [lo, hi].
func (s *Synthesizer) between(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}
