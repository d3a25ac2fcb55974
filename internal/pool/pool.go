// Package pool loads the reference pools that records are sampled from.
package pool

import (
	"fmt"
	"math/rand"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/model"
)

// Pool is an immutable collection of candidate strings sampled uniformly at random.
type Pool struct {
	index  map[string]struct{}
	name   string
	values []string
}

// New builds a pool from values. The slice is copied.
func New(name string, values []string) (*Pool, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrEmptyPool, name)
	}

	p := &Pool{
		name:   name,
		values: make([]string, len(values)),
		index:  make(map[string]struct{}, len(values)),
	}
	copy(p.values, values)
	for _, v := range values {
		p.index[v] = struct{}{}
	}
	return p, nil
}

// Name returns the pool's label.
func (p *Pool) Name() string { return p.name }

// Len returns the number of entries, duplicates included.
func (p *Pool) Len() int { return len(p.values) }

// Values returns a copy of the entries in load order.
func (p *Pool) Values() []string {
	out := make([]string, len(p.values))
	copy(out, p.values)
	return out
}

// Contains reports whether v is one of the pool's entries.
func (p *Pool) Contains(v string) bool {
	_, ok := p.index[v]
	return ok
}

// Pick returns a uniformly random entry. The pool is never empty.
func (p *Pool) Pick(rng *rand.Rand) string {
	return p.values[rng.Intn(len(p.values))]
}

// Set groups the three feedback pools with the product pool.
type Set struct {
	Positive *Pool
	Neutral  *Pool
	Negative *Pool
	Products *Pool
}

// Feedback returns the feedback pool for a sentiment, or nil for an unknown label.
func (s *Set) Feedback(sentiment model.Sentiment) *Pool {
	switch sentiment {
	case model.SentimentPositive:
		return s.Positive
	case model.SentimentNeutral:
		return s.Neutral
	case model.SentimentNegative:
		return s.Negative
	default:
		return nil
	}
}

// Validate checks that every pool is present and non-empty.
func (s *Set) Validate() error {
	for name, p := range map[string]*Pool{
		"positive": s.Positive,
		"neutral":  s.Neutral,
		"negative": s.Negative,
		"products": s.Products,
	} {
		if p == nil || p.Len() == 0 {
			return fmt.Errorf("%w: %s", common.ErrEmptyPool, name)
		}
	}
	return nil
}

// Owns reports whether r's feedback text comes from the pool matching its sentiment
// and its product from the product pool.
func (s *Set) Owns(r model.Record) bool {
	fb := s.Feedback(r.Sentiment)
	if fb == nil || !fb.Contains(r.FeedbackText) {
		return false
	}
	return s.Products.Contains(r.Product)
}
