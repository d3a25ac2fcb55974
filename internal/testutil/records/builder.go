// Package records builds deterministic feedback records for tests.
//
// Example usage:
//
//	recs := records.NewBuilder().
//		WithCount(6).
//		WithSentiment(model.SentimentNegative).
//		Build()
package records

import (
	"fmt"
	"time"

	"github.com/Veraticus/feedgen/internal/model"
)

// Builder provides a fluent interface for constructing test records.
// Records cycle through the fixture values, so output is fully deterministic.
type Builder struct {
	start     time.Time
	sentiment model.Sentiment
	product   string
	count     int
}

// NewBuilder returns a builder for one record per sentiment.
func NewBuilder() *Builder {
	return &Builder{
		start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		count: len(model.Sentiments),
	}
}

// WithCount sets how many records Build returns.
func (b *Builder) WithCount(n int) *Builder {
	b.count = n
	return b
}

// WithSentiment pins every record to one sentiment instead of cycling.
func (b *Builder) WithSentiment(s model.Sentiment) *Builder {
	b.sentiment = s
	return b
}

// WithProduct pins every record to one product.
func (b *Builder) WithProduct(p string) *Builder {
	b.product = p
	return b
}

// WithStart sets the purchase date of the first record. Each following
// record is one day later.
func (b *Builder) WithStart(t time.Time) *Builder {
	b.start = t
	return b
}

// Build returns the records.
func (b *Builder) Build() []model.Record {
	out := make([]model.Record, 0, b.count)
	for i := 0; i < b.count; i++ {
		sentiment := b.sentiment
		if sentiment == "" {
			sentiment = model.Sentiments[i%len(model.Sentiments)]
		}
		product := b.product
		if product == "" {
			product = Products[i%len(Products)]
		}
		texts := Feedback[sentiment]

		out = append(out, model.Record{
			CustomerName:  Names[i%len(Names)],
			FeedbackID:    model.MinFeedbackID + i%(model.MaxFeedbackID-model.MinFeedbackID+1),
			Product:       product,
			FeedbackText:  texts[i%len(texts)],
			Sentiment:     sentiment,
			Rating:        model.MinRating + i%model.MaxRating,
			PurchaseDate:  b.start.AddDate(0, 0, i),
			Location:      Cities[i%len(Cities)],
			CustomerEmail: fmt.Sprintf("customer%d@example.com", i),
			OrderID:       model.MinOrderID + i,
		})
	}
	return out
}
