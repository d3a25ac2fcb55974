// Package model defines the core domain models used throughout the application.
package model

import "fmt"

// Sentiment is the categorical label that decides which feedback pool a record draws from.
type Sentiment string

// Sentiment constants.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists every label in a fixed order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// String implements fmt.Stringer.
func (s Sentiment) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known labels.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

// ParseSentiment converts a raw label into a Sentiment.
func ParseSentiment(raw string) (Sentiment, error) {
	s := Sentiment(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown sentiment %q", raw)
	}
	return s, nil
}
