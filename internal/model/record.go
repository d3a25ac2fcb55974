package model

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the format used for purchase dates in output files.
const DateLayout = "2006-01-02"

// Identifier and rating bounds, all inclusive.
const (
	MinFeedbackID = 1000
	MaxFeedbackID = 9999
	MinOrderID    = 100000
	MaxOrderID    = 999999
	MinRating     = 1
	MaxRating     = 5
	// Purchase years must fit the four-digit year of DateLayout.
	MinYear = 1
	MaxYear = 9999
)

// Header is the fixed column order of every output file.
var Header = []string{
	"CustomerName",
	"FeedbackID",
	"Product",
	"FeedbackText",
	"Sentiment",
	"Rating",
	"PurchaseDate",
	"Location",
	"CustomerEmail",
	"OrderID",
}

// Record is one synthetic customer feedback row.
type Record struct {
	PurchaseDate  time.Time
	CustomerName  string
	Product       string
	FeedbackText  string
	Sentiment     Sentiment
	Location      string
	CustomerEmail string
	FeedbackID    int
	Rating        int
	OrderID       int
}

// Row encodes the record in Header order.
func (r Record) Row() []string {
	return []string{
		r.CustomerName,
		strconv.Itoa(r.FeedbackID),
		r.Product,
		r.FeedbackText,
		string(r.Sentiment),
		strconv.Itoa(r.Rating),
		r.PurchaseDate.Format(DateLayout),
		r.Location,
		r.CustomerEmail,
		strconv.Itoa(r.OrderID),
	}
}

// ParseRow decodes a row written by Row.
func ParseRow(row []string) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(row))
	}

	feedbackID, err := strconv.Atoi(row[1])
	if err != nil {
		return Record{}, fmt.Errorf("invalid FeedbackID %q: %w", row[1], err)
	}
	sentiment, err := ParseSentiment(row[4])
	if err != nil {
		return Record{}, err
	}
	rating, err := strconv.Atoi(row[5])
	if err != nil {
		return Record{}, fmt.Errorf("invalid Rating %q: %w", row[5], err)
	}
	purchaseDate, err := time.Parse(DateLayout, row[6])
	if err != nil {
		return Record{}, fmt.Errorf("invalid PurchaseDate %q: %w", row[6], err)
	}
	orderID, err := strconv.Atoi(row[9])
	if err != nil {
		return Record{}, fmt.Errorf("invalid OrderID %q: %w", row[9], err)
	}

	return Record{
		CustomerName:  row[0],
		FeedbackID:    feedbackID,
		Product:       row[2],
		FeedbackText:  row[3],
		Sentiment:     sentiment,
		Rating:        rating,
		PurchaseDate:  purchaseDate,
		Location:      row[7],
		CustomerEmail: row[8],
		OrderID:       orderID,
	}, nil
}

// Validate checks the numeric ranges and the sentiment label.
// It cannot check pool membership; callers holding the pools do that.
func (r *Record) Validate() error {
	if !r.Sentiment.IsValid() {
		return fmt.Errorf("invalid sentiment %q", r.Sentiment)
	}
	if r.FeedbackID < MinFeedbackID || r.FeedbackID > MaxFeedbackID {
		return fmt.Errorf("feedback ID must be between %d and %d, got %d", MinFeedbackID, MaxFeedbackID, r.FeedbackID)
	}
	if r.OrderID < MinOrderID || r.OrderID > MaxOrderID {
		return fmt.Errorf("order ID must be between %d and %d, got %d", MinOrderID, MaxOrderID, r.OrderID)
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d, got %d", MinRating, MaxRating, r.Rating)
	}
	if r.PurchaseDate.IsZero() {
		return fmt.Errorf("purchase date is required")
	}
	return nil
}
