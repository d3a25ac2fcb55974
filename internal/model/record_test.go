package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		CustomerName:  "Ada Lovelace",
		FeedbackID:    4321,
		Product:       "Smart Kettle",
		FeedbackText:  "Boils fast, pours clean",
		Sentiment:     SentimentPositive,
		Rating:        5,
		PurchaseDate:  time.Date(2019, time.March, 14, 0, 0, 0, 0, time.UTC),
		Location:      "London",
		CustomerEmail: "ada@example.com",
		OrderID:       123456,
	}
}

func TestRecord_RowMatchesHeader(t *testing.T) {
	row := validRecord().Row()

	require.Len(t, row, len(Header))
	assert.Equal(t, []string{
		"Ada Lovelace",
		"4321",
		"Smart Kettle",
		"Boils fast, pours clean",
		"positive",
		"5",
		"2019-03-14",
		"London",
		"ada@example.com",
		"123456",
	}, row)
}

func TestParseRow(t *testing.T) {
	original := validRecord()

	parsed, err := ParseRow(original.Row())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	tests := []struct {
		name   string
		errMsg string
		mutate func([]string) []string
	}{
		{
			name:   "short row",
			errMsg: "expected 10 columns, got 9",
			mutate: func(r []string) []string { return r[:9] },
		},
		{
			name:   "bad feedback id",
			errMsg: "invalid FeedbackID",
			mutate: func(r []string) []string { r[1] = "abc"; return r },
		},
		{
			name:   "unknown sentiment",
			errMsg: "unknown sentiment",
			mutate: func(r []string) []string { r[4] = "ecstatic"; return r },
		},
		{
			name:   "bad date",
			errMsg: "invalid PurchaseDate",
			mutate: func(r []string) []string { r[6] = "14/03/2019"; return r },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRow(tt.mutate(original.Row()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		mutate  func(*Record)
		wantErr bool
	}{
		{
			name:   "valid record",
			mutate: func(_ *Record) {},
		},
		{
			name:    "rating too low",
			mutate:  func(r *Record) { r.Rating = 0 },
			wantErr: true,
			errMsg:  "rating must be between 1 and 5, got 0",
		},
		{
			name:    "rating too high",
			mutate:  func(r *Record) { r.Rating = 6 },
			wantErr: true,
			errMsg:  "rating must be between 1 and 5, got 6",
		},
		{
			name:    "feedback id out of range",
			mutate:  func(r *Record) { r.FeedbackID = 999 },
			wantErr: true,
			errMsg:  "feedback ID must be between 1000 and 9999, got 999",
		},
		{
			name:    "order id out of range",
			mutate:  func(r *Record) { r.OrderID = 1000000 },
			wantErr: true,
			errMsg:  "order ID must be between 100000 and 999999, got 1000000",
		},
		{
			name:    "unknown sentiment",
			mutate:  func(r *Record) { r.Sentiment = "mixed" },
			wantErr: true,
			errMsg:  `invalid sentiment "mixed"`,
		},
		{
			name:    "missing date",
			mutate:  func(r *Record) { r.PurchaseDate = time.Time{} },
			wantErr: true,
			errMsg:  "purchase date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)

			err := r.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.errMsg, err.Error())
		})
	}
}

func TestParseSentiment(t *testing.T) {
	for _, s := range Sentiments {
		got, err := ParseSentiment(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseSentiment("Positive")
	assert.Error(t, err)
}
