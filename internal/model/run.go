package model

import "time"

// Run describes one generation run as persisted by database sinks.
type Run struct {
	CreatedAt  time.Time
	ID         string
	OutputPath string
	Remainder  string
	Seed       int64
	Requested  int
	Generated  int
	Chunks     int
	StartYear  int
	EndYear    int
}
