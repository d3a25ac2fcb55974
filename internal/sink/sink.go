// Package sink serializes generated records.
package sink

import (
	"context"

	"github.com/Veraticus/feedgen/internal/model"
)

// Sink receives the full record set once generation has finished.
type Sink interface {
	Write(ctx context.Context, records []model.Record) error
}
