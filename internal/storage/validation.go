package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/feedgen/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidRun    = errors.New("invalid run")
	ErrInvalidRecord = errors.New("invalid record")
	ErrNotFound      = errors.New("not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.Requested <= 0 {
		return fmt.Errorf("%w: requested rows must be positive", ErrInvalidRun)
	}
	if run.Chunks <= 0 {
		return fmt.Errorf("%w: chunks must be positive", ErrInvalidRun)
	}
	if run.StartYear > run.EndYear {
		return fmt.Errorf("%w: start year after end year", ErrInvalidRun)
	}
	return nil
}

func validateRecords(records []model.Record) error {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("%w at index %d: %v", ErrInvalidRecord, i, err)
		}
	}
	return nil
}
