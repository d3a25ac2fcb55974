package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/feedgen/internal/model"
	"github.com/google/uuid"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun stores run metadata and its records in a single transaction.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run, records []model.Record) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Generated = len(records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, requested_rows, generated_rows, chunks, seed,
			start_year, end_year, output_path, remainder, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Requested,
		run.Generated,
		run.Chunks,
		run.Seed,
		run.StartYear,
		run.EndYear,
		run.OutputPath,
		run.Remainder,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	if err := s.saveRecordsTx(ctx, tx, run.ID, records); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveRecordsTx(ctx context.Context, tx *sql.Tx, runID string, records []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO feedback_records (
			run_id, customer_name, feedback_id, product, feedback_text,
			sentiment, rating, purchase_date, location, customer_email, order_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		_, err = stmt.ExecContext(ctx,
			runID,
			r.CustomerName,
			r.FeedbackID,
			r.Product,
			r.FeedbackText,
			string(r.Sentiment),
			r.Rating,
			r.PurchaseDate.Format(model.DateLayout),
			r.Location,
			r.CustomerEmail,
			r.OrderID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	return nil
}

// GetRun loads run metadata by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var run model.Run
	var outputPath sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, requested_rows, generated_rows, chunks, seed,
			start_year, end_year, output_path, remainder, created_at
		FROM runs WHERE id = ?
	`, id).Scan(
		&run.ID,
		&run.Requested,
		&run.Generated,
		&run.Chunks,
		&run.Seed,
		&run.StartYear,
		&run.EndYear,
		&outputPath,
		&run.Remainder,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	run.OutputPath = outputPath.String

	return &run, nil
}

// GetRecords returns a run's records in insertion order.
func (s *SQLiteStorage) GetRecords(ctx context.Context, runID string) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_name, feedback_id, product, feedback_text, sentiment,
			rating, purchase_date, location, customer_email, order_id
		FROM feedback_records WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var sentiment, purchaseDate string
		if err := rows.Scan(
			&r.CustomerName,
			&r.FeedbackID,
			&r.Product,
			&r.FeedbackText,
			&sentiment,
			&r.Rating,
			&purchaseDate,
			&r.Location,
			&r.CustomerEmail,
			&r.OrderID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Sentiment = model.Sentiment(sentiment)
		if r.PurchaseDate, err = time.Parse(model.DateLayout, purchaseDate); err != nil {
			return nil, fmt.Errorf("invalid purchase date %q: %w", purchaseDate, err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// SentimentCounts tallies a run's records per sentiment.
func (s *SQLiteStorage) SentimentCounts(ctx context.Context, runID string) (map[model.Sentiment]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sentiment, COUNT(*) FROM feedback_records
		WHERE run_id = ? GROUP BY sentiment
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sentiments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.Sentiment]int)
	for rows.Next() {
		var sentiment string
		var n int
		if err := rows.Scan(&sentiment, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.Sentiment(sentiment)] = n
	}

	return counts, rows.Err()
}

// RunSink adapts SQLiteStorage to sink.Sink for one run.
type RunSink struct {
	store *SQLiteStorage
	run   *model.Run
}

// NewRunSink returns a sink that saves records under run.
func NewRunSink(store *SQLiteStorage, run *model.Run) *RunSink {
	return &RunSink{store: store, run: run}
}

// Write implements sink.Sink.
func (r *RunSink) Write(ctx context.Context, records []model.Record) error {
	return r.store.SaveRun(ctx, r.run, records)
}
