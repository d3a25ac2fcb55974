package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/feedgen/internal/cli"
	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/config"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/pool"
	"github.com/Veraticus/feedgen/internal/sink"
	"github.com/Veraticus/feedgen/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [FILE]",
		Short: "Summarize a generated feedback file or stored run",
		Long: `Read a generated feedback CSV (plain or lz4) and print row counts, the
sentiment and rating distributions and the purchase date span.

With --sqlite and --run, the records of a run saved by "generate --sqlite" are
summarized instead of a file.

With --validate, every record is also checked against the reference pools:
feedback text must come from the pool matching its sentiment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStats,
	}

	cmd.Flags().Bool("validate", false, "Check records against the reference pools")
	cmd.Flags().String("sqlite", "", "SQLite database written by generate --sqlite")
	cmd.Flags().String("run", "", "Run ID to summarize from the SQLite database")
	_ = viper.BindPFlag("stats.validate", cmd.Flags().Lookup("validate"))
	_ = viper.BindPFlag("stats.sqlite", cmd.Flags().Lookup("sqlite"))
	_ = viper.BindPFlag("stats.run", cmd.Flags().Lookup("run"))

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath := config.ExpandPath(viper.GetString("stats.sqlite"))
	runID := viper.GetString("stats.run")

	var (
		source     string
		records    []model.Record
		sentiments map[model.Sentiment]int
		err        error
	)
	switch {
	case len(args) == 1 && dbPath == "":
		source = config.ExpandPath(args[0])
		records, err = sink.ReadRecords(source)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", source, err)
		}
	case len(args) == 0 && dbPath != "" && runID != "":
		source, records, sentiments, err = loadStoredRun(cmd.Context(), dbPath, runID)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: give either FILE or --sqlite with --run", common.ErrInvalidConfig)
	}

	var pools *pool.Set
	if viper.GetBool("stats.validate") {
		v := viper.GetViper()
		config.SetDefaults(v)
		pools, err = pool.LoadSet(config.InputPaths{
			Positive: config.ExpandPath(v.GetString("inputs.positive")),
			Neutral:  config.ExpandPath(v.GetString("inputs.neutral")),
			Negative: config.ExpandPath(v.GetString("inputs.negative")),
			Products: config.ExpandPath(v.GetString("inputs.products")),
		})
		if err != nil {
			return fmt.Errorf("failed to load reference data: %w", err)
		}
	}

	summary := summarize(records, pools)
	if sentiments != nil {
		summary.Sentiments = make(map[string]int, len(sentiments))
		for s, n := range sentiments {
			summary.Sentiments[s.String()] = n
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderStats(source, summary))

	if summary.Invalid > 0 {
		return fmt.Errorf("%d of %d records failed validation", summary.Invalid, summary.Rows)
	}
	return nil
}

// loadStoredRun reads one run's records and sentiment tally from SQLite.
// The returned source names the database and run for display.
func loadStoredRun(ctx context.Context, dbPath, runID string) (source string, records []model.Record, counts map[model.Sentiment]int, err error) {
	if _, statErr := os.Stat(dbPath); statErr != nil {
		return "", nil, nil, fmt.Errorf("%w: %s", common.ErrMissingFile, dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "path", dbPath, "error", closeErr)
		}
	}()

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	records, err = store.GetRecords(ctx, run.ID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to load records for run %s: %w", run.ID, err)
	}

	counts, err = store.SentimentCounts(ctx, run.ID)
	if err != nil {
		return "", nil, nil, err
	}

	slog.Debug("Loaded stored run", "path", store.Path(), "run_id", run.ID, "records", len(records))
	return fmt.Sprintf("%s (run %s)", store.Path(), run.ID), records, counts, nil
}

// feedbackStats is the summary printed by the stats command.
type feedbackStats struct {
	Earliest   time.Time
	Latest     time.Time
	Sentiments map[string]int
	Ratings    map[string]int
	Rows       int
	// Invalid is only counted when pools are supplied.
	Invalid   int
	Validated bool
}

func summarize(records []model.Record, pools *pool.Set) feedbackStats {
	s := feedbackStats{
		Rows:       len(records),
		Sentiments: make(map[string]int),
		Ratings:    make(map[string]int),
		Validated:  pools != nil,
	}

	for i := range records {
		r := &records[i]
		s.Sentiments[r.Sentiment.String()]++
		s.Ratings[strconv.Itoa(r.Rating)]++

		if s.Earliest.IsZero() || r.PurchaseDate.Before(s.Earliest) {
			s.Earliest = r.PurchaseDate
		}
		if r.PurchaseDate.After(s.Latest) {
			s.Latest = r.PurchaseDate
		}

		if pools != nil {
			if err := r.Validate(); err != nil {
				slog.Debug("Invalid record", "feedback_id", r.FeedbackID, "error", err)
				s.Invalid++
				continue
			}
			if !pools.Owns(*r) {
				slog.Debug("Record not drawn from reference pools", "feedback_id", r.FeedbackID)
				s.Invalid++
			}
		}
	}

	return s
}

func renderStats(path string, s feedbackStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", path)
	fmt.Fprintf(&b, "Rows: %d\n", s.Rows)
	if s.Rows > 0 {
		fmt.Fprintf(&b, "Purchase dates: %s to %s\n",
			s.Earliest.Format(model.DateLayout), s.Latest.Format(model.DateLayout))
	}

	labels := make([]string, 0, len(model.Sentiments))
	for _, sentiment := range model.Sentiments {
		labels = append(labels, sentiment.String())
	}
	b.WriteString("\nSentiment\n")
	b.WriteString(cli.FormatDistribution(labels, s.Sentiments, s.Rows))

	ratings := make([]string, 0, model.MaxRating)
	for r := model.MinRating; r <= model.MaxRating; r++ {
		ratings = append(ratings, strconv.Itoa(r))
	}
	b.WriteString("\nRating\n")
	b.WriteString(cli.FormatDistribution(ratings, s.Ratings, s.Rows))

	if s.Validated {
		b.WriteString("\n")
		if s.Invalid == 0 {
			b.WriteString(cli.FormatSuccess("All records match the reference pools"))
		} else {
			b.WriteString(cli.FormatWarning(fmt.Sprintf("%d records failed validation", s.Invalid)))
		}
	}

	return cli.RenderBox(cli.ChartIcon+" Feedback Summary", strings.TrimRight(b.String(), "\n"))
}
