package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/Veraticus/feedgen/internal/cli"
	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/config"
	"github.com/Veraticus/feedgen/internal/dispatch"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/Veraticus/feedgen/internal/pool"
	"github.com/Veraticus/feedgen/internal/sheets"
	"github.com/Veraticus/feedgen/internal/sink"
	"github.com/Veraticus/feedgen/internal/storage"
	"github.com/Veraticus/feedgen/internal/synth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic customer feedback CSV",
		Long: `Generate synthetic customer feedback records and write them to a CSV file.

Records are produced in parallel chunks. When the row count does not divide
evenly by the chunk count, the remainder is dropped unless --remainder=trailing
is given, in which case a final partial chunk makes up the difference.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	// Volume
	cmd.Flags().IntP("rows", "n", config.DefaultRows, "Number of records to generate")
	cmd.Flags().IntP("chunks", "k", config.DefaultChunks, "Number of chunks to split generation into")
	cmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Maximum number of chunks generated at once")
	cmd.Flags().String("remainder", config.RemainderDrop, "Remainder policy when rows do not divide by chunks (drop, trailing)")
	cmd.Flags().Int64("seed", 0, "Base random seed (0 seeds from the clock)")

	// Content
	cmd.Flags().Int("start-year", config.DefaultStartYear, "First purchase year")
	cmd.Flags().Int("end-year", config.DefaultEndYear, "Last purchase year")
	cmd.Flags().String("positive", "", "Positive feedback reference file")
	cmd.Flags().String("neutral", "", "Neutral feedback reference file")
	cmd.Flags().String("negative", "", "Negative feedback reference file")
	cmd.Flags().String("products", "", "Products reference file")

	// Output
	cmd.Flags().StringP("output", "o", "", "Output CSV path (default: Data-Sets/customer_feedback_<rows>.csv)")
	cmd.Flags().String("compress", config.CompressNone, "Output compression (none, lz4)")
	cmd.Flags().String("sqlite", "", "Also store the run in this SQLite database")
	cmd.Flags().Bool("sheets", false, "Also push the records to Google Sheets")
	cmd.Flags().BoolP("quiet", "q", false, "Disable progress bars")

	// Bind to viper
	_ = viper.BindPFlag("generate.rows", cmd.Flags().Lookup("rows"))
	_ = viper.BindPFlag("generate.chunks", cmd.Flags().Lookup("chunks"))
	_ = viper.BindPFlag("generate.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("generate.remainder", cmd.Flags().Lookup("remainder"))
	_ = viper.BindPFlag("generate.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("generate.start_year", cmd.Flags().Lookup("start-year"))
	_ = viper.BindPFlag("generate.end_year", cmd.Flags().Lookup("end-year"))
	_ = viper.BindPFlag("generate.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("generate.compress", cmd.Flags().Lookup("compress"))
	_ = viper.BindPFlag("generate.sqlite", cmd.Flags().Lookup("sqlite"))
	_ = viper.BindPFlag("generate.sheets", cmd.Flags().Lookup("sheets"))
	_ = viper.BindPFlag("generate.quiet", cmd.Flags().Lookup("quiet"))
	_ = viper.BindPFlag("inputs.positive", cmd.Flags().Lookup("positive"))
	_ = viper.BindPFlag("inputs.neutral", cmd.Flags().Lookup("neutral"))
	_ = viper.BindPFlag("inputs.negative", cmd.Flags().Lookup("negative"))
	_ = viper.BindPFlag("inputs.products", cmd.Flags().Lookup("products"))

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadGenerateConfig()
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Generating customer feedback"))
	slog.Info("Generation settings",
		"rows", cfg.Rows,
		"chunks", cfg.Chunks,
		"workers", cfg.Workers,
		"remainder", cfg.Remainder,
		"years", fmt.Sprintf("%d-%d", cfg.StartYear, cfg.EndYear))

	run, err := generate(ctx, cfg, generateDeps{
		logger:   slog.Default(),
		progress: cmd.ErrOrStderr(),
		sheets:   newSheetsSink,
	})
	if err != nil {
		common.LogError(err, "Generation failed", common.Fields{
			"output": cfg.OutputPath,
			"rows":   cfg.Rows,
		})
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Data saved to %s", run.OutputPath)),
		"records", run.Generated,
		"run_id", run.ID)
	return nil
}

// generateDeps holds the collaborators of a generation run.
type generateDeps struct {
	logger   *slog.Logger
	progress io.Writer
	// sheets builds the Google Sheets sink; only called when enabled.
	sheets func(ctx context.Context, logger *slog.Logger) (sink.Sink, error)
}

// generate loads the reference pools, generates cfg.Rows records across
// cfg.Chunks chunks, and writes them to every configured sink. Failures are
// reported as a UserError naming the stage that failed.
func generate(ctx context.Context, cfg *config.GenerateConfig, deps generateDeps) (*model.Run, error) {
	if deps.logger == nil {
		deps.logger = slog.Default()
	}
	if deps.progress == nil {
		deps.progress = io.Discard
	}

	pools, err := pool.LoadSet(cfg.Inputs)
	if err != nil {
		return nil, common.NewUserError(common.StageLoad, err)
	}
	deps.logger.Debug("Loaded reference pools",
		"positive", pools.Positive.Len(),
		"neutral", pools.Neutral.Len(),
		"negative", pools.Negative.Len(),
		"products", pools.Products.Len())

	records, err := generateRecords(ctx, cfg, pools, deps)
	if err != nil {
		return nil, common.NewUserError(common.StageGenerate, err)
	}

	run := &model.Run{
		ID:         storage.NewRunID(),
		OutputPath: cfg.OutputPath,
		Remainder:  cfg.Remainder,
		Seed:       cfg.Seed,
		Requested:  cfg.Rows,
		Generated:  len(records),
		Chunks:     cfg.Chunks,
		StartYear:  cfg.StartYear,
		EndYear:    cfg.EndYear,
	}

	if err := writeRecords(ctx, cfg, run, records, deps); err != nil {
		return nil, common.NewUserError(common.StageWrite, err)
	}

	return run, nil
}

func generateRecords(ctx context.Context, cfg *config.GenerateConfig, pools *pool.Set, deps generateDeps) ([]model.Record, error) {
	opts := synth.Options{StartYear: cfg.StartYear, EndYear: cfg.EndYear}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	policy := dispatch.RemainderPolicy(cfg.Remainder)
	plan, err := dispatch.PlanChunks(cfg.Rows, cfg.Chunks, policy)
	if err != nil {
		return nil, err
	}

	bar := cli.NewProgress(deps.progress, len(plan.Sizes), "Generating", cfg.Quiet)
	d := dispatch.New(dispatch.Options{
		Logger:      deps.logger,
		Remainder:   policy,
		Concurrency: cfg.Workers,
		OnChunkDone: func(_, _ int) { bar.Add(1) },
	})

	result, err := d.Run(ctx, cfg.Rows, cfg.Chunks, synth.Generator(pools, cfg.Seed, opts))
	if err != nil {
		return nil, err
	}
	bar.Finish()

	deps.logger.Debug("Generated records",
		"records", len(result.Records),
		"elapsed", result.Elapsed)
	return result.Records, nil
}

// writeRecords writes the CSV first, then any optional sinks in order.
func writeRecords(ctx context.Context, cfg *config.GenerateConfig, run *model.Run, records []model.Record, deps generateDeps) error {
	bar := cli.NewProgress(deps.progress, len(records), "Writing", cfg.Quiet)
	csvSink := sink.NewCSVWriter(cfg.OutputPath, sink.CSVOptions{
		Compress: cfg.Compress == config.CompressLZ4,
		OnRow:    func() { bar.Add(1) },
	})
	if err := csvSink.Write(ctx, records); err != nil {
		return err
	}
	bar.Finish()
	deps.logger.Debug("Wrote CSV", "path", csvSink.Path(), "records", len(records))

	if cfg.SQLitePath != "" {
		if err := writeSQLite(ctx, cfg.SQLitePath, run, records); err != nil {
			return err
		}
		deps.logger.Info("Stored run in SQLite", "path", cfg.SQLitePath, "run_id", run.ID)
	}

	if cfg.Sheets {
		if deps.sheets == nil {
			return fmt.Errorf("%w: sheets sink", common.ErrMissingConfig)
		}
		s, err := deps.sheets(ctx, deps.logger)
		if err != nil {
			return err
		}
		if err := s.Write(ctx, records); err != nil {
			return fmt.Errorf("failed to write to Google Sheets: %w", err)
		}
	}

	return nil
}

func writeSQLite(ctx context.Context, path string, run *model.Run, records []model.Record) (err error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var s sink.Sink = storage.NewRunSink(store, run)
	return s.Write(ctx, records)
}

func newSheetsSink(ctx context.Context, logger *slog.Logger) (sink.Sink, error) {
	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load sheets config: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets writer: %w", err)
	}
	return writer, nil
}
