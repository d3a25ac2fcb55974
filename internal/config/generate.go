// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/spf13/viper"
)

// Remainder policies for row counts that do not divide evenly into chunks.
const (
	RemainderDrop     = "drop"
	RemainderTrailing = "trailing"
)

// Output compression modes.
const (
	CompressNone = "none"
	CompressLZ4  = "lz4"
)

// Defaults.
const (
	DefaultRows      = 1000
	DefaultChunks    = 10
	DefaultStartYear = 2015
	DefaultEndYear   = 2023
	DefaultDataDir   = "Data-Sets"
)

// InputPaths names the four reference files.
type InputPaths struct {
	Positive string
	Neutral  string
	Negative string
	Products string
}

// GenerateConfig holds everything a generation run needs.
type GenerateConfig struct {
	Inputs     InputPaths
	OutputPath string
	Remainder  string
	Compress   string
	SQLitePath string
	Seed       int64
	Rows       int
	Chunks     int
	Workers    int
	StartYear  int
	EndYear    int
	Sheets     bool
	Quiet      bool
}

// SetDefaults registers default values with viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.rows", DefaultRows)
	v.SetDefault("generate.chunks", DefaultChunks)
	v.SetDefault("generate.workers", runtime.NumCPU())
	v.SetDefault("generate.start_year", DefaultStartYear)
	v.SetDefault("generate.end_year", DefaultEndYear)
	v.SetDefault("generate.remainder", RemainderDrop)
	v.SetDefault("generate.compress", CompressNone)
	v.SetDefault("inputs.positive", filepath.Join(DefaultDataDir, "positive.csv"))
	v.SetDefault("inputs.neutral", filepath.Join(DefaultDataDir, "neutral.csv"))
	v.SetDefault("inputs.negative", filepath.Join(DefaultDataDir, "negative.csv"))
	v.SetDefault("inputs.products", filepath.Join(DefaultDataDir, "products.csv"))
}

// DefaultOutputPath derives the output file name from the row count.
func DefaultOutputPath(rows int) string {
	return filepath.Join(DefaultDataDir, fmt.Sprintf("customer_feedback_%d.csv", rows))
}

// LoadGenerateConfig reads the generate configuration from the global viper instance.
func LoadGenerateConfig() (*GenerateConfig, error) {
	return LoadGenerateConfigFrom(viper.GetViper())
}

// LoadGenerateConfigFrom reads the generate configuration from v and validates it.
func LoadGenerateConfigFrom(v *viper.Viper) (*GenerateConfig, error) {
	SetDefaults(v)

	cfg := &GenerateConfig{
		Rows:       v.GetInt("generate.rows"),
		Chunks:     v.GetInt("generate.chunks"),
		Workers:    v.GetInt("generate.workers"),
		StartYear:  v.GetInt("generate.start_year"),
		EndYear:    v.GetInt("generate.end_year"),
		Seed:       v.GetInt64("generate.seed"),
		Remainder:  strings.ToLower(v.GetString("generate.remainder")),
		Compress:   strings.ToLower(v.GetString("generate.compress")),
		SQLitePath: ExpandPath(v.GetString("generate.sqlite")),
		Sheets:     v.GetBool("generate.sheets"),
		Quiet:      v.GetBool("generate.quiet"),
		Inputs: InputPaths{
			Positive: ExpandPath(v.GetString("inputs.positive")),
			Neutral:  ExpandPath(v.GetString("inputs.neutral")),
			Negative: ExpandPath(v.GetString("inputs.negative")),
			Products: ExpandPath(v.GetString("inputs.products")),
		},
	}

	cfg.OutputPath = ExpandPath(v.GetString("generate.output"))
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath(cfg.Rows)
	}
	if cfg.Compress == CompressLZ4 && !strings.HasSuffix(cfg.OutputPath, ".lz4") {
		cfg.OutputPath += ".lz4"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable job.
func (c *GenerateConfig) Validate() error {
	if c.Rows <= 0 {
		return fmt.Errorf("%w: rows must be positive, got %d", common.ErrInvalidConfig, c.Rows)
	}
	if c.Chunks <= 0 {
		return fmt.Errorf("%w: chunks must be positive, got %d", common.ErrInvalidConfig, c.Chunks)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", common.ErrInvalidConfig, c.Workers)
	}
	if c.StartYear > c.EndYear {
		return fmt.Errorf("%w: start year %d is after end year %d", common.ErrInvalidConfig, c.StartYear, c.EndYear)
	}
	if c.StartYear < model.MinYear || c.EndYear > model.MaxYear {
		return fmt.Errorf("%w: years must be between %d and %d, got %d-%d",
			common.ErrInvalidConfig, model.MinYear, model.MaxYear, c.StartYear, c.EndYear)
	}

	switch c.Remainder {
	case RemainderDrop, RemainderTrailing:
	default:
		return fmt.Errorf("%w: unknown remainder policy %q", common.ErrInvalidConfig, c.Remainder)
	}

	switch c.Compress {
	case CompressNone, CompressLZ4:
	default:
		return fmt.Errorf("%w: unknown compression %q", common.ErrInvalidConfig, c.Compress)
	}

	for name, path := range map[string]string{
		"positive": c.Inputs.Positive,
		"neutral":  c.Inputs.Neutral,
		"negative": c.Inputs.Negative,
		"products": c.Inputs.Products,
	} {
		if path == "" {
			return fmt.Errorf("%w: %s input path", common.ErrMissingConfig, name)
		}
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path", common.ErrMissingConfig)
	}

	return nil
}
