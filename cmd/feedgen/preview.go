package main

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/feedgen/internal/config"
	"github.com/Veraticus/feedgen/internal/sink"
	"github.com/Veraticus/feedgen/internal/tui"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview FILE",
		Short: "Browse a generated feedback file interactively",
		Long: `Open a generated feedback CSV (plain or lz4) in an interactive table.

Press s to cycle the sentiment filter and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := config.ExpandPath(args[0])

			records, err := sink.ReadRecords(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			return tui.RunPreview(filepath.Base(path), records)
		},
	}
}
