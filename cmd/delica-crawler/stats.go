package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"delica-crawler/internal/database"
	"delica-crawler/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show crawl progress and catalog counts",
		Long: `Stats summarizes the state of the crawl queue and the contents of the
catalog database: how many pages are completed, pending, and failed, and
how many groups, subgroups, diagrams, and parts have been stored.

Examples:
  # Plain text summary
  delica-crawler stats

  # Markdown report written to a file
  delica-crawler stats --markdown -o crawl-report.md`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().BoolP("markdown", "m", false, "Output a Markdown report instead of plain text")
	cmd.Flags().StringP("output", "o", "", "Write the report to the specified file (creates directories if needed)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	stats, err := db.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if asMarkdown {
		return report.NewMarkdownWriter(out).Write(stats)
	}
	return report.NewTextWriter(out).Write(stats)
}
