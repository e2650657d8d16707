package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"delica-crawler/internal/crawler"
	"delica-crawler/internal/database"
)

// NewRetryCmd creates the retry command.
func NewRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Re-queue failed pages and continue the crawl",
		Long: `Retry moves every failed page back to the pending queue and resumes the
crawl. Pages that completed successfully are never re-fetched.

Use this after a crawl finished with failures, typically caused by
transient throttling or network problems.`,
		Args: cobra.NoArgs,
		RunE: runRetryCmd,
	}
	return cmd
}

// runRetryCmd executes the retry command.
func runRetryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := database.Open(cfg.DBPath(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	n, err := db.ResetFailed(ctx)
	if err != nil {
		return fmt.Errorf("failed to re-queue failed pages: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no failed pages to retry")
	} else {
		logger.Info("failed pages re-queued", "count", n)
	}

	cr := crawler.New(cfg, db, newFetcher(cfg), crawler.WithLogger(logger))
	return cr.Run(ctx)
}
