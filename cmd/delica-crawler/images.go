package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"delica-crawler/internal/crawler"
	"delica-crawler/internal/database"
)

// NewImagesCmd creates the images command.
func NewImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Download exploded-view diagram images",
		Long: `Images downloads the diagram illustrations for every diagram that does
not yet have a local copy. Already-downloaded images are skipped, so the
command can be re-run after an incremental crawl to fill in the gaps.

Downloads use the same adaptive pacing as the crawl.`,
		Args: cobra.NoArgs,
		RunE: runImagesCmd,
	}

	cmd.Flags().String("image-dir", "", "Directory to store images in (default: images under the data directory)")

	return cmd
}

// runImagesCmd executes the images command.
func runImagesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	imageDir, err := cmd.Flags().GetString("image-dir")
	if err != nil {
		return err
	}
	if imageDir != "" {
		cfg.ImageDir = imageDir
	}
	logger := setupLogger(cfg)

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := database.Open(cfg.DBPath(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cr := crawler.New(cfg, db, newFetcher(cfg), crawler.WithLogger(logger))
	return cr.DownloadImages(ctx)
}
