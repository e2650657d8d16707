package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"delica-crawler/internal/config"
	"delica-crawler/internal/crawler"
	"delica-crawler/internal/database"
	"delica-crawler/internal/pipeline"
	"delica-crawler/internal/repair"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the parts catalog into the local database",
		Long: `Crawl traverses the online catalog starting from the vehicle index page
and stores every group, subgroup, diagram, and part row it finds.

Progress is checkpointed in the database after every page, so an
interrupted crawl resumes from where it stopped. Pages that fail
repeatedly are recorded and skipped; re-queue them later with the retry
command.

Examples:
  # Crawl with defaults (Delica Space Gear PD6W)
  delica-crawler crawl

  # Crawl and run image download plus repair passes afterwards
  delica-crawler crawl --images --repair

  # Crawl a different frame/trim
  delica-crawler crawl --frame pd8w --trim hseue9 --frame-no PD8W-0100000`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().String("frame", "", "Frame name in the catalog URL (default "+config.DefaultFrameName+")")
	cmd.Flags().String("trim", "", "Trim code in the catalog URL (default "+config.DefaultTrimCode+")")
	cmd.Flags().String("frame-no", "", "Frame number sent as the frame_no query parameter (default "+config.DefaultFrameNo+")")
	cmd.Flags().Duration("delay", 0, "Initial fetch delay (default "+config.DefaultInitialDelay.String()+")")
	cmd.Flags().Bool("images", false, "Download diagram images after the crawl completes")
	cmd.Flags().Bool("repair", false, "Run the repair passes after the crawl completes")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return err
	}
	logger := setupLogger(cfg)

	withImages, err := cmd.Flags().GetBool("images")
	if err != nil {
		return err
	}
	withRepair, err := cmd.Flags().GetBool("repair")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := database.Open(cfg.DBPath(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	f := newFetcher(cfg)
	cr := crawler.New(cfg, db, f, crawler.WithLogger(logger))

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(&pipeline.TraversalStep{Crawler: cr})
	if withImages {
		p.AddStep(&pipeline.ImagesStep{Crawler: cr})
	}
	if withRepair {
		p.AddStep(&pipeline.SharingStep{Pass: repair.NewSharingPass(db, f, logger)})
		p.AddStep(&pipeline.ReplacementStep{Pass: repair.NewReplacementPass(db, logger)})
	}

	logger.Info("starting crawl",
		"seed", cfg.VehicleBaseURL(),
		"steps", p.StepNames(),
	)
	return p.Execute(ctx)
}

// applyCrawlFlags overlays crawl-specific flags onto the config.
func applyCrawlFlags(cmd *cobra.Command, cfg *config.Config) error {
	frame, err := cmd.Flags().GetString("frame")
	if err != nil {
		return err
	}
	if frame != "" {
		cfg.FrameName = frame
	}

	trim, err := cmd.Flags().GetString("trim")
	if err != nil {
		return err
	}
	if trim != "" {
		cfg.TrimCode = trim
	}

	frameNo, err := cmd.Flags().GetString("frame-no")
	if err != nil {
		return err
	}
	if frameNo != "" {
		cfg.FrameNo = frameNo
	}

	delay, err := cmd.Flags().GetDuration("delay")
	if err != nil {
		return err
	}
	if delay > 0 {
		cfg.InitialDelay = delay
	}

	return cfg.Validate()
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, allowing
// a clean checkpoint before exit.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()
	return ctx, cancel
}
