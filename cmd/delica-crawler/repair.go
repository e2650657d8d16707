package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"delica-crawler/internal/database"
	"delica-crawler/internal/pipeline"
	"delica-crawler/internal/repair"
)

// NewRepairCmd creates the repair command.
func NewRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Run post-crawl repair passes over the catalog",
		Long: `Repair fixes artifacts the page-by-page crawl leaves behind:

  sharing      a detail page referenced by several diagram sections gets
               its parts copied to every sharing diagram
  replacement  rows marked "Replaces: X" are merged into the part they
               supersede

Both passes are idempotent; repair can be re-run at any time, including
after an incremental crawl. The sharing pass re-fetches listing pages to
recompute section membership, so it needs network access.`,
		Args: cobra.NoArgs,
		RunE: runRepairCmd,
	}

	cmd.Flags().Bool("skip-sharing", false, "Skip the cross-diagram sharing pass")
	cmd.Flags().Bool("skip-replacement", false, "Skip the replacement-merge pass")

	return cmd
}

// runRepairCmd executes the repair command.
func runRepairCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	skipSharing, err := cmd.Flags().GetBool("skip-sharing")
	if err != nil {
		return err
	}
	skipReplacement, err := cmd.Flags().GetBool("skip-replacement")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := database.Open(cfg.DBPath(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	p := pipeline.New(pipeline.WithLogger(logger), pipeline.WithContinueOnError(true))
	if !skipSharing {
		p.AddStep(&pipeline.SharingStep{Pass: repair.NewSharingPass(db, newFetcher(cfg), logger)})
	}
	if !skipReplacement {
		p.AddStep(&pipeline.ReplacementStep{Pass: repair.NewReplacementPass(db, logger)})
	}
	if p.StepCount() == 0 {
		return fmt.Errorf("all repair passes skipped")
	}

	return p.Execute(ctx)
}
