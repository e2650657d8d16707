package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"delica-crawler/internal/database"
)

// defaultSearchLimit bounds result output for terminal use.
const defaultSearchLimit = 25

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the crawled catalog by part number or description",
		Long: `Search runs a full-text query against the crawled parts. Queries match
part numbers, PNC codes, and descriptions, and common synonyms are
expanded automatically (e.g. "windshield" also matches "windscreen").

Examples:
  delica-crawler search "front bumper"
  delica-crawler search MB337322
  delica-crawler search windshield --limit 50`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultSearchLimit, "Maximum number of results")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	query := strings.Join(args, " ")
	results, err := db.SearchParts(context.Background(), query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no parts found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PART NUMBER\tDESCRIPTION\tGROUP\tSUBGROUP")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.PartNumber, deref(r.Description), r.GroupName, r.SubgroupName)
	}
	return w.Flush()
}

// deref renders an optional string column for display.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
