// Package main provides the entry point for the delica-crawler CLI.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"delica-crawler/internal/config"
	"delica-crawler/internal/fetcher"
	"delica-crawler/internal/log"
)

// NewRootCmd creates the root command for delica-crawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delica-crawler",
		Short: "Parts catalog crawler for the Mitsubishi Delica Space Gear",
		Long: `delica-crawler crawls the online Delica Space Gear parts catalog and
stores groups, subgroups, exploded-view diagrams, and part rows in a local
SQLite database for offline browsing.

The crawl is resumable: interrupt it at any time and run crawl again to
pick up where it left off. Fetch pacing adapts to the source, slowing
down when throttled and speeding back up when requests succeed.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .delica-crawler.yaml in current or config directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory holding the catalog database (default: XDG data directory)")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewRetryCmd())
	cmd.AddCommand(NewRepairCmd())
	cmd.AddCommand(NewImagesCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig creates a Config from persistent flags and the optional
// YAML config file. Precedence: defaults, then file, then flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPathFlag

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently run on defaults when no file exists.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPathFlag)
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// setupLogger creates the structured logger used by all commands.
// Overly long attribute values (page bodies, long URLs) are truncated so
// log lines stay readable.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)
	return logger
}

// newFetcher builds the rate-limited fetcher from configuration.
func newFetcher(cfg *config.Config) *fetcher.Fetcher {
	client := &http.Client{Timeout: cfg.Timeout}
	return fetcher.New(client,
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithFrameNo(cfg.FrameNo),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithInitialDelay(cfg.InitialDelay),
		fetcher.WithMinDelay(cfg.MinDelay),
		fetcher.WithMaxDelay(cfg.MaxDelay),
		fetcher.WithBackoffMultiplier(cfg.BackoffMultiplier),
	)
}
