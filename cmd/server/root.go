package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vytor/codedrill/internal/config"
	"github.com/vytor/codedrill/internal/logger"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "codedrill",
	Short: "Coding practice server",
	Long: `CodeDrill serves a catalog of practice problems with per-user progress,
bookmarks, drafts, simulated grading and learning statistics.

Running it without a subcommand is the same as "codedrill serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log := logger.New(
			logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
			logger.WithColors(true),
		)
		logger.SetDefault(log)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}
