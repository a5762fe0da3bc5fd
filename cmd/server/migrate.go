package main

import (
	"github.com/spf13/cobra"

	"github.com/vytor/codedrill/internal/db"
	"github.com/vytor/codedrill/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Open migrates as a side effect.
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()
		logger.Default().Info("database at %s is up to date", cfg.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
