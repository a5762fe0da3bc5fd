package main

import (
	"github.com/spf13/cobra"

	"github.com/vytor/codedrill/internal/logger"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the problem catalog into the local database",
	Long: `Loads the catalog from the problem backend, falling back to the embedded
reference catalog when the backend is unreachable. An already populated
database is left alone unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.catalog.EnsureSeeded(cmd.Context(), seedForce)
		if err != nil {
			return err
		}
		logger.Default().Info("catalog holds %d problems", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "replace the catalog even if problems are already stored")
	rootCmd.AddCommand(seedCmd)
}
