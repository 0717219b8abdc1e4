package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealflow",
	Short: "Freight sales pipeline tracker",
	Long: `dealflow Unified CLI

Freight deal ingestion and pipeline analytics.
Configuration comes from the environment (and .env when present).

Usage:
  go run ./cmd/dealflow [command]

Examples:
  go run ./cmd/dealflow api
  go run ./cmd/dealflow seed
  go run ./cmd/dealflow import deals.yaml
  go run ./cmd/dealflow scheduler start
  go run ./cmd/dealflow test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
