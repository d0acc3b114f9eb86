package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "clioscope",
	Short: "Country stability and instability scoring engine",
	Long: `Clioscope acquires socio-economic indicators from public data
providers, fills gaps with forecasts and defaults, and computes per-country
composite stability and instability indices with neighborhood pressure
propagation.

Usage:
  go run ./cmd/clioscope [command]

Examples:
  go run ./cmd/clioscope run
  go run ./cmd/clioscope api
  go run ./cmd/clioscope scheduler`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
