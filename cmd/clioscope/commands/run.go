package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

var runCountries []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one full scoring pipeline pass",
	Long: `Resolves every tracked indicator for every country, computes the
composite indices with border-pressure propagation, and persists the
results document.

Example:
  go run ./cmd/clioscope run
  go run ./cmd/clioscope run --countries USA,CAN,MEX`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceVar(&runCountries, "countries", nil, "restrict the run to these ISO3 codes")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(runCountries) > 0 {
		cfg.Countries = runCountries
	}

	log := logger.New(cfg)

	application, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	defer application.close()

	summary, err := application.runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("Scored %d/%d countries in %.1fs (%d dropped, %d cached, %d defaulted)\n",
		summary.EntitiesScored, summary.EntitiesTotal, summary.DurationSeconds,
		summary.EntitiesDropped, summary.CachedIndicators, summary.DefaultedValues)

	return nil
}
