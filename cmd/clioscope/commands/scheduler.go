package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmcarbo/clioscope/internal/scheduler"
	"github.com/jmcarbo/clioscope/internal/scheduler/jobs"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

var (
	schedulerCron  string
	runImmediately bool
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the recurring pipeline scheduler",
	Long: `Keeps the scoring pipeline running on a cron schedule. Failed runs
are retried before being recorded as failures.

Example:
  go run ./cmd/clioscope scheduler
  go run ./cmd/clioscope scheduler --cron "0 0 */6 * * *" --now`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&schedulerCron, "cron", "", "cron expression with seconds (default: daily at 06:00)")
	schedulerCmd.Flags().BoolVar(&runImmediately, "now", false, "trigger one run immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	application, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	defer application.close()

	sched := scheduler.New(log)
	job := jobs.NewPipelineJob(application.runner, schedulerCron)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register pipeline job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if runImmediately {
		if err := sched.RunJob(job.Name()); err != nil {
			return fmt.Errorf("trigger initial run: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("Shutdown signal received")

	return nil
}
