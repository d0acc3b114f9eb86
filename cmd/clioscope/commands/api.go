package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmcarbo/clioscope/internal/api"
	"github.com/jmcarbo/clioscope/internal/api/handlers"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/logger"
	"github.com/jmcarbo/clioscope/pkg/redis"
)

var apiPort string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Serves the persisted scoring results over HTTP and pushes run
events to websocket subscribers.

Endpoints:
  GET  /health              - Health check
  GET  /api/results         - Latest full result document
  GET  /api/results/{code}  - One country's record
  POST /api/pipeline/run    - Trigger a run
  GET  /ws                  - Run-event stream

Example:
  go run ./cmd/clioscope api
  go run ./cmd/clioscope api --port 8090`,
	RunE: runAPIServer,
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	application, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	defer application.close()

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	responseCache := redis.NewCache(redisClient, "clioscope")

	hub := api.NewHub(log)
	application.runner.OnComplete(hub.BroadcastRun)

	router := api.NewRouter(
		handlers.NewResultsHandler(application.resultsStore, responseCache, log),
		handlers.NewPipelineHandler(application.runner, log),
		hub, log)

	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
