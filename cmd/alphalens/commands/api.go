package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/alphalens/internal/api"
	"github.com/wonny/alphalens/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET    /health                    - Health check
  GET    /api/tearsheet/{ticker}    - Tear sheet (?from=&to=&format=json|text&tail=)
  GET    /api/config                - Analysis config, hash and warnings
  GET    /api/cache/stats           - Price cache counters
  DELETE /api/cache/{ticker}        - Drop cached prices of a ticker

Example:
  go run ./cmd/alphalens api
  go run ./cmd/alphalens api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	// Override port if flag is set
	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	tearSheetHandler := handlers.NewTearSheetHandler(d.runner, d.cache, d.log)
	router := api.NewRouter(tearSheetHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed start
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
