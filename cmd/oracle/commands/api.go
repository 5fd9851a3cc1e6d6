package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oraclewow/oracle-backend/internal/api"
	"github.com/oraclewow/oracle-backend/internal/api/handlers"
	"github.com/oraclewow/oracle-backend/internal/backtest"
	"github.com/oraclewow/oracle-backend/internal/store"
	"github.com/oraclewow/oracle-backend/pkg/httputil"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server for the dashboard.

Endpoints:
  GET  /health                 - Health check
  GET  /api/screening          - Run the screening pipeline
  GET  /api/screening/cache    - Quote cache stats
  POST /api/backtest/run       - Run a backtest (blocks until done)
  GET  /api/backtest/watch     - Run a backtest over a websocket
  GET  /api/backtest/history   - Recent backtest runs

Example:
  go run ./cmd/oracle api
  go run ./cmd/oracle api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Oracle API Server ===")

	// 1. Wire the screening pipeline
	deps, err := initScreening()
	if err != nil {
		return fmt.Errorf("init screening: %w", err)
	}
	defer deps.redis.Close()

	if apiPort != "" {
		deps.cfg.Port = apiPort
	}

	// 2. Shared state store
	st := store.NewMemory()

	// 3. Handlers
	screeningHandler := handlers.NewScreeningHandler(deps.aggregator, deps.cache, st, deps.cfg.Screening, deps.log)

	newJob := func() *backtest.Client {
		return backtest.New(deps.cfg.Backtest, httputil.New(deps.log), deps.log)
	}
	backtestHandler := handlers.NewBacktestHandler(newJob, st, deps.log)

	// 4. Router and server
	router := api.NewRouter(screeningHandler, backtestHandler, deps.log)
	server := api.New(deps.cfg, deps.log, router)

	// 5. Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ API server listening on :%s\n", deps.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// 6. Wait for interrupt or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	// 7. Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	fmt.Println("\n👋 Server stopped")
	return nil
}
