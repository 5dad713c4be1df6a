/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the stock movement engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env vars / optional .env file)
  2. Build the structured logger
  3. Initialize SQLite store
  4. Create the commit coordinator
  5. Configure HTTP router
  6. Start server with graceful shutdown

CONFIGURATION:
  APP_ENV      development | staging | production (default: development)
  HTTP_HOST    Listen host (default: 0.0.0.0)
  HTTP_PORT    Listen port (default: 8080)
  SQLITE_PATH  Database path, ":memory:" for in-memory (default: ./data/stock.db)
  LOG_LEVEL    trace | debug | info | warn | error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  SQLITE_PATH=./data/stock.db ./server

  # Run with in-memory database
  SQLITE_PATH=:memory: ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/stock-engine/api"
	"github.com/warp/stock-engine/config"
	"github.com/warp/stock-engine/ledger"
	"github.com/warp/stock-engine/logging"
	"github.com/warp/stock-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg)

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DB.Path).Msg("failed to initialize database")
	}
	defer store.Close()

	// Domain wiring
	coordinator := ledger.NewCoordinator(store, log)
	handler := api.NewHandler(store, coordinator, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", cfg.HTTP.Addr()).
			Str("env", cfg.App.Env).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
