// main is the entry point of the student registration API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (optional .env, then a YAML file + env overrides)
//  2. Initialise the logger
//  3. Open the configured database backend (postgres, mysql or sqlite)
//  4. Build the router and middleware stack
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close the pool, exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-registration-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-registration-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-registration-api/internal/config"
	"github.com/aanand-mishra/student-registration-api/internal/http/router"
	"github.com/aanand-mishra/student-registration-api/internal/storage"
	"github.com/aanand-mishra/student-registration-api/internal/storage/mysql"
	"github.com/aanand-mishra/student-registration-api/internal/storage/postgres"
	"github.com/aanand-mishra/student-registration-api/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad exits if anything is wrong; if it returns, config is valid.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through slog's package-level functions, so the
	// configured logger is also installed as the default.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-registration-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// The rest of the program only sees the storage.Storage interface.
	store, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("driver", cfg.Database.Driver),
		slog.String("connection", cfg.Database.Masked()))

	// ── 4. Router + middleware ────────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router.New(cfg, store, log),

		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks, so it runs in its own goroutine and main
	// waits for a shutdown signal below.
	go func() {
		log.Info("server started",
			slog.String("address", cfg.HTTPServer.Addr),
			slog.String("cors_origin", cfg.CORS.AllowedOrigin))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected, we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	// In-flight requests get 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		log.Error("failed to close storage", slog.String("error", err.Error()))
	}

	log.Info("server stopped gracefully")
}

// openStorage picks the backend named by cfg.Database.Driver.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	// Each constructor returns a concrete pointer; converting it to the
	// interface only after the error check avoids a non-nil interface
	// holding a nil pointer.
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		s, err := postgres.New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMySQL:
		s, err := mysql.New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
