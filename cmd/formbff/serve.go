package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/formbff/internal/adapter/driven/github"
	"github.com/ericfisherdev/formbff/internal/adapter/driven/sqlstore"
	httphandler "github.com/ericfisherdev/formbff/internal/adapter/driving/http"
	"github.com/ericfisherdev/formbff/internal/application"
	"github.com/ericfisherdev/formbff/internal/config"
	"github.com/ericfisherdev/formbff/internal/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Open the database, apply migrations, and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_driver", cfg.DBDriver,
		"github_api_url", cfg.GitHubAPIURL,
		"github_timeout", cfg.GitHubTimeout,
		"static_dir", cfg.StaticDir,
	)

	// 2. Open database and apply migrations.
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqlstore.RunMigrations(db); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 3. Wire adapters and services.
	recordStore := sqlstore.NewRecordRepo(db)
	recordSvc := application.NewRecordService(recordStore, logger)
	if err := recordSvc.Init(ctx); err != nil {
		return err
	}

	ghClient, err := githubadapter.NewClient(githubadapter.Options{
		BaseURL:   cfg.GitHubAPIURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.GitHubTimeout,
	})
	if err != nil {
		return err
	}

	m := metrics.New()

	// 4. Create HTTP handler and router.
	apiHandler := httphandler.NewHandler(recordSvc, ghClient, m, logger)
	router := httphandler.NewRouter(apiHandler, httphandler.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	slog.Info("formbff started", "listen_addr", cfg.ListenAddr)

	// 5. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 6. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openDatabase opens the store selected by FORMBFF_DB_DRIVER.
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlstore.DB, error) {
	db, err := sqlstore.Open(ctx, sqlstore.Driver(cfg.DBDriver), cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == config.DriverSQLite {
		slog.Info("database opened", "driver", cfg.DBDriver, "path", cfg.DBPath)
	} else {
		slog.Info("database opened", "driver", cfg.DBDriver)
	}
	return db, nil
}
