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

	"cloud.google.com/go/firestore"

	"github.com/granaflow/backend/internal/categorize"
	"github.com/granaflow/backend/internal/config"
	"github.com/granaflow/backend/internal/server"
	"github.com/granaflow/backend/internal/service"
	"github.com/granaflow/backend/internal/store"
	"github.com/granaflow/backend/pkg/logging"
)

func main() {
	logging.Setup()
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	ctx := context.Background()

	var st store.Store
	if cfg.UseMemoryStore {
		slog.Info("using in-memory store for local development")
		st = store.NewMemoryStore()
	} else {
		if cfg.GCPProject == "" {
			return errors.New("GOOGLE_CLOUD_PROJECT is required with the firestore store")
		}
		client, err := firestore.NewClient(ctx, cfg.GCPProject)
		if err != nil {
			return fmt.Errorf("creating firestore client: %w", err)
		}
		defer client.Close()
		st = store.NewFirestoreStore(client)
	}

	var oracle categorize.Oracle = categorize.Disabled{}
	if cfg.CategorizerURL != "" {
		oracle = categorize.NewClient(cfg.CategorizerURL)
	}

	categories := service.NewCategoryService(st)
	if err := categories.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	expenses := service.NewExpenseService(st)
	recurring := service.NewRecurringService(st)
	forecasts := service.NewForecastService(st)
	jobs := service.NewForecastJobs(st)
	reconcile := service.NewReconcileService(st)
	imports := service.NewImportService(st, categories, oracle, reconcile)
	splits := service.NewSplitService(st)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.New(
			cfg, expenses, recurring, forecasts, jobs, reconcile, imports, categories, splits,
		).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
