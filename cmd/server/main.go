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

	"github.com/joho/godotenv"

	"github.com/hongminglow/usermanager-be/internal/auth"
	"github.com/hongminglow/usermanager-be/internal/config"
	"github.com/hongminglow/usermanager-be/internal/logger"
	"github.com/hongminglow/usermanager-be/internal/server"
	"github.com/hongminglow/usermanager-be/internal/storage"
	"github.com/hongminglow/usermanager-be/internal/storage/postgres"
	"github.com/hongminglow/usermanager-be/internal/storage/sqlite"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log, closer := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closer.Close()
	slog.SetDefault(log)
	if envErr != nil {
		log.Info("no .env file found; relying on existing environment")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(cfg, store, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("user manager backend listening", "addr", cfg.HTTPAddress(), "driver", cfg.DatabaseDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("graceful shutdown error", "error", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.IdentityStore, error) {
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	if cfg.DatabaseDriver == config.DriverSQLite {
		store, err := sqlite.NewIdentityStore(ctx, cfg.DatabaseURL, hasher)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return store, nil
	}
	store, err := postgres.NewIdentityStore(ctx, cfg.DatabaseURL, hasher)
	if err != nil {
		return nil, fmt.Errorf("init postgres store: %w", err)
	}
	return store, nil
}
