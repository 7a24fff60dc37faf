package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cadenza-labs/cadenza/internal/adapters/rest"
	"github.com/cadenza-labs/cadenza/internal/adapters/spotify"
	"github.com/cadenza-labs/cadenza/internal/adapters/sqlite"
	"github.com/cadenza-labs/cadenza/internal/config"
	"github.com/cadenza-labs/cadenza/internal/core/services"
	"github.com/cadenza-labs/cadenza/internal/worker"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Driven adapters: storage first, then the catalog client.
	store, err := sqlite.NewAdapter(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	var catalog *spotify.Client
	if cfg.SpotifyUserToken != "" {
		catalog, err = spotify.NewUserClient(ctx, cfg.SpotifyUserToken, logger)
	} else {
		logger.Warn("no user token configured; user-scoped catalog endpoints will fail")
		catalog, err = spotify.NewClientCredentials(ctx, cfg.SpotifyClientID, cfg.SpotifySecret, logger)
	}
	if err != nil {
		logger.Fatal("failed to initialize catalog client", zap.Error(err))
	}

	pool := worker.NewPool(store, 100, logger)
	pool.Start(cfg.PreviewWorkers)
	defer pool.Stop()

	// Core engine plus the driving HTTP adapter.
	engine := services.NewEngine(catalog, store, store, pool, logger)
	handler := rest.NewHandler(engine, cfg.CacheTTL, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("cadenza api listening", zap.String("addr", cfg.Addr))
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}
}
