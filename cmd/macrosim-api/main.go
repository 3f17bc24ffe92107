package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macrosim/internal/api"
	"macrosim/internal/archive"
	"macrosim/internal/config"
	"macrosim/internal/game"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
	catalog := game.LoadCatalogOrDefault(cfg.EventsConfig, logger)

	var results archive.Store = archive.NewMemory()
	if cfg.DatabaseURL != "" {
		pg, err := archive.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		results = pg
	}
	defer results.Close()

	hub := api.NewHub(logger)
	gameSvc := game.NewService(catalog, hub, logger, game.Options{
		QuarterDuration: cfg.QuarterDuration,
		PolicyCooldown:  cfg.PolicyCooldown,
		IdleTTL:         cfg.IdleTTL,
	})
	server := api.New(logger, gameSvc, hub, results)
	g, gctx := errgroup.WithContext(ctx)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Sockets are hijacked and outlive Shutdown; their contexts end with ours.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logger.Info("macrosim api listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("game clock started", "tick_every", cfg.TickEvery.String(), "quarter", cfg.QuarterDuration.String())
		return gameSvc.RunClock(gctx, cfg.TickEvery)
	})
	g.Go(func() error {
		return gameSvc.RunJanitor(gctx, cfg.JanitorEvery, results)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("macrosim api stopped")
}
