package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"macrosim/internal/archive"
	"macrosim/internal/bot"
	"macrosim/internal/config"
	"macrosim/internal/game"

	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
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

	if cfg.RunOnce {
		if err := simulate(ctx, logger, catalog, results, cfg); err != nil {
			logger.Error("simulation failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.Every)
	defer ticker.Stop()

	logger.Info("worker started", "every", cfg.Every.String(), "quarters", cfg.Quarters, "countries", cfg.Countries)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := simulate(ctx, logger, catalog, results, cfg); err != nil {
				logger.Error("simulation failed", "err", err)
				continue
			}
		}
	}
}

// quarterCounter logs quarter summaries as the engine publishes them.
type quarterCounter struct {
	log      *slog.Logger
	quarters atomic.Int64
}

func (q *quarterCounter) Publish(gameID string, msg game.Message) {
	if msg.Type != game.MsgQuarterAdvanced {
		return
	}
	q.quarters.Add(1)
	if u, ok := msg.Data.(game.QuarterUpdate); ok {
		q.log.Debug("bot quarter", "game_id", gameID, "quarter", u.Quarter, "oil_price", u.OilPrice, "events", len(u.TriggeredEvents))
	}
}

// simulate plays one bot game on a simulated clock so a full match takes
// milliseconds, then archives the final standings.
func simulate(ctx context.Context, logger *slog.Logger, catalog *game.Catalog, results archive.Store, cfg config.WorkerConfig) error {
	now := time.Now().UTC()
	clock := func() time.Time { return now }
	pub := &quarterCounter{log: logger}
	svc := game.NewService(catalog, pub, logger, game.Options{Now: clock})

	ids := make(map[string]string, len(cfg.Countries))
	for _, code := range cfg.Countries {
		ids[code] = "bot-" + uuid.NewString()[:8]
	}
	host := cfg.Countries[0]
	created, err := svc.CreateGame(ids[host], "bot "+host, host)
	if err != nil {
		return err
	}
	gameID := created.GameID
	for _, code := range cfg.Countries[1:] {
		if _, err := svc.JoinGame(gameID, ids[code], "bot "+code, code); err != nil {
			return err
		}
	}
	if err := svc.StartGame(gameID, ids[host]); err != nil {
		return err
	}

	step := game.DefaultPolicyCooldown
	for int(pub.quarters.Load())+1 < cfg.Quarters {
		if err := ctx.Err(); err != nil {
			return err
		}
		state, err := svc.Game(gameID)
		if err != nil {
			return err
		}
		for _, p := range state.Players {
			ready := !now.Before(p.Economy.Cooldowns.GlobalPolicy)
			a, ok := bot.DecideWithRivals(p, state.Players, ready)
			if !ok {
				continue
			}
			if _, err := svc.Act(gameID, p.ID, a); err != nil {
				logger.Debug("bot action rejected", "country", p.CountryCode, "action", a.Type, "err", err)
			}
		}
		now = now.Add(step)
		svc.Tick(now)
	}

	for _, code := range cfg.Countries {
		svc.Disconnect(gameID, ids[code])
	}
	for _, r := range svc.Sweep(now.Add(24 * time.Hour)) {
		if err := results.SaveResult(ctx, r); err != nil {
			return err
		}
		for _, s := range r.Scores {
			logger.Info("bot result", "game_id", r.GameID, "rank", s.Rank, "country", s.CountryCode, "total", s.Total, "grade", s.Grade)
		}
	}
	return nil
}
