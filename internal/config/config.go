package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type APIConfig struct {
	Port            string        `env:"PORT"`
	Addr            string        `env:"MACROSIM_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EventsConfig    string        `env:"MACROSIM_EVENTS_CONFIG" envDefault:"events_config.json"`
	TickEvery       time.Duration `env:"MACROSIM_TICK_EVERY" envDefault:"500ms"`
	QuarterDuration time.Duration `env:"MACROSIM_QUARTER_DURATION" envDefault:"30s"`
	PolicyCooldown  time.Duration `env:"MACROSIM_POLICY_COOLDOWN" envDefault:"10s"`
	IdleTTL         time.Duration `env:"MACROSIM_IDLE_TTL" envDefault:"10m"`
	JanitorEvery    time.Duration `env:"MACROSIM_JANITOR_EVERY" envDefault:"1m"`
	// DatabaseURL is optional; without it results are kept in memory.
	DatabaseURL string `env:"DATABASE_URL"`
}

type WorkerConfig struct {
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	EventsConfig string        `env:"MACROSIM_EVENTS_CONFIG" envDefault:"events_config.json"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	Quarters     int           `env:"MACROSIM_WORKER_QUARTERS" envDefault:"12"`
	Countries    []string      `env:"MACROSIM_WORKER_COUNTRIES" envSeparator:"," envDefault:"USA,CHN,JPN,EUR,BRA,SAU,TWN"`
	RunOnce      bool          `env:"MACROSIM_WORKER_RUN_ONCE" envDefault:"false"`
	Every        time.Duration `env:"MACROSIM_WORKER_EVERY" envDefault:"5m"`
}

type CLIConfig struct {
	APIBaseURL string `env:"MSIM_API_BASE_URL" envDefault:"http://localhost:8080"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	cfg, err := env.ParseAs[APIConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if p := strings.TrimSpace(cfg.Port); p != "" {
		if !strings.HasPrefix(p, ":") {
			p = ":" + p
		}
		cfg.Addr = p
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	for name, d := range map[string]time.Duration{
		"MACROSIM_TICK_EVERY":       cfg.TickEvery,
		"MACROSIM_QUARTER_DURATION": cfg.QuarterDuration,
		"MACROSIM_POLICY_COOLDOWN":  cfg.PolicyCooldown,
		"MACROSIM_IDLE_TTL":         cfg.IdleTTL,
		"MACROSIM_JANITOR_EVERY":    cfg.JanitorEvery,
	} {
		if d <= 0 {
			return cfg, fmt.Errorf("%s must be positive", name)
		}
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg, err := env.ParseAs[WorkerConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.Quarters < 2 {
		return cfg, fmt.Errorf("MACROSIM_WORKER_QUARTERS must be at least 2")
	}
	codes := cfg.Countries[:0]
	for _, c := range cfg.Countries {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			codes = append(codes, c)
		}
	}
	if len(codes) == 0 {
		return cfg, fmt.Errorf("MACROSIM_WORKER_COUNTRIES is empty")
	}
	cfg.Countries = codes
	if cfg.Every <= 0 {
		return cfg, fmt.Errorf("MACROSIM_WORKER_EVERY must be positive")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	cfg, err := env.ParseAs[CLIConfig]()
	if err != nil || strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = "http://localhost:8080"
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg
}

// ParseLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
