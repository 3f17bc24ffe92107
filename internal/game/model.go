package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	DefaultQuarterDuration = 30 * time.Second
	DefaultPolicyCooldown  = 10 * time.Second

	StartingOilPrice = 80.0
	MinOilPrice      = 30.0
	MaxOilPrice      = 150.0
	OilBaseline      = 80.0

	RealtimeDriftRate = 0.02
	TrendDecay        = 0.7

	GlobalEventChance  = 0.5
	CountryEventChance = 0.6

	MinGameID = 1000
	MaxGameID = 9999

	maxGameIDAttempts = 50
)

var (
	ErrConfig           = errors.New("invalid event catalog")
	ErrGameNotFound     = errors.New("game not found")
	ErrDuplicateCountry = errors.New("country already taken")
	ErrNotHost          = errors.New("only the host can do that")
	ErrWrongCountry     = errors.New("action belongs to another country")
	ErrValidation       = errors.New("invalid request")
	ErrCooldown         = errors.New("action on cooldown")
	ErrNoGameIDs        = errors.New("no free game ids")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotRunning       = errors.New("game is not running")
)

type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("event catalog: %v", e.Err)
	}
	return fmt.Sprintf("event catalog %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

type GameNotFoundError struct {
	GameID string
}

func (e *GameNotFoundError) Error() string { return fmt.Sprintf("game %s not found", e.GameID) }

func (e *GameNotFoundError) Is(target error) bool { return target == ErrGameNotFound }

type DuplicateCountryError struct {
	Country string
}

func (e *DuplicateCountryError) Error() string {
	return fmt.Sprintf("country %s is already taken", e.Country)
}

func (e *DuplicateCountryError) Is(target error) bool { return target == ErrDuplicateCountry }

type NotHostError struct {
	PlayerID string
}

func (e *NotHostError) Error() string { return "only the host can do that" }

func (e *NotHostError) Is(target error) bool { return target == ErrNotHost }

type WrongCountryError struct {
	Action  ActionType
	Country string
}

func (e *WrongCountryError) Error() string {
	return fmt.Sprintf("%s is only available to %s", e.Action, e.Country)
}

func (e *WrongCountryError) Is(target error) bool { return target == ErrWrongCountry }

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CooldownError carries whichever unit the cooldown class counts in.
type CooldownError struct {
	Action   ActionType
	Seconds  int
	Quarters int
}

func (e *CooldownError) Error() string {
	if e.Quarters > 0 {
		return fmt.Sprintf("%s on cooldown for %d more quarter(s)", e.Action, e.Quarters)
	}
	return fmt.Sprintf("policy on cooldown for %d more second(s)", e.Seconds)
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldown }

type indicatorRange struct {
	Min float64
	Max float64
}

var (
	GDPRange           = indicatorRange{Min: -8, Max: 12}
	InflationRange     = indicatorRange{Min: -3, Max: 8}
	UnemploymentRange  = indicatorRange{Min: 1, Max: 25}
	ConfidenceRange    = indicatorRange{Min: 0, Max: 100}
	StockIndexRange    = indicatorRange{Min: 20, Max: 200}
	InterestRateRange  = indicatorRange{Min: -2, Max: 20}
	ReserveRatioRange  = indicatorRange{Min: 0, Max: 30}
	FiscalDeficitRange = indicatorRange{Min: -15, Max: 25}
)

func (r indicatorRange) clamp(v float64) float64 {
	return clamp(v, r.Min, r.Max)
}

func (r indicatorRange) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
