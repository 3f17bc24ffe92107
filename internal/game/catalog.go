package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	EffectGDP          = "gdp"
	EffectConfidence   = "confidence"
	EffectInflation    = "inflation"
	EffectUnemployment = "unemployment"
	EffectDeficit      = "deficit"
	EffectStockIndex   = "stock_index"

	EventGlobal  = "global"
	EventCountry = "country"

	CategoryGood = "good"
	CategoryBad  = "bad"

	defaultGoodNewsRatio = 0.5
)

type EventTemplate struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Effects       map[string]float64 `json:"effects"`
	GlobalEffects map[string]float64 `json:"globalEffects,omitempty"`
}

type EventPool struct {
	Good []EventTemplate `json:"good"`
	Bad  []EventTemplate `json:"bad"`
}

type CountryEvents struct {
	GoodNewsRatio *float64  `json:"goodNewsRatio,omitempty"`
	Events        EventPool `json:"events"`
}

// Catalog is treated as read-only once loaded; games share one instance.
type Catalog struct {
	GlobalEvents  EventPool                `json:"globalEvents"`
	CountryEvents map[string]CountryEvents `json:"countryEvents"`
}

type Event struct {
	Type          string             `json:"type"`
	Country       string             `json:"country,omitempty"`
	Category      string             `json:"category"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Effects       map[string]float64 `json:"effects"`
	GlobalEffects map[string]float64 `json:"globalEffects,omitempty"`
	Season        int                `json:"season"`

	BubbleSeverity float64 `json:"bubbleSeverity,omitempty"`
	OriginalReturn float64 `json:"originalReturn,omitempty"`
	NewReturn      float64 `json:"newReturn,omitempty"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		GlobalEvents: EventPool{
			Good: []EventTemplate{{
				Name:        "Global recovery",
				Description: "World demand picks up and markets rally.",
				Effects:     map[string]float64{EffectGDP: 1.0, EffectConfidence: 10},
			}},
			Bad: []EventTemplate{{
				Name:        "Trade conflict",
				Description: "Tariff escalation between major economies rattles markets.",
				Effects:     map[string]float64{EffectGDP: -1.0, EffectConfidence: -10},
			}},
		},
		CountryEvents: map[string]CountryEvents{},
	}
}

func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := c.validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if c.CountryEvents == nil {
		c.CountryEvents = map[string]CountryEvents{}
	}
	return &c, nil
}

func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	c, err := ParseCatalog(bytes.NewReader(raw))
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return nil, err
	}
	return c, nil
}

// LoadCatalogOrDefault never fails: a missing or malformed document falls
// back to DefaultCatalog.
func LoadCatalogOrDefault(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := LoadCatalog(path)
	if err != nil {
		logger.Warn("event catalog unavailable, using defaults", "path", path, "err", err)
		return DefaultCatalog()
	}
	logger.Info("event catalog loaded",
		"path", path,
		"global_good", len(c.GlobalEvents.Good),
		"global_bad", len(c.GlobalEvents.Bad),
		"countries", len(c.CountryEvents),
	)
	return c
}

func (c *Catalog) validate() error {
	if err := c.GlobalEvents.validate("globalEvents"); err != nil {
		return err
	}
	for key, ce := range c.CountryEvents {
		if ce.GoodNewsRatio != nil && (*ce.GoodNewsRatio < 0 || *ce.GoodNewsRatio > 1) {
			return fmt.Errorf("countryEvents.%s: goodNewsRatio %.2f outside [0,1]", key, *ce.GoodNewsRatio)
		}
		if err := ce.Events.validate("countryEvents." + key); err != nil {
			return err
		}
	}
	return nil
}

func (p EventPool) validate(where string) error {
	for i, t := range p.Good {
		if t.Name == "" {
			return fmt.Errorf("%s.good[%d]: missing name", where, i)
		}
	}
	for i, t := range p.Bad {
		if t.Name == "" {
			return fmt.Errorf("%s.bad[%d]: missing name", where, i)
		}
	}
	return nil
}

func (c *Catalog) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// PickGlobalEvent returns nil when the chosen pool is empty.
func (c *Catalog) PickGlobalEvent(rng Random, quarter int) *Event {
	category := CategoryBad
	pool := c.GlobalEvents.Bad
	if chance(rng, 0.5) {
		category = CategoryGood
		pool = c.GlobalEvents.Good
	}
	if len(pool) == 0 {
		return nil
	}
	t := pool[pickIndex(rng, len(pool))]
	return &Event{
		Type:        EventGlobal,
		Category:    category,
		Name:        t.Name,
		Description: t.Description,
		Effects:     t.Effects,
		Season:      quarter,
	}
}

// PickCountryEvent returns nil when the country has no catalog entry or the
// chosen pool is empty.
func (c *Catalog) PickCountryEvent(rng Random, country CountryProfile, quarter int) *Event {
	ce, ok := c.countryEntry(country)
	if !ok {
		return nil
	}
	ratio := defaultGoodNewsRatio
	if ce.GoodNewsRatio != nil {
		ratio = *ce.GoodNewsRatio
	}
	category := CategoryBad
	pool := ce.Events.Bad
	if chance(rng, ratio) {
		category = CategoryGood
		pool = ce.Events.Good
	}
	if len(pool) == 0 {
		return nil
	}
	t := pool[pickIndex(rng, len(pool))]
	return &Event{
		Type:          EventCountry,
		Country:       country.Code,
		Category:      category,
		Name:          t.Name,
		Description:   t.Description,
		Effects:       t.Effects,
		GlobalEffects: t.GlobalEffects,
		Season:        quarter,
	}
}

func (c *Catalog) countryEntry(country CountryProfile) (CountryEvents, bool) {
	for _, key := range country.catalogKeys() {
		if ce, ok := c.CountryEvents[key]; ok {
			return ce, true
		}
	}
	return CountryEvents{}, false
}

// CountryEventCounts reports the size of a country's good and bad pools.
func (c *Catalog) CountryEventCounts(country CountryProfile) (good, bad int) {
	ce, ok := c.countryEntry(country)
	if !ok {
		return 0, 0
	}
	return len(ce.Events.Good), len(ce.Events.Bad)
}
