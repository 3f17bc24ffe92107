package game

import (
	"math"
	"testing"
)

func TestNewCountryEconomyStartsWithHistory(t *testing.T) {
	e, err := NewCountryEconomy("BRA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Unemployment != 11.8 || e.InitialFiscalDeficit != 6.8 {
		t.Fatalf("unexpected starting values: %+v", e.Indicators)
	}
	if len(e.History.GDPGrowth) != 1 || e.History.GDPGrowth[0] != 2.3 {
		t.Fatalf("history should hold quarter 1: %+v", e.History.GDPGrowth)
	}
	if _, err := NewCountryEconomy("XXX"); err == nil {
		t.Fatalf("expected unknown country to fail")
	}
}

func TestDriftMovesTowardTrend(t *testing.T) {
	e, _ := NewCountryEconomy("USA")
	e.Trends.GDP = 1.0
	e.Trends.StockIndex = -10
	e.Drift(RealtimeDriftRate)
	if !approx(e.GDPGrowth, 2.82) {
		t.Fatalf("gdp got %v", e.GDPGrowth)
	}
	if !approx(e.StockIndex, 102.3) {
		t.Fatalf("stock got %v", e.StockIndex)
	}
	if e.Trends.GDP != 1.0 {
		t.Fatalf("drift must not consume the trend")
	}
}

func TestEndQuarterAppliesTrendDecaysAndRecords(t *testing.T) {
	e, _ := NewCountryEconomy("USA")
	e.Trends.Inflation = 1.0
	e.Cooldowns.ActiveSkill = 2
	e.CashDistributionCooldown = 1

	e.EndQuarter(fixed(0.5))

	if !approx(e.Inflation, 3.1) {
		t.Fatalf("inflation got %v", e.Inflation)
	}
	if !approx(e.Trends.Inflation, 0.7) {
		t.Fatalf("trend should decay to 0.7, got %v", e.Trends.Inflation)
	}
	if len(e.History.Inflation) != 2 || !approx(e.History.Inflation[1], 3.1) {
		t.Fatalf("history got %v", e.History.Inflation)
	}
	if e.Cooldowns.ActiveSkill != 1 || e.CashDistributionCooldown != 0 {
		t.Fatalf("cooldowns got %d/%d", e.Cooldowns.ActiveSkill, e.CashDistributionCooldown)
	}
	e.EndQuarter(fixed(0.5))
	if e.CashDistributionCooldown != 0 {
		t.Fatalf("cooldown must floor at 0")
	}
}

func TestTrendsConvergeWithoutImpulses(t *testing.T) {
	e, _ := NewCountryEconomy("JPN")
	e.Trends = Trends{GDP: 3, Inflation: -2, Unemployment: 1.5, Confidence: 12, StockIndex: -20}
	prev := trendMagnitude(e.Trends)
	for q := 0; q < 200 && prev > 1e-9; q++ {
		e.EndQuarter(fixed(0.5))
		cur := trendMagnitude(e.Trends)
		if cur >= prev {
			t.Fatalf("quarter %d: trend magnitude %v did not shrink from %v", q, cur, prev)
		}
		prev = cur
	}
	if prev > 1e-9 {
		t.Fatalf("trends did not converge: %v", prev)
	}
}

func TestApplyEffectsMapping(t *testing.T) {
	e, _ := NewCountryEconomy("TWN")
	e.ApplyEffects(map[string]float64{
		EffectGDP:          1.0,
		EffectConfidence:   50,
		EffectInflation:    0.2,
		EffectUnemployment: -0.4,
		EffectDeficit:      2.0,
		EffectStockIndex:   5,
		"unknown":          99,
	})
	if e.Trends.GDP != 1.0 || e.Trends.Inflation != 0.2 || e.Trends.Unemployment != -0.4 || e.Trends.StockIndex != 5 {
		t.Fatalf("trends got %+v", e.Trends)
	}
	if e.Confidence != 100 {
		t.Fatalf("confidence should clamp to 100, got %v", e.Confidence)
	}
	if !approx(e.FiscalDeficit, 3.2) {
		t.Fatalf("deficit got %v", e.FiscalDeficit)
	}
}

func TestCloneDoesNotShareHistory(t *testing.T) {
	e, _ := NewCountryEconomy("CHN")
	c := e.Clone()
	c.History.GDPGrowth[0] = -1
	if e.History.GDPGrowth[0] != 6.2 {
		t.Fatalf("clone shares history backing array")
	}
}

func trendMagnitude(t Trends) float64 {
	return math.Abs(t.GDP) + math.Abs(t.Inflation) + math.Abs(t.Unemployment) +
		math.Abs(t.Confidence) + math.Abs(t.StockIndex)
}
