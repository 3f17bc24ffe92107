package game

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestInterestRateHike(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA")
	if _, err := g.Act("p-USA", Action{Type: ActionInterestRate, Value: ptr(5.5)}, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := econ(t, g, "USA")
	if e.InterestRate != 5.5 {
		t.Fatalf("rate got %v", e.InterestRate)
	}
	want := Trends{Inflation: -2.4, GDP: -1.8, StockIndex: -24, Unemployment: 1.2}
	got := e.Trends
	if !approx(got.Inflation, want.Inflation) || !approx(got.GDP, want.GDP) ||
		!approx(got.StockIndex, want.StockIndex) || !approx(got.Unemployment, want.Unemployment) {
		t.Fatalf("trends got %+v want %+v", got, want)
	}
	if !e.Cooldowns.GlobalPolicy.Equal(t0.Add(DefaultPolicyCooldown)) {
		t.Fatalf("cooldown got %v", e.Cooldowns.GlobalPolicy)
	}
}

func TestInterestRateCut(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "BRA")
	if _, err := g.Act("p-BRA", Action{Type: ActionInterestRate, Value: ptr(4.5)}, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := econ(t, g, "BRA")
	if !approx(e.Trends.Inflation, 1.0) || !approx(e.Trends.GDP, 1.6) || !approx(e.Trends.StockIndex, 20) || !approx(e.Trends.Unemployment, -0.6) {
		t.Fatalf("cut trends got %+v", e.Trends)
	}
}

func TestOutOfRangeInputsLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{name: "rate too high", action: Action{Type: ActionInterestRate, Value: ptr(25)}},
		{name: "rate too low", action: Action{Type: ActionInterestRate, Value: ptr(-2.5)}},
		{name: "reserve negative", action: Action{Type: ActionReserveRatio, Value: ptr(-1)}},
		{name: "reserve too high", action: Action{Type: ActionReserveRatio, Value: ptr(31)}},
		{name: "missing value", action: Action{Type: ActionInterestRate}},
		{name: "bad fiscal type", action: Action{Type: ActionFiscalPolicy, PolicyType: "print_money"}},
		{name: "bad qe direction", action: Action{Type: ActionQuantitativeEasing, Direction: "sideways"}},
		{name: "unknown action", action: Action{Type: "coup"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t, fixed(0.5), "USA")
			before := econ(t, g, "USA").Clone()
			_, err := g.Act("p-USA", tc.action, t0)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if after := econ(t, g, "USA").Clone(); !reflect.DeepEqual(before, after) {
				t.Fatalf("state changed\nbefore %+v\nafter  %+v", before, after)
			}
		})
	}
}

func TestGlobalCooldown(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA")
	if _, err := g.Act("p-USA", Action{Type: ActionFiscalPolicy, PolicyType: FiscalIncreaseSpending}, t0); err != nil {
		t.Fatalf("first action: %v", err)
	}

	_, err := g.Act("p-USA", Action{Type: ActionQuantitativeEasing, Direction: QEEasing}, t0.Add(5500*time.Millisecond))
	var cd *CooldownError
	if !errors.As(err, &cd) || cd.Seconds != 5 {
		t.Fatalf("expected 5s cooldown, got %v", err)
	}

	if _, err := g.Act("p-USA", Action{Type: ActionQuantitativeEasing, Direction: QEEasing}, t0.Add(DefaultPolicyCooldown)); err != nil {
		t.Fatalf("action after cooldown: %v", err)
	}
}

func TestActiveSkillCooldownCountsQuarters(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "CHN")
	if _, err := g.Act("p-CHN", Action{Type: ActionChinaMobilization}, t0); err != nil {
		t.Fatalf("first activation: %v", err)
	}
	e := econ(t, g, "CHN")
	if e.Cooldowns.ActiveSkill != 4 || !approx(e.Trends.GDP, 3.0) {
		t.Fatalf("unexpected state after activation: %+v", e.Trends)
	}
	if !e.Cooldowns.GlobalPolicy.IsZero() {
		t.Fatalf("active skills must not touch the global cooldown")
	}

	for q := 0; q < 3; q++ {
		g.AdvanceQuarter(t0.Add(time.Duration(q+1) * time.Minute))
	}
	_, err := g.Act("p-CHN", Action{Type: ActionChinaMobilization}, t0.Add(4*time.Minute))
	var cd *CooldownError
	if !errors.As(err, &cd) || cd.Quarters != 1 {
		t.Fatalf("expected 1 quarter left, got %v", err)
	}

	g.AdvanceQuarter(t0.Add(5 * time.Minute))
	if _, err := g.Act("p-CHN", Action{Type: ActionChinaMobilization}, t0.Add(6*time.Minute)); err != nil {
		t.Fatalf("activation after cooldown: %v", err)
	}
}

func TestCountryGating(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA", "SAU")
	tests := []Action{
		{Type: ActionOilControl, Direction: OilIncrease},
		{Type: ActionSaudiTransformation},
		{Type: ActionJapanAgingSolution},
		{Type: ActionTaiwanBet, TargetCountry: "SAU"},
	}
	for _, a := range tests {
		if _, err := g.Act("p-USA", a, t0); !errors.Is(err, ErrWrongCountry) {
			t.Fatalf("%s: expected wrong country, got %v", a.Type, err)
		}
	}
}

func TestCashDistribution(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA")
	e := econ(t, g, "USA")

	e.Confidence = 70
	before := e.Clone()
	if _, err := g.Act("p-USA", Action{Type: ActionCashDistribution}, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected refusal at confidence 70, got %v", err)
	}
	if !reflect.DeepEqual(before, e.Clone()) {
		t.Fatalf("failed handout mutated state")
	}

	e.Confidence = 40
	if _, err := g.Act("p-USA", Action{Type: ActionCashDistribution}, t0); err != nil {
		t.Fatalf("handout at confidence 40: %v", err)
	}
	if e.Confidence != 65 || e.CashDistributionCooldown != 4 {
		t.Fatalf("got confidence %v cooldown %d", e.Confidence, e.CashDistributionCooldown)
	}
	if !approx(e.FiscalDeficit, 8.2) {
		t.Fatalf("deficit got %v", e.FiscalDeficit)
	}

	e.Confidence = 40
	_, err := g.Act("p-USA", Action{Type: ActionCashDistribution}, t0.Add(time.Minute))
	var cd *CooldownError
	if !errors.As(err, &cd) || cd.Quarters != 4 {
		t.Fatalf("expected own 4 quarter cooldown, got %v", err)
	}
}

func TestCashDistributionClampsConfidence(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "BRA")
	e := econ(t, g, "BRA")
	e.Confidence = 60
	if _, err := g.Act("p-BRA", Action{Type: ActionCashDistribution}, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Confidence != 85 {
		t.Fatalf("confidence got %v", e.Confidence)
	}
}

func TestFiscalAndQELimits(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "EUR")
	now := t0
	step := func(a Action) error {
		_, err := g.Act("p-EUR", a, now)
		now = now.Add(DefaultPolicyCooldown)
		return err
	}
	for i := 0; i < 3; i++ {
		if err := step(Action{Type: ActionFiscalPolicy, PolicyType: FiscalIncreaseSpending}); err != nil {
			t.Fatalf("increase %d: %v", i, err)
		}
	}
	if err := step(Action{Type: ActionFiscalPolicy, PolicyType: FiscalIncreaseSpending}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected spending ceiling, got %v", err)
	}
	if err := step(Action{Type: ActionQuantitativeEasing, Direction: QETightening}); err != nil {
		t.Fatalf("tightening: %v", err)
	}
	if err := step(Action{Type: ActionQuantitativeEasing, Direction: QETightening}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected tightening floor, got %v", err)
	}
	if e := econ(t, g, "EUR"); e.GovSpendingLevel != 3 || e.QELevel != -1 {
		t.Fatalf("levels got %d/%d", e.GovSpendingLevel, e.QELevel)
	}
}

func TestOilControl(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "SAU", "JPN")
	if _, err := g.Act("p-SAU", Action{Type: ActionOilControl, Direction: OilDecrease}, t0); err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if !approx(g.oilPrice, 92) {
		t.Fatalf("oil got %v", g.oilPrice)
	}
	g.oilPrice = 32
	if _, err := g.Act("p-SAU", Action{Type: ActionOilControl, Direction: OilIncrease}, t0.Add(DefaultPolicyCooldown)); err != nil {
		t.Fatalf("increase: %v", err)
	}
	if g.oilPrice != MinOilPrice {
		t.Fatalf("oil should floor at %v, got %v", MinOilPrice, g.oilPrice)
	}
}

func TestUSATradeWar(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "USA", "CHN")
	if _, err := g.Act("p-USA", Action{Type: ActionUSATradeWar}, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing target should fail, got %v", err)
	}
	if _, err := g.Act("p-USA", Action{Type: ActionUSATradeWar, TargetCountry: "USA"}, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("self target should fail, got %v", err)
	}
	if _, err := g.Act("p-USA", Action{Type: ActionUSATradeWar, TargetCountry: "JPN"}, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("absent target should fail, got %v", err)
	}
	if _, err := g.Act("p-USA", Action{Type: ActionUSATradeWar, TargetCountry: "chn"}, t0); err != nil {
		t.Fatalf("trade war: %v", err)
	}
	chn, usa := econ(t, g, "CHN"), econ(t, g, "USA")
	if chn.Trends.GDP != -2.5 || chn.Trends.StockIndex != -15 {
		t.Fatalf("target trends got %+v", chn.Trends)
	}
	// 0.5 is above the 35% retaliation chance
	if usa.Trends.GDP != 0.5 || usa.Trends.Confidence != 3 || usa.Cooldowns.ActiveSkill != 5 {
		t.Fatalf("usa got %+v cooldown %d", usa.Trends, usa.Cooldowns.ActiveSkill)
	}
}

func TestSaudiTransformationCap(t *testing.T) {
	g := newTestGame(t, fixed(0.5), "SAU")
	e := econ(t, g, "SAU")
	for lvl := 1; lvl <= 3; lvl++ {
		e.Cooldowns.ActiveSkill = 0
		if _, err := g.Act("p-SAU", Action{Type: ActionSaudiTransformation}, t0); err != nil {
			t.Fatalf("level %d: %v", lvl, err)
		}
	}
	if e.TransformationLevel != 3 || e.OilDependency != 0.25 || e.Cooldowns.ActiveSkill != 3 {
		t.Fatalf("got level %d dependency %v cooldown %d", e.TransformationLevel, e.OilDependency, e.Cooldowns.ActiveSkill)
	}
	e.Cooldowns.ActiveSkill = 0
	if _, err := g.Act("p-SAU", Action{Type: ActionSaudiTransformation}, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected cap, got %v", err)
	}
}

func TestActRequiresRunningGameAndMember(t *testing.T) {
	host, _ := NewPlayer("h", "host", "USA")
	g := NewGame("1111", host, GameOptions{Random: fixed(0.5)}, t0)
	if _, err := g.Act("h", Action{Type: ActionChinaMobilization}, t0); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected not running, got %v", err)
	}
	_ = g.Start("h", t0)
	if _, err := g.Act("ghost", Action{Type: ActionInterestRate, Value: ptr(1)}, t0); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
}
