package game

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type ActionType string

const (
	ActionInterestRate       ActionType = "interest_rate"
	ActionReserveRatio       ActionType = "reserve_ratio"
	ActionFiscalPolicy       ActionType = "fiscal_policy"
	ActionQuantitativeEasing ActionType = "quantitative_easing"
	ActionCashDistribution   ActionType = "cash_distribution"
	ActionOilControl         ActionType = "oil_control"

	ActionTaiwanBet            ActionType = "taiwan_bet"
	ActionBrazilAnticorruption ActionType = "brazil_anticorruption"
	ActionSaudiTransformation  ActionType = "saudi_transformation"
	ActionUSATradeWar          ActionType = "usa_trade_war"
	ActionChinaMobilization    ActionType = "china_mass_mobilization"
	ActionJapanAgingSolution   ActionType = "japan_aging_solution"
)

const (
	FiscalIncreaseSpending = "increase_spending"
	FiscalDecreaseSpending = "decrease_spending"
	QEEasing               = "easing"
	QETightening           = "tightening"
	OilIncrease            = "increase"
	OilDecrease            = "decrease"

	maxGovSpendingLevel = 3
	minGovSpendingLevel = -2
	maxQELevel          = 3
	minQELevel          = -1
	maxTransformation   = 3

	cashDistributionQuarters   = 4
	cashDistributionConfidence = 60
)

// Action is one player request. Only the field its type reads is used.
type Action struct {
	Type          ActionType `json:"actionType"`
	Value         *float64   `json:"value,omitempty"`
	PolicyType    string     `json:"policyType,omitempty"`
	Direction     string     `json:"direction,omitempty"`
	TargetCountry string     `json:"targetCountry,omitempty"`
}

type CooldownClass int

const (
	GlobalCooldown CooldownClass = iota
	SkillCooldown
)

type policy struct {
	class CooldownClass
	owner string
	// quarters the active-skill counter is set to on success
	quarters int
	apply    func(g *Game, p *Player, a Action) (string, error)
}

var policies = map[ActionType]policy{
	ActionInterestRate:       {class: GlobalCooldown, apply: applyInterestRate},
	ActionReserveRatio:       {class: GlobalCooldown, apply: applyReserveRatio},
	ActionFiscalPolicy:       {class: GlobalCooldown, apply: applyFiscalPolicy},
	ActionQuantitativeEasing: {class: GlobalCooldown, apply: applyQuantitativeEasing},
	ActionCashDistribution:   {class: GlobalCooldown, apply: applyCashDistribution},
	ActionOilControl:         {class: GlobalCooldown, owner: "SAU", apply: applyOilControl},

	ActionTaiwanBet:            {class: SkillCooldown, owner: "TWN", quarters: 4, apply: applyTaiwanBet},
	ActionBrazilAnticorruption: {class: SkillCooldown, owner: "BRA", quarters: 4, apply: applyBrazilAnticorruption},
	ActionSaudiTransformation:  {class: SkillCooldown, owner: "SAU", quarters: 3, apply: applySaudiTransformation},
	ActionUSATradeWar:          {class: SkillCooldown, owner: "USA", quarters: 5, apply: applyUSATradeWar},
	ActionChinaMobilization:    {class: SkillCooldown, owner: "CHN", quarters: 4, apply: applyChinaMobilization},
	ActionJapanAgingSolution:   {class: SkillCooldown, owner: "JPN", quarters: 4, apply: applyJapanAgingSolution},
}

func CooldownClassOf(t ActionType) (CooldownClass, bool) {
	p, ok := policies[t]
	return p.class, ok
}

// Act validates and applies one player action. Failed actions leave every
// economy and cooldown untouched.
func (g *Game) Act(playerID string, a Action, now time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now

	if !g.started {
		return "", ErrNotRunning
	}
	p := g.player(playerID)
	if p == nil {
		return "", ErrPlayerNotFound
	}
	pol, ok := policies[a.Type]
	if !ok {
		return "", invalid("unknown action %q", a.Type)
	}
	if pol.owner != "" && p.CountryCode != pol.owner {
		return "", &WrongCountryError{Action: a.Type, Country: pol.owner}
	}

	e := p.Economy
	switch pol.class {
	case SkillCooldown:
		if e.Cooldowns.ActiveSkill > 0 {
			return "", &CooldownError{Action: a.Type, Quarters: e.Cooldowns.ActiveSkill}
		}
	case GlobalCooldown:
		if now.Before(e.Cooldowns.GlobalPolicy) {
			left := e.Cooldowns.GlobalPolicy.Sub(now).Seconds()
			return "", &CooldownError{Action: a.Type, Seconds: int(math.Ceil(left))}
		}
	}

	msg, err := pol.apply(g, p, a)
	if err != nil {
		return "", err
	}
	switch pol.class {
	case SkillCooldown:
		e.Cooldowns.ActiveSkill = pol.quarters
	case GlobalCooldown:
		e.Cooldowns.GlobalPolicy = now.Add(g.policyCooldown)
	}
	for _, o := range g.players {
		o.Economy.clamp()
	}
	g.addLog(fmt.Sprintf("%s: %s", p.Name, msg))
	return msg, nil
}

func applyInterestRate(_ *Game, p *Player, a Action) (string, error) {
	if a.Value == nil {
		return "", invalid("interest rate value is required")
	}
	v := *a.Value
	if !InterestRateRange.contains(v) {
		return "", invalid("interest rate %.2f outside [%g, %g]", v, InterestRateRange.Min, InterestRateRange.Max)
	}
	e := p.Economy
	delta := v - e.InterestRate
	e.InterestRate = v
	t := &e.Trends
	if delta > 0 {
		t.Inflation -= delta * 0.8
		t.GDP -= delta * 0.6
		t.StockIndex -= delta * 8
		t.Unemployment += delta * 0.4
		return fmt.Sprintf("raised rates %.2f pts to fight inflation at the cost of growth", delta), nil
	}
	t.Inflation -= delta * 0.5
	t.GDP -= delta * 0.8
	t.StockIndex -= delta * 10
	t.Unemployment += delta * 0.3
	return fmt.Sprintf("cut rates %.2f pts to stimulate growth, inflation risk rises", math.Abs(delta)), nil
}

func applyReserveRatio(_ *Game, p *Player, a Action) (string, error) {
	if a.Value == nil {
		return "", invalid("reserve ratio value is required")
	}
	v := *a.Value
	if !ReserveRatioRange.contains(v) {
		return "", invalid("reserve ratio %.2f outside [%g, %g]", v, ReserveRatioRange.Min, ReserveRatioRange.Max)
	}
	e := p.Economy
	delta := v - e.ReserveRatio
	e.ReserveRatio = v
	t := &e.Trends
	if delta > 0 {
		t.Inflation -= delta * 0.3
		t.GDP -= delta * 0.2
		t.StockIndex -= delta * 2
		return fmt.Sprintf("raised reserve requirement %.1f pts, credit tightens", delta), nil
	}
	t.Inflation -= delta * 0.2
	t.GDP -= delta * 0.3
	t.StockIndex -= delta * 3
	return fmt.Sprintf("lowered reserve requirement %.1f pts, liquidity released", math.Abs(delta)), nil
}

func applyFiscalPolicy(_ *Game, p *Player, a Action) (string, error) {
	e := p.Economy
	t := &e.Trends
	switch a.PolicyType {
	case FiscalIncreaseSpending:
		if e.GovSpendingLevel >= maxGovSpendingLevel {
			return "", invalid("government spending is already at its ceiling")
		}
		e.GovSpendingLevel++
		t.GDP += 1.2
		t.Unemployment -= 0.8
		t.Confidence += 3
		e.FiscalDeficit += 1.5
		t.Inflation += 0.4
		return "expanded government spending, deficit widens", nil
	case FiscalDecreaseSpending:
		if e.GovSpendingLevel <= minGovSpendingLevel {
			return "", invalid("government spending cannot be cut further")
		}
		e.GovSpendingLevel--
		t.GDP -= 0.8
		t.Unemployment += 0.6
		t.Confidence -= 2
		e.FiscalDeficit -= 1.0
		return "cut government spending, growth slows", nil
	}
	return "", invalid("unknown fiscal policy %q", a.PolicyType)
}

func applyQuantitativeEasing(_ *Game, p *Player, a Action) (string, error) {
	e := p.Economy
	t := &e.Trends
	switch a.Direction {
	case QEEasing:
		if e.QELevel >= maxQELevel {
			return "", invalid("quantitative easing is already at its limit")
		}
		e.QELevel++
		t.StockIndex += 8
		t.GDP += 0.6
		t.Inflation += 0.8
		t.Confidence += 4
		return "launched quantitative easing, asset prices climb", nil
	case QETightening:
		if e.QELevel <= minQELevel {
			return "", invalid("balance sheet is already tightening")
		}
		e.QELevel--
		t.StockIndex -= 12
		t.GDP -= 0.4
		t.Inflation -= 0.6
		t.Confidence -= 6
		return "started quantitative tightening, asset prices under pressure", nil
	}
	return "", invalid("unknown QE direction %q", a.Direction)
}

func applyCashDistribution(_ *Game, p *Player, a Action) (string, error) {
	e := p.Economy
	if e.CashDistributionCooldown > 0 {
		return "", &CooldownError{Action: a.Type, Quarters: e.CashDistributionCooldown}
	}
	if e.Confidence > cashDistributionConfidence {
		return "", invalid("confidence is too high for a cash handout")
	}
	e.Confidence += 25
	e.FiscalDeficit += 5.0
	e.Trends.GDP += 0.5
	e.Trends.StockIndex += 1.2
	e.Trends.Inflation += 0.4
	e.CashDistributionCooldown = cashDistributionQuarters
	return "emergency cash handout boosts confidence and spending", nil
}

func applyOilControl(g *Game, p *Player, a Action) (string, error) {
	e := p.Economy
	switch a.Direction {
	case OilIncrease:
		g.oilPrice = math.Max(MinOilPrice, g.oilPrice*0.9)
		e.Trends.GDP += 0.8
		e.FiscalDeficit -= 1.0
		g.addLog("Saudi Arabia raises output, oil prices fall")
		return "raised oil output, trading price for market share", nil
	case OilDecrease:
		g.oilPrice = math.Min(MaxOilPrice, g.oilPrice*1.15)
		e.Trends.GDP += 1.5
		e.FiscalDeficit -= 2.0
		g.addLog("Saudi Arabia cuts output, oil prices rise")
		return "cut oil output, pushing prices up", nil
	}
	return "", invalid("unknown oil direction %q", a.Direction)
}

func (g *Game) targetPlayer(self *Player, code string) (*Player, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, invalid("a target country is required")
	}
	if code == self.CountryCode {
		return nil, invalid("cannot target your own country")
	}
	target := g.playerByCountry(code)
	if target == nil {
		return nil, invalid("no player controls %s", code)
	}
	return target, nil
}

func applyTaiwanBet(g *Game, p *Player, a Action) (string, error) {
	e := p.Economy
	if e.BetTarget != "" {
		return "", invalid("a survival bet is already running")
	}
	target, err := g.targetPlayer(p, a.TargetCountry)
	if err != nil {
		return "", err
	}
	e.BetTarget = target.CountryCode
	e.BetQuartersLeft = 3
	return fmt.Sprintf("hitching a ride on %s for the next 3 quarters", target.CountryName), nil
}

func applyBrazilAnticorruption(_ *Game, p *Player, _ Action) (string, error) {
	e := p.Economy
	e.Trends.Confidence += 12
	e.Trends.GDP += 2.0
	e.FiscalDeficit -= 2.0
	e.Trends.Unemployment -= 0.8
	return "anti-corruption drive restores trust and public finances", nil
}

func applySaudiTransformation(_ *Game, p *Player, _ Action) (string, error) {
	e := p.Economy
	if e.TransformationLevel >= maxTransformation {
		return "", invalid("economic transformation is already complete")
	}
	e.TransformationLevel++
	e.OilDependency = saudiDependency(e.TransformationLevel)
	e.Trends.GDP += 1.5
	e.Trends.Confidence += 6
	e.Trends.Unemployment -= 0.5
	return fmt.Sprintf("economic transformation reaches level %d, oil dependency %.0f%%", e.TransformationLevel, e.OilDependency*100), nil
}

func applyUSATradeWar(g *Game, p *Player, a Action) (string, error) {
	target, err := g.targetPlayer(p, a.TargetCountry)
	if err != nil {
		return "", err
	}
	tt := &target.Economy.Trends
	tt.GDP -= 2.5
	tt.Unemployment += 1.5
	tt.Confidence -= 8
	tt.StockIndex -= 15

	t := &p.Economy.Trends
	outcome := "protectionism pays off at home"
	if chance(g.rng, 0.35) {
		t.GDP -= 1.0
		t.Inflation += 0.8
		t.Confidence -= 5
		outcome = "retaliation hurts the US economy too"
	} else {
		t.GDP += 0.5
		t.Confidence += 3
	}
	g.addLog(fmt.Sprintf("The United States launches a trade war on %s", target.Name))
	return fmt.Sprintf("trade war on %s, %s", target.Name, outcome), nil
}

func applyChinaMobilization(_ *Game, p *Player, _ Action) (string, error) {
	t := &p.Economy.Trends
	t.GDP += 3.0
	t.Confidence += 10
	t.StockIndex += 12
	t.Unemployment -= 1.0
	return "mass mobilization delivers a technology breakthrough", nil
}

func applyJapanAgingSolution(_ *Game, p *Player, _ Action) (string, error) {
	t := &p.Economy.Trends
	t.Unemployment -= 1.5
	t.GDP += 1.8
	t.Confidence += 8
	t.Inflation += 0.5
	return "digital retraining brings older workers back into the labour force", nil
}
