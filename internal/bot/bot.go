// Package bot holds the heuristic players the headless worker and the CLI
// autopilot use.
package bot

import (
	"math"

	"macrosim/internal/game"
)

// Decide picks at most one action for a country. Skills come first since
// they run on their own quarter cooldown; then the most pressing indicator
// gets a global policy.
func Decide(code string, e game.CountryEconomy, globalReady bool) (game.Action, bool) {
	if e.Cooldowns.ActiveSkill == 0 {
		if a, ok := skill(code, e); ok {
			return a, true
		}
	}
	if !globalReady {
		return game.Action{}, false
	}

	switch {
	case e.Inflation > 3.5:
		return rate(e.InterestRate + 0.75), true
	case e.Inflation < 0.5 && e.InterestRate > game.InterestRateRange.Min+0.5:
		return rate(e.InterestRate - 0.5), true
	case e.GDPGrowth < 1.0 && e.GovSpendingLevel < 3:
		return game.Action{Type: game.ActionFiscalPolicy, PolicyType: game.FiscalIncreaseSpending}, true
	case e.FiscalDeficit > 6 && e.GovSpendingLevel > -2:
		return game.Action{Type: game.ActionFiscalPolicy, PolicyType: game.FiscalDecreaseSpending}, true
	case e.Unemployment > 9 && e.QELevel < 3:
		return game.Action{Type: game.ActionQuantitativeEasing, Direction: game.QEEasing}, true
	case e.Confidence < 45 && e.CashDistributionCooldown == 0:
		return game.Action{Type: game.ActionCashDistribution}, true
	}
	return game.Action{}, false
}

func rate(v float64) game.Action {
	v = math.Round(v*4) / 4
	v = math.Max(game.InterestRateRange.Min, math.Min(game.InterestRateRange.Max, v))
	return game.Action{Type: game.ActionInterestRate, Value: &v}
}

func skill(code string, e game.CountryEconomy) (game.Action, bool) {
	switch code {
	case "BRA":
		if e.Confidence < 70 {
			return game.Action{Type: game.ActionBrazilAnticorruption}, true
		}
	case "SAU":
		if e.TransformationLevel < 3 {
			return game.Action{Type: game.ActionSaudiTransformation}, true
		}
	case "JPN":
		if e.Inflation < 1.5 {
			return game.Action{Type: game.ActionJapanAgingSolution}, true
		}
	case "CHN":
		if e.GDPGrowth < 5 {
			return game.Action{Type: game.ActionChinaMobilization}, true
		}
	}
	return game.Action{}, false
}

// Target picks the rival with the highest growth, used by the bet and trade
// war skills.
func Target(self string, players []game.PlayerView) string {
	best, bestGDP := "", math.Inf(-1)
	for _, p := range players {
		if p.CountryCode == self {
			continue
		}
		if p.Economy.GDPGrowth > bestGDP {
			best, bestGDP = p.CountryCode, p.Economy.GDPGrowth
		}
	}
	return best
}

// DecideWithRivals extends Decide with the targeted skills of Taiwan and the
// United States.
func DecideWithRivals(me game.PlayerView, players []game.PlayerView, globalReady bool) (game.Action, bool) {
	e := me.Economy
	if e.Cooldowns.ActiveSkill == 0 && len(players) > 1 {
		switch me.CountryCode {
		case "TWN":
			if e.BetTarget == "" {
				if t := Target(me.CountryCode, players); t != "" {
					return game.Action{Type: game.ActionTaiwanBet, TargetCountry: t}, true
				}
			}
		case "USA":
			if t := Target(me.CountryCode, players); t != "" {
				return game.Action{Type: game.ActionUSATradeWar, TargetCountry: t}, true
			}
		}
	}
	return Decide(me.CountryCode, e, globalReady)
}
