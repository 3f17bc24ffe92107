package game

import (
	"math"
	"sort"
)

const (
	weightGDP                = 98
	weightInflation          = 98
	weightUnemployment       = 74
	weightConfidence         = 74
	weightFinancialStability = 49
	weightFiscalDeficit      = 49
	weightCPIStability       = 49

	maxCountryBonus = 210
)

type idealRange struct {
	lo, hi float64
}

var (
	idealGDP           = idealRange{2.0, 4.0}
	idealInflation     = idealRange{1.5, 2.5}
	idealUnemployment  = idealRange{3.0, 6.0}
	idealConfidence    = idealRange{60, 80}
	idealFiscalDeficit = idealRange{-1.0, 3.0}
)

type ScoreDetails struct {
	GDPGrowth          float64 `json:"gdpGrowth"`
	Inflation          float64 `json:"inflation"`
	Unemployment       float64 `json:"unemployment"`
	Confidence         float64 `json:"confidence"`
	FiscalDeficit      float64 `json:"fiscalDeficit"`
	FinancialStability float64 `json:"financialStability"`
	CPIStability       float64 `json:"cpiStability"`
	CountryBonus       float64 `json:"countryBonus"`
	RelativeBonus      float64 `json:"relativeBonus"`
}

type Score struct {
	Total   float64      `json:"total"`
	Grade   string       `json:"grade"`
	Details ScoreDetails `json:"details"`
}

type ScoreEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	CountryCode string `json:"countryCode"`
	Score
}

// ScoreOf grades one player against the rest of the room. It reads but never
// mutates the economies.
func ScoreOf(p *Player, all []*Player) Score {
	e := p.Economy
	var d ScoreDetails
	d.GDPGrowth = indicatorScore(e.GDPGrowth, idealGDP, weightGDP, e.History.GDPGrowth, gdpStability)
	d.Inflation = indicatorScore(e.Inflation, idealInflation, weightInflation, e.History.Inflation, inflationStability)
	d.Unemployment = indicatorScore(e.Unemployment, idealUnemployment, weightUnemployment, e.History.Unemployment, 0)
	d.Confidence = indicatorScore(e.Confidence, idealConfidence, weightConfidence, e.History.Confidence, 0)
	d.FiscalDeficit = indicatorScore(e.FiscalDeficit, idealFiscalDeficit, weightFiscalDeficit, nil, 0)
	d.FinancialStability = financialStability(e)
	d.CPIStability = weightCPIStability * 0.8
	d.CountryBonus = countryBonus(p, all)
	d.RelativeBonus = relativeBonus(p, all)

	total := d.GDPGrowth + d.Inflation + d.Unemployment + d.Confidence + d.FiscalDeficit +
		d.FinancialStability + d.CPIStability + d.CountryBonus + d.RelativeBonus
	total = round1(total)
	return Score{Total: total, Grade: Grade(total), Details: d}
}

// Scoreboard ranks every player by total score, ties keeping join order.
func Scoreboard(players []*Player) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(players))
	for _, p := range players {
		out = append(out, ScoreEntry{
			PlayerID:    p.ID,
			PlayerName:  p.Name,
			CountryCode: p.CountryCode,
			Score:       ScoreOf(p, players),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func Grade(total float64) string {
	switch {
	case total >= 650:
		return "S"
	case total >= 600:
		return "A"
	case total >= 550:
		return "B"
	case total >= 500:
		return "C"
	case total >= 450:
		return "D"
	}
	return "F"
}

// low-volatility thresholds that earn a stability bonus; zero means none
const (
	gdpStability       = 0.5
	inflationStability = 0.3
)

func indicatorScore(value float64, ideal idealRange, weight float64, history []float64, stableBelow float64) float64 {
	score := weight
	if value < ideal.lo || value > ideal.hi {
		var dev float64
		if value < ideal.lo {
			dev = relativeDeviation(ideal.lo-value, ideal.lo)
		} else {
			dev = relativeDeviation(value-ideal.hi, ideal.hi)
		}
		switch {
		case dev <= 0.2:
			score = weight * 0.8
		case dev <= 0.5:
			score = weight * 0.6
		case dev <= 1.0:
			score = weight * 0.4
		default:
			score = weight * 0.2
		}
	}

	if len(history) >= 4 {
		vol := volatility(history)
		switch {
		case stableBelow > 0 && vol < stableBelow:
			score += 5
		case vol > 1.0:
			score -= 10
		}
	}
	return math.Max(0, score)
}

func relativeDeviation(diff, bound float64) float64 {
	if bound == 0 {
		return diff
	}
	return diff / math.Abs(bound)
}

// volatility is the population standard deviation.
func volatility(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return math.Sqrt(variance / float64(len(xs)))
}

func financialStability(e *CountryEconomy) float64 {
	const w = weightFinancialStability
	var score float64
	if h := e.History.StockIndex; len(h) >= 4 {
		switch vol := volatility(h); {
		case vol < 15:
			score += w * 0.5
		case vol < 25:
			score += w * 0.4
		case vol < 35:
			score += w * 0.3
		default:
			score += w * 0.1
		}
	} else {
		score += w * 0.4
	}

	switch risk := e.BubbleRiskLevel; {
	case risk < 10:
		score += w * 0.3
	case risk < 25:
		score += w * 0.2
	case risk < 50:
		score += w * 0.1
	}

	return score + w*0.15
}

// countryBonus is the signature-goal bonus, capped at maxCountryBonus for
// every country.
func countryBonus(p *Player, all []*Player) float64 {
	return clamp(signatureBonus(p, all), 0, maxCountryBonus)
}

func signatureBonus(p *Player, all []*Player) float64 {
	e := p.Economy
	var others []*CountryEconomy
	for _, o := range all {
		if o.CountryCode != p.CountryCode {
			others = append(others, o.Economy)
		}
	}

	switch p.CountryCode {
	case "USA":
		if len(others) == 0 {
			return 0
		}
		var avg float64
		for _, o := range others {
			avg += o.Inflation
		}
		avg /= float64(len(others))
		return clamp((avg-e.Inflation)*40, 0, maxCountryBonus)
	case "CHN":
		if len(others) == 0 {
			return 0
		}
		best := math.Inf(-1)
		for _, o := range others {
			best = math.Max(best, o.GDPGrowth)
		}
		return clamp((e.GDPGrowth-best)*60, 0, maxCountryBonus)
	case "JPN":
		switch {
		case e.Inflation > 0:
			bonus := float64(maxCountryBonus)
			if h := e.History.Inflation; len(h) >= 4 && allPositive(h[len(h)-4:]) {
				bonus += 40
			}
			return bonus
		case e.Inflation == 0:
			return maxCountryBonus * 0.75
		}
		return 0
	case "TWN":
		switch {
		case e.Confidence > 90:
			return maxCountryBonus
		case e.Confidence >= 85:
			return maxCountryBonus * 0.76
		case e.Confidence >= 80:
			return maxCountryBonus * 0.57
		}
		return 0
	case "BRA":
		return clamp((e.InitialFiscalDeficit-e.FiscalDeficit)*70, 0, maxCountryBonus)
	case "SAU":
		var bonus float64
		switch dep := e.OilDependency * 100; {
		case dep <= 25:
			bonus = maxCountryBonus
		case dep <= 50:
			bonus = maxCountryBonus * 0.86
		case dep <= 75:
			bonus = maxCountryBonus * 0.57
		default:
			bonus = maxCountryBonus * 0.29
		}
		return bonus + float64(e.TransformationQuarters)*4
	}
	return 0
}

func allPositive(xs []float64) bool {
	for _, x := range xs {
		if x <= 0 {
			return false
		}
	}
	return true
}

func relativeBonus(p *Player, all []*Player) float64 {
	metrics := []struct {
		value       func(*CountryEconomy) float64
		lowerBetter bool
	}{
		{func(e *CountryEconomy) float64 { return e.GDPGrowth }, false},
		{func(e *CountryEconomy) float64 { return e.Confidence }, false},
		{func(e *CountryEconomy) float64 { return e.Unemployment }, true},
	}
	var bonus float64
	for _, m := range metrics {
		ranked := append([]*Player(nil), all...)
		sort.SliceStable(ranked, func(i, j int) bool {
			a, b := m.value(ranked[i].Economy), m.value(ranked[j].Economy)
			if m.lowerBetter {
				return a < b
			}
			return a > b
		})
		rank := -1
		for i, o := range ranked {
			if o.ID == p.ID {
				rank = i
				break
			}
		}
		if rank < 0 {
			continue
		}
		if float64(rank) < float64(len(ranked))/2 {
			bonus += 10
		}
		if rank == 0 {
			bonus += 20
		}
	}
	return bonus
}
