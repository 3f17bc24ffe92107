package game

import (
	"fmt"
	"math"
)

// passiveSkills run once per quarter, after the end-of-quarter update.
var passiveSkills = map[string]func(g *Game, p *Player){
	"USA": usaPassive,
	"CHN": chinaPassive,
	"JPN": japanPassive,
	"TWN": taiwanPassive,
	"BRA": brazilPassive,
	"SAU": saudiPassive,
}

type oilSensitivity struct {
	gdp        float64
	inflation  float64
	confidence float64
	stock      float64
}

var oilSensitivities = map[string]oilSensitivity{
	"CHN": {gdp: -0.5, inflation: 0.3, stock: -2.0},
	"JPN": {gdp: -0.6, inflation: 0.4, confidence: -5},
	"TWN": {gdp: -0.4, inflation: 0.3},
	"BRA": {gdp: 0.2, inflation: 0.5},
	"EUR": {gdp: -0.3, inflation: 0.3},
}

var (
	usaOilRise = oilSensitivity{gdp: 0.3, inflation: 0.4}
	usaOilFall = oilSensitivity{gdp: 0.2, inflation: 0.3}
)

const oilEffectThreshold = 0.05

func (g *Game) runPassives() {
	for _, p := range g.players {
		if fn, ok := passiveSkills[p.CountryCode]; ok {
			fn(g, p)
		}
	}
	g.applyOilEffects()
	g.oilHeadlines()
	for _, p := range g.players {
		p.Economy.clamp()
	}
}

func (g *Game) others(code string) []*Player {
	out := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if p.CountryCode != code {
			out = append(out, p)
		}
	}
	return out
}

func usaPassive(g *Game, p *Player) {
	e := p.Economy
	baseline := countryProfiles["USA"].Start.Inflation
	excess := e.Inflation - baseline
	if excess <= 0 {
		return
	}
	e.Inflation = baseline + excess*0.8
	spillover := excess * 0.2
	others := g.others("USA")
	if len(others) == 0 {
		return
	}
	share := spillover / float64(len(others))
	for _, o := range others {
		o.Economy.Inflation += share
	}
	if spillover > 0.1 {
		g.addLog(fmt.Sprintf("US inflation spills over: %.1f pts exported to the world", spillover))
	}
}

func chinaPassive(g *Game, p *Player) {
	if !chance(g.rng, 0.2) {
		return
	}
	var best *Player
	bestGDP := math.Inf(-1)
	for _, o := range g.others("CHN") {
		if o.Economy.GDPGrowth > bestGDP {
			bestGDP = o.Economy.GDPGrowth
			best = o
		}
	}
	if best == nil || bestGDP <= 0 {
		return
	}
	gain := bestGDP * 0.3
	p.Economy.GDPGrowth += gain
	g.addLog(fmt.Sprintf("China's industrial espionage lifts growth by %.1f pts at %s's expense", gain, best.CountryName))
}

func japanPassive(g *Game, p *Player) {
	e := p.Economy
	if e.Inflation < 0 {
		e.Trends.Confidence -= 0.3
		e.Trends.GDP -= 0.2
	}
	e.GDPGrowth += 0.15
	e.Confidence += 1
	e.StockIndex += 0.1
	if g.quarter%10 == 0 {
		g.addLog("Japanese precision manufacturing keeps growth steady")
	}
}

func taiwanPassive(g *Game, p *Player) {
	e := p.Economy
	if e.BetTarget != "" && e.BetQuartersLeft > 0 {
		resolveTaiwanBet(g, p)
	}

	others := g.others("TWN")
	if len(others) == 0 {
		return
	}
	var gdp, infl float64
	for _, o := range others {
		gdp += o.Economy.GDPGrowth
		infl += o.Economy.Inflation
	}
	gdp /= float64(len(others))
	infl /= float64(len(others))
	base := countryProfiles["TWN"].Start
	e.GDPGrowth += (gdp - base.GDPGrowth) * 0.5 * 0.1
	e.Inflation += (infl - base.Inflation) * 0.5 * 0.1
}

func resolveTaiwanBet(g *Game, p *Player) {
	e := p.Economy
	if target := g.playerByCountry(e.BetTarget); target != nil {
		tgdp := target.Economy.GDPGrowth
		switch {
		case tgdp > 2.0:
			e.Trends.GDP += 1.2
			e.Trends.Confidence += 0.8
			e.Trends.StockIndex += 2.0
			g.addLog(fmt.Sprintf("%s: riding %s's growth pays off", p.Name, target.CountryName))
		case tgdp < 1.0:
			e.Trends.GDP -= 1.0
			e.Trends.Confidence -= 0.6
			e.Trends.StockIndex -= 1.5
			e.Trends.Unemployment += 0.3
			g.addLog(fmt.Sprintf("%s: %s stumbles and drags Taiwan down", p.Name, target.CountryName))
		default:
			e.Trends.GDP += 0.3
			e.Trends.Confidence += 0.2
			g.addLog(fmt.Sprintf("%s: %s muddles along, small gain for Taiwan", p.Name, target.CountryName))
		}
	}
	e.BetQuartersLeft--
	if e.BetQuartersLeft <= 0 {
		e.BetTarget = ""
		e.BetQuartersLeft = 0
		e.Cooldowns.ActiveSkill = 4
		g.addLog(fmt.Sprintf("%s: survival bet ends, skill cooling down", p.Name))
	}
}

func brazilPassive(g *Game, p *Player) {
	if chance(g.rng, 0.6) {
		p.Economy.GDPGrowth += 1.5
		return
	}
	p.Economy.GDPGrowth -= 1.2
}

func saudiDependency(level int) float64 {
	return math.Max(0.25, 1.0-float64(level)*0.25)
}

func saudiPassive(g *Game, p *Player) {
	e := p.Economy
	e.OilDependency = saudiDependency(e.TransformationLevel)
	impact := (g.oilPrice - OilBaseline) / OilBaseline * e.OilDependency
	e.Trends.GDP += impact * 0.5
	e.FiscalDeficit -= impact * 2.0
	e.Confidence += impact * 10
	if e.TransformationLevel > 0 {
		lvl := float64(e.TransformationLevel)
		e.GDPGrowth += lvl * 0.1
		e.Confidence += lvl * 0.5
		e.TransformationQuarters++
	}
}

func (g *Game) oilChangeRate() float64 {
	return (g.oilPrice - OilBaseline) / OilBaseline
}

func (g *Game) applyOilEffects() {
	rate := g.oilChangeRate()
	if math.Abs(rate) < oilEffectThreshold {
		return
	}
	for _, p := range g.players {
		s, ok := oilSensitivities[p.CountryCode]
		if p.CountryCode == "USA" {
			s, ok = usaOilFall, true
			if rate > 0 {
				s = usaOilRise
			}
		}
		if !ok {
			continue
		}
		t := &p.Economy.Trends
		t.GDP += s.gdp * rate
		t.Inflation += s.inflation * rate
		t.Confidence += s.confidence * rate
		t.StockIndex += s.stock * rate
	}
}

func (g *Game) oilHeadlines() {
	switch {
	case g.oilPrice > 120:
		if chance(g.rng, 0.1) {
			for _, p := range g.others("SAU") {
				p.Economy.Trends.Inflation += 0.3
			}
			g.addLog(fmt.Sprintf("Oil at $%.0f: energy costs push inflation up worldwide", g.oilPrice))
		}
	case g.oilPrice < 50:
		if chance(g.rng, 0.1) {
			for _, p := range g.producers() {
				p.Economy.Trends.GDP -= 0.5
				p.Economy.Trends.Confidence -= 5
			}
			g.addLog(fmt.Sprintf("Oil at $%.0f: producer economies under strain", g.oilPrice))
		}
	}
	switch {
	case g.oilPrice > 140:
		if chance(g.rng, 0.05) {
			for _, p := range g.players {
				p.Economy.Trends.Confidence -= 10
			}
			g.addLog("Oil shock: markets fear a global recession")
		}
	case g.oilPrice < 35:
		if chance(g.rng, 0.05) {
			for _, p := range g.producers() {
				p.Economy.Trends.StockIndex -= 5
			}
			g.addLog("Oil price collapse hits producer equity markets")
		}
	}
}

func (g *Game) producers() []*Player {
	var out []*Player
	for _, p := range g.players {
		if p.CountryCode == "SAU" || p.CountryCode == "BRA" {
			out = append(out, p)
		}
	}
	return out
}

func bubbleProbability(stockIndex float64) float64 {
	returnRate := stockIndex - 100
	return clamp((returnRate-10)*0.03, 0, 0.6)
}

func (g *Game) checkBubbles() []Event {
	var events []Event
	for _, p := range g.players {
		prob := bubbleProbability(p.Economy.StockIndex)
		p.Economy.BubbleRiskLevel = prob * 100
		if prob > 0 && chance(g.rng, prob) {
			events = append(events, g.burstBubble(p))
		}
	}
	return events
}

func (g *Game) burstBubble(p *Player) Event {
	e := p.Economy
	before := e.StockIndex - 100
	severity := clamp(before/100, 0, 0.30)
	total := 0.20 + severity

	e.StockIndex *= 1 - total
	gdpHit := -total * 10
	confidenceHit := -total * 150
	unemploymentHit := total * 5
	e.Trends.GDP += gdpHit
	e.Confidence = math.Max(0, e.Confidence+confidenceHit)
	e.Trends.Unemployment += unemploymentHit
	e.clamp()
	after := e.StockIndex - 100

	g.addLog(fmt.Sprintf("%s stock bubble bursts: return %+.1f%% -> %+.1f%%", p.CountryName, before, after))
	ev := Event{
		Type:        EventCountry,
		Country:     p.CountryCode,
		Category:    CategoryBad,
		Name:        p.CountryName + " stock bubble bursts",
		Description: fmt.Sprintf("Market return collapses from %+.1f%% to %+.1f%%, a %.1f%% crash.", before, after, total*100),
		Effects: map[string]float64{
			EffectStockIndex:   -total * 100,
			EffectGDP:          gdpHit,
			EffectConfidence:   confidenceHit,
			EffectUnemployment: unemploymentHit,
		},
		Season:         g.quarter,
		BubbleSeverity: total * 100,
		OriginalReturn: before,
		NewReturn:      after,
	}
	g.events = append(g.events, ev)
	return ev
}
