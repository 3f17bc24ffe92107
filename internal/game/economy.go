package game

import "time"

type Trends struct {
	GDP          float64 `json:"gdp"`
	Inflation    float64 `json:"inflation"`
	Unemployment float64 `json:"unemployment"`
	Confidence   float64 `json:"confidence"`
	StockIndex   float64 `json:"stockIndex"`
}

// History holds one entry per quarter, index 0 being quarter 1.
type History struct {
	GDPGrowth     []float64 `json:"gdpGrowth"`
	Inflation     []float64 `json:"inflation"`
	Unemployment  []float64 `json:"unemployment"`
	Confidence    []float64 `json:"confidence"`
	StockIndex    []float64 `json:"stockIndex"`
	FiscalDeficit []float64 `json:"fiscalDeficit"`
}

type Cooldowns struct {
	GlobalPolicy time.Time `json:"globalPolicyCooldown"`
	ActiveSkill  int       `json:"activeSkill"`
}

type CountryEconomy struct {
	Indicators

	Trends    Trends    `json:"trends"`
	History   History   `json:"history"`
	Cooldowns Cooldowns `json:"policyCooldowns"`

	GovSpendingLevel         int     `json:"govSpendingLevel"`
	QELevel                  int     `json:"qeLevel"`
	CashDistributionCooldown int     `json:"cashDistributionCooldown"`
	InitialFiscalDeficit     float64 `json:"initialFiscalDeficit"`
	BubbleRiskLevel          float64 `json:"bubbleRiskLevel"`

	TransformationLevel    int     `json:"transformationLevel"`
	TransformationQuarters int     `json:"transformationQuarters"`
	OilDependency          float64 `json:"oilDependency"`
	BetTarget              string  `json:"betTarget,omitempty"`
	BetQuartersLeft        int     `json:"betQuartersLeft"`
}

func NewCountryEconomy(code string) (*CountryEconomy, error) {
	profile, ok := LookupCountry(code)
	if !ok {
		return nil, invalid("unknown country %q", code)
	}
	e := &CountryEconomy{
		Indicators:           profile.Start,
		InitialFiscalDeficit: profile.Start.FiscalDeficit,
		OilDependency:        1.0,
	}
	e.recordHistory()
	return e, nil
}

func (e *CountryEconomy) clamp() {
	e.GDPGrowth = GDPRange.clamp(e.GDPGrowth)
	e.Inflation = InflationRange.clamp(e.Inflation)
	e.Unemployment = UnemploymentRange.clamp(e.Unemployment)
	e.Confidence = ConfidenceRange.clamp(e.Confidence)
	e.StockIndex = StockIndexRange.clamp(e.StockIndex)
	e.InterestRate = InterestRateRange.clamp(e.InterestRate)
	e.ReserveRatio = ReserveRatioRange.clamp(e.ReserveRatio)
	e.FiscalDeficit = FiscalDeficitRange.clamp(e.FiscalDeficit)
}

// Drift moves each trended indicator a fraction of its trend toward the
// quarter's end state. Called once per clock tick.
func (e *CountryEconomy) Drift(rate float64) {
	e.GDPGrowth += e.Trends.GDP * rate
	e.Inflation += e.Trends.Inflation * rate
	e.Unemployment += e.Trends.Unemployment * rate
	e.Confidence += e.Trends.Confidence * rate
	e.StockIndex += e.Trends.StockIndex * rate
	e.clamp()
}

// EndQuarter applies noise plus the full accumulated trend, decays the
// trends and records history.
func (e *CountryEconomy) EndQuarter(rng Random) {
	e.GDPGrowth += uniform(rng, -0.3, 0.3) + e.Trends.GDP
	e.Inflation += uniform(rng, -0.2, 0.2) + e.Trends.Inflation
	e.Unemployment += uniform(rng, -0.3, 0.3) + e.Trends.Unemployment
	e.Confidence += uniform(rng, -2, 2) + e.Trends.Confidence
	e.StockIndex += uniform(rng, -3, 3) + e.Trends.StockIndex
	e.clamp()

	e.DecayTrends()
	e.recordHistory()

	if e.Cooldowns.ActiveSkill > 0 {
		e.Cooldowns.ActiveSkill--
	}
	if e.CashDistributionCooldown > 0 {
		e.CashDistributionCooldown--
	}
}

func (e *CountryEconomy) DecayTrends() {
	e.Trends.GDP *= TrendDecay
	e.Trends.Inflation *= TrendDecay
	e.Trends.Unemployment *= TrendDecay
	e.Trends.Confidence *= TrendDecay
	e.Trends.StockIndex *= TrendDecay
}

func (e *CountryEconomy) recordHistory() {
	e.History.GDPGrowth = append(e.History.GDPGrowth, e.GDPGrowth)
	e.History.Inflation = append(e.History.Inflation, e.Inflation)
	e.History.Unemployment = append(e.History.Unemployment, e.Unemployment)
	e.History.Confidence = append(e.History.Confidence, e.Confidence)
	e.History.StockIndex = append(e.History.StockIndex, e.StockIndex)
	e.History.FiscalDeficit = append(e.History.FiscalDeficit, e.FiscalDeficit)
}

// ApplyEffects applies an event effect map. Unknown keys are ignored.
func (e *CountryEconomy) ApplyEffects(effects map[string]float64) {
	for key, v := range effects {
		switch key {
		case EffectGDP:
			e.Trends.GDP += v
		case EffectConfidence:
			e.Confidence += v
		case EffectInflation:
			e.Trends.Inflation += v
		case EffectUnemployment:
			e.Trends.Unemployment += v
		case EffectDeficit:
			e.FiscalDeficit += v
		case EffectStockIndex, "stockIndex":
			e.Trends.StockIndex += v
		}
	}
	e.clamp()
}

func (e *CountryEconomy) Clone() CountryEconomy {
	out := *e
	out.History = History{
		GDPGrowth:     cloneFloats(e.History.GDPGrowth),
		Inflation:     cloneFloats(e.History.Inflation),
		Unemployment:  cloneFloats(e.History.Unemployment),
		Confidence:    cloneFloats(e.History.Confidence),
		StockIndex:    cloneFloats(e.History.StockIndex),
		FiscalDeficit: cloneFloats(e.History.FiscalDeficit),
	}
	return out
}

func cloneFloats(in []float64) []float64 {
	return append([]float64(nil), in...)
}

// InRange reports whether every clamped indicator is inside its range.
func (e *CountryEconomy) InRange() bool {
	return GDPRange.contains(e.GDPGrowth) &&
		InflationRange.contains(e.Inflation) &&
		UnemploymentRange.contains(e.Unemployment) &&
		ConfidenceRange.contains(e.Confidence) &&
		StockIndexRange.contains(e.StockIndex) &&
		InterestRateRange.contains(e.InterestRate) &&
		ReserveRatioRange.contains(e.ReserveRatio) &&
		FiscalDeficitRange.contains(e.FiscalDeficit)
}
