package game

import "strings"

type Indicators struct {
	GDPGrowth     float64 `json:"gdpGrowth"`
	Inflation     float64 `json:"inflation"`
	Unemployment  float64 `json:"unemployment"`
	Confidence    float64 `json:"confidence"`
	StockIndex    float64 `json:"stockIndex"`
	InterestRate  float64 `json:"interestRate"`
	ReserveRatio  float64 `json:"reserveRatio"`
	FiscalDeficit float64 `json:"fiscalDeficit"`
}

// CountryProfile is the static description of a playable country.
type CountryProfile struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Aliases     []string   `json:"-"`
	Start       Indicators `json:"startingValues"`
	PassiveName string     `json:"passive,omitempty"`
	Skill       ActionType `json:"activeSkill,omitempty"`
}

var countryOrder = []string{"USA", "CHN", "JPN", "EUR", "BRA", "SAU", "TWN"}

var countryProfiles = map[string]CountryProfile{
	"USA": {
		Code:        "USA",
		Name:        "United States",
		Aliases:     []string{"美國"},
		Start:       Indicators{2.8, 2.1, 4.2, 65, 102.5, 2.5, 10.0, 3.2},
		PassiveName: "inflation spillover",
		Skill:       ActionUSATradeWar,
	},
	"CHN": {
		Code:        "CHN",
		Name:        "China",
		Aliases:     []string{"中國"},
		Start:       Indicators{6.2, 1.8, 5.1, 72, 103.8, 3.8, 12.0, 2.8},
		PassiveName: "industrial espionage",
		Skill:       ActionChinaMobilization,
	},
	"JPN": {
		Code:        "JPN",
		Name:        "Japan",
		Aliases:     []string{"日本"},
		Start:       Indicators{1.2, 0.3, 2.8, 58, 98.5, -0.1, 8.0, 7.1},
		PassiveName: "precision manufacturing",
		Skill:       ActionJapanAgingSolution,
	},
	"EUR": {
		Code:    "EUR",
		Name:    "European Union",
		Aliases: []string{"歐盟"},
		Start:   Indicators{1.8, 1.2, 6.8, 62, 101.2, 0.0, 9.5, 2.1},
	},
	"BRA": {
		Code:        "BRA",
		Name:        "Brazil",
		Aliases:     []string{"巴西"},
		Start:       Indicators{2.3, 4.2, 11.8, 45, 97.2, 6.5, 15.0, 6.8},
		PassiveName: "commodity exporter",
		Skill:       ActionBrazilAnticorruption,
	},
	"SAU": {
		Code:        "SAU",
		Name:        "Saudi Arabia",
		Aliases:     []string{"沙烏地阿拉伯"},
		Start:       Indicators{3.2, 2.8, 6.2, 68, 104.5, 2.8, 11.0, -2.1},
		PassiveName: "oil dependency",
		Skill:       ActionSaudiTransformation,
	},
	"TWN": {
		Code:        "TWN",
		Name:        "Taiwan",
		Aliases:     []string{"台灣"},
		Start:       Indicators{2.8, 1.6, 3.8, 72, 102.1, 1.4, 13.0, 1.2},
		PassiveName: "trade dependency",
		Skill:       ActionTaiwanBet,
	},
}

func LookupCountry(code string) (CountryProfile, bool) {
	p, ok := countryProfiles[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

// Countries lists every playable country in a stable order.
func Countries() []CountryProfile {
	out := make([]CountryProfile, 0, len(countryOrder))
	for _, code := range countryOrder {
		out = append(out, countryProfiles[code])
	}
	return out
}

// catalogKeys are the names a country's events may be filed under.
func (p CountryProfile) catalogKeys() []string {
	keys := []string{p.Code, p.Name}
	return append(keys, p.Aliases...)
}
