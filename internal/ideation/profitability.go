package ideation

import (
	"math"
	"strings"
)

// Monetary figures are in 億円 (hundreds of millions of yen).
const (
	// MinMarketSize is the floor applied to draft market sizes. Ideas
	// below it are not worth pursuing at this company's scale.
	MinMarketSize = 1000

	// DefaultProfitMargin is assumed when the draft carries none.
	DefaultProfitMargin = 10
)

// Profitability tiers.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

// Profitability is the deterministic financial assessment of one idea.
type Profitability struct {
	ProjectedProfit   float64 `json:"projected_profit"`
	InitialInvestment float64 `json:"initial_investment"`
	Tier              string  `json:"tier"`
}

// EvaluateProfitability derives projected annual profit, required
// initial investment, and a coarse tier from the idea's market figures.
//
// A missing SOM defaults to 1% of the market size, a missing margin to
// DefaultProfitMargin. Annual revenue is assumed to be 10% of SOM;
// initial investment twice the annual revenue. The same inputs always
// produce the same result.
func EvaluateProfitability(marketSize, som, profitMargin float64) Profitability {
	if som <= 0 {
		som = marketSize * 0.01
	}
	if profitMargin <= 0 {
		profitMargin = DefaultProfitMargin
	}

	annualRevenue := som * 0.1
	annualProfit := annualRevenue * (profitMargin / 100)

	tier := TierLow
	switch {
	case annualProfit >= 10:
		tier = TierHigh
	case annualProfit >= 5:
		tier = TierMedium
	}

	return Profitability{
		ProjectedProfit:   math.Round(annualProfit*10) / 10,
		InitialInvestment: math.Round(annualRevenue * 2),
		Tier:              tier,
	}
}

// assetKeywords are the asset names recognized in capability scenarios.
var assetKeywords = []string{"丸の内", "みなとみらい", "大手町", "アウトレット", "パークハウス"}

// networkKeywords are the partner-network names recognized in
// capability scenarios.
var networkKeywords = []string{"テナント企業", "三菱グループ", "スタートアップ", "大手企業", "金融機関"}

// ExtractAssets pulls recognized asset names out of a scenario text.
func ExtractAssets(scenario string) []string {
	return extractKeywords(scenario, assetKeywords)
}

// ExtractNetworks pulls recognized network names out of a scenario text.
func ExtractNetworks(scenario string) []string {
	return extractKeywords(scenario, networkKeywords)
}

func extractKeywords(text string, keywords []string) []string {
	var found []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}
