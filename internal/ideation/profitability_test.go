package ideation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateProfitabilityKnownInputs(t *testing.T) {
	// som=100, margin=10: revenue 10, profit 1.0, investment 20.
	p := EvaluateProfitability(5000, 100, 10)

	assert.InDelta(t, 1.0, p.ProjectedProfit, 1e-9)
	assert.InDelta(t, 20.0, p.InitialInvestment, 1e-9)
	assert.Equal(t, TierLow, p.Tier)
}

func TestEvaluateProfitabilityDefaults(t *testing.T) {
	// Missing SOM falls back to 1% of market size; missing margin to 10%.
	p := EvaluateProfitability(2000, 0, 0)

	// som=20, revenue=2, profit=0.2
	assert.InDelta(t, 0.2, p.ProjectedProfit, 1e-9)
	assert.InDelta(t, 4.0, p.InitialInvestment, 1e-9)
	assert.Equal(t, TierLow, p.Tier)
}

func TestEvaluateProfitabilityTiers(t *testing.T) {
	tests := []struct {
		name   string
		som    float64
		margin float64
		tier   string
	}{
		{"high tier at profit 10", 1000, 10, TierHigh},
		{"medium tier at profit 5", 500, 10, TierMedium},
		{"low tier below 5", 400, 10, TierLow},
		{"high margin lifts tier", 500, 25, TierHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := EvaluateProfitability(10000, tt.som, tt.margin)
			assert.Equal(t, tt.tier, p.Tier)
		})
	}
}

func TestEvaluateProfitabilityDeterministic(t *testing.T) {
	first := EvaluateProfitability(3500, 70, 12)
	second := EvaluateProfitability(3500, 70, 12)

	assert.Equal(t, first, second)
}

func TestEvaluateProfitabilityRounding(t *testing.T) {
	// som=33, margin=7: revenue=3.3, profit=0.231 rounds to 0.2;
	// investment 6.6 rounds to 7.
	p := EvaluateProfitability(5000, 33, 7)

	assert.InDelta(t, 0.2, p.ProjectedProfit, 1e-9)
	assert.InDelta(t, 7.0, p.InitialInvestment, 1e-9)
}

func TestExtractAssets(t *testing.T) {
	scenario := "丸の内エリアのオフィスとアウトレットのテナント企業ネットワークを活用し、三菱グループと連携する。"

	assert.Equal(t, []string{"丸の内", "アウトレット"}, ExtractAssets(scenario))
	assert.Equal(t, []string{"テナント企業", "三菱グループ"}, ExtractNetworks(scenario))
}

func TestExtractAssetsEmptyScenario(t *testing.T) {
	assert.Empty(t, ExtractAssets(""))
	assert.Empty(t, ExtractNetworks("関係のないテキスト"))
}
