package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserAnalysisValid(t *testing.T) {
	doc := `{
		"industry": "不動産",
		"business_domain": "スマートビル",
		"key_themes": ["エネルギー最適化", "テナント体験"],
		"preferred_categories": ["proptech", "sustainability"]
	}`

	assert.NoError(t, ValidateUserAnalysis(doc))
}

func TestValidateUserAnalysisMissingFields(t *testing.T) {
	doc := `{"business_domain": "スマートビル"}`

	err := ValidateUserAnalysis(doc)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Fields())
	assert.Contains(t, ve.Error(), "industry")
}

func TestValidateUserAnalysisEmptyThemes(t *testing.T) {
	doc := `{"industry": "不動産", "key_themes": []}`

	var ve *ValidationError
	require.ErrorAs(t, ValidateUserAnalysis(doc), &ve)
}

func TestValidateIdeaDraftsValid(t *testing.T) {
	doc := `{
		"ideas": [
			{
				"title": "スマートビルエネルギー最適化",
				"description": "AIによるエネルギー消費最適化",
				"target_market": "オフィスビル運営会社",
				"revenue_model": "SaaS",
				"timeline": "18ヶ月",
				"market_size": 3500,
				"tam": 3500,
				"sam": 700,
				"som": 70,
				"estimated_profit_margin": 12
			}
		]
	}`

	assert.NoError(t, ValidateIdeaDrafts(doc))
}

func TestValidateIdeaDraftsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty ideas array", `{"ideas": []}`},
		{"missing required idea fields", `{"ideas": [{"title": "x"}]}`},
		{"negative market size", `{"ideas": [{"title": "x", "description": "y", "target_market": "z", "revenue_model": "r", "timeline": "t", "market_size": -1}]}`},
		{"margin above 100", `{"ideas": [{"title": "x", "description": "y", "target_market": "z", "revenue_model": "r", "timeline": "t", "estimated_profit_margin": 150}]}`},
		{"no ideas key", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve *ValidationError
			require.ErrorAs(t, ValidateIdeaDrafts(tt.doc), &ve)
			assert.NotEmpty(t, ve.Fields())
		})
	}
}

func TestValidateMalformedJSON(t *testing.T) {
	err := ValidateIdeaDrafts(`{not json`)
	require.Error(t, err)

	var ve *ValidationError
	assert.False(t, errorAsValidation(err, &ve), "malformed JSON should not produce a field-level validation error")
}

func errorAsValidation(err error, target **ValidationError) bool {
	ve, ok := err.(*ValidationError)
	if ok {
		*target = ve
	}
	return ok
}
