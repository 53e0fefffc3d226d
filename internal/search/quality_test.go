package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeResults(n int, snippetLen int, withDate bool, sameHost bool) []Result {
	results := make([]Result, n)
	for i := range results {
		host := fmt.Sprintf("site%d.example.com", i)
		if sameHost {
			host = "example.com"
		}
		date := ""
		if withDate {
			date = "2024/03/01"
		}
		results[i] = Result{
			Title:   fmt.Sprintf("result %d", i),
			Link:    fmt.Sprintf("https://%s/page%d", host, i),
			Snippet: strings.Repeat("あ", snippetLen),
			Date:    date,
		}
	}
	return results
}

func TestEvaluateQualityPerfectScore(t *testing.T) {
	q := EvaluateQuality(makeResults(5, 100, true, false))
	assert.InDelta(t, 1.0, q.Score, 1e-9)
	assert.Empty(t, q.Issues)
}

func TestEvaluateQualityDeductions(t *testing.T) {
	tests := []struct {
		name     string
		results  []Result
		expected float64
	}{
		{"too few results", makeResults(2, 100, true, false), 0.7},
		{"short snippets", makeResults(5, 10, true, false), 0.8},
		{"missing dates", makeResults(5, 100, false, false), 0.9},
		{"single source", makeResults(5, 100, true, true), 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := EvaluateQuality(tt.results)
			assert.InDelta(t, tt.expected, q.Score, 1e-9)
			assert.NotEmpty(t, q.Issues)
		})
	}
}

func TestEvaluateQualityFlooredAtZero(t *testing.T) {
	// Two short undated results from one host trip every deduction.
	results := makeResults(2, 5, false, true)
	q := EvaluateQuality(results)
	assert.GreaterOrEqual(t, q.Score, 0.0)
	assert.InDelta(t, 0.2, q.Score, 1e-9)
}

func TestEvaluateQualityEmpty(t *testing.T) {
	q := EvaluateQuality(nil)
	assert.InDelta(t, 0.7, q.Score, 1e-9)
}

func TestExtractSnippetDate(t *testing.T) {
	tests := []struct {
		snippet  string
		expected string
	}{
		{"Mar 3, 2024 ... the market grew", "Mar 3, 2024"},
		{"2024/03/03 - market report", "2024/03/03"},
		{"2024年3月3日 市場レポート", "2024年3月3日"},
		{"no date here at all", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, extractSnippetDate(tt.snippet), "snippet: %s", tt.snippet)
	}
}

func TestExtractMarketSize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected *MarketSize
	}{
		{"cho yen with year", "2025年には市場規模が3.5兆円に達する見込み", &MarketSize{Value: 3.5, Unit: "兆円", Year: 2025}},
		{"oku yen", "国内市場は1200億円規模", &MarketSize{Value: 1200, Unit: "億円"}},
		{"usd billion", "The market is valued at $50 billion", &MarketSize{Value: 50, Unit: "billion USD"}},
		{"usd million case-insensitive", "estimated at $120 Million by 2030", &MarketSize{Value: 120, Unit: "million USD", Year: 2030}},
		{"no figure", "大きな成長が期待される分野", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractMarketSize(tt.text))
		})
	}
}
