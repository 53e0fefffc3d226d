package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ymori/ideascout/internal/collect"
	"github.com/ymori/ideascout/internal/ideation"
	"github.com/ymori/ideascout/internal/search"
)

func TestPrintUserAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintUserAnalysis(&collect.UserAnalysis{
		Industry:            "不動産",
		BusinessDomain:      "スマートビル",
		KeyThemes:           []string{"省エネ", "テナント体験"},
		PreferredCategories: []string{"proptech"},
	})

	out := buf.String()
	assert.Contains(t, out, "User Analysis")
	assert.Contains(t, out, "不動産")
	assert.Contains(t, out, "省エネ")
	assert.Contains(t, out, "proptech")
}

func TestPrintUserAnalysisNil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintUserAnalysis(nil)
	assert.Empty(t, buf.String())
}

func TestPrintCategoryTrends(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	trends := []collect.CategoryTrend{
		{
			CategoryName: "PropTech",
			Reliability:  0.8,
			Relevance:    0.9,
			MarketSize:   &search.MarketSize{Value: 3.5, Unit: "兆円"},
		},
		{CategoryName: "スマートシティ", Degraded: true},
	}
	p.PrintCategoryTrends(trends)

	out := buf.String()
	assert.Contains(t, out, "Category Trends (2)")
	assert.Contains(t, out, "PropTech")
	assert.Contains(t, out, "[degraded]")
}

func TestPrintCategoryTrendsTruncatesList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	trends := make([]collect.CategoryTrend, 8)
	for i := range trends {
		trends[i] = collect.CategoryTrend{CategoryName: "カテゴリ"}
	}
	p.PrintCategoryTrends(trends)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintIdeas(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIdeas([]ideation.Idea{
		{
			Title:             "スマートビルエネルギー最適化",
			TargetMarket:      "ビル運営会社",
			ProjectedProfit:   7.0,
			InitialInvestment: 140,
			ProfitabilityTier: "medium",
			CompanyAssets:     []string{"丸の内"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Business Ideas (1)")
	assert.Contains(t, out, "medium")
	assert.Contains(t, out, "丸の内")
}

func TestPrintEmptyCollections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCategoryTrends(nil)
	p.PrintIdeas(nil)
	assert.Empty(t, buf.String())
}
