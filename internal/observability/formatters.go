// Package observability provides formatted output utilities for verbose
// CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/ymori/ideascout/internal/collect"
	"github.com/ymori/ideascout/internal/ideation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintUserAnalysis outputs a human-readable summary of the analyzed
// user input.
func (p *Printer) PrintUserAnalysis(analysis *collect.UserAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Industry: %s\n", analysis.Industry))
	if analysis.BusinessDomain != "" {
		sb.WriteString(fmt.Sprintf("Domain:   %s\n", analysis.BusinessDomain))
	}

	if len(analysis.KeyThemes) > 0 {
		sb.WriteString("\nKey Themes:\n")
		for _, theme := range analysis.KeyThemes {
			sb.WriteString(fmt.Sprintf("  • %s\n", theme))
		}
	}
	if len(analysis.PreferredCategories) > 0 {
		sb.WriteString(fmt.Sprintf("\nPreferred Categories: %s\n", strings.Join(analysis.PreferredCategories, ", ")))
	}

	p.printBox("User Analysis", strings.TrimRight(sb.String(), "\n"))
}

// PrintCategoryTrends outputs a summary of the collected trends.
func (p *Printer) PrintCategoryTrends(trends []collect.CategoryTrend) {
	if len(trends) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(trends), maxItemsToShow)
	for i := 0; i < count; i++ {
		trend := trends[i]
		marker := ""
		if trend.Degraded {
			marker = " [degraded]"
		}
		sb.WriteString(fmt.Sprintf("%s%s\n", trend.CategoryName, marker))
		sb.WriteString(fmt.Sprintf("  reliability %.2f, relevance %.2f\n", trend.Reliability, trend.Relevance))
		if trend.MarketSize != nil {
			sb.WriteString(fmt.Sprintf("  market size %.1f%s\n", trend.MarketSize.Value, trend.MarketSize.Unit))
		}
	}
	if len(trends) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(trends)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("Category Trends (%d)", len(trends)), strings.TrimRight(sb.String(), "\n"))
}

// PrintIdeas outputs a summary of the generated business ideas.
func (p *Printer) PrintIdeas(ideas []ideation.Idea) {
	if len(ideas) == 0 {
		return
	}

	var sb strings.Builder
	for i, idea := range ideas {
		sb.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, idea.Title, idea.ProfitabilityTier))
		sb.WriteString(fmt.Sprintf("   target: %s\n", idea.TargetMarket))
		sb.WriteString(fmt.Sprintf("   profit %.1f / investment %.0f (億円)\n", idea.ProjectedProfit, idea.InitialInvestment))
		if len(idea.CompanyAssets) > 0 {
			sb.WriteString(fmt.Sprintf("   assets: %s\n", strings.Join(idea.CompanyAssets, ", ")))
		}
	}

	p.printBox(fmt.Sprintf("Business Ideas (%d)", len(ideas)), strings.TrimRight(sb.String(), "\n"))
}
