package search

import (
	"regexp"
	"strconv"
)

// MarketSize is a market-size estimate extracted from free text.
type MarketSize struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Year  int     `json:"year,omitempty"`
}

type sizePattern struct {
	re   *regexp.Regexp
	unit string
}

var sizePatterns = []sizePattern{
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*兆\s*円`), "兆円"},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*億\s*円`), "億円"},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*百万\s*円`), "百万円"},
	{regexp.MustCompile(`(?i)\$\s*(\d+(?:\.\d+)?)\s*billion`), "billion USD"},
	{regexp.MustCompile(`(?i)\$\s*(\d+(?:\.\d+)?)\s*million`), "million USD"},
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// ExtractMarketSize scans text for a monetary market-size figure
// (Japanese 兆円/億円/百万円 or USD billion/million) and an optional
// year. Returns nil when no figure is found.
func ExtractMarketSize(text string) *MarketSize {
	for _, p := range sizePatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}

		size := &MarketSize{Value: value, Unit: p.unit}
		if year := yearPattern.FindString(text); year != "" {
			size.Year, _ = strconv.Atoi(year)
		}
		return size
	}
	return nil
}
