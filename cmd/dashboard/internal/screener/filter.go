// Package screener applies structured screening criteria to quotes.
package screener

import (
	"strconv"
	"strings"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// Matches is the conjunction of every criterion that is present.
func Matches(q models.Quote, c models.ScreenerCriteria) bool {
	if len(c.Sectors) > 0 && !contains(c.Sectors, q.Sector) {
		return false
	}
	if !c.RSI.Contains(q.RSI) {
		return false
	}
	if !c.PE.Contains(q.PE) {
		return false
	}
	if !c.MarketCapBn.Contains(ParseMarketCap(q.MarketCap)) {
		return false
	}
	if !c.DividendYield.Contains(q.DividendYield) {
		return false
	}
	if len(c.Recommendation) > 0 && !containsTier(c.Recommendation, q.Recommendation) {
		return false
	}
	return true
}

// Filter keeps the quotes matching c, preserving order. Empty criteria keep everything.
func Filter(quotes []models.Quote, c models.ScreenerCriteria) []models.Quote {
	if c.IsEmpty() {
		return append([]models.Quote(nil), quotes...)
	}
	out := make([]models.Quote, 0, len(quotes))
	for _, q := range quotes {
		if Matches(q, c) {
			out = append(out, q)
		}
	}
	return out
}

// ParseMarketCap converts a formatted market cap to billions.
// "1.5T" is 1500, "45B" is 45, a bare number is taken as units and divided by 1e9.
// Anything unparsable is 0.
func ParseMarketCap(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	scale := 1e-9
	switch s[len(s)-1] {
	case 'T', 't':
		scale, s = 1000, s[:len(s)-1]
	case 'B', 'b':
		scale, s = 1, s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v * scale
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsTier(set []models.Recommendation, v models.Recommendation) bool {
	for _, r := range set {
		if r == v {
			return true
		}
	}
	return false
}
