// Package table composes screening, filtering, search and sorting into the displayed rows.
package table

import (
	"sort"
	"strings"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/screener"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

type SortMode string

const (
	SortRecommendation SortMode = "recommendation"
	SortPriceAsc       SortMode = "price_asc"
)

const (
	FilterAll       = "all"
	FilterWatchlist = "watchlist"
)

// View is every input of the pipeline besides the quotes themselves.
type View struct {
	Search    string
	Filter    string // "all", "watchlist" or a recommendation tier
	Sort      SortMode
	Watchlist map[string]bool
	Criteria  *models.ScreenerCriteria
}

// Apply runs screener, manual filter, search and sort, in that order.
// The input slice is not modified.
func Apply(quotes []models.Quote, v View) []models.Quote {
	rows := append([]models.Quote(nil), quotes...)

	if v.Criteria != nil {
		rows = screener.Filter(rows, *v.Criteria)
	}
	rows = filter(rows, func(q models.Quote) bool { return manual(q, v) })

	if needle := strings.ToLower(strings.TrimSpace(v.Search)); needle != "" {
		rows = filter(rows, func(q models.Quote) bool {
			return strings.Contains(strings.ToLower(q.Symbol), needle) ||
				strings.Contains(strings.ToLower(q.Name), needle)
		})
	}

	Sort(rows, v.Sort)
	return rows
}

func manual(q models.Quote, v View) bool {
	switch v.Filter {
	case "", FilterAll:
		return true
	case FilterWatchlist:
		return v.Watchlist[q.Symbol]
	default:
		return string(q.Recommendation) == v.Filter
	}
}

// Sort orders rows in place and is stable for equal keys.
//
// recommendation: tier rank ascending; within StrongBuy and Buy lower RSI first,
// within the other tiers higher RSI first.
func Sort(rows []models.Quote, mode SortMode) {
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Price < rows[j].Price })
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			ra, rb := a.Recommendation.Rank(), b.Recommendation.Rank()
			if ra != rb {
				return ra < rb
			}
			if ra <= 2 {
				return a.RSI < b.RSI
			}
			return a.RSI > b.RSI
		})
	}
}

func filter(rows []models.Quote, keep func(models.Quote) bool) []models.Quote {
	out := rows[:0]
	for _, q := range rows {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// ParseSortMode falls back to the recommendation order for unknown values.
func ParseSortMode(s string) SortMode {
	if SortMode(s) == SortPriceAsc {
		return SortPriceAsc
	}
	return SortRecommendation
}
