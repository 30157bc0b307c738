// Package scorer maps a quote's fundamentals to a recommendation tier.
package scorer

import "github.com/shubham-shewale/stock-dashboard/pkg/models"

// Score sums the independent contributions of RSI, 52-week position,
// valuation ratios, earnings and dividend.
func Score(q models.Quote) int {
	score := 0

	switch {
	case q.RSI < 30:
		score += 40
	case q.RSI < 40:
		score += 20
	case q.RSI > 70:
		score -= 30
	case q.RSI > 60:
		score -= 15
	}

	// a flat 52-week range has no position
	if span := q.FiftyTwoWeekHigh - q.FiftyTwoWeekLow; span != 0 {
		p := (q.Price - q.FiftyTwoWeekLow) / span
		switch {
		case p < 0.10:
			score += 25
		case p < 0.25:
			score += 10
		case p > 0.90:
			score -= 20
		}
	}

	switch {
	case q.PriceToBook > 0 && q.PriceToBook < 1.5:
		score += 15
	case q.PriceToBook > 5:
		score -= 10
	}

	switch {
	case q.PE > 0 && q.PE < 15:
		score += 10
	case q.PE > 35:
		score -= 15
	}

	if q.EPS > 0 {
		score += 10
	}
	if q.DividendYield > 2 {
		score += 5
	}

	return score
}

// Tier maps a score to its band. StrongBuy is checked before Buy and StrongSell before Sell.
func Tier(score int) models.Recommendation {
	switch {
	case score >= 60:
		return models.StrongBuy
	case score >= 30:
		return models.Buy
	case score <= -55:
		return models.StrongSell
	case score <= -30:
		return models.Sell
	}
	return models.Hold
}

func Recommend(q models.Quote) models.Recommendation {
	return Tier(Score(q))
}
