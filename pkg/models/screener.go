package models

// Range is an optional numeric bound. A nil side is unconstrained.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether v lies inside the specified bounds (inclusive).
func (r *Range) Contains(v float64) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r *Range) empty() bool { return r == nil || (r.Min == nil && r.Max == nil) }

// ScreenerCriteria is a partially specified filter produced from a natural-language query.
type ScreenerCriteria struct {
	Sectors        []string         `json:"sectors,omitempty"`
	RSI            *Range           `json:"rsi,omitempty"`
	PE             *Range           `json:"priceToEarningsRatio,omitempty"`
	MarketCapBn    *Range           `json:"marketCapInBillions,omitempty"`
	DividendYield  *Range           `json:"dividendYield,omitempty"`
	Recommendation []Recommendation `json:"recommendation,omitempty"`
}

// IsEmpty is true when no field constrains anything.
func (c ScreenerCriteria) IsEmpty() bool {
	return len(c.Sectors) == 0 &&
		c.RSI.empty() &&
		c.PE.empty() &&
		c.MarketCapBn.empty() &&
		c.DividendYield.empty() &&
		len(c.Recommendation) == 0
}
