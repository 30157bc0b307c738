package models

// Recommendation is the advisory tier derived from a quote's fundamentals.
type Recommendation string

const (
	StrongBuy  Recommendation = "Strong Buy"
	Buy        Recommendation = "Buy"
	Hold       Recommendation = "Hold"
	Sell       Recommendation = "Sell"
	StrongSell Recommendation = "Strong Sell"
)

// Recommendations lists every tier in sort order.
var Recommendations = []Recommendation{StrongBuy, Buy, Hold, Sell, StrongSell}

// Rank orders tiers from 1 (StrongBuy) to 5 (StrongSell). Unknown values sort last.
func (r Recommendation) Rank() int {
	switch r {
	case StrongBuy:
		return 1
	case Buy:
		return 2
	case Hold:
		return 3
	case Sell:
		return 4
	case StrongSell:
		return 5
	}
	return 6
}

func (r Recommendation) Valid() bool { return r.Rank() <= 5 }

// Quote is a symbol's market and fundamental snapshot
type Quote struct {
	Symbol           string         `json:"symbol"`
	Name             string         `json:"name"`
	Sector           string         `json:"sector"`
	Price            float64        `json:"price"`
	Change           float64        `json:"change"`
	ChangePercent    float64        `json:"changePercent"`
	Volume           string         `json:"volume"`               // e.g. "12.34M"
	RSI              float64        `json:"rsi"`
	FiftyTwoWeekLow  float64        `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh float64        `json:"fiftyTwoWeekHigh"`
	PriceToBook      float64        `json:"priceToBook"`
	PE               float64        `json:"priceToEarningsRatio"`
	MarketCap        string         `json:"marketCap"`            // e.g. "1.23T", "45.6B"
	EPS              float64        `json:"eps"`
	DividendYield    float64        `json:"dividendYield"`
	Recommendation   Recommendation `json:"recommendation"`
}

// QuoteUpdate is a partial quote as carried in a stream batch. Nil fields are unchanged.
type QuoteUpdate struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
	Volume        *string  `json:"volume,omitempty"`
	RSI           *float64 `json:"rsi,omitempty"`
}

// Apply merges the present fields of u into q. Updates for other symbols are ignored.
func (q *Quote) Apply(u QuoteUpdate) bool {
	if u.Symbol != q.Symbol {
		return false
	}
	if u.Price != nil {
		q.Price = *u.Price
	}
	if u.Change != nil {
		q.Change = *u.Change
	}
	if u.ChangePercent != nil {
		q.ChangePercent = *u.ChangePercent
	}
	if u.Volume != nil {
		q.Volume = *u.Volume
	}
	if u.RSI != nil {
		q.RSI = *u.RSI
	}
	return true
}

// ConnectionStatus is the stream session state reported to the host.
type ConnectionStatus string

const (
	StatusConnecting   ConnectionStatus = "connecting"
	StatusLive         ConnectionStatus = "live"
	StatusReconnecting ConnectionStatus = "reconnecting"
	StatusDisconnected ConnectionStatus = "disconnected"
)
