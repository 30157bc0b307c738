package models

// TickEvent is a single price move as carried on the market_ticks topic and in Redis.
type TickEvent struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Timestamp     int64   `json:"timestamp"` // unix micro
	SeqID         int64   `json:"seq_id"`    // monotonic counter per symbol
}
