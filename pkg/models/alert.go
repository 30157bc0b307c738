package models

import "time"

type AlertCondition string

const (
	Above AlertCondition = "above"
	Below AlertCondition = "below"
)

// PriceAlert is a per-symbol target price condition
type PriceAlert struct {
	TargetPrice float64        `json:"targetPrice"`
	Condition   AlertCondition `json:"condition"`
}

// Satisfied reports whether price meets the alert condition (strict comparison).
func (a PriceAlert) Satisfied(price float64) bool {
	switch a.Condition {
	case Above:
		return price > a.TargetPrice
	case Below:
		return price < a.TargetPrice
	}
	return false
}

// AlertState is the lifecycle of an alert record.
type AlertState string

const (
	AlertArmed     AlertState = "armed"
	AlertTriggered AlertState = "triggered"
	AlertCleared   AlertState = "cleared"
)

type Notification struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
