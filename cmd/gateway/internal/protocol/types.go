package protocol

import "bytes"

const (
	ActionSubscribe      = "subscribe"
	ActionUnsubscribe    = "unsubscribe"
	ActionUnsubscribeAll = "unsubscribe_all"
	ActionSymbols        = "symbols"
)

const (
	TypeAck     = "ack"
	TypeError   = "error"
	TypeTick    = "tick"
	TypeSymbols = "symbols"
)

type WSRequest struct {
	Action  string         `json:"action"`
	Payload RequestPayload `json:"payload"`
	ID      string         `json:"id,omitempty"`
}

type RequestPayload struct {
	Symbols []string `json:"symbols"`
}

type WSResponse struct {
	Type    string `json:"type"`             // ack, error, tick, symbols
	ID      string `json:"id,omitempty"`     // matches request ID
	Status  string `json:"status,omitempty"` // success, error
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// IsBatch reports whether a text frame is a quote batch (a JSON array) rather than a command.
// Batches are echoed to their sender.
func IsBatch(payload []byte) bool {
	return bytes.HasPrefix(payload, []byte("["))
}
