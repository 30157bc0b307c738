// Package alerts tracks per-symbol price alerts and the notifications they raise.
package alerts

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var ErrInvalidAlert = errors.New("invalid price alert")

// Record is an alert together with where it is in its lifecycle.
type Record struct {
	Symbol      string            `json:"symbol"`
	Alert       models.PriceAlert `json:"alert"`
	State       models.AlertState `json:"state"`
	TriggeredAt time.Time         `json:"triggeredAt,omitempty"`
}

// Evaluator fires each armed alert once, the first time its condition holds.
// A triggered alert stays silent until it is set again.
type Evaluator struct {
	now func() time.Time

	mu      sync.Mutex
	records map[string]*Record
}

func NewEvaluator(now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{now: now, records: make(map[string]*Record)}
}

// Set creates or replaces the alert for symbol and arms it.
func (e *Evaluator) Set(symbol string, a models.PriceAlert) (Record, error) {
	if symbol == "" {
		return Record{}, fmt.Errorf("%w: missing symbol", ErrInvalidAlert)
	}
	if a.Condition != models.Above && a.Condition != models.Below {
		return Record{}, fmt.Errorf("%w: condition %q", ErrInvalidAlert, a.Condition)
	}
	if a.TargetPrice <= 0 {
		return Record{}, fmt.Errorf("%w: target price %v", ErrInvalidAlert, a.TargetPrice)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	r := &Record{Symbol: symbol, Alert: a, State: models.AlertArmed}
	e.records[symbol] = r
	return *r, nil
}

// Remove clears the alert for symbol. The returned record carries the cleared state.
func (e *Evaluator) Remove(symbol string) (Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[symbol]
	if !ok {
		return Record{}, false
	}
	delete(e.records, symbol)
	r.State = models.AlertCleared
	return *r, true
}

func (e *Evaluator) Get(symbol string) (Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[symbol]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// List returns every alert ordered by symbol.
func (e *Evaluator) List() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Evaluate checks armed alerts against quotes and returns one notification per newly
// satisfied alert.
func (e *Evaluator) Evaluate(quotes []models.Quote) []models.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.records) == 0 {
		return nil
	}

	var out []models.Notification
	for _, q := range quotes {
		r, ok := e.records[q.Symbol]
		if !ok || r.State != models.AlertArmed || !r.Alert.Satisfied(q.Price) {
			continue
		}

		now := e.now()
		r.State = models.AlertTriggered
		r.TriggeredAt = now
		out = append(out, models.Notification{
			ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			Symbol:    q.Symbol,
			Message:   message(q, r.Alert),
			CreatedAt: now,
		})
	}
	return out
}

func message(q models.Quote, a models.PriceAlert) string {
	verb := "rose above"
	if a.Condition == models.Below {
		verb = "fell below"
	}
	name := q.Name
	if name == "" {
		name = q.Symbol
	}
	return fmt.Sprintf("Price alert: %s (%s) %s $%.2f. Current price: $%.2f",
		name, q.Symbol, verb, a.TargetPrice, q.Price)
}
