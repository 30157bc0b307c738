package generator

import (
	"sync"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// Baselines holds the per-symbol open price captured on the first load of a session.
// Values are written once and only read afterwards.
type Baselines struct {
	mu   sync.RWMutex
	open map[string]float64
}

func NewBaselines() *Baselines {
	return &Baselines{open: make(map[string]float64)}
}

// SnapshotIfEmpty records price - change for every quote, but only while the store is empty.
// It reports whether the snapshot was taken.
func (b *Baselines) SnapshotIfEmpty(quotes []models.Quote) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.open) > 0 {
		return false
	}
	for _, q := range quotes {
		b.open[q.Symbol] = q.Price - q.Change
	}
	return true
}

func (b *Baselines) Open(symbol string) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.open[symbol]
	return v, ok
}

func (b *Baselines) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.open)
}
