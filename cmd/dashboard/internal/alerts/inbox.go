package alerts

import (
	"sync"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// Inbox keeps the most recent notifications, newest first.
type Inbox struct {
	max int

	mu    sync.Mutex
	items []models.Notification
}

func NewInbox(max int) *Inbox {
	if max <= 0 {
		max = 20
	}
	return &Inbox{max: max}
}

// Push prepends notifications, dropping the oldest beyond capacity.
func (in *Inbox) Push(ns ...models.Notification) {
	if len(ns) == 0 {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()

	items := make([]models.Notification, 0, len(ns)+len(in.items))
	for i := len(ns) - 1; i >= 0; i-- {
		items = append(items, ns[i])
	}
	items = append(items, in.items...)
	if len(items) > in.max {
		items = items[:in.max]
	}
	in.items = items
}

func (in *Inbox) Dismiss(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i, n := range in.items {
		if n.ID == id {
			in.items = append(in.items[:i], in.items[i+1:]...)
			return true
		}
	}
	return false
}

func (in *Inbox) List() []models.Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]models.Notification(nil), in.items...)
}
