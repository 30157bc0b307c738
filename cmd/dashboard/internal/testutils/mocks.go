package testutils

import (
	"sort"
	"sync"
	"time"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
)

// MockClock only moves when Advance is called. Timers fire synchronously inside Advance.
type MockClock struct {
	CurrentTime time.Time

	mu     sync.Mutex
	timers []*mockTimer
}

type mockTimer struct {
	clock   *MockClock
	at      time.Time
	f       func()
	ch      chan time.Time
	stopped bool
	fired   bool
}

func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CurrentTime
}

func (m *MockClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	m.add(d, nil, ch)
	return ch
}

func (m *MockClock) AfterFunc(d time.Duration, f func()) generator.Timer {
	return m.add(d, f, nil)
}

func (m *MockClock) add(d time.Duration, f func(), ch chan time.Time) *mockTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTimer{clock: m, at: m.CurrentTime.Add(d), f: f, ch: ch}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves time forward by d, firing due timers in deadline order.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.CurrentTime.Add(d)
	for {
		sort.SliceStable(m.timers, func(i, j int) bool { return m.timers[i].at.Before(m.timers[j].at) })

		var next *mockTimer
		for _, t := range m.timers {
			if !t.stopped && !t.fired && !t.at.After(target) {
				next = t
				break
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		m.CurrentTime = next.at
		m.mu.Unlock()

		if next.f != nil {
			next.f()
		} else {
			next.ch <- next.at
		}
		m.mu.Lock()
	}
	m.CurrentTime = target
	m.prune()
	m.mu.Unlock()
}

// Pending counts timers that have neither fired nor been stopped.
func (m *MockClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (m *MockClock) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
}

// MockRand returns ValInt and ValFloat, or walks Floats cyclically when set.
type MockRand struct {
	ValInt   int
	ValFloat float64
	Floats   []float64

	mu  sync.Mutex
	pos int
}

func (m *MockRand) Intn(n int) int {
	if m.ValInt >= n {
		return n - 1
	}
	return m.ValInt
}

func (m *MockRand) Float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Floats) == 0 {
		return m.ValFloat
	}
	v := m.Floats[m.pos%len(m.Floats)]
	m.pos++
	return v
}
