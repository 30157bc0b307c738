package generator

import (
	"math/rand"
	"sync"
	"time"
)

// Clock abstracts time for deterministic testing
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Rand abstracts randomness for deterministic values
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type RealClock struct{}

func (RealClock) Now() time.Time                            { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time    { return time.After(d) }
func (RealClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealRand is a seeded source that is safe for concurrent use.
type RealRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRealRand(seed int64) *RealRand {
	return &RealRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *RealRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *RealRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}
