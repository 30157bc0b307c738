package stream

import (
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
)

const (
	DefaultTickInterval          = 1500 * time.Millisecond
	DefaultInitialReconnectDelay = time.Second
	DefaultMaxReconnectDelay     = 30 * time.Second
	DefaultMaxBatch              = 8
	DefaultVolatility            = 0.02
)

type Option func(*Session)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithClock(clock generator.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

func WithRand(rnd generator.Rand) Option {
	return func(s *Session) { s.rand = rnd }
}

// WithReconnectSettings sets the backoff start and cap.
func WithReconnectSettings(initial, max time.Duration) Option {
	return func(s *Session) {
		s.initialDelay = initial
		s.maxDelay = max
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tickInterval = d }
}

// WithMaxBatch caps how many quotes a single tick may move.
func WithMaxBatch(n int) Option {
	return func(s *Session) { s.maxBatch = n }
}

// WithVolatility sets the largest fractional price move of a tick, 0.02 being +-2%.
func WithVolatility(v float64) Option {
	return func(s *Session) { s.volatility = v }
}
