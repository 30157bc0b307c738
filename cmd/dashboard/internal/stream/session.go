package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateLive
	StateReconnecting
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	case StateReconnecting:
		return "reconnecting"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

type (
	UpdateFunc func(batch []models.QuoteUpdate)
	StatusFunc func(status models.ConnectionStatus)
)

// Session owns one live quote stream: its connection, tick and reconnect timers,
// attempt counter and the working copy of the quotes it perturbs.
//
// Callbacks are delivered one at a time, in the order the state changes happened,
// and never while the session lock is held, so they may call back into the session.
type Session struct {
	url       string
	dialer    Dialer
	baselines *generator.Baselines

	logger       *zap.Logger
	clock        generator.Clock
	rand         generator.Rand
	tickInterval time.Duration
	initialDelay time.Duration
	maxDelay     time.Duration
	maxBatch     int
	volatility   float64

	mu          sync.Mutex
	state       State
	conn        Conn
	gen         uint64 // bumped by every connect and disconnect
	cancelDial  context.CancelFunc
	attempts    int
	intentional bool
	working     []models.Quote
	onUpdate    UpdateFunc
	onStatus    StatusFunc

	tickTimer      generator.Timer
	reconnectTimer generator.Timer
	reconnectToken uint64

	pending    []func()
	delivering bool
}

func NewSession(url string, dialer Dialer, baselines *generator.Baselines, opts ...Option) *Session {
	s := &Session{
		url:          url,
		dialer:       dialer,
		baselines:    baselines,
		logger:       zap.NewNop(),
		clock:        generator.RealClock{},
		rand:         generator.NewRealRand(time.Now().UnixNano()),
		tickInterval: DefaultTickInterval,
		initialDelay: DefaultInitialReconnectDelay,
		maxDelay:     DefaultMaxReconnectDelay,
		maxBatch:     DefaultMaxBatch,
		volatility:   DefaultVolatility,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts is the number of reconnects scheduled since the last successful open.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Connect opens the stream for quotes. It is a no-op while a connection is open or opening.
func (s *Session) Connect(quotes []models.Quote, onUpdate UpdateFunc, onStatus StatusFunc) {
	s.mu.Lock()
	if s.state == StateConnecting || s.state == StateLive {
		s.mu.Unlock()
		return
	}
	// a fresh manual connect clears an earlier Disconnect
	if s.attempts == 0 {
		s.intentional = false
	}
	s.onUpdate = onUpdate
	s.onStatus = onStatus
	s.working = append([]models.Quote(nil), quotes...)
	// this attempt replaces a pending reconnect; its failure schedules the next one
	s.stopReconnectLocked()
	ctx, gen := s.beginConnectLocked()
	s.mu.Unlock()

	s.flush()
	go s.dial(ctx, gen)
}

// Disconnect stops the stream without reconnecting. Safe from any state.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.intentional = true
	s.attempts = 0
	s.gen++
	if s.cancelDial != nil {
		s.cancelDial()
		s.cancelDial = nil
	}
	s.stopReconnectLocked()
	s.stopTickLocked()

	conn := s.conn
	s.conn = nil
	if s.state != StateIdle && s.state != StateDisconnected {
		s.setStateLocked(StateDisconnected)
	}
	s.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			s.logger.Debug("Stream close error", zap.Error(err))
		}
	}
	s.flush()
}

func (s *Session) beginConnectLocked() (context.Context, uint64) {
	s.gen++
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelDial = cancel
	s.setStateLocked(StateConnecting)
	return ctx, s.gen
}

func (s *Session) dial(ctx context.Context, gen uint64) {
	conn, err := s.dialer.Dial(ctx, s.url)

	s.mu.Lock()
	if gen != s.gen || s.intentional {
		// superseded or disconnected while dialing
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		s.logger.Warn("Stream connection failed", zap.String("url", s.url), zap.Error(err))
		s.handleCloseLocked()
		s.mu.Unlock()
		s.flush()
		return
	}

	s.conn = conn
	s.attempts = 0
	s.stopReconnectLocked()
	s.setStateLocked(StateLive)
	s.scheduleTickLocked(gen)
	s.mu.Unlock()

	s.logger.Info("Stream live", zap.String("url", s.url))
	s.flush()
	s.readLoop(ctx, conn, gen)
}

func (s *Session) readLoop(ctx context.Context, conn Conn, gen uint64) {
	for {
		msg, err := conn.ReadMessage(ctx)
		if err != nil {
			s.mu.Lock()
			current := gen == s.gen && s.conn == conn
			if current {
				s.logger.Info("Stream closed", zap.Error(err))
				s.handleCloseLocked()
			}
			s.mu.Unlock()

			if current {
				conn.Close()
			}
			s.flush()
			return
		}

		batch, ok := s.decode(msg)
		if !ok {
			continue
		}

		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		if cb := s.onUpdate; cb != nil {
			s.pending = append(s.pending, func() { cb(batch) })
		}
		s.mu.Unlock()
		s.flush()
	}
}

// decode accepts only JSON arrays of partial quotes. Anything else is dropped.
func (s *Session) decode(msg []byte) ([]models.QuoteUpdate, bool) {
	if !bytes.HasPrefix(msg, []byte("[")) {
		s.logger.Debug("Ignoring non-batch stream message", zap.Int("size", len(msg)))
		return nil, false
	}

	var batch []models.QuoteUpdate
	if err := json.Unmarshal(msg, &batch); err != nil {
		s.logger.Warn("Dropping malformed stream batch", zap.Error(err))
		return nil, false
	}

	valid := batch[:0]
	for _, u := range batch {
		if u.Symbol != "" {
			valid = append(valid, u)
		}
	}
	return valid, len(valid) > 0
}

// handleCloseLocked moves a dropped or failed connection to Disconnected and,
// unless the close was requested, schedules the next attempt.
func (s *Session) handleCloseLocked() {
	s.conn = nil
	if s.cancelDial != nil {
		s.cancelDial()
		s.cancelDial = nil
	}
	s.stopTickLocked()
	s.setStateLocked(StateDisconnected)

	if !s.intentional {
		s.scheduleReconnectLocked()
	}
}

func (s *Session) scheduleReconnectLocked() {
	if s.reconnectTimer != nil || s.intentional {
		return
	}

	delay := ReconnectDelay(s.attempts, s.initialDelay, s.maxDelay)
	s.attempts++
	s.logger.Info("Stream reconnect scheduled", zap.Duration("delay", delay), zap.Int("attempt", s.attempts))
	s.setStateLocked(StateReconnecting)

	s.reconnectToken++
	token := s.reconnectToken
	s.reconnectTimer = s.clock.AfterFunc(delay, func() { s.fireReconnect(token) })
}

func (s *Session) fireReconnect(token uint64) {
	s.mu.Lock()
	if token != s.reconnectToken || s.reconnectTimer == nil {
		s.mu.Unlock()
		return
	}
	s.reconnectTimer = nil
	if s.intentional || s.state == StateConnecting || s.state == StateLive {
		s.mu.Unlock()
		return
	}
	ctx, gen := s.beginConnectLocked()
	s.mu.Unlock()

	s.flush()
	go s.dial(ctx, gen)
}

func (s *Session) stopReconnectLocked() {
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.reconnectToken++
}

func (s *Session) scheduleTickLocked(gen uint64) {
	if s.tickTimer != nil {
		return
	}
	s.tickTimer = s.clock.AfterFunc(s.tickInterval, func() { s.tick(gen) })
}

func (s *Session) stopTickLocked() {
	if s.tickTimer != nil {
		s.tickTimer.Stop()
		s.tickTimer = nil
	}
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.tickTimer = nil
	if s.state != StateLive || s.conn == nil {
		s.mu.Unlock()
		return
	}
	batch := s.nextBatchLocked()
	conn := s.conn
	s.scheduleTickLocked(gen)
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	payload, err := json.Marshal(batch)
	if err != nil {
		s.logger.Error("JSON Marshal Error", zap.Error(err))
		return
	}
	if err := conn.WriteMessage(context.Background(), payload); err != nil {
		s.logger.Warn("Failed to send stream batch", zap.Error(err))
	}
}

// nextBatchLocked moves 1..maxBatch random quotes of the working copy and returns the changes.
// Change is always measured from the session baseline so repeated ticks do not compound.
func (s *Session) nextBatchLocked() []models.QuoteUpdate {
	if len(s.working) == 0 {
		return nil
	}

	n := s.rand.Intn(s.maxBatch) + 1
	batch := make([]models.QuoteUpdate, 0, n)
	for i := 0; i < n; i++ {
		q := &s.working[s.rand.Intn(len(s.working))]

		newPrice := q.Price * (1 + (s.rand.Float64()*2-1)*s.volatility)
		open, ok := s.baselines.Open(q.Symbol)
		if !ok || open == 0 {
			open = q.Price - q.Change
		}
		change := newPrice - open
		var pct float64
		if open != 0 {
			pct = change / open * 100
		}

		price := generator.Round2(newPrice)
		change = generator.Round2(change)
		pct = generator.Round2(pct)
		u := models.QuoteUpdate{
			Symbol:        q.Symbol,
			Price:         &price,
			Change:        &change,
			ChangePercent: &pct,
		}
		q.Apply(u)
		batch = append(batch, u)
	}
	return batch
}

func (s *Session) setStateLocked(state State) {
	s.state = state

	var status models.ConnectionStatus
	switch state {
	case StateConnecting:
		status = models.StatusConnecting
	case StateLive:
		status = models.StatusLive
	case StateReconnecting:
		status = models.StatusReconnecting
	case StateDisconnected:
		status = models.StatusDisconnected
	default:
		return
	}
	if cb := s.onStatus; cb != nil {
		s.pending = append(s.pending, func() { cb(status) })
	}
}

// flush delivers queued callbacks. Only one goroutine delivers at a time; others
// leave their callbacks for it.
func (s *Session) flush() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		f := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		f()
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}
