// Package dashboard owns the live quote set and ties the stream, screener,
// alerts and watchlist together behind one object.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/alerts"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/insights"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/repository"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/scorer"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/screener"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/stream"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/table"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrNotLoaded     = errors.New("quotes have not been loaded yet")
)

const publishTimeout = 5 * time.Second

// QuoteSource is where full quote sets and per-stock detail data come from.
type QuoteSource interface {
	Fetch(ctx context.Context) ([]models.Quote, error)
	MarketSummary(ctx context.Context) ([]models.MarketIndex, error)
	History(ctx context.Context, symbol string, rng models.TimeRange, currentPrice float64) ([]models.HistoricalPoint, error)
	News(ctx context.Context, symbol string) ([]models.NewsArticle, error)
}

type Stream interface {
	Connect(quotes []models.Quote, onUpdate stream.UpdateFunc, onStatus stream.StatusFunc)
	Disconnect()
}

type TickPublisher interface {
	Publish(ctx context.Context, batch []models.QuoteUpdate) error
}

type Dashboard struct {
	logger    *zap.Logger
	source    QuoteSource
	stream    Stream
	insights  insights.Service
	watchlist *repository.Watchlist
	screener  *screener.Service
	alerts    *alerts.Evaluator
	inbox     *alerts.Inbox

	publisher      TickPublisher
	clock          generator.Clock
	evaluateOnTick bool
	maxInbox       int

	mu          sync.RWMutex
	quotes      []models.Quote
	index       map[string]int
	loaded      bool
	loading     bool
	loadErr     error
	status      models.ConnectionStatus
	lastUpdated time.Time
}

type Option func(*Dashboard)

// WithPublisher republishes every merged batch.
func WithPublisher(p TickPublisher) Option {
	return func(d *Dashboard) { d.publisher = p }
}

func WithClock(c generator.Clock) Option {
	return func(d *Dashboard) { d.clock = c }
}

// WithTickAlerts evaluates alerts after every merged batch, not only on reload and alert changes.
func WithTickAlerts(enabled bool) Option {
	return func(d *Dashboard) { d.evaluateOnTick = enabled }
}

func WithMaxNotifications(n int) Option {
	return func(d *Dashboard) { d.maxInbox = n }
}

func New(logger *zap.Logger, source QuoteSource, st Stream, svc insights.Service, watchlist *repository.Watchlist, opts ...Option) *Dashboard {
	d := &Dashboard{
		logger:    logger,
		source:    source,
		stream:    st,
		insights:  svc,
		watchlist: watchlist,
		clock:     generator.RealClock{},
		maxInbox:  20,
		status:    models.StatusDisconnected,
		index:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.screener = screener.NewService(svc, logger)
	d.alerts = alerts.NewEvaluator(d.clock.Now)
	d.inbox = alerts.NewInbox(d.maxInbox)
	return d
}

// Load fetches a full quote set and replaces the store. A failure is kept as the
// error state until the next successful Load; nothing retries automatically.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	quotes, err := d.source.Fetch(ctx)

	d.mu.Lock()
	d.loading = false
	if err != nil {
		d.loadErr = err
		d.mu.Unlock()
		d.logger.Error("Failed to load quotes", zap.Error(err))
		return fmt.Errorf("load quotes: %w", err)
	}
	reload := d.loaded
	d.replaceLocked(quotes)
	snapshot := d.snapshotLocked()
	d.mu.Unlock()

	d.logger.Info("Quotes loaded", zap.Int("count", len(quotes)), zap.Bool("reload", reload))
	d.evaluate(snapshot)

	// the stream perturbs its own copy, so hand it the fresh set
	if reload {
		d.stream.Disconnect()
	}
	d.stream.Connect(snapshot, d.onUpdate, d.onStatus)
	return nil
}

// Retry is Load, for clients recovering from the error state.
func (d *Dashboard) Retry(ctx context.Context) error {
	return d.Load(ctx)
}

func (d *Dashboard) Close() {
	d.stream.Disconnect()
}

func (d *Dashboard) replaceLocked(quotes []models.Quote) {
	d.quotes = append([]models.Quote(nil), quotes...)
	d.index = make(map[string]int, len(quotes))
	for i, q := range d.quotes {
		d.index[q.Symbol] = i
	}
	d.loaded = true
	d.loadErr = nil
	d.lastUpdated = d.clock.Now()
}

func (d *Dashboard) snapshotLocked() []models.Quote {
	return append([]models.Quote(nil), d.quotes...)
}

func (d *Dashboard) onUpdate(batch []models.QuoteUpdate) {
	d.mu.Lock()
	merged := 0
	for _, u := range batch {
		i, ok := d.index[u.Symbol]
		if !ok {
			continue
		}
		q := &d.quotes[i]
		if q.Apply(u) {
			q.Recommendation = scorer.Recommend(*q)
			merged++
		}
	}
	if merged > 0 {
		d.lastUpdated = d.clock.Now()
	}
	var snapshot []models.Quote
	if d.evaluateOnTick && merged > 0 {
		snapshot = d.snapshotLocked()
	}
	d.mu.Unlock()

	if snapshot != nil {
		d.evaluate(snapshot)
	}

	if d.publisher != nil && merged > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := d.publisher.Publish(ctx, batch); err != nil {
			d.logger.Warn("Failed to republish batch", zap.Error(err))
		}
	}
}

func (d *Dashboard) onStatus(s models.ConnectionStatus) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
	d.logger.Debug("Connection status", zap.String("status", string(s)))
}

func (d *Dashboard) evaluate(quotes []models.Quote) {
	fired := d.alerts.Evaluate(quotes)
	if len(fired) == 0 {
		return
	}
	d.inbox.Push(fired...)
	for _, n := range fired {
		d.logger.Info("Price alert triggered", zap.String("symbol", n.Symbol), zap.String("id", n.ID))
	}
}

// Quotes returns a copy of the current store in load order.
func (d *Dashboard) Quotes() []models.Quote {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

func (d *Dashboard) Quote(symbol string) (models.Quote, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[symbol]
	if !ok {
		return models.Quote{}, false
	}
	return d.quotes[i], true
}

// Rows runs the table pipeline with the current watchlist and screener criteria.
func (d *Dashboard) Rows(search, filter string, sort table.SortMode) []models.Quote {
	v := table.View{
		Search:    search,
		Filter:    filter,
		Sort:      sort,
		Watchlist: d.watchlist.Set(),
	}
	if c, _, ok := d.screener.Active(); ok {
		v.Criteria = &c
	}
	return table.Apply(d.Quotes(), v)
}

type Status struct {
	Connection  models.ConnectionStatus  `json:"connection"`
	Loading     bool                     `json:"loading"`
	Error       string                   `json:"error,omitempty"`
	Count       int                      `json:"count"`
	LastUpdated time.Time                `json:"lastUpdated"`
	Screener    string                   `json:"screener,omitempty"`
	Criteria    *models.ScreenerCriteria `json:"criteria,omitempty"`
}

func (d *Dashboard) Status() Status {
	d.mu.RLock()
	s := Status{
		Connection:  d.status,
		Loading:     d.loading,
		Count:       len(d.quotes),
		LastUpdated: d.lastUpdated,
	}
	if d.loadErr != nil {
		s.Error = d.loadErr.Error()
	}
	d.mu.RUnlock()

	if c, query, ok := d.screener.Active(); ok {
		s.Screener = query
		s.Criteria = &c
	}
	return s
}

func (d *Dashboard) known(symbol string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.index[symbol]
	return ok
}

// ToggleWatchlist flips membership of symbol and reports the new state.
func (d *Dashboard) ToggleWatchlist(ctx context.Context, symbol string) (bool, error) {
	if !d.known(symbol) {
		return false, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return d.watchlist.Toggle(ctx, symbol)
}

// SetWatchlist adds or removes symbol. Repeating a call is a no-op.
func (d *Dashboard) SetWatchlist(ctx context.Context, symbol string, in bool) error {
	if !d.known(symbol) {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if in {
		return d.watchlist.Add(ctx, symbol)
	}
	return d.watchlist.Remove(ctx, symbol)
}

func (d *Dashboard) Watchlist() []string {
	return d.watchlist.Symbols()
}

// SetAlert arms an alert and checks it right away against the latest quotes.
func (d *Dashboard) SetAlert(symbol string, a models.PriceAlert) (alerts.Record, error) {
	if !d.known(symbol) {
		return alerts.Record{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if _, err := d.alerts.Set(symbol, a); err != nil {
		return alerts.Record{}, err
	}
	d.evaluate(d.Quotes())

	rec, _ := d.alerts.Get(symbol)
	return rec, nil
}

func (d *Dashboard) RemoveAlert(symbol string) bool {
	_, ok := d.alerts.Remove(symbol)
	return ok
}

func (d *Dashboard) Alerts() []alerts.Record {
	return d.alerts.List()
}

func (d *Dashboard) Notifications() []models.Notification {
	return d.inbox.List()
}

func (d *Dashboard) DismissNotification(id string) bool {
	return d.inbox.Dismiss(id)
}

// ApplyScreener asks the model for criteria. On any failure the previous criteria stay active.
func (d *Dashboard) ApplyScreener(ctx context.Context, query string) (models.ScreenerCriteria, error) {
	return d.screener.Apply(ctx, query)
}

func (d *Dashboard) ClearScreener() {
	d.screener.Clear()
}

func (d *Dashboard) Summary(ctx context.Context) ([]models.MarketIndex, error) {
	return d.source.MarketSummary(ctx)
}
