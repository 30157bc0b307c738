package testutils

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/repository"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/stream"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// MockSource serves fixed quotes. History, news and indices are canned.
type MockSource struct {
	Quotes   []models.Quote
	Err      error
	Points   []models.HistoricalPoint
	Articles []models.NewsArticle
	NewsErr  error

	Mu      sync.Mutex
	Fetches int
}

func (m *MockSource) Fetch(ctx context.Context) ([]models.Quote, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Fetches++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Quote(nil), m.Quotes...), nil
}

func (m *MockSource) MarketSummary(ctx context.Context) ([]models.MarketIndex, error) {
	return []models.MarketIndex{{Name: "S&P 500", Value: 5000}}, nil
}

func (m *MockSource) History(ctx context.Context, symbol string, rng models.TimeRange, price float64) ([]models.HistoricalPoint, error) {
	switch rng {
	case models.Range1D, models.Range1W, models.Range1M:
	default:
		return nil, fmt.Errorf("%w: %q", generator.ErrUnknownRange, rng)
	}
	return append([]models.HistoricalPoint(nil), m.Points...), nil
}

func (m *MockSource) News(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	if m.NewsErr != nil {
		return nil, m.NewsErr
	}
	return append([]models.NewsArticle(nil), m.Articles...), nil
}

// MockStream records Connect and Disconnect and lets tests drive the callbacks.
type MockStream struct {
	Mu          sync.Mutex
	Connects    int
	Disconnects int
	Quotes      []models.Quote

	onUpdate stream.UpdateFunc
	onStatus stream.StatusFunc
}

func (m *MockStream) Connect(quotes []models.Quote, onUpdate stream.UpdateFunc, onStatus stream.StatusFunc) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Connects++
	m.Quotes = quotes
	m.onUpdate = onUpdate
	m.onStatus = onStatus
}

func (m *MockStream) Disconnect() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Disconnects++
}

func (m *MockStream) Send(batch []models.QuoteUpdate) {
	m.Mu.Lock()
	cb := m.onUpdate
	m.Mu.Unlock()
	cb(batch)
}

func (m *MockStream) SetStatus(s models.ConnectionStatus) {
	m.Mu.Lock()
	cb := m.onStatus
	m.Mu.Unlock()
	cb(s)
}

type MockPublisher struct {
	Mu      sync.Mutex
	Batches [][]models.QuoteUpdate
	Err     error
}

func (m *MockPublisher) Publish(ctx context.Context, batch []models.QuoteUpdate) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Batches = append(m.Batches, batch)
	return m.Err
}

// MockKVStore is an in-memory repository.KVStore. FailSet makes every write fail.
type MockKVStore struct {
	Mu      sync.Mutex
	Data    map[string]string
	FailSet bool
}

var _ repository.KVStore = (*MockKVStore)(nil)

func (m *MockKVStore) Get(ctx context.Context, key string) (string, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	v, ok := m.Data[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (m *MockKVStore) Set(ctx context.Context, key, value string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.FailSet {
		return errors.New("store unavailable")
	}
	if m.Data == nil {
		m.Data = make(map[string]string)
	}
	m.Data[key] = value
	return nil
}

func (m *MockKVStore) Close() error { return nil }
