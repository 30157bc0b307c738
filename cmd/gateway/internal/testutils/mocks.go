package testutils

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shubham-shewale/stock-dashboard/cmd/gateway/internal/protocol"
)

// MockClient simulates a connected websocket client
type MockClient struct {
	IDVal    string
	Messages []protocol.WSResponse // responses sent through SendJSON
	RawBytes []string              // everything sent through SendBytes
	Closed   bool
	Mu       sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id, Messages: make([]protocol.WSResponse, 0)}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendJSON(v any) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if resp, ok := v.(protocol.WSResponse); ok {
		m.Messages = append(m.Messages, resp)
	}
}

func (m *MockClient) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RawBytes = append(m.RawBytes, string(b))
}

func (m *MockClient) LastMsg() protocol.WSResponse {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if len(m.Messages) == 0 {
		return protocol.WSResponse{}
	}
	return m.Messages[len(m.Messages)-1]
}

// Ticks decodes every raw tick message received so far.
func (m *MockClient) Ticks() []map[string]any {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	var out []map[string]any
	for _, raw := range m.RawBytes {
		var msg struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if json.Unmarshal([]byte(raw), &msg) == nil && msg.Type == protocol.TypeTick {
			out = append(out, msg.Data)
		}
	}
	return out
}

// MockTickStore simulates Redis
type MockTickStore struct {
	SubscribedChannels map[string]int // symbol -> count
	Snapshots          []string
	Mu                 sync.Mutex
}

func NewMockStore() *MockTickStore {
	return &MockTickStore{
		SubscribedChannels: make(map[string]int),
		Snapshots:          []string{`{"symbol":"AAPL","price":150,"seq_id":1}`},
	}
}

func (m *MockTickStore) GetSnapshots(ctx context.Context, symbols []string) ([]string, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return append([]string(nil), m.Snapshots...), nil
}

func (m *MockTickStore) SubscribeToFeed(ctx context.Context, symbol string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedChannels[symbol]++
	return nil
}

func (m *MockTickStore) UnsubscribeFromFeed(ctx context.Context, symbol string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedChannels[symbol]--
	if m.SubscribedChannels[symbol] <= 0 {
		delete(m.SubscribedChannels, symbol)
	}
	return nil
}

func (m *MockTickStore) Count(symbol string) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.SubscribedChannels[symbol]
}

// RunPubSub is a no-op; tests call Hub.Broadcast directly.
func (m *MockTickStore) RunPubSub(ctx context.Context, onMessage func(symbol string, payload string)) {}

func (m *MockTickStore) Close() error { return nil }
