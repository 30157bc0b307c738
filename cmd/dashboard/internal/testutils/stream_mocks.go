package testutils

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/stream"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var ErrConnClosed = errors.New("connection closed")

// MockConn is an in-memory stream connection. With Echo set every write is read back.
type MockConn struct {
	Echo bool

	readCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	Mu      sync.Mutex
	Written [][]byte
}

func NewMockConn(echo bool) *MockConn {
	return &MockConn{
		Echo:    echo,
		readCh:  make(chan []byte, 100),
		closeCh: make(chan struct{}),
	}
}

func (c *MockConn) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-c.readCh:
		return msg, nil
	case <-c.closeCh:
		return nil, ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *MockConn) WriteMessage(ctx context.Context, data []byte) error {
	if c.Closed() {
		return ErrConnClosed
	}
	c.Mu.Lock()
	c.Written = append(c.Written, data)
	c.Mu.Unlock()

	if c.Echo {
		c.Push(data)
	}
	return nil
}

// Push delivers msg as if the server had sent it.
func (c *MockConn) Push(msg []byte) {
	select {
	case c.readCh <- msg:
	case <-c.closeCh:
	}
}

// Close also serves as a server-side drop.
func (c *MockConn) Close() error {
	c.closeOnce.Do(func() { close(c.closeCh) })
	return nil
}

func (c *MockConn) Closed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

func (c *MockConn) WriteCount() int {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	return len(c.Written)
}

// MockDialer hands out MockConns. Fail makes the next dials error; Block holds dials until closed.
type MockDialer struct {
	Echo  bool
	Fail  int
	Block chan struct{}

	Mu    sync.Mutex
	Conns []*MockConn
	Dials int
}

func (d *MockDialer) Dial(ctx context.Context, url string) (stream.Conn, error) {
	d.Mu.Lock()
	d.Dials++
	block := d.Block
	fail := d.Fail > 0
	if fail {
		d.Fail--
	}
	d.Mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return nil, errors.New("dial refused")
	}

	conn := NewMockConn(d.Echo)
	d.Mu.Lock()
	d.Conns = append(d.Conns, conn)
	d.Mu.Unlock()
	return conn, nil
}

func (d *MockDialer) DialCount() int {
	d.Mu.Lock()
	defer d.Mu.Unlock()
	return d.Dials
}

func (d *MockDialer) LastConn() *MockConn {
	d.Mu.Lock()
	defer d.Mu.Unlock()
	if len(d.Conns) == 0 {
		return nil
	}
	return d.Conns[len(d.Conns)-1]
}

// StatusRecorder collects status callbacks and lets tests wait for a given status.
type StatusRecorder struct {
	Mu       sync.Mutex
	Statuses []models.ConnectionStatus
	ch       chan models.ConnectionStatus
}

func NewStatusRecorder() *StatusRecorder {
	return &StatusRecorder{ch: make(chan models.ConnectionStatus, 256)}
}

func (r *StatusRecorder) Record(s models.ConnectionStatus) {
	r.Mu.Lock()
	r.Statuses = append(r.Statuses, s)
	r.Mu.Unlock()
	r.ch <- s
}

func (r *StatusRecorder) All() []models.ConnectionStatus {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return append([]models.ConnectionStatus(nil), r.Statuses...)
}

// WaitFor blocks until want is recorded or fails the test after a second.
func (r *StatusRecorder) WaitFor(t *testing.T, want models.ConnectionStatus) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case s := <-r.ch:
			if s == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for status %q, got %v", want, r.All())
		}
	}
}

// BatchRecorder collects update batches.
type BatchRecorder struct {
	Mu      sync.Mutex
	Batches [][]models.QuoteUpdate
	ch      chan []models.QuoteUpdate
}

func NewBatchRecorder() *BatchRecorder {
	return &BatchRecorder{ch: make(chan []models.QuoteUpdate, 256)}
}

func (r *BatchRecorder) Record(b []models.QuoteUpdate) {
	r.Mu.Lock()
	r.Batches = append(r.Batches, b)
	r.Mu.Unlock()
	r.ch <- b
}

func (r *BatchRecorder) Next(t *testing.T) []models.QuoteUpdate {
	t.Helper()
	select {
	case b := <-r.ch:
		return b
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an update batch")
		return nil
	}
}
