package publisher_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/publisher"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/testutils"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

func ptr(v float64) *float64 { return &v }

func TestTickPublisher_RestartStaysAheadOfPreviousRun(t *testing.T) {
	decode := func(t *testing.T, w *testutils.MockKafkaWriter, i int) models.TickEvent {
		t.Helper()
		var tick models.TickEvent
		if err := json.Unmarshal(w.Messages[i].Value, &tick); err != nil {
			t.Fatalf("Published invalid JSON: %v", err)
		}
		return tick
	}

	clock := &testutils.MockClock{CurrentTime: time.Unix(100, 0)}
	firstWriter := &testutils.MockKafkaWriter{}
	first := publisher.NewTickPublisher(zap.NewNop(), firstWriter, clock)
	for i := 0; i < 50; i++ {
		if err := first.Publish(context.Background(), []models.QuoteUpdate{{Symbol: "AAPL", Price: ptr(100)}}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	lastBefore := decode(t, firstWriter, 49).SeqID

	// a restart one second later
	clock.Advance(time.Second)
	secondWriter := &testutils.MockKafkaWriter{}
	second := publisher.NewTickPublisher(zap.NewNop(), secondWriter, clock)
	if err := second.Publish(context.Background(), []models.QuoteUpdate{{Symbol: "AAPL", Price: ptr(101)}}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if got := decode(t, secondWriter, 0).SeqID; got <= lastBefore {
		t.Errorf("Expected SeqID after restart to exceed %d, got %d", lastBefore, got)
	}
}

func TestTickPublisher_Publish(t *testing.T) {
	mockWriter := &testutils.MockKafkaWriter{}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(10, 0)}
	pub := publisher.NewTickPublisher(zap.NewNop(), mockWriter, mockClock)

	batch := []models.QuoteUpdate{
		{Symbol: "AAPL", Price: ptr(101), Change: ptr(1), ChangePercent: ptr(1)},
		{Symbol: "MSFT", RSI: ptr(40)}, // no price, not a tick
		{Symbol: "AAPL", Price: ptr(102)},
	}
	if err := pub.Publish(context.Background(), batch); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(mockWriter.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(mockWriter.Messages))
	}

	var first, second models.TickEvent
	if err := json.Unmarshal(mockWriter.Messages[0].Value, &first); err != nil {
		t.Fatalf("Published invalid JSON: %v", err)
	}
	if err := json.Unmarshal(mockWriter.Messages[1].Value, &second); err != nil {
		t.Fatalf("Published invalid JSON: %v", err)
	}

	if string(mockWriter.Messages[0].Key) != "AAPL" {
		t.Errorf("Expected key AAPL, got %s", mockWriter.Messages[0].Key)
	}
	base := time.Unix(10, 0).UnixMicro()
	if first.SeqID != base+1 || second.SeqID != base+2 {
		t.Errorf("Expected SeqIDs %d,%d got %d,%d", base+1, base+2, first.SeqID, second.SeqID)
	}
	if first.Price != 101 || first.Change != 1 || first.ChangePercent != 1 {
		t.Errorf("Unexpected tick %+v", first)
	}
	if second.Change != 0 {
		t.Errorf("Missing change should publish as 0, got %f", second.Change)
	}
	if first.Timestamp != time.Unix(10, 0).UnixMicro() {
		t.Errorf("Expected clock timestamp, got %d", first.Timestamp)
	}
}

func TestTickPublisher_EmptyBatchWritesNothing(t *testing.T) {
	mockWriter := &testutils.MockKafkaWriter{ShouldFail: true}
	pub := publisher.NewTickPublisher(zap.NewNop(), mockWriter, &testutils.MockClock{})

	if err := pub.Publish(context.Background(), []models.QuoteUpdate{{Symbol: "AAPL"}}); err != nil {
		t.Errorf("Expected no write for a batch without prices, got %v", err)
	}
}

func TestTickPublisher_WriteError(t *testing.T) {
	mockWriter := &testutils.MockKafkaWriter{ShouldFail: true}
	pub := publisher.NewTickPublisher(zap.NewNop(), mockWriter, &testutils.MockClock{})

	err := pub.Publish(context.Background(), []models.QuoteUpdate{{Symbol: "AAPL", Price: ptr(1)}})
	if err == nil {
		t.Fatal("Expected write error")
	}
}

func TestTopicCreator_Flow(t *testing.T) {
	mockDialer := &testutils.MockKafkaDialer{}
	tc := publisher.NewTopicCreator(zap.NewNop(), mockDialer, &testutils.MockClock{})

	if err := tc.Create(context.Background(), []string{"broker:9092"}, "my-topic"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if mockDialer.ConnSpy == nil {
		t.Fatal("Dialer was never called")
	}
	if len(mockDialer.ConnSpy.CreatedTopics) == 0 || mockDialer.ConnSpy.CreatedTopics[0] != "my-topic" {
		t.Errorf("Expected topic 'my-topic', got %v", mockDialer.ConnSpy.CreatedTopics)
	}
	if mockDialer.Addresses[1] != "localhost:9092" {
		t.Errorf("Expected controller dial, got %v", mockDialer.Addresses)
	}
}

func TestTopicCreator_ExistingTopicIsFine(t *testing.T) {
	conn := &testutils.MockKafkaConn{CreateErr: errors.New("topic already exists")}
	mockDialer := &testutils.MockKafkaDialer{ConnSpy: conn}
	tc := publisher.NewTopicCreator(zap.NewNop(), mockDialer, &testutils.MockClock{})

	if err := tc.Create(context.Background(), []string{"broker:9092"}, "my-topic"); err != nil {
		t.Errorf("Expected existing topic to be accepted, got %v", err)
	}
}

func TestTopicCreator_DialFailure(t *testing.T) {
	mockDialer := &testutils.MockKafkaDialer{Fail: true}
	tc := publisher.NewTopicCreator(zap.NewNop(), mockDialer, &testutils.MockClock{})

	if err := tc.Create(context.Background(), []string{"a:9092", "b:9092"}, "my-topic"); err == nil {
		t.Fatal("Expected dial error")
	}
	if len(mockDialer.Addresses) != 2 {
		t.Errorf("Expected every broker to be tried, got %v", mockDialer.Addresses)
	}
}

func TestTopicCreator_StopsWaitingOnCancel(t *testing.T) {
	conn := &testutils.MockKafkaConn{NotReady: true}
	tc := publisher.NewTopicCreator(zap.NewNop(), &testutils.MockKafkaDialer{ConnSpy: conn}, &testutils.MockClock{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tc.Create(ctx, []string{"broker:9092"}, "my-topic")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if conn.Reads != 1 {
		t.Errorf("Expected a single readiness poll, got %d", conn.Reads)
	}
}
