// Package publisher republishes merged stream batches as per-symbol ticks on Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

type TickPublisher struct {
	logger *zap.Logger
	writer KafkaWriter
	clock  generator.Clock

	mu          sync.Mutex
	seqBase     int64
	seqCounters map[string]int64
}

// NewTickPublisher starts every symbol's sequence at the construction time in
// microseconds, so a restarted publisher stays ahead of what consumers have seen.
func NewTickPublisher(logger *zap.Logger, writer KafkaWriter, clock generator.Clock) *TickPublisher {
	return &TickPublisher{
		logger:      logger,
		writer:      writer,
		clock:       clock,
		seqBase:     clock.Now().UnixMicro(),
		seqCounters: make(map[string]int64),
	}
}

// Publish writes one message per priced update, keyed by symbol so a symbol
// always lands on the same partition.
func (p *TickPublisher) Publish(ctx context.Context, batch []models.QuoteUpdate) error {
	msgs := p.messages(batch)
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d ticks: %w", len(msgs), err)
	}
	p.logger.Debug("Published ticks", zap.Int("count", len(msgs)))
	return nil
}

func (p *TickPublisher) messages(batch []models.QuoteUpdate) []kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now().UnixMicro()
	msgs := make([]kafka.Message, 0, len(batch))
	for _, u := range batch {
		if u.Price == nil {
			continue
		}
		seq, ok := p.seqCounters[u.Symbol]
		if !ok {
			seq = p.seqBase
		}
		seq++
		p.seqCounters[u.Symbol] = seq

		tick := models.TickEvent{
			Symbol:    u.Symbol,
			Price:     *u.Price,
			Timestamp: now,
			SeqID:     seq,
		}
		if u.Change != nil {
			tick.Change = *u.Change
		}
		if u.ChangePercent != nil {
			tick.ChangePercent = *u.ChangePercent
		}

		payload, err := json.Marshal(tick)
		if err != nil {
			p.logger.Error("JSON Marshal Error", zap.Error(err))
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(u.Symbol), Value: payload})
	}
	return msgs
}

func (p *TickPublisher) Close() error {
	return p.writer.Close()
}
