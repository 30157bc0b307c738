package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/pkg/config"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

const (
	workerBuffer = 100
	snapshotTTL  = time.Hour
)

// Stats counts what happened to consumed ticks.
type Stats struct {
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Invalid    int64 `json:"invalid"`
	Dropped    int64 `json:"dropped"`
	Failed     int64 `json:"failed"`
}

// Processor consumes dashboard ticks from Kafka and writes the latest tick per
// symbol to Redis, publishing it for the gateway.
type Processor struct {
	logger     Logger
	rdb        RedisClient
	reader     KafkaReader
	numWorkers int

	processed  atomic.Int64
	duplicates atomic.Int64
	invalid    atomic.Int64
	dropped    atomic.Int64
	failed     atomic.Int64
}

func NewProcessor(cfg config.ProcessorConfig, logger Logger, rdb RedisClient, reader KafkaReader) *Processor {
	n := cfg.NumWorkers
	if n <= 0 {
		n = 1
	}
	return &Processor{
		logger:     logger,
		rdb:        rdb,
		reader:     reader,
		numWorkers: n,
	}
}

func (p *Processor) Stats() Stats {
	return Stats{
		Processed:  p.processed.Load(),
		Duplicates: p.duplicates.Load(),
		Invalid:    p.invalid.Load(),
		Dropped:    p.dropped.Load(),
		Failed:     p.failed.Load(),
	}
}

// Run blocks until ctx is done, then drains the workers.
func (p *Processor) Run(ctx context.Context) error {
	workerChans := make([]chan []byte, p.numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < p.numWorkers; i++ {
		workerChans[i] = make(chan []byte, workerBuffer)
		wg.Add(1)
		go p.worker(i, workerChans[i], &wg)
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		p.read(ctx, workerChans)
	}()

	<-ctx.Done()
	p.logger.Info("Shutdown signal received, stopping processor...")

	// no sends may race the close below
	<-readerDone
	for _, ch := range workerChans {
		close(ch)
	}
	p.logger.Info("Waiting for workers to drain...")
	wg.Wait()

	return nil
}

func (p *Processor) read(ctx context.Context, workerChans []chan []byte) {
	p.logger.Info("Processor Started", zap.Int("workers", p.numWorkers))
	for {
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			p.logger.Error("Kafka Read Error", zap.Error(err))
			continue
		}

		// same symbol, same worker: keeps per-symbol order and lets dedupe stay local
		workerID := getWorkerID(m.Key, p.numWorkers)

		select {
		case workerChans[workerID] <- m.Value:
		case <-ctx.Done():
			return
		default:
			// latest beats complete for live prices
			p.dropped.Add(1)
			p.logger.Warn("Dropping slow packet", zap.String("key", string(m.Key)), zap.Int("worker_id", workerID))
		}
	}
}

func (p *Processor) worker(id int, msgs <-chan []byte, wg *sync.WaitGroup) {
	defer wg.Done()
	// not the run context: an in-flight write finishes during shutdown
	ctx := context.Background()

	lastSeq := make(map[string]int64)

	for payload := range msgs {
		var tick models.TickEvent
		if err := json.Unmarshal(payload, &tick); err != nil {
			p.invalid.Add(1)
			p.logger.Error("JSON Unmarshal Error", zap.Error(err))
			continue
		}
		if tick.Symbol == "" || tick.Price <= 0 {
			p.invalid.Add(1)
			p.logger.Warn("Dropping invalid tick", zap.String("symbol", tick.Symbol), zap.Float64("price", tick.Price))
			continue
		}

		if tick.SeqID <= lastSeq[tick.Symbol] {
			p.duplicates.Add(1)
			p.logger.Debug("Skipping duplicate tick", zap.String("symbol", tick.Symbol), zap.Int64("seq_id", tick.SeqID))
			continue
		}

		// SET + PUBLISH together so a new subscriber's snapshot is never older than the feed
		pipe := p.rdb.Pipeline()
		pipe.Set(ctx, fmt.Sprintf("stock:%s", tick.Symbol), payload, snapshotTTL)
		pipe.Publish(ctx, fmt.Sprintf("prices.%s", tick.Symbol), payload)

		if _, err := pipe.Exec(ctx); err != nil {
			p.failed.Add(1)
			p.logger.Error("Redis Pipeline Error", zap.Error(err), zap.String("symbol", tick.Symbol))
			continue
		}
		p.processed.Add(1)
		lastSeq[tick.Symbol] = tick.SeqID
		p.logger.Debug("Processed", zap.String("symbol", tick.Symbol), zap.Int("worker_id", id), zap.Int64("seq_id", tick.SeqID))
	}
}

func getWorkerID(key []byte, numWorkers int) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % uint32(numWorkers))
}
