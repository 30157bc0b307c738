package publisher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
)

const (
	topicPartitions = 4
	readyPolls      = 5
	readyInterval   = 200 * time.Millisecond
)

var ErrTopicNotReady = errors.New("topic has no partitions yet")

// TopicCreator makes sure the tick topic exists before the publisher starts writing.
type TopicCreator struct {
	logger *zap.Logger
	dialer KafkaDialer
	clock  generator.Clock
}

func NewTopicCreator(logger *zap.Logger, dialer KafkaDialer, clock generator.Clock) *TopicCreator {
	return &TopicCreator{
		logger: logger,
		dialer: dialer,
		clock:  clock,
	}
}

// Create asks the controller for the topic and waits for its partitions.
// An already existing topic is not an error.
func (tc *TopicCreator) Create(ctx context.Context, brokers []string, topic string) error {
	var (
		conn KafkaConn
		err  error
	)
	for _, addr := range brokers {
		conn, err = tc.dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			break
		}
	}
	if conn == nil {
		return fmt.Errorf("dial brokers %v: %w", brokers, err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}

	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	controllerConn, err := tc.dialer.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", controllerAddr, err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     topicPartitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		tc.logger.Info("Topic creation finished (might already exist)", zap.Error(err))
	} else {
		tc.logger.Info("Topic creation request sent", zap.String("topic", topic))
	}

	return tc.waitForTopic(ctx, conn, topic)
}

func (tc *TopicCreator) waitForTopic(ctx context.Context, conn KafkaConn, topic string) error {
	for i := 0; i < readyPolls; i++ {
		partitions, err := conn.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			tc.logger.Info("Topic is ready", zap.String("topic", topic), zap.Int("partitions", len(partitions)))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tc.clock.After(readyInterval):
		}
	}
	return fmt.Errorf("%s: %w", topic, ErrTopicNotReady)
}
