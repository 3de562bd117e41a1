package sink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	// ErrTopicNotReady is returned when the topic has no partitions after all retries.
	ErrTopicNotReady = errors.New("topic not ready")
	// ErrNoBroker is returned when none of the configured brokers accepts a connection.
	ErrNoBroker = errors.New("no reachable kafka broker")
)

const (
	topicReadyRetries = 5
	topicReadyBackoff = 200 * time.Millisecond
)

// TopicCreator makes sure the changelog topic exists before the first publish.
type TopicCreator struct {
	logger  *zap.Logger
	dialer  KafkaDialer
	sleeper Sleeper
}

func NewTopicCreator(logger *zap.Logger, dialer KafkaDialer, sleeper Sleeper) *TopicCreator {
	return &TopicCreator{
		logger:  logger,
		dialer:  dialer,
		sleeper: sleeper,
	}
}

// Create asks the controller for a single-partition topic, so the changelog
// stays totally ordered, and waits until its partitions are visible.
// An already existing topic is not an error.
func (tc *TopicCreator) Create(ctx context.Context, brokers []string, topicName string) error {
	conn, err := dialAny(ctx, tc.dialer, brokers)
	if err != nil {
		tc.logger.Warn("Failed to dial brokers", zap.Error(err))
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		tc.logger.Warn("Failed to get controller", zap.Error(err))
		return err
	}

	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	controllerConn, err := tc.dialer.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		tc.logger.Warn("Failed to dial controller", zap.Error(err))
		return err
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		tc.logger.Info("Topic creation finished (might already exist)", zap.Error(err))
	} else {
		tc.logger.Info("Topic creation request sent", zap.String("topic", topicName))
	}

	return tc.waitForTopic(conn, topicName)
}

func (tc *TopicCreator) waitForTopic(conn KafkaConn, topicName string) error {
	tc.logger.Info("Waiting for topic initialization...", zap.String("topic", topicName))
	for i := 0; i < topicReadyRetries; i++ {
		partitions, err := conn.ReadPartitions(topicName)
		if err == nil && len(partitions) > 0 {
			tc.logger.Info("Topic is ready", zap.Int("partitions", len(partitions)))
			return nil
		}
		tc.sleeper.Sleep(topicReadyBackoff)
	}
	tc.logger.Warn("Timed out waiting for topic", zap.String("topic", topicName))
	return ErrTopicNotReady
}

// CheckBrokers reports whether at least one broker accepts a connection.
func CheckBrokers(ctx context.Context, dialer KafkaDialer, brokers []string) error {
	conn, err := dialAny(ctx, dialer, brokers)
	if err != nil {
		return err
	}
	return conn.Close()
}

func dialAny(ctx context.Context, dialer KafkaDialer, brokers []string) (KafkaConn, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: no brokers configured", ErrNoBroker)
	}
	var lastErr error
	for _, addr := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %w", ErrNoBroker, lastErr)
}
