package sink

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// RedisClient abstracts the output storage connection
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Pipeline() redis.Pipeliner
	Close() error
}

// KafkaWriter abstracts the output topic
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaDialer interface {
	DialContext(ctx context.Context, network, address string) (KafkaConn, error)
}

type KafkaConn interface {
	Controller() (kafka.Broker, error)
	Close() error
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
}

// for deterministic testing
type Sleeper interface {
	Sleep(d time.Duration)
}

type RealSleeper struct{}

func (RealSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// RealKafkaConn adapts a *kafka.Conn to our interface
type RealKafkaConn struct{ *kafka.Conn }

func (c *RealKafkaConn) Controller() (kafka.Broker, error) { return c.Conn.Controller() }
func (c *RealKafkaConn) Close() error                      { return c.Conn.Close() }
func (c *RealKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	return c.Conn.CreateTopics(topics...)
}
func (c *RealKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	return c.Conn.ReadPartitions(topics...)
}

// RealKafkaDialer adapts *kafka.Dialer
type RealKafkaDialer struct{ *kafka.Dialer }

func (d *RealKafkaDialer) DialContext(ctx context.Context, network, address string) (KafkaConn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return &RealKafkaConn{Conn: conn}, nil
}
