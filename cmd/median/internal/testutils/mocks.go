package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/shubham-shewale/price-median/cmd/median/internal/sink"
	"github.com/shubham-shewale/price-median/pkg/models"
)

// MockSink records every written record; FailAfter > 0 makes the n-th and later writes fail.
type MockSink struct {
	Records   []models.MedianRecord
	FailAfter int
	Mu        sync.Mutex
}

func (m *MockSink) Write(ctx context.Context, rec models.MedianRecord) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.FailAfter > 0 && len(m.Records)+1 >= m.FailAfter {
		return errors.New("disk full")
	}
	m.Records = append(m.Records, rec)
	return nil
}

type MockPublisher struct {
	MockSink
	PublisherName string
	ShouldFail    bool
}

func (m *MockPublisher) Name() string { return m.PublisherName }

func (m *MockPublisher) Write(ctx context.Context, rec models.MedianRecord) error {
	if m.ShouldFail {
		return errors.New("publisher down")
	}
	return m.MockSink.Write(ctx, rec)
}

// MockRecorder counts calls from both the source and the processor.
type MockRecorder struct {
	Files         int
	Read          int
	Skipped       int
	Emitted       []decimal.Decimal
	PublishErrors map[string]int
}

func (m *MockRecorder) FileRead()                       { m.Files++ }
func (m *MockRecorder) ObservationRead()                { m.Read++ }
func (m *MockRecorder) ObservationSkipped()             { m.Skipped++ }
func (m *MockRecorder) RecordEmitted(d decimal.Decimal) { m.Emitted = append(m.Emitted, d) }

func (m *MockRecorder) PublishFailed(publisher string) {
	if m.PublishErrors == nil {
		m.PublishErrors = make(map[string]int)
	}
	m.PublishErrors[publisher]++
}

type MockPipeline struct {
	redis.Pipeliner // Embed interface to satisfy missing methods like ACLCat, etc.

	ExecCount    int
	RecordedCmds []string
	Payloads     []string
	ExecErr      error
	Mu           sync.Mutex
}

func (m *MockPipeline) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RecordedCmds = append(m.RecordedCmds, "SET "+key)
	if b, ok := value.([]byte); ok {
		m.Payloads = append(m.Payloads, string(b))
	}
	return redis.NewStatusCmd(ctx)
}

func (m *MockPipeline) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RecordedCmds = append(m.RecordedCmds, "PUBLISH "+channel)
	return redis.NewIntCmd(ctx)
}

func (m *MockPipeline) Exec(ctx context.Context) ([]redis.Cmder, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.ExecCount++
	return nil, m.ExecErr
}

type MockRedisClient struct {
	PipelineSpy *MockPipeline
	Closed      bool
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{PipelineSpy: &MockPipeline{}}
}

func (m *MockRedisClient) Pipeline() redis.Pipeliner {
	return m.PipelineSpy
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusCmd(ctx)
}

func (m *MockRedisClient) Close() error {
	m.Closed = true
	return nil
}

type MockKafkaWriter struct {
	Messages   []kafka.Message
	Mu         sync.Mutex
	ShouldFail bool
	Closed     bool
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.ShouldFail {
		return errors.New("kafka error")
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockKafkaWriter) Close() error {
	m.Closed = true
	return nil
}

type MockKafkaConn struct {
	CreatedTopics []string
	// NotReadyFor makes ReadPartitions report no partitions for the first n calls.
	NotReadyFor int
	reads       int
}

func (m *MockKafkaConn) Controller() (kafka.Broker, error) {
	return kafka.Broker{Host: "localhost", Port: 9092}, nil
}
func (m *MockKafkaConn) Close() error { return nil }
func (m *MockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	for _, t := range topics {
		m.CreatedTopics = append(m.CreatedTopics, t.Topic)
	}
	return nil
}
func (m *MockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	m.reads++
	if m.reads <= m.NotReadyFor {
		return nil, nil
	}
	return []kafka.Partition{{ID: 0}}, nil
}

type MockKafkaDialer struct {
	ConnSpy *MockKafkaConn
	// Unreachable addresses fail to dial.
	Unreachable map[string]bool
	Dialed      []string
}

func (m *MockKafkaDialer) DialContext(ctx context.Context, network, address string) (sink.KafkaConn, error) {
	m.Dialed = append(m.Dialed, address)
	if m.Unreachable[address] {
		return nil, errors.New("connection refused")
	}
	if m.ConnSpy == nil {
		m.ConnSpy = &MockKafkaConn{}
	}
	return m.ConnSpy, nil
}

type MockSleeper struct {
	Slept time.Duration
}

func (m *MockSleeper) Sleep(d time.Duration) { m.Slept += d }
