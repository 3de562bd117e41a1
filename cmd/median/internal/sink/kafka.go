package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shubham-shewale/price-median/pkg/models"
)

// MessageKey keys every record so they all land on one partition in order.
const MessageKey = "median"

// Writer limits per emission.
const (
	WriteTimeout     = 5 * time.Second
	WriteMaxAttempts = 3
)

// KafkaPublisher produces one message per emitted record.
type KafkaPublisher struct {
	writer KafkaWriter
}

func NewKafkaPublisher(writer KafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewKafkaWriter returns a synchronous writer: each Write returns once the broker acknowledged it.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: WriteTimeout,
		MaxAttempts:  WriteMaxAttempts,
	}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Write(ctx context.Context, rec models.MedianRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(MessageKey),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error { return p.writer.Close() }
