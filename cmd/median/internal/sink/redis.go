package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shubham-shewale/price-median/pkg/models"
)

// RedisPublisher keeps the latest median under a key and announces every change on a channel.
type RedisPublisher struct {
	rdb     RedisClient
	key     string
	channel string
	ttl     time.Duration
}

func NewRedisPublisher(rdb RedisClient, key, channel string, ttl time.Duration) *RedisPublisher {
	return &RedisPublisher{
		rdb:     rdb,
		key:     key,
		channel: channel,
		ttl:     ttl,
	}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Write(ctx context.Context, rec models.MedianRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	// SET + PUBLISH in a single round trip
	pipe := p.rdb.Pipeline()
	pipe.Set(ctx, p.key, payload, p.ttl)
	pipe.Publish(ctx, p.channel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
