// Package app wires configuration, input, median processing and outputs into one run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/cmd/median/internal/metrics"
	"github.com/shubham-shewale/price-median/cmd/median/internal/processor"
	"github.com/shubham-shewale/price-median/cmd/median/internal/sink"
	"github.com/shubham-shewale/price-median/cmd/median/internal/source"
	"github.com/shubham-shewale/price-median/pkg/config"
)

const kafkaDialTimeout = 5 * time.Second

// Exit codes of the median binary.
const (
	ExitOK          = 0
	ExitUsage       = 1
	ExitConfig      = 2
	ExitSource      = 3
	ExitSink        = 4
	ExitInterrupted = 130
)

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfig
	case errors.Is(err, source.ErrInputDir):
		return ExitSource
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitInterrupted
	default:
		return ExitSink
	}
}

// Run executes one full pass: read, order, compute, write.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Input dir", zap.String("path", cfg.Main.Input))
	logger.Info("Output dir", zap.String("path", cfg.Main.Output))

	recorder := metrics.NewRecorder()
	defer writeMetrics(cfg.Metrics, recorder, logger)

	reader := source.NewDirReader(cfg.Main.Input, cfg.Main.FilenameMask, logger, recorder)
	observations, err := reader.ReadAll()
	if err != nil {
		logger.Error("Failed to collect rows from input dir", zap.Error(err))
		return err
	}
	logger.Info("Total rows to process", zap.Int("rows", len(observations)))

	out, err := sink.NewCSVSink(cfg.Main.Output)
	if err != nil {
		logger.Error("Failed to open output", zap.Error(err))
		return fmt.Errorf("%w: %w", processor.ErrSinkWrite, err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("Error closing output", zap.Error(err))
		}
	}()

	publishers, closeAll := buildPublishers(ctx, cfg, logger)
	defer closeAll()

	proc := processor.NewProcessor(logger, out, recorder, publishers...)
	summary, err := proc.Run(ctx, observations)
	if err != nil {
		return err
	}

	logger.Info("Processing complete",
		zap.String("output", out.Path()),
		zap.Int("emitted", summary.Emitted),
	)
	return nil
}

// buildPublishers connects the enabled mirrors. A publisher that cannot be
// set up is logged and left out; the file output does not depend on it.
func buildPublishers(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]processor.Publisher, func()) {
	var (
		pubs    []processor.Publisher
		closers []func() error
	)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to Redis, publishing disabled", zap.Error(err))
			rdb.Close()
		} else {
			pub := sink.NewRedisPublisher(rdb, cfg.Redis.Key, cfg.Redis.Channel, cfg.Redis.TTL)
			pubs = append(pubs, pub)
			closers = append(closers, pub.Close)
		}
	}

	if cfg.Kafka.Enabled {
		dialer := &sink.RealKafkaDialer{Dialer: &kafka.Dialer{Timeout: kafkaDialTimeout, DualStack: true}}
		pub, err := NewKafkaPublisher(ctx, cfg.Kafka, logger, dialer, sink.RealSleeper{})
		if err != nil {
			logger.Error("Failed to connect to Kafka, publishing disabled", zap.Error(err))
		} else {
			pubs = append(pubs, pub)
			closers = append(closers, pub.Close)
		}
	}

	return pubs, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Error("Error closing publisher", zap.Error(err))
			}
		}
	}
}

// NewKafkaPublisher returns a publisher only if a broker is reachable.
// A topic that cannot be confirmed ready is logged and does not disable publishing.
func NewKafkaPublisher(ctx context.Context, cfg config.KafkaConfig, logger *zap.Logger, dialer sink.KafkaDialer, sleeper sink.Sleeper) (*sink.KafkaPublisher, error) {
	if err := sink.CheckBrokers(ctx, dialer, cfg.Brokers); err != nil {
		return nil, err
	}
	if cfg.CreateTopic {
		tc := sink.NewTopicCreator(logger, dialer, sleeper)
		if err := tc.Create(ctx, cfg.Brokers, cfg.Topic); err != nil {
			logger.Warn("Topic setup incomplete", zap.String("topic", cfg.Topic), zap.Error(err))
		}
	}
	return sink.NewKafkaPublisher(sink.NewKafkaWriter(cfg.Brokers, cfg.Topic)), nil
}

func writeMetrics(cfg config.MetricsConfig, recorder *metrics.Recorder, logger *zap.Logger) {
	if cfg.Textfile == "" {
		return
	}
	if err := recorder.WriteTextfile(cfg.Textfile); err != nil {
		logger.Error("Failed to write metrics", zap.String("path", cfg.Textfile), zap.Error(err))
	}
}
