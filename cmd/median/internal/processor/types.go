package processor

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/pkg/models"
)

// Logger abstracts the logging library
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// Sink is the output changelog. A failed Write aborts the run.
type Sink interface {
	Write(ctx context.Context, rec models.MedianRecord) error
}

// Publisher mirrors each emitted record somewhere else. Failures are logged and counted only.
type Publisher interface {
	Name() string
	Write(ctx context.Context, rec models.MedianRecord) error
}

// Recorder receives emission statistics. Implemented by metrics.Recorder.
type Recorder interface {
	RecordEmitted(m decimal.Decimal)
	PublishFailed(publisher string)
}

// Summary describes a finished run.
type Summary struct {
	Processed int
	Emitted   int
	Last      models.MedianRecord
}

type nopRecorder struct{}

func (nopRecorder) RecordEmitted(decimal.Decimal) {}
func (nopRecorder) PublishFailed(string)          {}
