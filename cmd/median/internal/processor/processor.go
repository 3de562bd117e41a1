package processor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/cmd/median/internal/median"
	"github.com/shubham-shewale/price-median/pkg/models"
)

// ErrSinkWrite wraps every failure of the primary sink.
var ErrSinkWrite = errors.New("sink write failed")

type Processor struct {
	logger     Logger
	sink       Sink
	publishers []Publisher
	recorder   Recorder
}

func NewProcessor(logger Logger, sink Sink, recorder Recorder, publishers ...Publisher) *Processor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Processor{
		logger:     logger,
		sink:       sink,
		publishers: publishers,
		recorder:   recorder,
	}
}

// Run orders the observations and feeds them through a fresh median engine,
// writing a record whenever the formatted median differs from the last one written.
// Records are written as they are produced, so an aborted run leaves a valid prefix.
func (p *Processor) Run(ctx context.Context, obs []models.Observation) (Summary, error) {
	Order(obs)

	engine := median.NewEngine()
	var (
		summary Summary
		last    string
	)

	p.logger.Info("Processor Started", zap.Int("observations", len(obs)))

	for i, o := range obs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		engine.Insert(o.Price)
		m := engine.Median()
		text := median.Format(m)
		summary.Processed++

		if i > 0 && text == last {
			continue
		}

		rec := models.MedianRecord{ReceiveTS: o.ReceiveTS, Median: text}
		if err := p.sink.Write(ctx, rec); err != nil {
			p.logger.Error("Sink Write Error", zap.Error(err), zap.Uint64("receive_ts", o.ReceiveTS))
			return summary, fmt.Errorf("%w: %w", ErrSinkWrite, err)
		}
		last = text
		summary.Emitted++
		summary.Last = rec
		p.recorder.RecordEmitted(m)
		p.logger.Debug("Median changed", zap.Uint64("receive_ts", rec.ReceiveTS), zap.String("median", rec.Median))

		p.publish(ctx, rec)
	}

	p.logger.Info("Processor Finished",
		zap.Int("processed", summary.Processed),
		zap.Int("emitted", summary.Emitted),
	)
	return summary, nil
}

func (p *Processor) publish(ctx context.Context, rec models.MedianRecord) {
	for _, pub := range p.publishers {
		if err := pub.Write(ctx, rec); err != nil {
			p.recorder.PublishFailed(pub.Name())
			p.logger.Error("Publish Error", zap.String("publisher", pub.Name()), zap.Error(err))
		}
	}
}
