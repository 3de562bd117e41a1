package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/cmd/median/internal/app"
	"github.com/shubham-shewale/price-median/cmd/median/internal/processor"
	"github.com/shubham-shewale/price-median/cmd/median/internal/sink"
	"github.com/shubham-shewale/price-median/cmd/median/internal/source"
	"github.com/shubham-shewale/price-median/cmd/median/internal/testutils"
	"github.com/shubham-shewale/price-median/pkg/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, app.ExitOK},
		{fmt.Errorf("%w: main.input is required", config.ErrInvalidConfig), app.ExitConfig},
		{fmt.Errorf("%w: stat /in: no such file", source.ErrInputDir), app.ExitSource},
		{fmt.Errorf("%w: disk full", processor.ErrSinkWrite), app.ExitSink},
		{context.Canceled, app.ExitInterrupted},
		{errors.New("anything else"), app.ExitSink},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, app.ExitCode(tt.err), "err=%v", tt.err)
	}
}

func TestNewKafkaPublisher_UnreachableBrokerDisablesPublisher(t *testing.T) {
	cfg := config.KafkaConfig{
		Enabled:     true,
		Brokers:     []string{"down:9092"},
		Topic:       "price_medians",
		CreateTopic: true,
	}
	dialer := &testutils.MockKafkaDialer{Unreachable: map[string]bool{"down:9092": true}}

	pub, err := app.NewKafkaPublisher(context.Background(), cfg, zap.NewNop(), dialer, &testutils.MockSleeper{})
	assert.ErrorIs(t, err, sink.ErrNoBroker)
	assert.Nil(t, pub)
	assert.Equal(t, []string{"down:9092"}, dialer.Dialed)
}

func TestNewKafkaPublisher_ReachableBroker(t *testing.T) {
	cfg := config.KafkaConfig{
		Enabled:     true,
		Brokers:     []string{"up:9092"},
		Topic:       "price_medians",
		CreateTopic: true,
	}
	dialer := &testutils.MockKafkaDialer{}

	pub, err := app.NewKafkaPublisher(context.Background(), cfg, zap.NewNop(), dialer, &testutils.MockSleeper{})
	require.NoError(t, err)
	defer pub.Close()

	assert.Equal(t, "kafka", pub.Name())
	require.NotNil(t, dialer.ConnSpy)
	assert.Equal(t, []string{"price_medians"}, dialer.ConnSpy.CreatedTopics)
}

func TestNewKafkaPublisher_SkipsTopicCreation(t *testing.T) {
	cfg := config.KafkaConfig{
		Enabled: true,
		Brokers: []string{"up:9092"},
		Topic:   "price_medians",
	}
	dialer := &testutils.MockKafkaDialer{}

	pub, err := app.NewKafkaPublisher(context.Background(), cfg, zap.NewNop(), dialer, &testutils.MockSleeper{})
	require.NoError(t, err)
	defer pub.Close()

	assert.Empty(t, dialer.ConnSpy.CreatedTopics)
	assert.Equal(t, []string{"up:9092"}, dialer.Dialed)
}
