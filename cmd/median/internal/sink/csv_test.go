package sink_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubham-shewale/price-median/cmd/median/internal/sink"
	"github.com/shubham-shewale/price-median/pkg/models"
)

func TestCSVSink_HeaderAndAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	s, err := sink.NewCSVSink(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, sink.FileName), s.Path())

	body, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "receive_ts;price_median\n", string(body))

	ctx := context.Background()
	require.NoError(t, s.Write(ctx, models.MedianRecord{ReceiveTS: 100, Median: "10.00000000"}))

	// Visible before Close: every record is flushed on write.
	body, err = os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "receive_ts;price_median\n100;10.00000000\n", string(body))

	require.NoError(t, s.Write(ctx, models.MedianRecord{ReceiveTS: 18446744073709551615, Median: "-0.50000000"}))
	require.NoError(t, s.Close())

	body, err = os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "receive_ts;price_median\n100;10.00000000\n18446744073709551615;-0.50000000\n", string(body))
}

func TestCSVSink_TruncatesExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, sink.FileName), []byte("stale;data\n1;2\n"), 0o644))

	s, err := sink.NewCSVSink(dir)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	body, err := os.ReadFile(filepath.Join(dir, sink.FileName))
	require.NoError(t, err)
	assert.Equal(t, "receive_ts;price_median\n", string(body))
}

func TestCSVSink_WriteAfterCloseFails(t *testing.T) {
	s, err := sink.NewCSVSink(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Write(context.Background(), models.MedianRecord{ReceiveTS: 1, Median: "1.00000000"})
	assert.Error(t, err)
}

func TestCSVSink_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := sink.NewCSVSink(filepath.Join(blocker, "out"))
	assert.Error(t, err)
}
