package generator_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/cmd/generator/internal/generator"
	"github.com/shubham-shewale/price-median/cmd/generator/internal/testutils"
)

func TestGenerator_Rows(t *testing.T) {
	logger := zap.NewNop()

	// Fix Randomness: Always pick Index 0 (AAPL), Always return 0.5 fluctuation
	mockRand := &testutils.MockRand{ValInt: 0, ValFloat: 0.5}

	// Fix Time: Start at Epoch
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	basePrices := map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(100)}
	gen := generator.NewPriceGenerator(logger, []string{"AAPL"}, basePrices, mockRand, mockClock, 0)

	var buf bytes.Buffer
	require.NoError(t, gen.WriteRows(&buf, "AAPL", 2))

	// (0.5 * 10) - 5 = 0 fluctuation, so price equals the base price.
	want := "receive_ts;price;symbol\n0;100.00000000;AAPL\n100000;100.00000000;AAPL\n"
	assert.Equal(t, want, buf.String())
}

func TestGenerator_BadRows(t *testing.T) {
	mockRand := &testutils.MockRand{ValInt: 0, ValFloat: 0.5}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(1, 0)}

	gen := generator.NewPriceGenerator(zap.NewNop(), []string{"TSLA"},
		map[string]decimal.Decimal{"TSLA": decimal.NewFromInt(700)}, mockRand, mockClock, 0.9)

	var buf bytes.Buffer
	require.NoError(t, gen.WriteRows(&buf, "TSLA", 1))

	assert.Contains(t, buf.String(), "1000000;n/a;TSLA")
}

func TestGenerator_Files(t *testing.T) {
	dir := t.TempDir()
	mockRand := &testutils.MockRand{ValInt: 1, ValFloat: 0.9}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	tickers := []string{"MSFT", "GOOG"}
	basePrices := map[string]decimal.Decimal{"MSFT": decimal.NewFromInt(300), "GOOG": decimal.NewFromInt(2000)}
	gen := generator.NewPriceGenerator(zap.NewNop(), tickers, basePrices, mockRand, mockClock, 0)

	paths, err := gen.Generate(dir, "trades", 2, 3)
	require.NoError(t, err)

	// MockRand returns 1 -> Index 1 -> GOOG
	wantNames := []string{"trades_goog_000.csv", "trades_goog_001.csv"}
	require.Len(t, paths, len(wantNames))
	for i, p := range paths {
		assert.Equal(t, wantNames[i], filepath.Base(p))

		body, err := os.ReadFile(p)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		require.Len(t, lines, 4, "header + 3 rows")
		// (0.9 * 10) - 5 = 4
		assert.True(t, strings.HasSuffix(lines[1], ";2004.00000000;GOOG"), "unexpected row %q", lines[1])
	}
}

func TestGenerator_NoTickers(t *testing.T) {
	gen := generator.NewPriceGenerator(zap.NewNop(), nil, nil, &testutils.MockRand{}, &testutils.MockClock{}, 0)

	_, err := gen.Generate(t.TempDir(), "x", 1, 1)
	assert.Error(t, err)
}
