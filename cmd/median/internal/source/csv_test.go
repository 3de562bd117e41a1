package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shubham-shewale/price-median/cmd/median/internal/source"
	"github.com/shubham-shewale/price-median/cmd/median/internal/testutils"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestParse_SkipsBadRows(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := &testutils.MockRecorder{}
	r := source.NewDirReader("", nil, zap.New(core), rec)

	body := strings.Join([]string{
		"symbol;receive_ts;price",
		"BTC;100;10.0",
		"BTC;101;abc",       // non-numeric price
		"BTC;-5;10",         // negative timestamp
		"BTC;102",           // too few fields
		"",                  // blank line
		" BTC ; 103 ; 7.5 ", // padded fields
	}, "\n")

	obs, err := r.Parse("mem.csv", strings.NewReader(body))
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, uint64(100), obs[0].ReceiveTS)
	assert.Equal(t, "10", obs[0].Price.String())
	assert.Equal(t, uint64(103), obs[1].ReceiveTS)
	assert.Equal(t, "7.5", obs[1].Price.String())

	assert.Equal(t, 3, logs.FilterMessage("Skipping malformed row").Len())
	assert.Equal(t, 2, rec.Read)
	assert.Equal(t, 3, rec.Skipped)

	lines := []int64{}
	for _, e := range logs.FilterMessage("Skipping malformed row").All() {
		lines = append(lines, e.ContextMap()["line"].(int64))
	}
	assert.Equal(t, []int64{3, 4, 5}, lines)
}

func TestParse_UnbalancedQuoteSkipsOnlyThatRow(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := &testutils.MockRecorder{}
	r := source.NewDirReader("", nil, zap.New(core), rec)

	body := "receive_ts;price\n1;10\n2;\"oops\n3;30\n4;40\n5;50\n"

	obs, err := r.Parse("mem.csv", strings.NewReader(body))
	require.NoError(t, err)

	got := make([]uint64, 0, len(obs))
	for _, o := range obs {
		got = append(got, o.ReceiveTS)
	}
	assert.Equal(t, []uint64{1, 3, 4, 5}, got)
	assert.Equal(t, 1, rec.Skipped)

	skipped := logs.FilterMessage("Skipping malformed row").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(3), skipped[0].ContextMap()["line"])
}

func TestParse_QuotedFieldsAreNotUnquoted(t *testing.T) {
	rec := &testutils.MockRecorder{}
	r := source.NewDirReader("", nil, zap.NewNop(), rec)

	obs, err := r.Parse("mem.csv", strings.NewReader("receive_ts;price\n1;\"10\"\n2;11\n"))
	require.NoError(t, err)

	require.Len(t, obs, 1)
	assert.Equal(t, uint64(2), obs[0].ReceiveTS)
	assert.Equal(t, 1, rec.Skipped)
}

func TestParse_CRLFLineEndings(t *testing.T) {
	r := source.NewDirReader("", nil, zap.NewNop(), nil)

	obs, err := r.Parse("mem.csv", strings.NewReader("receive_ts;price\r\n1;10\r\n\r\n2;11\r\n"))
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, "11", obs[1].Price.String())
}

func TestParse_MissingColumns(t *testing.T) {
	r := source.NewDirReader("", nil, zap.NewNop(), nil)

	_, err := r.Parse("mem.csv", strings.NewReader("receive_ts;bid\n1;2\n"))
	assert.ErrorIs(t, err, source.ErrMissingColumns)
}

func TestParse_EmptyDocument(t *testing.T) {
	r := source.NewDirReader("", nil, zap.NewNop(), nil)

	obs, err := r.Parse("mem.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestReadAll_FiltersFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "btc_1.csv", "receive_ts;price\n1;10\n2;11\n")
	writeFile(t, dir, "btc_2.csv", "price;receive_ts\n12;3\n")
	writeFile(t, dir, "eth_1.csv", "receive_ts;price\n4;99\n")
	writeFile(t, dir, "btc_notes.txt", "receive_ts;price\n5;1\n")
	writeFile(t, dir, "btc_bad.csv", "ts;value\n6;1\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "btc_dir.csv"), 0o755))

	rec := &testutils.MockRecorder{}
	r := source.NewDirReader(dir, []string{"btc"}, zap.NewNop(), rec)

	obs, err := r.ReadAll()
	require.NoError(t, err)

	var ts []uint64
	for _, o := range obs {
		ts = append(ts, o.ReceiveTS)
	}
	assert.ElementsMatch(t, []uint64{1, 2, 3}, ts)
	assert.Equal(t, 2, rec.Files)
}

func TestReadAll_NoMasksReadsEveryCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "receive_ts;price\n1;10\n")
	writeFile(t, dir, "b.csv", "receive_ts;price\n2;20\n")

	obs, err := source.NewDirReader(dir, nil, zap.NewNop(), nil).ReadAll()
	require.NoError(t, err)
	assert.Len(t, obs, 2)
}

func TestReadAll_MissingDirectory(t *testing.T) {
	r := source.NewDirReader(filepath.Join(t.TempDir(), "missing"), nil, zap.NewNop(), nil)

	_, err := r.ReadAll()
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrInputDir))
}

func TestMatchesMasks(t *testing.T) {
	assert.True(t, source.MatchesMasks("anything.csv", nil))
	assert.True(t, source.MatchesMasks("trades_btc.csv", []string{"eth", "btc"}))
	assert.False(t, source.MatchesMasks("trades_sol.csv", []string{"eth", "btc"}))
}
