package generator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Header is the first line of every generated file.
const Header = "receive_ts;price;symbol"

// TickInterval is the virtual time between two rows.
const TickInterval = 100 * time.Millisecond

type PriceGenerator struct {
	logger     *zap.Logger
	tickers    []string
	basePrices map[string]decimal.Decimal
	rand       Rand
	clock      Clock
	badRatio   float64
}

func NewPriceGenerator(
	logger *zap.Logger,
	tickers []string,
	basePrices map[string]decimal.Decimal,
	rnd Rand,
	clock Clock,
	badRatio float64,
) *PriceGenerator {
	return &PriceGenerator{
		logger:     logger,
		tickers:    tickers,
		basePrices: basePrices,
		rand:       rnd,
		clock:      clock,
		badRatio:   badRatio,
	}
}

// Generate writes files CSV files of rows rows each into dir and returns their paths.
// Every file holds one symbol, named <prefix>_<symbol>_<n>.csv, so a filename mask
// can select a symbol.
func (g *PriceGenerator) Generate(dir, prefix string, files, rows int) ([]string, error) {
	if len(g.tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	paths := make([]string, 0, files)
	for i := 0; i < files; i++ {
		symbol := g.tickers[g.rand.Intn(len(g.tickers))]
		name := fmt.Sprintf("%s_%s_%03d.csv", prefix, strings.ToLower(symbol), i)
		path := filepath.Join(dir, name)

		if err := g.writeFile(path, symbol, rows); err != nil {
			return paths, err
		}
		g.logger.Info("Generated file", zap.String("path", path), zap.String("symbol", symbol), zap.Int("rows", rows))
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *PriceGenerator) writeFile(path, symbol string, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := g.WriteRows(w, symbol, rows); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// WriteRows writes the header and rows ticks for symbol.
func (g *PriceGenerator) WriteRows(w io.Writer, symbol string, rows int) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return err
	}

	base := g.basePrices[symbol]
	for i := 0; i < rows; i++ {
		ts := strconv.FormatInt(g.clock.Now().UnixMicro(), 10)

		price := "n/a"
		if g.rand.Float64() >= g.badRatio {
			fluctuation := decimal.NewFromFloat((g.rand.Float64() * 10) - 5)
			price = base.Add(fluctuation).StringFixed(8)
		}

		if _, err := fmt.Fprintf(w, "%s;%s;%s\n", ts, price, symbol); err != nil {
			return err
		}
		g.clock.Sleep(TickInterval)
	}
	return nil
}
