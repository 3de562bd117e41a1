package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/cmd/generator/internal/generator"
)

var (
	tickers    = []string{"AAPL", "GOOG", "TSLA", "AMZN"}
	basePrices = map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(150),
		"GOOG": decimal.NewFromInt(2800),
		"TSLA": decimal.NewFromInt(700),
		"AMZN": decimal.NewFromInt(3400),
	}
)

func main() {
	out := flag.String("out", "input", "directory to write generated files to")
	prefix := flag.String("prefix", "trades", "file name prefix")
	files := flag.Int("files", 4, "number of files")
	rows := flag.Int("rows", 1000, "rows per file")
	badRatio := flag.Float64("bad-ratio", 0.01, "share of rows with a malformed price")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	// 1. Initialize Zap Logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	r := generator.RealRand{Rand: rand.New(rand.NewSource(*seed))}
	clock := &generator.VirtualClock{Current: time.Now()}
	gen := generator.NewPriceGenerator(logger, tickers, basePrices, r, clock, *badRatio)

	// 2. Generate
	paths, err := gen.Generate(*out, *prefix, *files, *rows)
	if err != nil {
		logger.Error("Generation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("Generator finished", zap.Strings("files", paths), zap.Int64("seed", *seed))
}
