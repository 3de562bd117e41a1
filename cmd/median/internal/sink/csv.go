// Package sink writes emitted median records to the output file and mirrors them to Redis and Kafka.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shubham-shewale/price-median/pkg/models"
)

const (
	// FileName is the name of the changelog inside the output directory.
	FileName = "median_result.csv"

	HeaderReceiveTS   = "receive_ts"
	HeaderPriceMedian = "price_median"
)

// CSVSink appends records to <dir>/median_result.csv.
// The file is truncated and given its header on open; each record is flushed as it is written.
type CSVSink struct {
	path string
	file *os.File
	w    *csv.Writer
}

func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	s := &CSVSink{path: path, file: f, w: w}
	if err := s.writeRow(HeaderReceiveTS, HeaderPriceMedian); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return s, nil
}

func (s *CSVSink) Write(_ context.Context, rec models.MedianRecord) error {
	return s.writeRow(strconv.FormatUint(rec.ReceiveTS, 10), rec.Median)
}

func (s *CSVSink) writeRow(fields ...string) error {
	if err := s.w.Write(fields); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Path returns the location of the output file.
func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
