// Package source collects price observations from ';'-delimited files in a directory.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/pkg/models"
)

const (
	Delimiter       = ';'
	Extension       = ".csv"
	ColumnReceiveTS = "receive_ts"
	ColumnPrice     = "price"

	// MaxLineSize bounds a single input line.
	MaxLineSize = 1 << 20
)

var (
	// ErrInputDir is returned when the input directory cannot be listed.
	ErrInputDir = errors.New("input directory unavailable")
	// ErrMissingColumns is returned for files whose header lacks a required column.
	ErrMissingColumns = errors.New("missing required columns")
)

// Logger abstracts the logging library
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
}

// Recorder receives per-file and per-row counts. Implemented by metrics.Recorder.
type Recorder interface {
	FileRead()
	ObservationRead()
	ObservationSkipped()
}

type nopRecorder struct{}

func (nopRecorder) FileRead()           {}
func (nopRecorder) ObservationRead()    {}
func (nopRecorder) ObservationSkipped() {}

// DirReader reads every matching file of a directory.
type DirReader struct {
	dir      string
	masks    []string
	logger   Logger
	recorder Recorder
}

func NewDirReader(dir string, masks []string, logger Logger, recorder Recorder) *DirReader {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &DirReader{
		dir:      dir,
		masks:    masks,
		logger:   logger,
		recorder: recorder,
	}
}

// ReadAll returns the observations of all matching files, unordered.
// Files that cannot be opened or lack the required columns are logged and skipped;
// only a missing or unreadable directory fails the call.
func (r *DirReader) ReadAll() ([]models.Observation, error) {
	info, err := os.Stat(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputDir, r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		out   []models.Observation
		files int
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !MatchesMasks(name, r.masks) || filepath.Ext(name) != Extension {
			continue
		}

		files++
		path := filepath.Join(r.dir, name)
		r.logger.Info("Reading file", zap.String("path", path))

		obs, err := r.readFile(path)
		if err != nil {
			r.logger.Warn("Failed to read file", zap.String("path", path), zap.Error(err))
			continue
		}
		r.recorder.FileRead()
		out = append(out, obs...)
	}

	r.logger.Info("Input collected", zap.Int("files", files), zap.Int("rows", len(out)))
	return out, nil
}

func (r *DirReader) readFile(path string) ([]models.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return r.Parse(path, f)
}

// Parse reads one delimited document. name is used in log fields only.
// Lines are split on the delimiter as-is; quotes carry no meaning, so a stray
// quote invalidates only its own line.
// An empty document yields no observations and no error.
func (r *DirReader) Parse(name string, in io.Reader) ([]models.Observation, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var (
		out        []models.Observation
		line       int
		need       int
		headerSeen bool
	)
	idxTS, idxPrice := -1, -1
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" {
			continue
		}
		fields := splitFields(text)

		if !headerSeen {
			headerSeen = true
			for i, col := range fields {
				switch col {
				case ColumnReceiveTS:
					idxTS = i
				case ColumnPrice:
					idxPrice = i
				}
			}
			if idxTS < 0 || idxPrice < 0 {
				r.logger.Error("File missing required columns", zap.String("path", name), zap.Strings("header", fields))
				return nil, ErrMissingColumns
			}
			need = max(idxTS, idxPrice)
			continue
		}

		if len(fields) <= need {
			r.skip(name, line, "malformed CSV line", fmt.Errorf("expected at least %d fields, got %d", need+1, len(fields)))
			continue
		}
		obs, err := ParseObservation(fields[idxTS], fields[idxPrice])
		if err != nil {
			r.skip(name, line, "invalid numeric value", err)
			continue
		}
		r.recorder.ObservationRead()
		out = append(out, obs)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read line %d: %w", line+1, err)
	}

	return out, nil
}

func splitFields(line string) []string {
	fields := strings.Split(line, string(Delimiter))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func (r *DirReader) skip(name string, line int, reason string, err error) {
	r.recorder.ObservationSkipped()
	r.logger.Warn("Skipping malformed row",
		zap.String("path", name),
		zap.Int("line", line),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// ParseObservation parses the two required fields of a row.
// The timestamp must be a base-10 unsigned integer, the price a plain decimal.
func ParseObservation(ts, price string) (models.Observation, error) {
	receiveTS, err := strconv.ParseUint(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return models.Observation{}, fmt.Errorf("receive_ts: %w", err)
	}
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return models.Observation{}, fmt.Errorf("price: %w", err)
	}
	return models.Observation{ReceiveTS: receiveTS, Price: p}, nil
}

// MatchesMasks reports whether name contains any of masks. No masks match everything.
func MatchesMasks(name string, masks []string) bool {
	if len(masks) == 0 {
		return true
	}
	for _, m := range masks {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
