// Package metrics counts what a run read, skipped and emitted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "median"

// Recorder owns a private registry so a run never touches the global one.
type Recorder struct {
	registry *prometheus.Registry

	filesRead     prometheus.Counter
	obsRead       prometheus.Counter
	obsSkipped    prometheus.Counter
	emitted       prometheus.Counter
	publishErrors *prometheus.CounterVec
	lastValue     prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		filesRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_read_total",
			Help:      "Input files read successfully.",
		}),
		obsRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_read_total",
			Help:      "Rows parsed into observations.",
		}),
		obsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_skipped_total",
			Help:      "Rows dropped because they were malformed.",
		}),
		emitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Median changes written to the output.",
		}),
		publishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed publications of a median change.",
		}, []string{"publisher"}),
		lastValue: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_value",
			Help:      "Last emitted median.",
		}),
	}
}

func (r *Recorder) FileRead()           { r.filesRead.Inc() }
func (r *Recorder) ObservationRead()    { r.obsRead.Inc() }
func (r *Recorder) ObservationSkipped() { r.obsSkipped.Inc() }

func (r *Recorder) RecordEmitted(m decimal.Decimal) {
	r.emitted.Inc()
	r.lastValue.Set(m.InexactFloat64())
}

func (r *Recorder) PublishFailed(publisher string) {
	r.publishErrors.WithLabelValues(publisher).Inc()
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes the current values in the text exposition format,
// for pickup by a node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
