package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_widget"

// Metrics holds the Prometheus collectors for the poll loop and report sinks.
type Metrics struct {
	PollCycles      *prometheus.CounterVec // labels: outcome={published,fetch_error,parse_error}
	FetchErrors     prometheus.Counter
	ParseErrors     *prometheus.CounterVec // labels: field
	LinesScanned    prometheus.Counter
	FieldsExtracted *prometheus.CounterVec // labels: field
	SinkErrors      *prometheus.CounterVec // labels: sink
	CycleDuration   prometheus.Histogram

	LastSuccess     prometheus.Gauge
	IconTemperature prometheus.Gauge
	PollLoopRunning prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Payload fetch failures.",
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Numeric parse failures by field.",
		}, []string{"field"}),
		LinesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_scanned_total",
			Help:      "Payload lines run through the field extractor.",
		}),
		FieldsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_extracted_total",
			Help:      "Report lines produced by field.",
		}, []string{"field"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed report deliveries by sink.",
		}, []string{"sink"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of a fetch-extract-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last published report.",
		}),
		IconTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "icon_temperature",
			Help:      "Rounded temperature shown on the tray icon.",
		}),
		PollLoopRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_loop_running",
			Help:      "1 when the poll loop is active, 0 when shut down.",
		}),
	}
}

// NewMetrics creates the metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PollCycles,
		m.FetchErrors,
		m.ParseErrors,
		m.LinesScanned,
		m.FieldsExtracted,
		m.SinkErrors,
		m.CycleDuration,
		m.LastSuccess,
		m.IconTemperature,
		m.PollLoopRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
