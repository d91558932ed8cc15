package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sweeps_prefill"

// Metrics holds the Prometheus counters and gauges for one generator run.
// Each run owns a fresh registry; the generator can dump it in the node
// exporter textfile format when a metrics file is configured.
type Metrics struct {
	Registry *prometheus.Registry

	FilesRead      *prometheus.CounterVec // labels: kind={seed,cabrillo}
	FilesFailed    *prometheus.CounterVec // labels: kind={seed,cabrillo}
	EntriesSkipped prometheus.Counter
	Observations   *prometheus.CounterVec // labels: kind={seed,cabrillo}
	LinesSkipped   *prometheus.CounterVec // labels: kind={seed,cabrillo}
	Callsigns      prometheus.Gauge
	Ambiguities    *prometheus.CounterVec // labels: field={section,check,precedence}
	ExportBytes    *prometheus.CounterVec // labels: format
	RunDuration    prometheus.Gauge
}

// NewMetrics creates all run metrics and registers them with a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		FilesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_read_total",
			Help:      "Input files read, by source kind.",
		}, []string{"kind"}),
		FilesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Input files that could not be read, by source kind.",
		}, []string{"kind"}),
		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dir_entries_skipped_total",
			Help:      "Non-regular directory entries skipped during the log walk.",
		}),
		Observations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_total",
			Help:      "Observations added to the store, by source kind.",
		}, []string{"kind"}),
		LinesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_skipped_total",
			Help:      "Malformed input lines skipped, by source kind.",
		}, []string{"kind"}),
		Callsigns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "callsigns",
			Help:      "Distinct callsigns in the merged prefill.",
		}),
		Ambiguities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ambiguities_total",
			Help:      "Voted fields whose latest-year observations disagreed, by field.",
		}, []string{"field"}),
		ExportBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_bytes_total",
			Help:      "Bytes written per export format.",
		}, []string{"format"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}

	m.Registry.MustRegister(
		m.FilesRead,
		m.FilesFailed,
		m.EntriesSkipped,
		m.Observations,
		m.LinesSkipped,
		m.Callsigns,
		m.Ambiguities,
		m.ExportBytes,
		m.RunDuration,
	)

	return m
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text exposition format, replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
