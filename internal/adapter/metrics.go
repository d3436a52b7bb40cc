package adapter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	m "github.com/mouse-blink/codemodder/internal/model"
)

// File status label values.
const (
	FileChanged   = "changed"
	FileUnchanged = "unchanged"
	FileFailed    = "failed"
)

// Metrics collects counters for one run and exports them in the node
// exporter textfile format.
type Metrics interface {
	ObserveFile(result m.FileResult)
	ObserveRun(elapsed time.Duration)
	WriteTextfile(path m.Path) error
}

type promMetrics struct {
	registry *prometheus.Registry

	// filesTotal counts processed files by status (changed, unchanged, failed).
	filesTotal *prometheus.CounterVec
	// changesTotal counts recorded changes by codemod id.
	changesTotal *prometheus.CounterVec
	// runSeconds is the duration of the whole run.
	runSeconds prometheus.Gauge
}

// NewMetrics returns Metrics backed by a private prometheus registry.
func NewMetrics() Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &promMetrics{
		registry: reg,
		filesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codemodder",
			Name:      "files_total",
			Help:      "Processed python files by outcome",
		}, []string{"status"}),
		changesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codemodder",
			Name:      "changes_total",
			Help:      "Recorded changes by codemod",
		}, []string{"codemod"}),
		runSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "codemodder",
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of the last run",
		}),
	}
}

func (p *promMetrics) ObserveFile(result m.FileResult) {
	switch {
	case result.Err != nil:
		p.filesTotal.WithLabelValues(FileFailed).Inc()
	case result.Changed():
		p.filesTotal.WithLabelValues(FileChanged).Inc()
	default:
		p.filesTotal.WithLabelValues(FileUnchanged).Inc()
	}

	for _, outcome := range result.Codemods {
		p.changesTotal.WithLabelValues(outcome.ID).Add(float64(len(outcome.Changes)))
	}
}

func (p *promMetrics) ObserveRun(elapsed time.Duration) {
	p.runSeconds.Set(elapsed.Seconds())
}

func (p *promMetrics) WriteTextfile(path m.Path) error {
	return prometheus.WriteToTextfile(string(path), p.registry)
}
