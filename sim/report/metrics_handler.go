package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hive-sim/hive/sim"
)

// MetricsHandler exposes filed reports as Prometheus counters, one
// instance per named report type, registered against a private registry
// (never the global DefaultRegisterer, so multiple Reporters — e.g. one
// per test — never collide on metric registration).
type MetricsHandler struct {
	registry      *prometheus.Registry
	reportsByType *prometheus.CounterVec
	simTime       prometheus.Gauge
}

// NewMetricsHandler constructs a MetricsHandler with its own registry,
// returned alongside it so the CLI layer can serve it over promhttp.
func NewMetricsHandler() (*MetricsHandler, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	reportsByType := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hive_reports_total",
		Help: "Count of filed simulation reports by type.",
	}, []string{"type"})
	simTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hive_sim_time_seconds",
		Help: "Current simulation clock (sim_time), in seconds.",
	})
	registry.MustRegister(reportsByType, simTime)
	return &MetricsHandler{registry: registry, reportsByType: reportsByType, simTime: simTime}, registry
}

func (h *MetricsHandler) HandleReport(r sim.Report) {
	h.reportsByType.WithLabelValues(r.Type).Inc()
}

func (h *MetricsHandler) Flush(simTime int64) error {
	h.simTime.Set(float64(simTime))
	return nil
}

func (h *MetricsHandler) Close() error { return nil }
