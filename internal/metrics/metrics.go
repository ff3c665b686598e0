// Package metrics exposes Prometheus instrumentation for the signal service.
package metrics

import (
	"net/http"
	"time"

	"signalBot/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signalbot"

// Analysis outcomes recorded per pair.
const (
	OutcomeSignal = "signal"
	OutcomeHold   = "hold"
	OutcomeError  = "error"
)

// Metrics holds all Prometheus metrics for the signal service.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec // labels: pair, outcome
	SignalsTotal     *prometheus.CounterVec // labels: pair, direction, strength
	AnalysisDuration *prometheus.HistogramVec
	FetchErrors      *prometheus.CounterVec // labels: source
	FetchRetries     *prometheus.CounterVec // labels: source
	DeliveriesTotal  *prometheus.CounterVec // labels: channel, status
	LastRun          prometheus.Gauge
	Confluence       prometheus.Histogram
}

// New creates the metrics on a private registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Pair analyses by outcome",
		}, []string{"pair", "outcome"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Signals produced",
		}, []string{"pair", "direction", "strength"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Fetch plus synthesis latency per pair",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"pair"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Bar fetches that failed after all retries",
		}, []string{"source"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Bar fetch attempts that were retried",
		}, []string{"source"}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Report deliveries by channel and status",
		}, []string{"channel", "status"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed analysis run",
		}),
		Confluence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signal_confluence",
			Help:      "Evidence flags behind each produced signal",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AnalysesTotal,
		m.SignalsTotal,
		m.AnalysisDuration,
		m.FetchErrors,
		m.FetchRetries,
		m.DeliveriesTotal,
		m.LastRun,
		m.Confluence,
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis records one pair analysis. sig may be nil for HOLD.
func (m *Metrics) ObserveAnalysis(pair string, sig *domain.Signal, err error, elapsed time.Duration) {
	m.AnalysisDuration.WithLabelValues(pair).Observe(elapsed.Seconds())
	switch {
	case err != nil:
		m.AnalysesTotal.WithLabelValues(pair, OutcomeError).Inc()
	case sig == nil:
		m.AnalysesTotal.WithLabelValues(pair, OutcomeHold).Inc()
	default:
		m.AnalysesTotal.WithLabelValues(pair, OutcomeSignal).Inc()
		m.SignalsTotal.WithLabelValues(pair, string(sig.Direction), string(sig.Strength)).Inc()
		m.Confluence.Observe(float64(sig.Confluence()))
	}
}

// ObserveDelivery records a delivery attempt on a channel such as "telegram" or "redis".
func (m *Metrics) ObserveDelivery(channel string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.DeliveriesTotal.WithLabelValues(channel, status).Inc()
}

// MarkRun stamps the completion time of an analysis run.
func (m *Metrics) MarkRun(at time.Time) {
	m.LastRun.Set(float64(at.Unix()))
}
