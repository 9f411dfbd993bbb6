// Package metrics exposes Prometheus metrics of the reconciliation service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/dnmerge/pkg/report"
)

const namespace = "dnmerge"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	rowsTotal     *prometheus.CounterVec
	backfilled    prometheus.Counter
	uploadBytes   prometheus.Histogram
	downloadTotal *prometheus.CounterVec
}

// New registers the collectors. cachedResults reports the number of
// results waiting for download.
func New(cachedResults func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Reconciliation runs by result code.",
		}, []string{"code"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciliation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Reconciled rows by origin.",
		}, []string{"origin"}),
		backfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfilled_values_total",
			Help:      "Values taken from the secondary dataset.",
		}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of reconcile uploads.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		downloadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_downloads_total",
			Help:      "Cached result downloads by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runsTotal,
		m.runDuration,
		m.rowsTotal,
		m.backfilled,
		m.uploadBytes,
		m.downloadTotal,
	)
	if cachedResults != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_results",
			Help:      "Results waiting for download.",
		}, cachedResults))
	}
	return m
}

// ObserveRun records a successful run.
func (m *Metrics) ObserveRun(s report.Summary, d time.Duration) {
	m.runsTotal.WithLabelValues("OK").Inc()
	m.runDuration.Observe(d.Seconds())
	m.rowsTotal.WithLabelValues("both").Add(float64(s.Both))
	m.rowsTotal.WithLabelValues("primary_only").Add(float64(s.PrimaryOnly))
	m.rowsTotal.WithLabelValues("secondary_only").Add(float64(s.SecondaryOnly))
	m.backfilled.Add(float64(s.Backfilled))
}

// ObserveFailure records a failed run by error code.
func (m *Metrics) ObserveFailure(code string, d time.Duration) {
	m.runsTotal.WithLabelValues(code).Inc()
	m.runDuration.Observe(d.Seconds())
}

// ObserveUpload records the size of a reconcile request body.
func (m *Metrics) ObserveUpload(bytes int64) {
	if bytes >= 0 {
		m.uploadBytes.Observe(float64(bytes))
	}
}

// ObserveDownload records a result download attempt.
func (m *Metrics) ObserveDownload(found bool) {
	outcome := "hit"
	if !found {
		outcome = "miss"
	}
	m.downloadTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
