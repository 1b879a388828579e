// Package metrics exposes Prometheus counters and histograms for ingest,
// analysis runs, forecast alerts and monitor cycles.
package metrics

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "greenhouse_"

// Result labels
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultInvalid  = "invalid"
	ResultFallback = "fallback"
	ResultSkipped  = "skipped"
)

var (
	registerOnce sync.Once

	ingestTotal   *prometheus.CounterVec
	ingestLatency *prometheus.HistogramVec

	analysisTotal   *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec

	alertsTotal *prometheus.CounterVec

	monitorCycles   *prometheus.CounterVec
	monitorLatency  prometheus.Histogram
	monitorSequence prometheus.Gauge
)

// Init registers the metrics with the default registry. Safe to call repeatedly.
func Init() {
	registerOnce.Do(func() {
		ingestTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_total",
				Help: "Readings received by source and result",
			},
			[]string{"source", "result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Time to validate and store one reading",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)

		analysisTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "analysis_total",
				Help: "Analyzer runs by analyzer and result",
			},
			[]string{"analyzer", "result"},
		)
		analysisLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analysis_latency_seconds",
				Help:    "Analyzer latency including the batch fetch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"analyzer"},
		)

		alertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "forecast_alerts_total",
				Help: "Forecast alerts raised by type and sensor",
			},
			[]string{"type", "sensor"},
		)

		monitorCycles = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "monitor_cycles_total",
				Help: "Monitor cycles by result",
			},
			[]string{"result"},
		)
		monitorLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "monitor_cycle_seconds",
				Help:    "Monitor cycle duration",
				Buckets: prometheus.DefBuckets,
			},
		)
		monitorSequence = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "monitor_snapshot_sequence",
				Help: "Sequence number of the published monitor snapshot",
			},
		)

		prometheus.MustRegister(
			ingestTotal,
			ingestLatency,
			analysisTotal,
			analysisLatency,
			alertsTotal,
			monitorCycles,
			monitorLatency,
			monitorSequence,
		)
	})
}

// ObserveIngest records one reading received over HTTP or the queue.
func ObserveIngest(source, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if ingestTotal != nil {
		ingestTotal.WithLabelValues(source, result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// ObserveAnalysis records an analyzer run.
func ObserveAnalysis(analyzer, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if analysisTotal != nil {
		analysisTotal.WithLabelValues(analyzer, result).Inc()
	}
	if analysisLatency != nil {
		analysisLatency.WithLabelValues(analyzer).Observe(duration.Seconds())
	}
}

// IncAlert counts a forecast alert.
func IncAlert(alertType, sensor string) {
	if alertsTotal != nil {
		alertsTotal.WithLabelValues(alertType, sensor).Inc()
	}
}

// ObserveMonitorCycle records a monitor cycle.
func ObserveMonitorCycle(result string, duration time.Duration) {
	if monitorCycles != nil {
		monitorCycles.WithLabelValues(result).Inc()
	}
	if monitorLatency != nil {
		monitorLatency.Observe(duration.Seconds())
	}
}

// SetSnapshotSequence records the sequence of the latest published snapshot.
func SetSnapshotSequence(seq uint64) {
	if monitorSequence != nil {
		monitorSequence.Set(float64(seq))
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
