package metrics

import (
	"net/http"
	"strconv"
	"time"

	"CryptoSignals/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes the service metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	cyclesTotal        prometheus.Counter
	cycleDuration      prometheus.Histogram
	eventsTotal        *prometheus.CounterVec
	activeSignals      prometheus.Gauge
	snapshotErrors     prometheus.Counter
	triggersCoalesced  prometheus.Counter
	notifyErrors       *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		cyclesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "cryptosignals_cycles_total",
			Help: "Total number of completed scan cycles",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptosignals_cycle_duration_seconds",
			Help:    "Duration of scan cycles in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		eventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptosignals_events_total",
			Help: "Lifecycle events emitted by kind",
		}, []string{"kind"}),
		activeSignals: f.NewGauge(prometheus.GaugeOpts{
			Name: "cryptosignals_active_signals",
			Help: "Number of currently active signals",
		}),
		snapshotErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "cryptosignals_snapshot_errors_total",
			Help: "Symbols skipped because no snapshot could be obtained",
		}),
		triggersCoalesced: f.NewCounter(prometheus.CounterOpts{
			Name: "cryptosignals_triggers_coalesced_total",
			Help: "Scan triggers merged into an in-flight or queued cycle",
		}),
		notifyErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptosignals_notify_errors_total",
			Help: "Notification dispatch failures by dispatcher",
		}, []string{"dispatcher"}),
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptosignals_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		httpRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cryptosignals_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
	}
}

// RecordCycle records a finished cycle.
func (r *Recorder) RecordCycle(took time.Duration, skipped int, events []model.Event, active int) {
	r.cyclesTotal.Inc()
	r.cycleDuration.Observe(took.Seconds())
	r.snapshotErrors.Add(float64(skipped))
	for _, ev := range events {
		r.eventsTotal.WithLabelValues(string(ev.Kind())).Inc()
	}
	r.activeSignals.Set(float64(active))
}

// RecordCoalesced records a trigger merged into another cycle.
func (r *Recorder) RecordCoalesced() {
	r.triggersCoalesced.Inc()
}

// RecordNotifyError records a failed dispatch.
func (r *Recorder) RecordNotifyError(dispatcher string) {
	r.notifyErrors.WithLabelValues(dispatcher).Inc()
}

// RecordHTTPRequest records one served request.
func (r *Recorder) RecordHTTPRequest(route, method string, status int, took time.Duration) {
	r.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpRequestLatency.WithLabelValues(route, method).Observe(took.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
