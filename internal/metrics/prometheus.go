package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "glycoguard"

// PrometheusRecorder exports Recorder events as Prometheus collectors.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	predictions   *prometheus.CounterVec
	inference     *prometheus.HistogramVec
	batchRows     prometheus.Histogram
	historyWrites *prometheus.CounterVec
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheus creates a recorder backed by its own registry.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),

		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "predictions_total",
			Help:      "Total number of scored feature rows.",
		}, []string{"source", "label"}),

		inference: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "inference_duration_seconds",
			Help:      "Duration of model evaluation.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12), // 50us to ~100ms
		}, []string{"source"}),

		batchRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "batch_rows",
			Help:      "Number of rows per CSV batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
		}),

		historyWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "writes_total",
			Help:      "History write attempts by outcome.",
		}, []string{"status"}),

		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"status"}),

		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"status"}),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
	}

	p.registry.MustRegister(
		p.predictions,
		p.inference,
		p.batchRows,
		p.historyWrites,
		p.registrations,
		p.logins,
		p.httpInFlight,
		p.httpRequests,
		p.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return p
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler exposes the registry in Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncPrediction counts a scored row.
func (p *PrometheusRecorder) IncPrediction(source, label string) {
	p.predictions.WithLabelValues(source, label).Inc()
}

// ObserveInferenceDuration records model evaluation time.
func (p *PrometheusRecorder) ObserveInferenceDuration(source string, duration time.Duration) {
	p.inference.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveBatchRows records the size of a CSV batch.
func (p *PrometheusRecorder) ObserveBatchRows(rows int) {
	p.batchRows.Observe(float64(rows))
}

// IncHistoryWrite counts history write outcomes.
func (p *PrometheusRecorder) IncHistoryWrite(status string) {
	p.historyWrites.WithLabelValues(status).Inc()
}

// IncRegistration counts registration outcomes.
func (p *PrometheusRecorder) IncRegistration(status string) {
	p.registrations.WithLabelValues(status).Inc()
}

// IncLogin counts login outcomes.
func (p *PrometheusRecorder) IncLogin(status string) {
	p.logins.WithLabelValues(status).Inc()
}

// Instrument wraps next with HTTP request metrics.
// Routes are labelled by their chi pattern so path parameters do not
// explode label cardinality.
func (p *PrometheusRecorder) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		p.httpInFlight.Inc()
		defer p.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)

		p.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		p.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
