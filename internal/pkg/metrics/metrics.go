package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utilaudit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "utilaudit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// Detection metrics
	detectionRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utilaudit",
			Subsystem: "detection",
			Name:      "runs_total",
			Help:      "Total number of detection runs",
		},
	)

	detectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "utilaudit",
			Subsystem: "detection",
			Name:      "duration_seconds",
			Help:      "Detection run duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	anomaliesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utilaudit",
			Subsystem: "detection",
			Name:      "anomalies_total",
			Help:      "Total number of anomalies detected",
		},
		[]string{"check", "severity"},
	)

	checksSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utilaudit",
			Subsystem: "detection",
			Name:      "checks_skipped_total",
			Help:      "Total number of skipped check evaluations",
		},
		[]string{"check"},
	)

	alertsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utilaudit",
			Subsystem: "alerting",
			Name:      "suppressed_total",
			Help:      "Total number of alerts suppressed by the daily cap",
		},
	)
)

// RecordDetectionRun records one engine invocation.
func RecordDetectionRun(duration time.Duration) {
	detectionRunsTotal.Inc()
	detectionDuration.Observe(duration.Seconds())
}

// RecordAnomaly records one detected anomaly.
func RecordAnomaly(check, severity string) {
	anomaliesDetectedTotal.WithLabelValues(check, severity).Inc()
}

// RecordCheckSkipped records one skipped check evaluation.
func RecordCheckSkipped(check string) {
	checksSkippedTotal.WithLabelValues(check).Inc()
}

// RecordAlertSuppressed records one alert suppressed by the daily cap.
func RecordAlertSuppressed() {
	alertsSuppressedTotal.Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments HTTP handlers with request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.status)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
