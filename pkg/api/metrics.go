package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Log scan metrics
	loadsTotal       *prometheus.CounterVec
	loadDuration     prometheus.Histogram
	recordsDelivered prometheus.Counter
	messageTypes     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packlog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "packlog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		loadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packlog_loads_total",
				Help: "Total number of log scans",
			},
			[]string{"status"},
		),

		loadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "packlog_load_duration_seconds",
				Help:    "Log scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		recordsDelivered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "packlog_records_delivered_total",
				Help: "Total number of records delivered to consumers",
			},
		),

		messageTypes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "packlog_message_types",
				Help: "Number of message types declared by the open log",
			},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordLoad records one full log scan
func (m *Metrics) RecordLoad(success bool, duration time.Duration, records int) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.loadsTotal.WithLabelValues(status).Inc()
	m.loadDuration.Observe(duration.Seconds())
	m.recordsDelivered.Add(float64(records))
}

// SetMessageTypes updates the declared message type gauge
func (m *Metrics) SetMessageTypes(n int) {
	m.messageTypes.Set(float64(n))
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
