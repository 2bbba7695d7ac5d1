package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clearclaim/claims-engine/internal/core/ports"
)

type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	claimsTotal    *prometheus.CounterVec
	claimDuration  *prometheus.HistogramVec
	documentsTotal *prometheus.CounterVec
	fallbacksTotal *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claims",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claims",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claims",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	claimsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claims",
			Subsystem: "pipeline",
			Name:      "claims_total",
			Help:      "Total adjudicated claims by decision status.",
		},
		[]string{"service", "status"},
	)
	claimDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claims",
			Subsystem: "pipeline",
			Name:      "claim_duration_seconds",
			Help:      "Claim processing duration in seconds by decision status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claims",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total classified documents by document type.",
		},
		[]string{"service", "document_type"},
	)
	fallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claims",
			Subsystem: "pipeline",
			Name:      "fallbacks_total",
			Help:      "Total deterministic fallbacks taken by pipeline stage.",
		},
		[]string{"service", "stage"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		claimsTotal,
		claimDuration,
		documentsTotal,
		fallbacksTotal,
	)

	return &PipelineMetrics{
		registry:        registry,
		service:         service,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		claimsTotal:     claimsTotal,
		claimDuration:   claimDuration,
		documentsTotal:  documentsTotal,
		fallbacksTotal:  fallbacksTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *PipelineMetrics) ObserveClaim(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.claimsTotal.WithLabelValues(m.service, status).Inc()
	m.claimDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) CountDocument(documentType string) {
	if documentType == "" {
		documentType = "unknown"
	}
	m.documentsTotal.WithLabelValues(m.service, documentType).Inc()
}

func (m *PipelineMetrics) CountFallback(stage string) {
	if stage == "" {
		stage = "unknown"
	}
	m.fallbacksTotal.WithLabelValues(m.service, stage).Inc()
}

// Nop returns pipeline metrics that record nothing. Used in tests and when
// wiring components that do not need instrumentation.
func Nop() ports.PipelineMetrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) ObserveClaim(string, time.Duration) {}
func (nopMetrics) CountDocument(string)               {}
func (nopMetrics) CountFallback(string)               {}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
