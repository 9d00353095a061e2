package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	searchTotal      *prometheus.CounterVec
	searchResults    prometheus.Histogram
	sessionLatency   *prometheus.HistogramVec
	wsConnections    prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of requests to the question bank backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	searchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "question_searches_total",
		Help: "Question searches by outcome",
	}, []string{"outcome"})

	searchResults := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "question_search_results",
		Help:    "Number of questions returned per successful search",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	sessionLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "session_store_seconds",
		Help:    "Latency of session store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	wsConnections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notification_connections",
		Help: "Open notification websocket connections",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, searchTotal, searchResults, sessionLatency, wsConnections, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		searchTotal:      searchTotal,
		searchResults:    searchResults,
		sessionLatency:   sessionLatency,
		wsConnections:    wsConnections,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveUpstream records a backend call. Status 0 means the request never got a response.
func (m *MetricsService) ObserveUpstream(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = fmt.Sprintf("%d", status)
	}
	m.upstreamDuration.WithLabelValues(endpoint, label).Observe(duration.Seconds())
}

// RecordSearch counts a finished search. Outcomes are success, failure and stale.
func (m *MetricsService) RecordSearch(outcome string, results int) {
	if m == nil {
		return
	}
	m.searchTotal.WithLabelValues(outcome).Inc()
	if outcome == SearchOutcomeSuccess {
		m.searchResults.Observe(float64(results))
	}
}

// ObserveSessionStore records session store latency for op (get, save).
func (m *MetricsService) ObserveSessionStore(op string, duration time.Duration) {
	if m == nil {
		return
	}
	m.sessionLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// NotificationConnections adjusts the open websocket gauge by delta.
func (m *MetricsService) NotificationConnections(delta int) {
	if m == nil {
		return
	}
	m.wsConnections.Add(float64(delta))
}
