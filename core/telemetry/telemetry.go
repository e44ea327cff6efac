package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures events from the connection cache and the HTTP API.
//
// Implementations are called inline on request paths and must be cheap.
type Collector interface {
	IncConnectAttempt(backend string)
	IncConnectFailure(backend string)
	SetConnectionState(backend string, state int)
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncConnectAttempt(string)                          {}
func (noopCollector) IncConnectFailure(string)                          {}
func (noopCollector) SetConnectionState(string, int)                    {}
func (noopCollector) ObserveRequest(string, string, int, time.Duration) {}

// PrometheusCollector exposes the counters through Prometheus.
type PrometheusCollector struct {
	connectAttempts *prometheus.CounterVec
	connectFailures *prometheus.CounterVec
	connectionState *prometheus.GaugeVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusCollector registers the metrics with reg (the default registerer when nil).
// Registering twice against the same registerer reuses the existing collectors.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	attempts, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_db_connect_attempts_total",
		Help: "Number of underlying database connect operations started.",
	}, []string{"backend"}))
	if err != nil {
		return nil, err
	}

	failures, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_db_connect_failures_total",
		Help: "Number of database connect operations that failed.",
	}, []string{"backend"}))
	if err != nil {
		return nil, err
	}

	state, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "docvault_db_connection_state",
		Help: "Connection cache state: 0 uninitialized, 1 connecting, 2 connected.",
	}, []string{"backend"}))
	if err != nil {
		return nil, err
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_http_requests_total",
		Help: "HTTP requests served, by method, route and status code.",
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docvault_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusCollector{
		connectAttempts: attempts,
		connectFailures: failures,
		connectionState: state,
		requests:        requests,
		requestDuration: duration,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// IncConnectAttempt counts a connect operation for backend.
func (p *PrometheusCollector) IncConnectAttempt(backend string) {
	if p == nil {
		return
	}
	p.connectAttempts.WithLabelValues(backend).Inc()
}

// IncConnectFailure counts a failed connect operation for backend.
func (p *PrometheusCollector) IncConnectFailure(backend string) {
	if p == nil {
		return
	}
	p.connectFailures.WithLabelValues(backend).Inc()
}

// SetConnectionState records the cache state for backend.
func (p *PrometheusCollector) SetConnectionState(backend string, state int) {
	if p == nil {
		return
	}
	p.connectionState.WithLabelValues(backend).Set(float64(state))
}

// ObserveRequest records one served HTTP request.
func (p *PrometheusCollector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if p == nil {
		return
	}
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
