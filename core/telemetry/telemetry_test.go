package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNoopCollector(t *testing.T) {
	collector := Noop()
	require.NotNil(t, collector)
	collector.IncConnectAttempt("mongodb")
	collector.ObserveRequest("GET", "/api/documents", 200, time.Millisecond)
}

func TestPrometheusCollectorCountsConnects(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	collector.IncConnectAttempt("mongodb")
	collector.IncConnectAttempt("mongodb")
	collector.IncConnectFailure("mongodb")
	collector.SetConnectionState("mongodb", 2)

	families := gather(t, reg)
	requireCounterValue(t, families["docvault_db_connect_attempts_total"], 2)
	requireCounterValue(t, families["docvault_db_connect_failures_total"], 1)

	state := families["docvault_db_connection_state"]
	require.NotNil(t, state)
	require.Equal(t, float64(2), state.Metric[0].GetGauge().GetValue())
}

func TestPrometheusCollectorReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	again, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.Same(t, first.connectAttempts, again.connectAttempts)

	first.IncConnectAttempt("postgres")
	again.IncConnectAttempt("postgres")
	requireCounterValue(t, gather(t, reg)["docvault_db_connect_attempts_total"], 2)
}

func TestPrometheusCollectorObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	collector.ObserveRequest("POST", "/api/documents", 201, 5*time.Millisecond)

	families := gather(t, reg)
	requests := families["docvault_http_requests_total"]
	requireCounterValue(t, requests, 1)

	labels := map[string]string{}
	for _, lp := range requests.Metric[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	require.Equal(t, "201", labels["status"])
	require.Equal(t, "/api/documents", labels["route"])

	hist := families["docvault_http_request_duration_seconds"]
	require.NotNil(t, hist)
	require.Equal(t, uint64(1), hist.Metric[0].GetHistogram().GetSampleCount())
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	metrics, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(metrics))
	for _, mf := range metrics {
		out[mf.GetName()] = mf
	}
	return out
}

func requireCounterValue(t *testing.T, mf *dto.MetricFamily, value float64) {
	t.Helper()
	require.NotNil(t, mf)
	require.Len(t, mf.Metric, 1)
	require.NotNil(t, mf.Metric[0].Counter)
	require.Equal(t, value, mf.Metric[0].Counter.GetValue())
}
