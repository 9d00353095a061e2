package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordSearch(SearchOutcomeSuccess, 4)
	m.RecordSearch(SearchOutcomeStale, 0)
	m.RecordSearch(SearchOutcomeStale, 0)
	m.NotificationConnections(2)
	m.NotificationConnections(-1)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.searchTotal.WithLabelValues(SearchOutcomeSuccess)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.searchTotal.WithLabelValues(SearchOutcomeStale)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.wsConnections))
}

func TestMetricsServiceUpstreamLabels(t *testing.T) {
	m := NewMetricsService()

	m.ObserveUpstream("/questoes", 0, time.Millisecond)
	m.ObserveUpstream("/questoes", 200, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.upstreamDuration))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveUpstream("/materias", 500, time.Millisecond)
		m.RecordSearch(SearchOutcomeFailure, 0)
		m.ObserveSessionStore("get", time.Millisecond)
		m.NotificationConnections(1)
	})
	assert.Nil(t, m.Registry())
}
