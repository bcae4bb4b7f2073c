package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncViolation("ban")
	m.AddExpired(3, 1)
	m.IncBackup(true)
	m.ObserveRebuild(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestCountersAreIsolatedPerInstance(t *testing.T) {
	a, b := New(), New()
	a.IncViolation("ban")
	a.IncViolation("ban")
	a.AddExpired(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.ViolationsRecorded.WithLabelValues("ban")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ViolationsRecorded.WithLabelValues("ban")))
	assert.Equal(t, 3.0, testutil.ToFloat64(a.RecordsExpired))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ExpiryFailures))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.IncCommand("rule-search")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `community_commands_total{command="rule-search"} 1`)
}
