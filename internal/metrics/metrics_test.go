package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollector(reg), reg
}

func TestRecordMatchSplitsByOutcome(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordMatch(false)
	c.RecordMatch(false)
	c.RecordMatch(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.matches.WithLabelValues("win")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.matches.WithLabelValues("draw")))
}

func TestRecordLogin(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues("failure")))
}

func TestRecordSimulation(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordSimulation(3, 3)
	c.RecordRegistration()
	c.RecordLeaderboardSkip("missing_record")

	assert.Equal(t, 3.0, testutil.ToFloat64(c.simulatedUsers))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.simulatedMatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.registrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.leaderboardSkips.WithLabelValues("missing_record")))
}

func TestHandlerServesMetrics(t *testing.T) {
	c, reg := newTestCollector(t)
	c.RecordRegistration()

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "matchboard_registrations_total 1")
}
