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

func TestCounters(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncrementUsersCreated()
	m.ObserveLogin(LoginSucceeded)
	m.ObserveLogin(LoginFailed)
	m.ObserveLogin(LoginFailed)
	m.ObserveFieldDecision("email", "not_authorized")

	assert.InDelta(t, 1, testutil.ToFloat64(m.UsersCreated), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginFailed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FieldDecisions.WithLabelValues("email", "not_authorized")), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementUsersCreated()
		m.ObserveLogin(LoginFailed)
		m.ObserveFieldDecision("id", "resolved")
		m.IncrementTokenRejected("access")
		m.IncrementTokenRefreshed()
		m.IncrementStoreError("find")
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.IncrementUsersCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "printsettings_users_created_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
