package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSucceeded = "succeeded"
	LoginFailed    = "failed"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UsersCreated    prometheus.Counter
	LoginAttempts   *prometheus.CounterVec
	FieldDecisions  *prometheus.CounterVec
	TokenRejections *prometheus.CounterVec
	TokenRefreshes  prometheus.Counter
	StoreErrors     *prometheus.CounterVec

	RevocationLookupLatency prometheus.Histogram
}

// New creates the metrics on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "printsettings_users_created_total",
			Help: "Total number of users created in the system",
		}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printsettings_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		FieldDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printsettings_field_authorization_total",
			Help: "Guarded field resolutions by field and decision",
		}, []string{"field", "decision"}),
		TokenRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printsettings_token_rejections_total",
			Help: "Presented tokens rejected by validation, by token kind",
		}, []string{"kind"}),
		TokenRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "printsettings_token_refreshes_total",
			Help: "Refresh token rotations",
		}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printsettings_user_store_errors_total",
			Help: "User store failures swallowed by the credential service, by operation",
		}, []string{"operation"}),
		RevocationLookupLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "printsettings_revocation_lookup_duration_ms",
			Help:    "Latency of revocation list lookups in milliseconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100},
		}),
	}
}

// RevocationObserver returns the revocation lookup histogram, or nil when m is nil.
func (m *Metrics) RevocationObserver() prometheus.Observer {
	if m == nil {
		return nil
	}
	return m.RevocationLookupLatency
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFieldDecision(field, decision string) {
	if m == nil {
		return
	}
	m.FieldDecisions.WithLabelValues(field, decision).Inc()
}

func (m *Metrics) IncrementTokenRejected(kind string) {
	if m == nil {
		return
	}
	m.TokenRejections.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementTokenRefreshed() {
	if m == nil {
		return
	}
	m.TokenRefreshes.Inc()
}

func (m *Metrics) IncrementStoreError(operation string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(operation).Inc()
}
