package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes recorded by the coordinator.
const (
	OutcomeOK             = "ok"
	OutcomeRejected       = "rejected"
	OutcomeUnavailable    = "unavailable"
	OutcomeNoCredential   = "no_credential"
	OutcomeSessionChanged = "session_changed"
)

// Retry reasons recorded by the gateway.
const (
	RetryRefreshed = "refreshed"
	RetryReused    = "reused"
)

// Metrics counts session lifecycle events. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	refreshes    *prometheus.CounterVec
	joined       prometheus.Counter
	retries      *prometheus.CounterVec
	authFailures prometheus.Counter
}

// NewMetrics registers the collectors on reg. A nil reg keeps them
// unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "userdash",
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Credential refreshes by outcome.",
		}, []string{"outcome"}),
		joined: f.NewCounter(prometheus.CounterOpts{
			Namespace: "userdash",
			Subsystem: "session",
			Name:      "refresh_joins_total",
			Help:      "Refresh demands that attached to a refresh already in flight.",
		}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "userdash",
			Subsystem: "gateway",
			Name:      "retries_total",
			Help:      "Requests resent after a 401, by reason.",
		}, []string{"reason"}),
		authFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "userdash",
			Subsystem: "gateway",
			Name:      "auth_failures_total",
			Help:      "Authentication failures surfaced to callers.",
		}),
	}
}

func (m *Metrics) refresh(outcome string) {
	if m != nil {
		m.refreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) join() {
	if m != nil {
		m.joined.Inc()
	}
}

func (m *Metrics) retry(reason string) {
	if m != nil {
		m.retries.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) authFailure() {
	if m != nil {
		m.authFailures.Inc()
	}
}
