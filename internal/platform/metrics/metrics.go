// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the identity service.

Architecture:

  - Private Registry: Every [Metrics] owns its own registry, so tests and
    multiple servers in one process never collide on collector names.
  - Nil-Safe: All recording methods accept a nil receiver and do nothing, so
    components can be constructed without metrics in tests.
  - Low Cardinality: Labels are closed sets (outcome, reason, token type,
    route pattern). Never label by user, email or raw path.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "motofleet"

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
)

// Password reset stages.
const (
	ResetRequested = "requested"
	ResetCompleted = "completed"
)

// Metrics holds every collector of the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestDuration *prometheus.HistogramVec
	logins              *prometheus.CounterVec
	authFailures        *prometheus.CounterVec
	tokensIssued        *prometheus.CounterVec
	registrations       prometheus.Counter
	tokenRefreshes      prometheus.Counter
	passwordResets      *prometheus.CounterVec
}

// New creates a registry with Go runtime and process collectors plus the
// service collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),

		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_authentication_failures_total",
			Help:      "Rejected bearer authentications by reason.",
		}, []string{"reason"}),

		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_tokens_issued_total",
			Help:      "Signed tokens by type.",
		}, []string{"type"}),

		registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_registrations_total",
			Help:      "Successful self-registrations.",
		}),

		tokenRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_token_refreshes_total",
			Help:      "Access tokens minted from a refresh token.",
		}),

		passwordResets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_password_resets_total",
			Help:      "Password reset flow progress by stage.",
		}, []string{"stage"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// # Recorders

// ObserveRequest records the latency of a finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Login records a login attempt outcome.
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// AuthFailure records a rejected bearer authentication.
func (m *Metrics) AuthFailure(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}

// TokenIssued records a signed token of the given type.
func (m *Metrics) TokenIssued(tokenType string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(tokenType).Inc()
}

// Registration records a successful self-registration.
func (m *Metrics) Registration() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

// TokenRefresh records an access token minted from a refresh token.
func (m *Metrics) TokenRefresh() {
	if m == nil {
		return
	}
	m.tokenRefreshes.Inc()
}

// PasswordReset records progress through the reset flow.
func (m *Metrics) PasswordReset(stage string) {
	if m == nil {
		return
	}
	m.passwordResets.WithLabelValues(stage).Inc()
}
