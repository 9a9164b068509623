// Package metrics owns the service's Prometheus registry. A nil *Metrics is
// valid and records nothing, so components can be built without it in tests.
package metrics

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auth"

// Result labels for the flow counters.
const (
	ResultSuccess      = "success"
	ResultFailure      = "failure"
	ResultInvalidToken = "invalid_token"
	ResultNotFound     = "not_found"
	ResultDuplicate    = "duplicate"
	ResultError        = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	filterOutcomes *prometheus.CounterVec
	logins         *prometheus.CounterVec
	refreshes      *prometheus.CounterVec
	signups        *prometheus.CounterVec

	activeSessions  prometheus.Gauge
	registeredUsers prometheus.Gauge
}

// New builds the collectors and registers them, plus the Go and process
// collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filterOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_outcomes_total",
			Help:      "Requests classified by the authentication filter.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Token refresh attempts by result.",
		}, []string{"result"}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Signup attempts by result.",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Session records currently held in Redis.",
		}),
		registeredUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_users",
			Help:      "Rows in the users table.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.filterOutcomes,
		m.logins,
		m.refreshes,
		m.signups,
		m.activeSessions,
		m.registeredUsers,
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the exposition format for this registry only.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// FilterOutcome matches httpx.AuthnConfig.OnOutcome.
func (m *Metrics) FilterOutcome(_ context.Context, o httpx.Outcome) {
	if m == nil {
		return
	}
	m.filterOutcomes.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) Signup(result string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *Metrics) SetRegisteredUsers(n int64) {
	if m == nil {
		return
	}
	m.registeredUsers.Set(float64(n))
}
