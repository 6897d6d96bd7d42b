/*
Package metrics defines the Prometheus collectors exported by the server.

All collectors are registered on a caller-supplied registry so tests can use an
isolated prometheus.Registry. Every recording method is safe to call on a nil *Metrics.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mocrs"

// Identity results. The reason a token degraded to anonymous is never recorded.
const (
	IdentityAnonymous     = "anonymous"
	IdentityAuthenticated = "authenticated"
)

// Meeting token outcomes.
const (
	MeetingGuest     = "guest"
	MeetingModerator = "moderator"
	MeetingRejected  = "rejected"
)

// Metrics groups every collector the server updates.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	SessionIdentity  *prometheus.CounterVec
	GuardRejections  *prometheus.CounterVec
	MeetingTokens    *prometheus.CounterVec
	PresenceChannels prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		SessionIdentity: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_identities_total",
			Help:      "Request identities produced by the session authenticator.",
		}, []string{"result"}),

		GuardRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rejections_total",
			Help:      "Requests rejected by an authorization guard.",
		}, []string{"guard"}),

		MeetingTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meeting_tokens_total",
			Help:      "Meeting token requests, by outcome.",
		}, []string{"outcome"}),

		PresenceChannels: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "presence_channels",
			Help:      "Rooms that currently have at least one live participant subscriber.",
		}),
	}
}

// Handler exposes the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Identity records one session authenticator result.
func (m *Metrics) Identity(authenticated bool) {
	if m == nil {
		return
	}
	result := IdentityAnonymous
	if authenticated {
		result = IdentityAuthenticated
	}
	m.SessionIdentity.WithLabelValues(result).Inc()
}

// GuardRejected records a guard returning Unauthorized.
func (m *Metrics) GuardRejected(guard string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(guard).Inc()
}

// MeetingToken records the outcome of a meeting token request.
func (m *Metrics) MeetingToken(outcome string) {
	if m == nil {
		return
	}
	m.MeetingTokens.WithLabelValues(outcome).Inc()
}

// PresenceChannelOpened increments the live presence channel gauge.
func (m *Metrics) PresenceChannelOpened() {
	if m == nil {
		return
	}
	m.PresenceChannels.Inc()
}

// PresenceChannelClosed decrements the live presence channel gauge.
func (m *Metrics) PresenceChannelClosed() {
	if m == nil {
		return
	}
	m.PresenceChannels.Dec()
}
