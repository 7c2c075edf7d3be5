// Package metrics exposes Prometheus counters for navigation decisions, camera reclaims,
// session changes and analysis calls. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aquamind"

type Metrics struct {
	registry *prometheus.Registry

	navigationDecisions *prometheus.CounterVec
	reclaimRuns         prometheus.Counter
	tracksStopped       prometheus.Counter
	trackFailures       prometheus.Counter
	sessionEvents       *prometheus.CounterVec
	analysisRequests    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		navigationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_decisions_total",
			Help:      "Navigation guard decisions by action.",
		}, []string{"action"}),
		reclaimRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaim_runs_total",
			Help:      "Camera reclaim passes.",
		}),
		tracksStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaim_tracks_stopped_total",
			Help:      "Capture tracks stopped by the reclaimer.",
		}),
		trackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaim_track_failures_total",
			Help:      "Capture tracks that failed to stop.",
		}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session-changed events by kind.",
		}, []string{"event"}),
		analysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_requests_total",
			Help:      "Remote analytics calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	m.registry.MustRegister(
		m.navigationDecisions,
		m.reclaimRuns,
		m.tracksStopped,
		m.trackFailures,
		m.sessionEvents,
		m.analysisRequests,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) NavigationDecision(action string) {
	if m == nil {
		return
	}
	m.navigationDecisions.WithLabelValues(action).Inc()
}

func (m *Metrics) ReclaimRun() {
	if m == nil {
		return
	}
	m.reclaimRuns.Inc()
}

func (m *Metrics) TrackStopped() {
	if m == nil {
		return
	}
	m.tracksStopped.Inc()
}

func (m *Metrics) TrackFailed() {
	if m == nil {
		return
	}
	m.trackFailures.Inc()
}

func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(event).Inc()
}

// AnalysisRequest records a remote call; outcome is "ok", "invalid" or "error".
func (m *Metrics) AnalysisRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.analysisRequests.WithLabelValues(operation, outcome).Inc()
}
