package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/aquamind/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersAreExposed(t *testing.T) {
	m := metrics.New()
	m.NavigationDecision("allow")
	m.NavigationDecision("redirect")
	m.NavigationDecision("redirect")
	m.ReclaimRun()
	m.TrackStopped()
	m.TrackFailed()
	m.SessionEvent("saved")
	m.AnalysisRequest("kmeans", "ok")

	count, err := testutil.GatherAndCount(m.Registry(), "aquamind_navigation_decisions_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Contains(t, string(body), `aquamind_navigation_decisions_total{action="redirect"} 2`)
	require.Contains(t, string(body), "aquamind_reclaim_tracks_stopped_total 1")
	require.Contains(t, string(body), `aquamind_analysis_requests_total{operation="kmeans",outcome="ok"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.NavigationDecision("allow")
	m.ReclaimRun()
	m.TrackStopped()
	m.TrackFailed()
	m.SessionEvent("cleared")
	m.AnalysisRequest("kmeans", "error")
	require.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
