package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/aquamind/analysis"
	"github.com/jrsteele09/aquamind/capture"
	"github.com/jrsteele09/aquamind/internal/config"
	"github.com/jrsteele09/aquamind/metrics"
	"github.com/jrsteele09/aquamind/navigation"
	"github.com/jrsteele09/aquamind/reclaim"
	"github.com/jrsteele09/aquamind/server"
	"github.com/jrsteele09/aquamind/sessions"
	"github.com/jrsteele09/aquamind/storage"
)

// fakeAnalytics stands in for the remote analytics API.
type fakeAnalytics struct {
	mu         sync.Mutex
	lastImage  string
	kmeansHits int
}

func (f *fakeAnalytics) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+analysis.PathFacialLogin, func(w http.ResponseWriter, r *http.Request) {
		var req analysis.FacialAuthRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.lastImage = req.ImageBase64
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"message":"welcome","token":"tok-1","user_id":"ana"}`))
	})
	mux.HandleFunc("POST "+analysis.PathKMeansFit, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.kmeansHits++
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"n_clusters":2,"filas_entrenadas":5}`))
	})
	mux.HandleFunc("GET "+analysis.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return mux
}

func (f *fakeAnalytics) image() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastImage
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	storage  *storage.InMemory
	sessions *sessions.Store
	registry *capture.Registry
	board    *capture.Board
	api      *fakeAnalytics
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("ENV", "TEST")

	env := &testEnv{
		storage:  storage.NewInMemory(),
		registry: capture.NewRegistry(),
		board:    capture.NewBoard(),
		api:      &fakeAnalytics{},
		metrics:  metrics.New(),
	}
	api := httptest.NewServer(env.api.handler())
	t.Cleanup(api.Close)

	reclaimer := reclaim.New(env.board, env.registry, env.storage, reclaim.WithMetrics(env.metrics))
	env.sessions = sessions.NewStore(env.storage, sessions.WithReleaser(reclaimer))
	guard := navigation.NewGuard(navigation.DefaultTable(), navigation.DefaultPolicy(), env.sessions, reclaimer,
		navigation.WithMetrics(env.metrics))
	client := analysis.NewClient(api.URL)
	uc := analysis.NewUseCases(client, env.sessions, analysis.WithMetrics(env.metrics))

	s, err := server.New(config.New(), server.Deps{
		Storage:  env.storage,
		Sessions: env.sessions,
		Guard:    guard,
		Board:    env.board,
		Registry: env.registry,
		Analysis: uc,
		Metrics:  env.metrics,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	env.srv = httptest.NewServer(s)
	t.Cleanup(env.srv.Close)
	env.client = &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	return env
}

func (e *testEnv) get(t *testing.T, path string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) post(t *testing.T, path, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	require.NoError(t, e.sessions.Save(context.Background(), "tok-1", "ana"))
}

func (e *testEnv) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(e.srv.URL, "http") + path
}

func TestGuestIsSentToLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, navigation.PathHome, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, navigation.PathLogin, resp.Header.Get("Location"))

	resp = env.get(t, navigation.PathKMeans, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, navigation.PathLogin, resp.Header.Get("HX-Location"))
}

func TestAuthenticatedLeavesGuestViews(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.get(t, navigation.PathLogin, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, navigation.PathHome, resp.Header.Get("Location"))

	// Leaving an authentication view forces a full reload.
	resp = env.get(t, navigation.PathRegister, map[string]string{"X-Nav-From": navigation.PathLogin})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = env.get(t, navigation.PathRegister, map[string]string{
		"HX-Request":     "true",
		"HX-Current-URL": env.srv.URL + navigation.PathLogin,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, navigation.PathHome, resp.Header.Get("HX-Redirect"))
}

func TestPublicAndAllowedPagesRender(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, navigation.PathAbout, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "AquaMind")

	resp = env.get(t, navigation.PathLogin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `data-surface="login-camera"`)

	env.login(t)
	resp = env.get(t, navigation.PathHome, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnmatchedPathsAreProtected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/no/such/page", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, navigation.PathLogin, resp.Header.Get("Location"))

	env.login(t)
	resp = env.get(t, "/no/such/page", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNavigateAPI(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, server.RouteAPINavigate, `{"from":"/auth/login","to":"/analysis/sentiment"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, map[string]any{"action": "redirect", "target": "/auth/login", "full_reload": false}, got)

	resp = env.post(t, server.RouteAPINavigate, `{"from":"/"}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalysisRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, server.RouteAPIKMeans, `{"data":[],"features":[],"n_clusters":3}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	require.Equal(t, "unauthorized", errBody["error"])
}

func TestAnalysisValidationRaisesToast(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.post(t, server.RouteAPIKMeans, `{"data":[{"ph":1,"temp":2}],"features":["ph","temp"],"n_clusters":3}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var trigger struct {
		ShowToast []struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
		} `json:"showToast"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Header.Get("HX-Trigger")), &trigger))
	require.Len(t, trigger.ShowToast, 1)
	require.Equal(t, "error", trigger.ShowToast[0].Severity)
	require.Equal(t, "at least 5 data points are required for clustering", trigger.ShowToast[0].Message)
	require.Zero(t, env.api.kmeansHits)
}

func TestFacialLoginStartsSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, server.RouteAPIFacialLogin, `{"image_base64":"aGk="}`, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, navigation.PathHome, resp.Header.Get("HX-Redirect"))

	resp = env.get(t, server.RouteAPISession, nil)
	var session struct {
		Authenticated bool      `json:"authenticated"`
		UserID        string    `json:"user_id"`
		ExpiresAt     time.Time `json:"expires_at"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	require.True(t, session.Authenticated)
	require.Equal(t, "ana", session.UserID)
	require.False(t, session.ExpiresAt.IsZero())
}

func TestCameraFrameFeedsFacialLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, env.wsURL(server.RouteWSCamera+"?surface=login-camera"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("data:image/jpeg;base64,ZnJhbWU=")))

	require.Eventually(t, func() bool {
		resp := env.post(t, server.RouteAPIFacialLogin, `{"surface":"login-camera"}`, nil)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, "ZnJhbWU=", env.api.image())
}

func TestLeavingLoginReleasesCamera(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, env.wsURL(server.RouteWSCamera+"?surface=login-camera"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return env.registry.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	flag, err := env.storage.Get(ctx, storage.KeyCameraPermission)
	require.NoError(t, err)
	require.Equal(t, "true", flag)

	env.login(t)
	resp := env.get(t, navigation.PathHome, map[string]string{"Referer": env.srv.URL + navigation.PathLogin})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, _, err = conn.Read(ctx)
	require.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))

	require.Zero(t, env.registry.Len())
	_, err = env.storage.Get(ctx, storage.KeyCameraPermission)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLogoutReleasesCameraThenClears(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, env.wsURL(server.RouteWSCamera+"?surface=register-camera"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	require.Eventually(t, func() bool { return env.registry.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	env.login(t)
	resp := env.post(t, server.RouteAPILogout, ``, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, navigation.PathLogin, resp.Header.Get("HX-Redirect"))

	_, _, err = conn.Read(ctx)
	require.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
	require.False(t, env.sessions.IsAuthenticated(ctx))
}

func TestSessionSocketPushesEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, env.wsURL(server.RouteWSSession), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// The subscription is registered after the upgrade; retry the save until it lands.
	type event struct {
		Event  string `json:"event"`
		UserID string `json:"user_id"`
	}
	got := make(chan event, 1)
	go func() {
		var e event
		if err := wsjson.Read(ctx, conn, &e); err == nil {
			got <- e
		}
	}()

	var e event
	require.Eventually(t, func() bool {
		env.login(t)
		select {
		case e = <-got:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, event{Event: "saved", UserID: "ana"}, e)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, navigation.PathHome, nil)

	resp := env.get(t, server.RouteMetrics, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `aquamind_navigation_decisions_total{action="redirect"} 1`)
}

func TestHealthAndStaticAssets(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, server.RouteAPIHealth, nil)
	var health map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, map[string]bool{"ok": true, "analytics": true}, health)

	resp = env.get(t, "/js/aquamind.js", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "javascript")
	require.NotEmpty(t, resp.Header.Get("Cache-Control"))
}
