package navigation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/aquamind/capture"
	"github.com/jrsteele09/aquamind/navigation"
	"github.com/jrsteele09/aquamind/reclaim"
	"github.com/jrsteele09/aquamind/sessions"
	"github.com/jrsteele09/aquamind/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardFixture struct {
	clock    time.Time
	storage  *storage.InMemory
	board    *capture.Board
	registry *capture.Registry
	store    *sessions.Store
	guard    *navigation.Guard
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	f := &guardFixture{
		clock:    time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC),
		storage:  storage.NewInMemory(),
		board:    capture.NewBoard(),
		registry: capture.NewRegistry(),
	}
	reclaimer := reclaim.New(f.board, f.registry, f.storage)
	f.store = sessions.NewStore(f.storage,
		sessions.WithClock(func() time.Time { return f.clock }),
		sessions.WithReleaser(reclaimer),
	)
	f.guard = navigation.NewGuard(navigation.DefaultTable(), navigation.DefaultPolicy(), f.store, reclaimer)
	return f
}

// saveSessionAged stores a session issued age ago.
func (f *guardFixture) saveSessionAged(t *testing.T, age time.Duration) {
	t.Helper()
	now := f.clock
	f.clock = now.Add(-age)
	require.NoError(t, f.store.Save(context.Background(), "token", "user-1"))
	f.clock = now
}

func (f *guardFixture) liveCamera(surfaceID string) (*capture.FuncTrack, *capture.FuncTrack) {
	video := capture.NewFuncTrack(capture.KindVideo, nil)
	audio := capture.NewFuncTrack(capture.KindAudio, nil)
	f.board.Mount(surfaceID).Attach(capture.NewMediaStream(video, audio))
	return video, audio
}

func TestFreshBrowserToHomeRedirectsToLogin(t *testing.T) {
	f := newGuardFixture(t)
	action := f.guard.Navigate(context.Background(), "", "/home")
	require.Equal(t, navigation.Redirect("/auth/login", false), action)
}

func TestJustAuthenticatedOnLoginReloadsToHome(t *testing.T) {
	f := newGuardFixture(t)
	f.saveSessionAged(t, time.Hour)

	action := f.guard.Navigate(context.Background(), "/auth/login", "/auth/login")
	require.Equal(t, navigation.Redirect("/home", true), action)
}

func TestAuthenticatedToLoginFromElsewhereIsInPlace(t *testing.T) {
	f := newGuardFixture(t)
	f.saveSessionAged(t, time.Hour)

	action := f.guard.Navigate(context.Background(), "/analysis/kmeans", "/auth/login")
	require.Equal(t, navigation.Redirect("/home", false), action)
}

func TestExpiredSessionIsLoggedOutAndRedirected(t *testing.T) {
	ctx := context.Background()
	f := newGuardFixture(t)
	f.saveSessionAged(t, 25*time.Hour)
	require.NoError(t, f.storage.Set(ctx, storage.KeyCameraPermission, "true"))

	action := f.guard.Navigate(ctx, "/home", "/analysis/sentiment")
	require.Equal(t, navigation.Redirect("/auth/login", false), action)

	_, err := f.storage.Get(ctx, storage.KeyAuthData)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.storage.Get(ctx, storage.KeyCameraPermission)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLeavingLoginReleasesEveryStream(t *testing.T) {
	f := newGuardFixture(t)
	f.saveSessionAged(t, time.Minute)

	v1, a1 := f.liveCamera("login-preview")
	v2, a2 := f.liveCamera("login-capture")

	action := f.guard.Navigate(context.Background(), "/auth/login", "/home")
	require.True(t, action.Allowed())

	for _, track := range []*capture.FuncTrack{v1, a1, v2, a2} {
		require.True(t, track.Stopped())
	}
	for _, surface := range f.board.ActiveSurfaces() {
		require.Nil(t, surface.Stream())
	}
}

func TestLeavingLoginReleasesEvenWhenDenied(t *testing.T) {
	f := newGuardFixture(t)
	video, _ := f.liveCamera("login")

	action := f.guard.Navigate(context.Background(), "/auth/login", "/home")
	require.Equal(t, navigation.Redirect("/auth/login", false), action)
	require.True(t, video.Stopped())
}

func TestMovingBetweenAuthViewsKeepsCamera(t *testing.T) {
	f := newGuardFixture(t)
	video, _ := f.liveCamera("login")

	action := f.guard.Navigate(context.Background(), "/auth/login", "/auth/register")
	require.True(t, action.Allowed())
	require.False(t, video.Stopped())
}

type orderRecorder struct {
	mu     sync.Mutex
	events []string
}

func (o *orderRecorder) add(e string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

type recordingReleaser struct{ rec *orderRecorder }

func (r recordingReleaser) ReleaseAll(context.Context) { r.rec.add("release") }

type recordingResolver struct{ rec *orderRecorder }

func (r recordingResolver) Resolve(context.Context) (sessions.Session, bool) {
	r.rec.add("resolve")
	return sessions.Session{}, false
}

func TestReleaseHappensBeforeDecision(t *testing.T) {
	rec := &orderRecorder{}
	guard := navigation.NewGuard(navigation.DefaultTable(), navigation.DefaultPolicy(), recordingResolver{rec}, recordingReleaser{rec})

	action := guard.Navigate(context.Background(), "/auth/register", "/analysis/kmeans")
	require.Equal(t, navigation.Redirect("/auth/login", false), action)
	require.Equal(t, []string{"release", "resolve"}, rec.events)
}

type panickingResolver struct{}

func (panickingResolver) Resolve(context.Context) (sessions.Session, bool) {
	panic("storage driver exploded")
}

func TestGuardNeverPanics(t *testing.T) {
	guard := navigation.NewGuard(navigation.DefaultTable(), navigation.DefaultPolicy(), panickingResolver{}, nil)
	var action navigation.Action
	require.NotPanics(t, func() {
		action = guard.Navigate(context.Background(), "", "/home")
	})
	require.True(t, action.Allowed())
}

func TestRepeatedNavigationIsIdempotent(t *testing.T) {
	f := newGuardFixture(t)
	video, _ := f.liveCamera("login")

	first := f.guard.Navigate(context.Background(), "/auth/login", "/home")
	second := f.guard.Navigate(context.Background(), "/auth/login", "/home")
	require.Equal(t, first, second)
	require.True(t, video.Stopped())
}

func TestConcurrentNavigations(t *testing.T) {
	f := newGuardFixture(t)
	f.saveSessionAged(t, time.Minute)
	f.liveCamera("login")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			action := f.guard.Navigate(context.Background(), "/auth/login", "/home")
			assert.True(t, action.Allowed())
		}()
	}
	wg.Wait()
}
