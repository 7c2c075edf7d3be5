package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/aquamind/navigation"
	"github.com/jrsteele09/aquamind/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the live session of a guarded request
	ContextKeySession ContextKey = "session"
)

const (
	headerHXRequest    = "HX-Request"
	headerHXCurrentURL = "HX-Current-URL"
	headerHXLocation   = "HX-Location"
	headerHXRedirect   = "HX-Redirect"
	headerNavFrom      = "X-Nav-From"
)

// GuardMiddleware runs every page request through the navigation guard and executes a
// redirect decision instead of the page.
func (s *Server) GuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := s.guard.Navigate(r.Context(), previousDestination(r), r.URL.Path)
		if !action.Allowed() {
			redirect(w, r, action)
			return
		}
		next(w, r)
	}
}

// RequireSession rejects API requests that carry no live session.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.sessions.Resolve(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Session expired or missing")
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeySession, session)
		next(w, r.WithContext(ctx))
	}
}

func sessionFromContext(ctx context.Context) (sessions.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(sessions.Session)
	return session, ok
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get(headerHXRequest) == "true"
}

// redirect executes a guard decision. htmx requests get a header and 204 so the client
// performs the navigation; a full reload discards all client state.
func redirect(w http.ResponseWriter, r *http.Request, action navigation.Action) {
	if isHTMX(r) {
		if action.FullReload {
			w.Header().Set(headerHXRedirect, action.Target)
		} else {
			w.Header().Set(headerHXLocation, action.Target)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	status := http.StatusFound
	if action.FullReload {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, action.Target, status)
}

// previousDestination is the path the client is navigating away from. An explicit
// X-Nav-From wins, then the htmx current URL, then a same-host Referer.
func previousDestination(r *http.Request) string {
	if from := r.Header.Get(headerNavFrom); from != "" {
		return from
	}
	for _, h := range []string{headerHXCurrentURL, "Referer"} {
		raw := r.Header.Get(h)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if u.Host != "" && u.Host != r.Host {
			continue
		}
		return u.Path
	}
	return ""
}
