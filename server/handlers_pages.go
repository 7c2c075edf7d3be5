package server

import (
	"net/http"

	"github.com/jrsteele09/aquamind/navigation"
)

// PageData is the template model of the page shell.
type PageData struct {
	AppName       string
	Route         navigation.Route
	Routes        []navigation.Route
	Authenticated bool
	UserID        string
	Camera        bool // guest-only views capture from the camera
	SurfaceID     string
}

// PageHandler renders the shell for a route the guard allowed.
func (s *Server) PageHandler(route navigation.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.sessions.Read(r.Context())
		data := PageData{
			AppName:       s.config.GetAppName(),
			Route:         route,
			Routes:        s.guard.Table().Routes(),
			Authenticated: ok,
			UserID:        session.SubjectID,
			Camera:        route.Category == navigation.GuestOnly,
			SurfaceID:     route.Name + "-camera",
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.page.Execute(w, data); err != nil {
			s.logError(r.Method, r.URL.Path, err.Error())
		}
	}
}

// NotFoundHandler answers paths outside the route table once the guard let them through.
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
	}
}
