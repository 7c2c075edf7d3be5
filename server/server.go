// Package server is the HTTP surface of the AquaMind client service. It serves a single
// user: the session and the camera feeds belong to the process, not to a browser, so the
// listener is expected to stay on loopback.
package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/aquamind/analysis"
	"github.com/jrsteele09/aquamind/capture"
	"github.com/jrsteele09/aquamind/internal/config"
	"github.com/jrsteele09/aquamind/metrics"
	"github.com/jrsteele09/aquamind/navigation"
	"github.com/jrsteele09/aquamind/sessions"
	"github.com/jrsteele09/aquamind/storage"
)

// Deps are the collaborators the HTTP surface drives.
type Deps struct {
	Storage  storage.Storage
	Sessions *sessions.Store
	Guard    *navigation.Guard
	Board    *capture.Board
	Registry *capture.Registry
	Analysis *analysis.UseCases
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	logger zerolog.Logger

	storage  storage.Storage
	sessions *sessions.Store
	guard    *navigation.Guard
	board    *capture.Board
	registry *capture.Registry
	analysis *analysis.UseCases
	metrics  *metrics.Metrics

	feeds *feedSet
	page  *template.Template
}

func New(config config.Config, deps Deps) (*Server, error) {
	switch {
	case deps.Storage == nil:
		return nil, fmt.Errorf("[Server New] storage is required")
	case deps.Sessions == nil:
		return nil, fmt.Errorf("[Server New] session store is required")
	case deps.Guard == nil:
		return nil, fmt.Errorf("[Server New] navigation guard is required")
	case deps.Board == nil || deps.Registry == nil:
		return nil, fmt.Errorf("[Server New] capture board and registry are required")
	case deps.Analysis == nil:
		return nil, fmt.Errorf("[Server New] analysis use cases are required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		logger:   deps.Logger,
		storage:  deps.Storage,
		sessions: deps.Sessions,
		guard:    deps.Guard,
		board:    deps.Board,
		registry: deps.Registry,
		analysis: deps.Analysis,
		metrics:  deps.Metrics,
		feeds:    newFeedSet(),
		page:     pageTemplate,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDev {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.logger.Info().Msgf("[%-19s] %s", displayMethod, path)
}

func (s *Server) logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.logger.Error().Msgf("[%-19s] %s %s", displayMethod, path, Red+error+ResetColor)
}
