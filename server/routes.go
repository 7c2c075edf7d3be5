package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	// PAGES: every route in the navigation table, behind the guard
	for _, route := range s.guard.Table().Routes() {
		s.RegisterRouteHandler("GET "+pagePattern(route.Path), ChainMiddleware(s.PageHandler(route), s.pageMiddleware()...))
	}
	// Anything else is unmatched and falls back to the guard's default category
	s.RegisterRouteHandler("GET /", ChainMiddleware(s.NotFoundHandler(), s.pageMiddleware()...))

	// Navigation & session
	s.RegisterRouteHandler("POST "+RouteAPINavigate, ChainMiddleware(s.NavigateHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// Facial authentication
	s.RegisterRouteHandler("POST "+RouteAPIFacialLogin, ChainMiddleware(s.FacialLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIFacialRegister, ChainMiddleware(s.FacialRegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPILogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Analysis (require a live session)
	s.RegisterRouteHandler("POST "+RouteAPIKMeans, ChainMiddleware(s.KMeansHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteAPISimpleRegression, ChainMiddleware(s.SimpleRegressionHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteAPIMultipleRegression, ChainMiddleware(s.MultipleRegressionHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteAPISentiment, ChainMiddleware(s.SentimentHandler(), s.APIMiddleware(s.RequireSession)...))

	// Websockets
	s.RegisterRouteHandler("GET "+RouteWSCamera, ChainMiddleware(s.CameraSocketHandler(), s.SocketMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWSSession, ChainMiddleware(s.SessionSocketHandler(), s.SocketMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler("css"), s.HTMLMiddleWare(s.CacheMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler("js"), s.HTMLMiddleWare(s.CacheMiddleware)...))
}

func (s *Server) pageMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return s.HTMLMiddleWare(s.GuardMiddleware, s.CompressionMiddleware)
}

// pagePattern matches a table path exactly. "/" alone would match every path.
func pagePattern(path string) string {
	if path == "/" {
		return "/{$}"
	}
	return path
}

func (s *Server) serveFileHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := r.PathValue("file")
		if file == "" || strings.Contains(file, "..") {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		filePath := dir + "/" + file
		err := StreamFile(w, r, filePath)
		if err != nil {
			s.logError("GET", filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
