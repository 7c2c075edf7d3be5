package server

// Route path constants
// Page routes come from the navigation table; everything else is defined here.
const (
	// Navigation & session API
	RouteAPINavigate = "/api/navigate"
	RouteAPISession  = "/api/session"
	RouteAPIHealth   = "/api/health"

	// Facial authentication
	RouteAPIFacialLogin    = "/api/auth/facial/login"
	RouteAPIFacialRegister = "/api/auth/facial/register"
	RouteAPILogout         = "/api/auth/logout"

	// Analysis API (requires a live session)
	RouteAPIKMeans             = "/api/analysis/kmeans"
	RouteAPISimpleRegression   = "/api/analysis/regression/simple"
	RouteAPIMultipleRegression = "/api/analysis/regression/multiple"
	RouteAPISentiment          = "/api/analysis/sentiment"

	// Websockets
	RouteWSCamera  = "/ws/camera"
	RouteWSSession = "/ws/session"

	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
