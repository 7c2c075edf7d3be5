package navigation

// Route names of the default table.
const (
	RouteIndex              = "index"
	RouteAbout              = "about"
	RouteLogin              = "login"
	RouteRegister           = "register"
	RouteHome               = "home"
	RouteKMeans             = "kmeans"
	RouteSimpleRegression   = "regression-simple"
	RouteMultipleRegression = "regression-multiple"
	RouteSentiment          = "sentiment"
)

// Paths of the default table.
const (
	PathIndex              = "/"
	PathAbout              = "/about"
	PathLogin              = "/auth/login"
	PathRegister           = "/auth/register"
	PathHome               = "/home"
	PathKMeans             = "/analysis/kmeans"
	PathSimpleRegression   = "/analysis/regression/simple"
	PathMultipleRegression = "/analysis/regression/multiple"
	PathSentiment          = "/analysis/sentiment"
)

// DefaultTable is the AquaMind route table.
func DefaultTable() *Table {
	return NewTable(
		Route{Name: RouteIndex, Path: PathIndex, Category: Public},
		Route{Name: RouteAbout, Path: PathAbout, Category: Public},
		Route{Name: RouteLogin, Path: PathLogin, Category: GuestOnly},
		Route{Name: RouteRegister, Path: PathRegister, Category: GuestOnly},
		Route{Name: RouteHome, Path: PathHome, Category: Protected},
		Route{Name: RouteKMeans, Path: PathKMeans, Category: Protected},
		Route{Name: RouteSimpleRegression, Path: PathSimpleRegression, Category: Protected},
		Route{Name: RouteMultipleRegression, Path: PathMultipleRegression, Category: Protected},
		Route{Name: RouteSentiment, Path: PathSentiment, Category: Protected},
	)
}

// DefaultPolicy redirects to the login view and lands on the home view.
func DefaultPolicy() Policy {
	return Policy{
		LoginPath:   PathLogin,
		LandingPath: PathHome,
		AuthRoutes:  []string{RouteLogin, RouteRegister},
	}
}
