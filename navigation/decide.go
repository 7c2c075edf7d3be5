package navigation

import "slices"

type ActionKind int

const (
	ActionAllow ActionKind = iota
	ActionRedirect
)

func (k ActionKind) String() string {
	if k == ActionRedirect {
		return "redirect"
	}
	return "allow"
}

// Action is what the navigation mechanism must do with an attempt.
type Action struct {
	Kind   ActionKind
	Target string
	// FullReload asks for a document-level navigation instead of an in-place transition.
	FullReload bool
}

func Allow() Action {
	return Action{Kind: ActionAllow}
}

func Redirect(target string, fullReload bool) Action {
	return Action{Kind: ActionRedirect, Target: target, FullReload: fullReload}
}

func (a Action) Allowed() bool {
	return a.Kind == ActionAllow
}

// Policy holds the destinations the guard redirects to.
type Policy struct {
	LoginPath   string
	LandingPath string
	// AuthRoutes names the routes that complete an authentication. Leaving one of them for
	// a guest-only destination while authenticated forces a full reload.
	AuthRoutes []string
}

// Decide is the guard's decision table. It reads nothing but its arguments.
func (p Policy) Decide(from, to Route, authenticated bool) Action {
	switch {
	case !authenticated && to.Category == Protected:
		return Redirect(p.LoginPath, false)
	case authenticated && to.Category == GuestOnly:
		return Redirect(p.LandingPath, p.isAuthRoute(from))
	default:
		return Allow()
	}
}

// ReleasesCamera reports whether the transition leaves the guest-only category, the only
// one where camera surfaces exist.
func ReleasesCamera(from, to Route) bool {
	return from.Category == GuestOnly && to.Category != GuestOnly
}

func (p Policy) isAuthRoute(r Route) bool {
	return r.Name != "" && slices.Contains(p.AuthRoutes, r.Name)
}
