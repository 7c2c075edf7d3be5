package navigation

import (
	"path"
	"strings"
)

// Category classifies a destination by the session state it requires.
type Category int

const (
	// Public destinations are reachable with or without a session.
	Public Category = iota
	// GuestOnly destinations (login, registration) are reachable only without a session.
	// They are the only views that open the camera.
	GuestOnly
	// Protected destinations require a session.
	Protected
)

func (c Category) String() string {
	switch c {
	case Public:
		return "public"
	case GuestOnly:
		return "guest-only"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

// Route is a navigable destination with its category attached.
type Route struct {
	Name     string
	Path     string
	Category Category
}

// Matched reports whether the route came from the table rather than the fallback.
func (r Route) Matched() bool {
	return r.Name != ""
}

// Table maps paths to routes. Paths not in the table are protected.
type Table struct {
	routes map[string]Route
	order  []string
}

func NewTable(routes ...Route) *Table {
	t := &Table{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		r.Path = cleanPath(r.Path)
		if _, exists := t.routes[r.Path]; !exists {
			t.order = append(t.order, r.Path)
		}
		t.routes[r.Path] = r
	}
	return t
}

// Lookup returns the route registered for p, or an unnamed protected route.
func (t *Table) Lookup(p string) Route {
	p = cleanPath(p)
	if r, ok := t.routes[p]; ok {
		return r
	}
	return Route{Path: p, Category: Protected}
}

// Origin resolves the destination a navigation starts from. An empty path means there is
// no previous destination, which is treated as public.
func (t *Table) Origin(p string) Route {
	if strings.TrimSpace(p) == "" {
		return Route{Category: Public}
	}
	return t.Lookup(p)
}

// Routes lists the registered routes in registration order.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.routes[p])
	}
	return out
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
