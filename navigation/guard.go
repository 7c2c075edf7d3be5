// Package navigation decides whether a navigation attempt is allowed, and releases the
// camera whenever a navigation leaves the guest-only views.
package navigation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/aquamind/metrics"
	"github.com/jrsteele09/aquamind/sessions"
)

// SessionResolver yields the live session, logging out an expired one.
type SessionResolver interface {
	Resolve(ctx context.Context) (sessions.Session, bool)
}

type Option func(*Guard)

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// Guard intercepts navigations. It has no state of its own: the session is read fresh on
// every call, so concurrent or repeated calls are safe.
type Guard struct {
	table    *Table
	policy   Policy
	sessions SessionResolver
	releaser sessions.Releaser
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewGuard(table *Table, policy Policy, resolver SessionResolver, releaser sessions.Releaser, opts ...Option) *Guard {
	g := &Guard{
		table:    table,
		policy:   policy,
		sessions: resolver,
		releaser: releaser,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Table() *Table {
	return g.table
}

func (g *Guard) Policy() Policy {
	return g.policy
}

// Navigate decides a navigation from fromPath (empty for the first one) to toPath.
// Leaving a guest-only destination releases the camera before anything else, whatever
// the outcome. Navigate never panics: an internal failure resolves to allow.
func (g *Guard) Navigate(ctx context.Context, fromPath, toPath string) (action Action) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error().
				Err(fmt.Errorf("%v", rec)).
				Str("from", fromPath).
				Str("to", toPath).
				Msg("navigation guard failed, allowing")
			action = Allow()
		}
		g.metrics.NavigationDecision(action.Kind.String())
	}()

	from := g.table.Origin(fromPath)
	to := g.table.Lookup(toPath)

	if ReleasesCamera(from, to) && g.releaser != nil {
		g.releaser.ReleaseAll(ctx)
	}

	authenticated := false
	if g.sessions != nil {
		_, authenticated = g.sessions.Resolve(ctx)
	}

	action = g.policy.Decide(from, to, authenticated)
	if !action.Allowed() {
		g.logger.Debug().
			Str("from", from.Path).
			Str("to", to.Path).
			Str("category", to.Category.String()).
			Bool("authenticated", authenticated).
			Str("target", action.Target).
			Bool("full_reload", action.FullReload).
			Msg("navigation redirected")
	}
	return action
}
