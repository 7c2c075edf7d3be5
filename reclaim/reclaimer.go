// Package reclaim stops every live camera stream the service knows about.
package reclaim

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/aquamind/capture"
	"github.com/jrsteele09/aquamind/metrics"
	"github.com/jrsteele09/aquamind/sessions"
	"github.com/jrsteele09/aquamind/storage"
)

var _ sessions.Releaser = (*Reclaimer)(nil)

type Option func(*Reclaimer)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reclaimer) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reclaimer) { r.metrics = m }
}

// Reclaimer scans for capture streams at call time and stops them. It keeps no record of
// its own; whatever the surface source and registry list is what gets released.
type Reclaimer struct {
	surfaces capture.SurfaceSource
	registry capture.StreamRegistry
	storage  storage.Storage
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func New(surfaces capture.SurfaceSource, registry capture.StreamRegistry, s storage.Storage, opts ...Option) *Reclaimer {
	r := &Reclaimer{
		surfaces: surfaces,
		registry: registry,
		storage:  s,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReleaseAll stops and detaches the stream on every active surface, stops and clears the
// registered streams, then clears the camera permission flag. A failing track is logged
// and skipped; it never prevents the remaining tracks from being stopped.
func (r *Reclaimer) ReleaseAll(ctx context.Context) {
	r.metrics.ReclaimRun()
	stopped, failed := 0, 0

	if r.surfaces != nil {
		for _, surface := range r.surfaces.ActiveSurfaces() {
			stream := surface.Stream()
			if stream == nil {
				continue
			}
			s, f := r.stopStream(stream)
			stopped += s
			failed += f
			surface.Detach()
		}
	}

	if r.registry != nil {
		for _, stream := range r.registry.Drain() {
			s, f := r.stopStream(stream)
			stopped += s
			failed += f
		}
	}

	if r.storage != nil {
		if err := r.storage.Remove(ctx, storage.KeyCameraPermission); err != nil {
			r.logger.Warn().Err(err).Msg("failed to clear camera permission flag")
		}
	}

	if stopped > 0 || failed > 0 {
		r.logger.Info().
			Int("tracks_stopped", stopped).
			Int("tracks_failed", failed).
			Msg("camera released")
	}
}

func (r *Reclaimer) stopStream(stream capture.Stream) (stopped, failed int) {
	for _, track := range stream.Tracks() {
		if track == nil {
			continue
		}
		if err := stopTrack(track); err != nil {
			failed++
			r.metrics.TrackFailed()
			r.logger.Warn().
				Err(err).
				Str("stream_id", stream.ID()).
				Str("track_id", track.ID()).
				Str("kind", track.Kind()).
				Msg("failed to stop track")
			continue
		}
		stopped++
		r.metrics.TrackStopped()
		r.logger.Debug().
			Str("stream_id", stream.ID()).
			Str("kind", track.Kind()).
			Msg("track stopped")
	}
	return stopped, failed
}

// stopTrack isolates a single Stop call, turning a panic into an error.
func stopTrack(track capture.Track) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("track stop panicked: %v", rec)
		}
	}()
	return track.Stop()
}
