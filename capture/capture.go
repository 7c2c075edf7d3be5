// Package capture models live camera feeds: tracks grouped into streams, streams attached
// to the video surfaces of the facial authentication views, and a process-wide registry of
// streams that are not bound to a surface.
package capture

// Track kinds.
const (
	KindVideo = "video"
	KindAudio = "audio"
)

// Track is a single media track of a capture stream.
type Track interface {
	ID() string
	Kind() string
	// Stop ends the track. It may return before the underlying device has been released
	// but must have initiated the release. Stopping a stopped track is a no-op.
	Stop() error
}

type Stream interface {
	ID() string
	Tracks() []Track
}

// Surface is an on-screen element bound to at most one live stream.
type Surface interface {
	ID() string
	// Stream returns the attached stream, or nil.
	Stream() Stream
	// Detach drops the stream reference without stopping it.
	Detach()
}

// SurfaceSource enumerates the capture surfaces rendered right now.
type SurfaceSource interface {
	ActiveSurfaces() []Surface
}

// StreamRegistry enumerates the globally registered streams.
type StreamRegistry interface {
	Streams() []Stream
	// Drain removes every registered stream and returns them.
	Drain() []Stream
}
