package capture

import (
	"sync"

	"github.com/google/uuid"
)

var _ Stream = (*MediaStream)(nil)

// MediaStream is a fixed set of tracks under one id.
type MediaStream struct {
	id     string
	tracks []Track
}

func NewMediaStream(tracks ...Track) *MediaStream {
	return &MediaStream{id: uuid.New().String(), tracks: tracks}
}

func (m *MediaStream) ID() string { return m.id }

func (m *MediaStream) Tracks() []Track {
	out := make([]Track, len(m.tracks))
	copy(out, m.tracks)
	return out
}

var _ Track = (*FuncTrack)(nil)

// FuncTrack adapts a stop function into a Track. The function runs at most once.
type FuncTrack struct {
	id   string
	kind string
	stop func() error

	once    sync.Once
	err     error
	stopped bool
	mu      sync.Mutex
}

func NewFuncTrack(kind string, stop func() error) *FuncTrack {
	return &FuncTrack{id: uuid.New().String(), kind: kind, stop: stop}
}

func (t *FuncTrack) ID() string   { return t.id }
func (t *FuncTrack) Kind() string { return t.kind }

func (t *FuncTrack) Stop() error {
	t.once.Do(func() {
		if t.stop != nil {
			t.err = t.stop()
		}
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()
	})
	return t.err
}

// Stopped reports whether Stop has run.
func (t *FuncTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
