package capture

import (
	"sort"
	"sync"
)

var _ SurfaceSource = (*Board)(nil)

// Board tracks the video surfaces currently mounted by views.
type Board struct {
	mu       sync.RWMutex
	surfaces map[string]*VideoSurface
}

func NewBoard() *Board {
	return &Board{surfaces: make(map[string]*VideoSurface)}
}

// Mount returns the surface with id, creating it if needed.
func (b *Board) Mount(id string) *VideoSurface {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.surfaces[id]; ok {
		return s
	}
	s := &VideoSurface{id: id}
	b.surfaces[id] = s
	return s
}

// Unmount removes the surface. Its stream, if any, is left untouched.
func (b *Board) Unmount(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.surfaces, id)
}

// Lookup returns the mounted surface with id.
func (b *Board) Lookup(id string) (*VideoSurface, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.surfaces[id]
	return s, ok
}

// ActiveSurfaces lists mounted surfaces ordered by id.
func (b *Board) ActiveSurfaces() []Surface {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.surfaces))
	for id := range b.surfaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Surface, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.surfaces[id])
	}
	return out
}

var _ Surface = (*VideoSurface)(nil)

// VideoSurface is the server-side counterpart of a <video> element in a facial view.
type VideoSurface struct {
	id string

	mu     sync.Mutex
	stream Stream
}

func (v *VideoSurface) ID() string { return v.id }

func (v *VideoSurface) Stream() Stream {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stream
}

// Attach binds s to the surface, returning the stream it replaced.
func (v *VideoSurface) Attach(s Stream) Stream {
	v.mu.Lock()
	defer v.mu.Unlock()
	prev := v.stream
	v.stream = s
	return prev
}

func (v *VideoSurface) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stream = nil
}

// DetachIf drops the stream only if it is still s.
func (v *VideoSurface) DetachIf(s Stream) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stream != nil && v.stream.ID() == s.ID() {
		v.stream = nil
	}
}
