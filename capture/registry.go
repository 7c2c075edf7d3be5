package capture

import "sync"

var _ StreamRegistry = (*Registry)(nil)

// Registry holds streams opened outside any surface, in registration order.
type Registry struct {
	mu      sync.Mutex
	streams []Stream
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(s Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams = append(r.streams, s)
}

// Unregister removes the stream with id, if present.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.streams {
		if s.ID() == id {
			r.streams = append(r.streams[:i], r.streams[i+1:]...)
			return
		}
	}
}

func (r *Registry) Streams() []Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stream, len(r.streams))
	copy(out, r.streams)
	return out
}

// Drain empties the registry and returns what it held, in one step, so a stream
// registered concurrently is either returned or left registered.
func (r *Registry) Drain() []Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.streams
	r.streams = nil
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}
