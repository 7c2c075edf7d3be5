package server

import (
	"encoding/base64"
	"strings"
	"sync"

	"github.com/coder/websocket"
)

// frameFeed keeps the most recent frame a camera socket delivered, base64 encoded.
type frameFeed struct {
	mu     sync.RWMutex
	latest string
}

func (f *frameFeed) store(typ websocket.MessageType, data []byte) {
	var frame string
	if typ == websocket.MessageText {
		// Browsers send canvas.toDataURL() output.
		frame = string(data)
		if i := strings.Index(frame, ";base64,"); i >= 0 && strings.HasPrefix(frame, "data:") {
			frame = frame[i+len(";base64,"):]
		}
	} else {
		frame = base64.StdEncoding.EncodeToString(data)
	}
	if frame == "" {
		return
	}
	f.mu.Lock()
	f.latest = frame
	f.mu.Unlock()
}

func (f *frameFeed) frame() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest
}

type feedSet struct {
	mu    sync.Mutex
	feeds map[string]*frameFeed
}

func newFeedSet() *feedSet {
	return &feedSet{feeds: make(map[string]*frameFeed)}
}

// open replaces any feed for the surface with a fresh one.
func (fs *feedSet) open(surfaceID string) *frameFeed {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f := &frameFeed{}
	fs.feeds[surfaceID] = f
	return f
}

// close drops the feed if it is still the surface's current one.
func (fs *feedSet) close(surfaceID string, f *frameFeed) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.feeds[surfaceID] == f {
		delete(fs.feeds, surfaceID)
	}
}

func (fs *feedSet) latest(surfaceID string) (string, bool) {
	fs.mu.Lock()
	f, ok := fs.feeds[surfaceID]
	fs.mu.Unlock()
	if !ok {
		return "", false
	}
	frame := f.frame()
	return frame, frame != ""
}
