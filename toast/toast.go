// Package toast carries short user-facing notifications from the use cases to whatever
// front end renders them.
package toast

import (
	"sync"

	"github.com/rs/zerolog"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
)

type Toast struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Sink receives notifications.
type Sink interface {
	Notify(message string, severity Severity)
}

// Discard drops every notification.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(string, Severity) {}

// Recorder collects notifications in arrival order.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Message: message, Severity: severity})
}

// Toasts returns a copy of what has been recorded.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// LogSink writes notifications to a logger, errors at warn level.
type LogSink struct {
	Logger zerolog.Logger
}

func (l LogSink) Notify(message string, severity Severity) {
	if severity == Error {
		l.Logger.Warn().Str("toast", message).Msg("error toast raised")
		return
	}
	l.Logger.Debug().Str("toast", message).Msg("toast raised")
}

// Tee fans a notification out to every sink.
type Tee []Sink

func (t Tee) Notify(message string, severity Severity) {
	for _, s := range t {
		if s != nil {
			s.Notify(message, severity)
		}
	}
}
