package sessions

import "time"

type EventKind int

const (
	EventSaved EventKind = iota
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventSaved:
		return "saved"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event is broadcast to every subscriber after the session record changes.
type Event struct {
	Kind    EventKind
	Session Session // Zero for EventCleared
	At      time.Time
}

// Listener receives session-changed events synchronously, in write order. A listener
// must not save or clear the session it is being notified about.
type Listener func(Event)
