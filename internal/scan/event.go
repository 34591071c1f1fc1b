package scan

import "time"

// EventKind classifies a session lifecycle event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStarted
	EventMatched
	EventStopped
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventMatched:
		return "matched"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a typed lifecycle notification. Matched events carry the payload;
// failed events carry the error. Events are delivered best effort: a slow or
// absent consumer drops them rather than stalling the scan loop.
type Event struct {
	Kind    EventKind
	Payload string
	Err     error
	At      time.Time
}
