package scan

import "time"

// DefaultDebounceWindow suppresses repeats of the same payload for long
// enough that a barcode held in front of the camera fires the sink once,
// while still allowing a quick re-scan of a different code. It is longer
// than one sampling interval on purpose.
const DefaultDebounceWindow = 800 * time.Millisecond

// Debouncer suppresses repeated emissions of an identical payload inside a
// time window. State is per session; two sessions never share a Debouncer.
type Debouncer struct {
	window      time.Duration
	lastPayload string
	lastAt      time.Time
}

// NewDebouncer creates a Debouncer. A non-positive window falls back to
// DefaultDebounceWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window}
}

// ShouldEmit reports whether the payload read at now should reach the sink,
// and records the pair when it should. A payload equal to the previous one
// within the window is suppressed; anything else emits.
func (d *Debouncer) ShouldEmit(payload string, now time.Time) bool {
	if payload == d.lastPayload && now.Sub(d.lastAt) < d.window {
		return false
	}
	d.lastPayload = payload
	d.lastAt = now
	return true
}
