// Package gesture turns hand landmarks into debounced media-control gestures.
//
// A detection cycle runs ClassifyFingers over the first detected hand, picks
// one candidate Label through Classifier (static poses first, then swipes
// from SwipeTracker) and passes it through DebounceGate, which emits an Event
// only for a new label or for a repeat of the same label after the cooldown.
package gesture

import (
	"fmt"
	"time"
)

// Label is one of the closed set of gestures the classifier can produce.
type Label string

const (
	LabelNone       Label = "NONE"
	LabelPlay       Label = "PLAY"
	LabelPause      Label = "PAUSE"
	LabelVolumeUp   Label = "VOLUME_UP"
	LabelVolumeDown Label = "VOLUME_DOWN"
	LabelSwipeLeft  Label = "SWIPE_LEFT"
	LabelSwipeRight Label = "SWIPE_RIGHT"
)

// Labels returns every label that can be emitted as an event.
func Labels() []Label {
	return []Label{
		LabelPlay,
		LabelPause,
		LabelVolumeUp,
		LabelVolumeDown,
		LabelSwipeLeft,
		LabelSwipeRight,
	}
}

// ParseLabel converts a string into a Label.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if l == LabelNone {
		return l, nil
	}
	for _, known := range Labels() {
		if l == known {
			return l, nil
		}
	}
	return LabelNone, fmt.Errorf("unknown gesture label %q", s)
}

// Event is a confirmed gesture. It is never modified after DebounceGate creates it.
type Event struct {
	ID        string    `json:"id"`
	Label     Label     `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// Clock supplies the instants used for cooldown arithmetic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now. The monotonic reading it carries makes
// Time.Sub immune to wall-clock adjustments.
type SystemClock struct{}

// Now returns the current instant.
func (SystemClock) Now() time.Time {
	return time.Now()
}
