package gesture

import "github.com/ayusman/mudra/internal/detector"

var (
	volumeUpFingers   = FingerVector{false, true, true, false, false}
	volumeDownFingers = FingerVector{false, false, false, true, true}
)

// Classifier maps one frame's hand pose to a candidate label.
type Classifier struct {
	swipe *SwipeTracker
}

// NewClassifier creates a Classifier with its own SwipeTracker.
func NewClassifier(swipeThreshold float64) *Classifier {
	return &Classifier{swipe: NewSwipeTracker(swipeThreshold)}
}

// Classify returns the candidate label for a frame. A nil hand means no hand
// was detected and resets swipe tracking.
//
// Static poses win over motion: an open palm that moves across the frame is
// PLAY, and the swipe tracker only sees frames where no static pose matched.
func (c *Classifier) Classify(h *detector.HandLandmarks) Label {
	if h == nil {
		c.swipe.Update(0, false)
		return LabelNone
	}

	fingers := ClassifyFingers(h)

	switch {
	case fingers.Count() == 5:
		return LabelPlay
	case fingers.Count() == 0:
		return LabelPause
	case fingers == volumeUpFingers:
		return LabelVolumeUp
	case fingers == volumeDownFingers:
		return LabelVolumeDown
	}

	return c.swipe.Update(h.Center().X, true)
}

// Reset clears swipe tracking.
func (c *Classifier) Reset() {
	c.swipe.Reset()
}

// Tracker exposes the classifier's swipe tracker.
func (c *Classifier) Tracker() *SwipeTracker {
	return c.swipe
}
