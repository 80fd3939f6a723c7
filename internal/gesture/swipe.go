package gesture

import "math"

// DefaultSwipeThreshold is the minimum horizontal hand displacement, in
// normalized image coordinates, that counts as a swipe.
const DefaultSwipeThreshold = 0.15

// SwipeTracker detects horizontal swipes from the hand-center x position.
//
// The reference position is only replaced when tracking (re)starts or a swipe
// fires, so displacement is measured from the last stable position rather
// than frame to frame. A slow drift that crosses the threshold in many small
// steps still counts as a swipe.
type SwipeTracker struct {
	threshold float64
	lastX     float64
	hasLast   bool
}

// NewSwipeTracker creates a tracker. A non-positive threshold selects DefaultSwipeThreshold.
func NewSwipeTracker(threshold float64) *SwipeTracker {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	return &SwipeTracker{threshold: threshold}
}

// Update feeds the current hand-center x. present is false when no hand was
// seen this frame, which resets tracking.
func (t *SwipeTracker) Update(x float64, present bool) Label {
	if !present {
		t.Reset()
		return LabelNone
	}

	if !t.hasLast {
		t.lastX = x
		t.hasLast = true
		return LabelNone
	}

	delta := x - t.lastX
	if math.Abs(delta) <= t.threshold {
		return LabelNone
	}

	t.lastX = x
	if delta > 0 {
		return LabelSwipeRight
	}
	return LabelSwipeLeft
}

// Reset forgets the reference position.
func (t *SwipeTracker) Reset() {
	t.lastX = 0
	t.hasLast = false
}

// LastX returns the reference position, if any.
func (t *SwipeTracker) LastX() (float64, bool) {
	return t.lastX, t.hasLast
}

// Threshold returns the configured swipe threshold.
func (t *SwipeTracker) Threshold() float64 {
	return t.threshold
}
