package gesture

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func poseFromVector(v FingerVector, wristX float64) detector.HandLandmarks {
	return detector.PoseLandmarks(wristX, 0.8, v[Thumb], v[Index], v[Middle], v[Ring], v[Pinky])
}

func TestClassifier_StaticPoses(t *testing.T) {
	tests := []struct {
		name    string
		fingers FingerVector
		want    Label
	}{
		{"all extended", FingerVector{true, true, true, true, true}, LabelPlay},
		{"none extended", FingerVector{}, LabelPause},
		{"index and middle", FingerVector{false, true, true, false, false}, LabelVolumeUp},
		{"ring and pinky", FingerVector{false, false, false, true, true}, LabelVolumeDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultSwipeThreshold)
			hand := poseFromVector(tt.fingers, 0.5)
			if got := c.Classify(&hand); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifier_EveryOtherCombinationIsNone(t *testing.T) {
	for bits := 0; bits < 32; bits++ {
		var v FingerVector
		for i := range v {
			v[i] = bits&(1<<i) != 0
		}
		if v.Count() == 5 || v.Count() == 0 || v == volumeUpFingers || v == volumeDownFingers {
			continue
		}

		c := NewClassifier(DefaultSwipeThreshold)
		hand := poseFromVector(v, 0.5)
		for frame := 0; frame < 3; frame++ {
			if got := c.Classify(&hand); got != LabelNone {
				t.Errorf("fingers %s frame %d: got %s, want NONE", v, frame, got)
			}
		}
	}
}

func TestClassifier_Swipe(t *testing.T) {
	c := NewClassifier(DefaultSwipeThreshold)

	pointing := detector.PointingLandmarks()
	if got := c.Classify(&pointing); got != LabelNone {
		t.Fatalf("first frame: got %s, want NONE", got)
	}

	moved := pointing.Translate(-0.2, 0)
	if got := c.Classify(&moved); got != LabelSwipeLeft {
		t.Errorf("after moving left: got %s, want SWIPE_LEFT", got)
	}

	back := pointing.Translate(0.1, 0)
	if got := c.Classify(&back); got != LabelSwipeRight {
		t.Errorf("after moving right: got %s, want SWIPE_RIGHT", got)
	}
}

func TestClassifier_StaticPoseBeatsSwipe(t *testing.T) {
	c := NewClassifier(DefaultSwipeThreshold)

	pointing := detector.PointingLandmarks()
	c.Classify(&pointing)

	// An open palm far to the right of the tracked position is still PLAY.
	palm := detector.OpenPalmLandmarks().Translate(0.3, 0)
	if got := c.Classify(&palm); got != LabelPlay {
		t.Errorf("moving open palm: got %s, want PLAY", got)
	}

	// The static frame did not feed the tracker, so the reference is unchanged.
	if x, ok := c.Tracker().LastX(); !ok || x != pointing.Center().X {
		t.Errorf("tracker reference = %f, %v; want %f, true", x, ok, pointing.Center().X)
	}
}

func TestClassifier_AbsentResetsTracker(t *testing.T) {
	c := NewClassifier(DefaultSwipeThreshold)

	pointing := detector.PointingLandmarks()
	c.Classify(&pointing)

	if got := c.Classify(nil); got != LabelNone {
		t.Errorf("absent hand: got %s, want NONE", got)
	}
	if _, ok := c.Tracker().LastX(); ok {
		t.Error("absent hand should reset the swipe tracker")
	}

	far := pointing.Translate(0.3, 0)
	if got := c.Classify(&far); got != LabelNone {
		t.Errorf("first frame after gap: got %s, want NONE", got)
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	pointing := detector.PointingLandmarks()
	frames := []*detector.HandLandmarks{
		&pointing,
		nil,
		ptr(pointing.Translate(-0.1, 0)),
		ptr(pointing.Translate(0.15, 0)),
		ptr(detector.VictoryLandmarks()),
		ptr(pointing.Translate(-0.2, 0)),
	}

	a := NewClassifier(DefaultSwipeThreshold)
	b := NewClassifier(DefaultSwipeThreshold)

	for i, f := range frames {
		la, lb := a.Classify(f), b.Classify(f)
		if la != lb {
			t.Errorf("frame %d: classifiers disagree: %s vs %s", i, la, lb)
		}
	}
}

func ptr(h detector.HandLandmarks) *detector.HandLandmarks {
	return &h
}

func TestParseLabel(t *testing.T) {
	for _, l := range append(Labels(), LabelNone) {
		got, err := ParseLabel(string(l))
		if err != nil {
			t.Errorf("ParseLabel(%q) error = %v", l, err)
		}
		if got != l {
			t.Errorf("ParseLabel(%q) = %s", l, got)
		}
	}

	if _, err := ParseLabel("WAVE"); err == nil {
		t.Error("expected error for unknown label")
	}
}
