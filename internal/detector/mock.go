package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Finger layout of the preset poses, relative to the wrist. The thumb sits on
// the low-x side, as seen in a mirrored right hand with the palm to the camera.
var fingerColumns = [5]float64{-0.14, -0.05, 0.0, 0.05, 0.10}

// PoseLandmarks builds a right hand with its wrist at (wristX, 0.8) and each
// finger either extended or curled.
func PoseLandmarks(wristX, wristY float64, thumb, index, middle, ring, pinky bool) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	at := func(dx, y float64) Point3D {
		return Point3D{X: wristX + dx, Y: wristY + y}
	}

	h.Points[Wrist] = at(0, 0)

	h.Points[ThumbCMC] = at(-0.05, -0.05)
	h.Points[ThumbMCP] = at(-0.10, -0.10)
	h.Points[ThumbIP] = at(-0.14, -0.15)
	if thumb {
		h.Points[ThumbTip] = at(-0.19, -0.20)
	} else {
		// Folded across the palm, tip back past the IP joint.
		h.Points[ThumbTip] = at(-0.08, -0.14)
	}

	type finger struct {
		mcp, pip, dip, tip int
		extended         bool
	}
	fingers := []finger{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip, index},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, middle},
		{RingMCP, RingPIP, RingDIP, RingTip, ring},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, pinky},
	}

	for i, f := range fingers {
		dx := fingerColumns[i+1]
		h.Points[f.mcp] = at(dx, -0.12)
		if f.extended {
			h.Points[f.pip] = at(dx, -0.25)
			h.Points[f.dip] = at(dx, -0.35)
			h.Points[f.tip] = at(dx, -0.45)
		} else {
			// Curled: the tip drops back below its PIP joint.
			h.Points[f.pip] = at(dx, -0.20)
			h.Points[f.dip] = at(dx, -0.16)
			h.Points[f.tip] = at(dx, -0.10)
		}
	}

	return h
}

// OpenPalmLandmarks returns a hand with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks(0.5, 0.8, true, true, true, true, true)
}

// FistLandmarks returns a hand with every finger curled.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks(0.5, 0.8, false, false, false, false, false)
}

// VictoryLandmarks returns a hand with only the index and middle fingers extended.
func VictoryLandmarks() HandLandmarks {
	return PoseLandmarks(0.5, 0.8, false, true, true, false, false)
}

// RingPinkyLandmarks returns a hand with only the ring and pinky fingers extended.
func RingPinkyLandmarks() HandLandmarks {
	return PoseLandmarks(0.5, 0.8, false, false, false, true, true)
}

// PointingLandmarks returns a hand with only the index finger extended. It
// matches no static gesture, so it is the pose used to drive swipes.
func PointingLandmarks() HandLandmarks {
	return PoseLandmarks(0.5, 0.8, false, true, false, false, false)
}

// ThumbsUpLandmarks returns a hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return PoseLandmarks(0.5, 0.8, true, false, false, false, false)
}
