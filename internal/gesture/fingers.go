package gesture

import (
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger positions within a FingerVector.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// FingerVector records which fingers are extended, ordered thumb to pinky.
type FingerVector [5]bool

// Count returns the number of extended fingers.
func (v FingerVector) Count() int {
	n := 0
	for _, up := range v {
		if up {
			n++
		}
	}
	return n
}

// String renders the vector as five digits, e.g. "01100".
func (v FingerVector) String() string {
	var b strings.Builder
	for _, up := range v {
		if up {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// tipPIP pairs each non-thumb finger tip with its PIP joint.
var tipPIP = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// ClassifyFingers decides which fingers of a hand are extended.
//
// A finger is extended when its tip is above its PIP joint (smaller y). The
// thumb is extended when its tip is left of its IP joint, which only holds
// for a right hand facing a mirrored camera; the opposite orientation reads
// the thumb inverted.
func ClassifyFingers(h *detector.HandLandmarks) FingerVector {
	var v FingerVector

	v[Thumb] = h.Points[detector.ThumbTip].X < h.Points[detector.ThumbIP].X

	for i, pair := range tipPIP {
		v[Index+i] = h.Points[pair[0]].Y < h.Points[pair[1]].Y
	}

	return v
}
