// Package gesture turns per-frame hand landmarks into debounced user commands.
//
// One landmark frame drives exactly one synchronous cycle:
//
//	ClassifyFingers + MotionTracker -> Recognize -> Step -> Event
//
// The Engine type wires the cycle together; every stage is also usable on its own.
package gesture

import (
	"fmt"
	"math"

	"github.com/ayusman/airframe/internal/detector"
)

// Digit indices into a FingerState.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// ThumbSpread is the minimum horizontal tip-to-base distance for an extended thumb.
const ThumbSpread = 0.05

var (
	fingerTips  = [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerBases = [5]int{detector.ThumbMCP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
)

// FingerState reports, per digit, whether it is extended.
type FingerState [5]bool

// Only reports whether exactly the given digits are extended and all others closed.
func (f FingerState) Only(digits ...int) bool {
	var want FingerState
	for _, d := range digits {
		want[d] = true
	}
	return f == want
}

// All reports whether all five digits are extended.
func (f FingerState) All() bool {
	return f == FingerState{true, true, true, true, true}
}

func (f FingerState) String() string {
	b := []byte("-----")
	for i, ext := range f {
		if ext {
			b[i] = "TIMRP"[i]
		}
	}
	return string(b)
}

// ClassifyFingers derives the extension vector from one hand's landmarks.
// The thumb extends laterally, so it is judged by horizontal spread; the other
// digits are extended when the tip is above (smaller y than) the PIP joint.
func ClassifyFingers(points []detector.Point3D) (FingerState, error) {
	var fingers FingerState
	if len(points) < detector.NumLandmarks {
		return fingers, fmt.Errorf("%w: got %d points, want %d", detector.ErrInvalidLandmarks, len(points), detector.NumLandmarks)
	}

	for i := range fingers {
		tip := points[fingerTips[i]]
		base := points[fingerBases[i]]
		if i == Thumb {
			fingers[i] = math.Abs(tip.X-base.X) > ThumbSpread
		} else {
			fingers[i] = tip.Y < base.Y
		}
	}

	return fingers, nil
}
