package gesture

import (
	"math"

	"github.com/ayusman/airframe/internal/detector"
)

// Swipe thresholds in normalized image units between two consecutive frames.
const (
	SwipeMinDX = 0.15
	SwipeMaxDY = 0.1
)

// MotionTracker remembers the palm position of the previous frame and reports
// horizontal swipes between consecutive frames. It keeps no history beyond one sample.
type MotionTracker struct {
	prev    detector.Point3D
	hasPrev bool
}

// Track compares palm with the previous sample and returns SwipeLeft, SwipeRight or
// None. The sample is always replaced by palm, whatever the outcome.
func (m *MotionTracker) Track(palm detector.Point3D) Label {
	label := None
	if m.hasPrev {
		dx := palm.X - m.prev.X
		dy := palm.Y - m.prev.Y
		if math.Abs(dy) < SwipeMaxDY {
			switch {
			case dx > SwipeMinDX:
				label = SwipeRight
			case dx < -SwipeMinDX:
				label = SwipeLeft
			}
		}
	}

	m.prev = palm
	m.hasPrev = true
	return label
}

// Reset forgets the previous sample; the next Track call only records a baseline.
func (m *MotionTracker) Reset() {
	m.prev = detector.Point3D{}
	m.hasPrev = false
}

// Previous returns the stored palm sample and whether one exists.
func (m *MotionTracker) Previous() (detector.Point3D, bool) {
	return m.prev, m.hasPrev
}
