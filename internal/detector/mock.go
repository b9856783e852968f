package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Finger MCP x positions for a right hand, palm facing the camera.
var fingerColumns = [4]struct {
	mcp int
	x   float64
}{
	{IndexMCP, 0.55},
	{MiddleMCP, 0.50},
	{RingMCP, 0.45},
	{PinkyMCP, 0.40},
}

type thumbPose int

const (
	thumbTucked thumbPose = iota
	thumbSide
	thumbUp
	thumbDown
)

// presetHand builds a right hand with the wrist at (0.5, 0.8), the knuckles on
// y=0.68 and each finger either extended upward or curled into the palm.
func presetHand(thumb thumbPose, index, middle, ring, pinky bool) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.01}

	switch thumb {
	case thumbTucked:
		h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.72, Z: 0.01}
		h.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.70, Z: -0.01}
		h.Points[ThumbTip] = Point3D{X: 0.56, Y: 0.68, Z: -0.02}
	case thumbSide:
		h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72, Z: 0.02}
		h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.66, Z: 0.03}
		h.Points[ThumbTip] = Point3D{X: 0.74, Y: 0.62, Z: 0.03}
	case thumbUp:
		h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.65}
		h.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.50}
		h.Points[ThumbTip] = Point3D{X: 0.70, Y: 0.35}
	case thumbDown:
		h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72}
		h.Points[ThumbIP] = Point3D{X: 0.65, Y: 0.82}
		h.Points[ThumbTip] = Point3D{X: 0.68, Y: 0.90}
	}

	for i, extended := range [4]bool{index, middle, ring, pinky} {
		col := fingerColumns[i]
		base := col.mcp
		h.Points[base] = Point3D{X: col.x, Y: 0.68}
		if extended {
			h.Points[base+1] = Point3D{X: col.x, Y: 0.55}
			h.Points[base+2] = Point3D{X: col.x, Y: 0.45}
			h.Points[base+3] = Point3D{X: col.x, Y: 0.35}
		} else {
			h.Points[base+1] = Point3D{X: col.x, Y: 0.66, Z: -0.05}
			h.Points[base+2] = Point3D{X: col.x - 0.02, Y: 0.70, Z: -0.04}
			h.Points[base+3] = Point3D{X: col.x - 0.04, Y: 0.72, Z: -0.02}
		}
	}

	return h
}

// OpenPalmLandmarks returns a preset hand with all five digits extended.
func OpenPalmLandmarks() HandLandmarks {
	return presetHand(thumbSide, true, true, true, true)
}

// ThumbsUpLandmarks returns a preset hand with only the thumb extended, tip above
// the index knuckle.
func ThumbsUpLandmarks() HandLandmarks {
	return presetHand(thumbUp, false, false, false, false)
}

// ThumbsDownLandmarks returns a preset hand with only the thumb extended, tip below
// the index knuckle.
func ThumbsDownLandmarks() HandLandmarks {
	return presetHand(thumbDown, false, false, false, false)
}

// PeaceLandmarks returns a preset V sign: index and middle extended.
func PeaceLandmarks() HandLandmarks {
	return presetHand(thumbTucked, true, true, false, false)
}

// FistLandmarks returns a preset closed fist.
func FistLandmarks() HandLandmarks {
	return presetHand(thumbTucked, false, false, false, false)
}

// RockLandmarks returns a preset rock sign: index and pinky extended.
func RockLandmarks() HandLandmarks {
	return presetHand(thumbTucked, true, false, false, true)
}

// PointUpLandmarks returns a preset hand pointing up with the index finger.
func PointUpLandmarks() HandLandmarks {
	return presetHand(thumbTucked, true, false, false, false)
}

// PointDownLandmarks returns a preset hand whose extended index tip sits more than
// 0.1 below its knuckle.
func PointDownLandmarks() HandLandmarks {
	h := presetHand(thumbTucked, false, false, false, false)
	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.40}
	h.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.60}
	h.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.57}
	h.Points[IndexTip] = Point3D{X: 0.55, Y: 0.55}
	return h
}

// Shift returns a copy of h translated by (dx, dy).
func (h HandLandmarks) Shift(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
