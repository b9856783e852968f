// Package detector provides hand landmark types, the landmark frame wire format and
// hand detection backends that feed the gesture engine.
package detector

import (
	"errors"
	"fmt"
	"time"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrInvalidLandmarks is returned for landmark data that violates the frame contract:
// a hand without exactly NumLandmarks points or a coordinate outside [0,1].
var ErrInvalidLandmarks = errors.New("invalid landmarks")

// Point3D represents a normalized landmark position. X and Y are in [0,1] image
// coordinates (smaller Y is higher on screen); Z is an optional relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Palm returns the palm anchor used for swipe tracking (the wrist landmark).
func (h *HandLandmarks) Palm() Point3D {
	return h.Points[Wrist]
}

// Frame is one landmark snapshot produced by the hand-pose estimator.
// Only the first hand is consumed by the gesture engine.
type Frame struct {
	Hands     []HandLandmarks
	Timestamp time.Time
}

// Primary returns the first detected hand, or nil when the frame holds no hands.
func (f *Frame) Primary() *HandLandmarks {
	if f == nil || len(f.Hands) == 0 {
		return nil
	}
	return &f.Hands[0]
}

// Validate checks that every X and Y coordinate of the consumed hand lies in [0,1].
// NaN is out of range. A frame without hands is valid.
func (f *Frame) Validate() error {
	hand := f.Primary()
	if hand == nil {
		return nil
	}
	for i, p := range hand.Points {
		if !(p.X >= 0 && p.X <= 1) || !(p.Y >= 0 && p.Y <= 1) {
			return fmt.Errorf("%w: landmark %d at (%.3f, %.3f) out of range", ErrInvalidLandmarks, i, p.X, p.Y)
		}
	}
	return nil
}
