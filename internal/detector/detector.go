package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to report. Only the first hand
	// drives gestures, so the default is 1.
	MaxHands int

	// MinConfidence is the minimum detection confidence (0.0-1.0). Hands scored
	// below it are dropped.
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Python is the interpreter running the landmark service. Empty selects a
	// virtual environment interpreter when one is found, else python3.
	Python string

	// IdleTimeout stops the service after this long without a frame.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}

// DetectFrame runs d on a video frame and packages the result as a landmark Frame
// stamped with at. Hands with out-of-range coordinates are reported by the engine,
// not here, so that rejects are counted in one place.
func DetectFrame(d Detector, mat *gocv.Mat, at time.Time) (Frame, error) {
	hands, err := d.Detect(mat)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Hands: hands, Timestamp: at}, nil
}
