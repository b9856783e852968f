package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// MotionSource reports whether a frame differs from the previous one.
type MotionSource interface {
	Detect(frame *gocv.Mat) (bool, float64)
}

// MotionDetector detects motion between consecutive frames using frame
// differencing over a blurred grayscale copy.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of pixels
// that must change, so 1.0 means 1% of the frame.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether motion was seen
// together with the changed-pixel percentage. The first frame only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0
	blurred.CopyTo(&m.prevGray)

	return changed > m.threshold, changed
}

// Reset drops the baseline so the next frame starts a new comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked()
}

// Close releases the baseline frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked()
}

func (m *MotionDetector) releaseLocked() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold sets the changed-pixel percentage. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}

// GateConfig controls how often hand detection runs.
type GateConfig struct {
	// IdleFPS is the detection rate while the scene is still.
	IdleFPS int
	// ActiveFPS is the detection rate after motion.
	ActiveFPS int
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout time.Duration
}

// DefaultGateConfig returns 5 fps idle, 15 fps active and a 2 s idle timeout.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		IdleFPS:     5,
		ActiveFPS:   15,
		IdleTimeout: 2 * time.Second,
	}
}

// Gate throttles hand detection: every frame goes through the motion source, but
// only frames due at the current rate are admitted.
type Gate struct {
	cfg        GateConfig
	motion     MotionSource
	active     bool
	lastMotion time.Time
	lastAdmit  time.Time
}

// NewGate creates a Gate in idle mode. Non-positive config fields take defaults.
func NewGate(motion MotionSource, cfg GateConfig) *Gate {
	def := DefaultGateConfig()
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = def.IdleFPS
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = def.ActiveFPS
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	return &Gate{cfg: cfg, motion: motion}
}

// Admit feeds frame to the motion source and reports whether detection should run
// on it at time now.
func (g *Gate) Admit(frame *gocv.Mat, now time.Time) bool {
	if moved, _ := g.motion.Detect(frame); moved {
		g.active = true
		g.lastMotion = now
	} else if g.active && now.Sub(g.lastMotion) > g.cfg.IdleTimeout {
		g.active = false
	}

	if !g.lastAdmit.IsZero() && now.Sub(g.lastAdmit) < time.Second/time.Duration(g.FPS()) {
		return false
	}
	g.lastAdmit = now
	return true
}

// Active reports whether the gate is running at the active rate.
func (g *Gate) Active() bool {
	return g.active
}

// FPS returns the current detection rate.
func (g *Gate) FPS() int {
	if g.active {
		return g.cfg.ActiveFPS
	}
	return g.cfg.IdleFPS
}
