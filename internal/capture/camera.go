// Package capture reads camera frames through GoCV (OpenCV) and converts them into
// filter buffers, encoded stills and recorded video.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Facing selects which physical camera is active.
type Facing string

const (
	FacingUser        Facing = "user"
	FacingEnvironment Facing = "environment"
)

// Toggle returns the opposite facing.
func (f Facing) Toggle() Facing {
	if f == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

// Devices maps each facing to an OpenCV device index.
type Devices struct {
	User        int
	Environment int
}

func (d Devices) id(f Facing) int {
	if f == FacingEnvironment {
		return d.Environment
	}
	return d.User
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
	Facing() Facing
	// SetFacing selects the device for f, reopening it when the camera is open.
	SetFacing(f Facing) error
}

type cameraImpl struct {
	devices Devices
	facing  Facing
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a Camera starting on the user-facing device.
func NewCamera(devices Devices) Camera {
	return &cameraImpl{
		devices: devices,
		facing:  FacingUser,
		fps:     DefaultFPS,
	}
}

// Open opens the current device at 640x480.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	return c.openLocked()
}

func (c *cameraImpl) openLocked() error {
	id := c.devices.id(c.facing)
	capture, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return fmt.Errorf("open %s camera (device %d): %w", c.facing, id, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true
	return nil
}

func (c *cameraImpl) closeLocked() error {
	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeLocked()
}

// ReadFrame reads a single BGR frame. The caller is responsible for closing the
// returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

func (c *cameraImpl) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.facing
}

func (c *cameraImpl) SetFacing(f Facing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f == c.facing {
		return nil
	}
	prev := c.facing
	c.facing = f
	if !c.running {
		return nil
	}

	if err := c.closeLocked(); err != nil {
		return fmt.Errorf("close %s camera: %w", prev, err)
	}
	if err := c.openLocked(); err != nil {
		// Fall back to the device that was working.
		c.facing = prev
		if reopenErr := c.openLocked(); reopenErr != nil {
			return errors.Join(err, reopenErr)
		}
		return err
	}
	return nil
}
