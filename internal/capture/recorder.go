package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/airframe/internal/filter"
)

// RecorderCodec is the FourCC used for recordings.
const RecorderCodec = "MJPG"

var (
	// ErrRecording is returned by Start while a recording is in progress.
	ErrRecording = errors.New("recording already in progress")
	// ErrNotRecording is returned by Stop and Write when nothing is being recorded.
	ErrNotRecording = errors.New("not recording")
)

// Recording describes a finished video file.
type Recording struct {
	Path   string
	Frames int
}

// Recorder writes rendered frames to a video file.
type Recorder struct {
	mu     sync.Mutex
	writer *gocv.VideoWriter
	path   string
	fps    float64
	frames int
}

// NewRecorder creates an idle Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start begins recording to path. The file is created lazily on the first Write,
// when the frame size is known.
func (r *Recorder) Start(path string, fps float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path != "" {
		return ErrRecording
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	r.path = path
	r.fps = fps
	r.frames = 0
	return nil
}

// Recording reports whether a recording is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.path != ""
}

// Write appends one frame.
func (r *Recorder) Write(b *filter.Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return ErrNotRecording
	}

	mat, err := BufferToMat(b)
	if err != nil {
		return err
	}
	defer mat.Close()

	if r.writer == nil {
		w, err := gocv.VideoWriterFile(r.path, RecorderCodec, r.fps, b.Width, b.Height, true)
		if err != nil {
			return fmt.Errorf("open video writer %s: %w", r.path, err)
		}
		r.writer = w
	}

	if err := r.writer.Write(mat); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	r.frames++
	return nil
}

// Stop finishes the recording.
func (r *Recorder) Stop() (Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return Recording{}, ErrNotRecording
	}

	rec := Recording{Path: r.path, Frames: r.frames}
	var err error
	if r.writer != nil {
		err = r.writer.Close()
		r.writer = nil
	}
	r.path = ""
	r.frames = 0
	return rec, err
}
