// Package studio holds the photo studio state driven by gesture actions: the active
// filter, zoom, countdown timer, camera facing, recording and the gallery.
package studio

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/airframe/internal/capture"
	"github.com/ayusman/airframe/internal/filter"
	"github.com/ayusman/airframe/internal/store"
)

// TimerSteps is the countdown cycle in seconds.
var TimerSteps = []int{0, 3, 5, 10}

// DefaultTimer is the countdown before a capture on a fresh install.
const DefaultTimer = 3

// Settings keys.
const (
	keyFilter = "filter"
	keyZoom   = "zoom"
	keyTimer  = "timer"
	keyFacing = "facing"
)

var (
	// ErrNoFrame is returned by capture before the first frame has been rendered.
	ErrNoFrame = errors.New("no rendered frame available")
	// ErrNoCamera is returned when an action needs a camera that is not attached.
	ErrNoCamera = errors.New("camera unavailable")
	// ErrNoRecorder is returned when recording is not supported.
	ErrNoRecorder = errors.New("recorder unavailable")
	// ErrEmptyGallery is returned by discard and save when the gallery is empty.
	ErrEmptyGallery = errors.New("gallery is empty")
)

// Settings is a snapshot of the studio state.
type Settings struct {
	Filter    filter.Kind    `json:"filter"`
	Zoom      float64        `json:"zoom"`
	Timer     int            `json:"timer"`
	Facing    capture.Facing `json:"facing"`
	Recording bool           `json:"recording"`
	Countdown int            `json:"countdown"`
	// Booth is set while photo booth mode collects shots for a collage.
	Booth      bool `json:"booth"`
	BoothShots int  `json:"booth_shots"`
}

// FrameSource yields a copy of the most recent rendered frame.
type FrameSource interface {
	Snapshot() (*filter.Buffer, bool)
}

// CameraSwitcher selects the active camera.
type CameraSwitcher interface {
	Facing() capture.Facing
	SetFacing(f capture.Facing) error
}

// VideoRecorder is the part of capture.Recorder the studio drives.
type VideoRecorder interface {
	Start(path string, fps float64) error
	Stop() (capture.Recording, error)
	Recording() bool
}

// Gallery stores captured media.
type Gallery interface {
	Create(p *store.Photo) error
	Latest() (*store.Photo, error)
	Delete(id string) error
}

// SettingsStore persists studio settings.
type SettingsStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Clock schedules countdown ticks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Config wires a Studio to its collaborators. Camera, Recorder and Settings may be
// nil.
type Config struct {
	Frames       FrameSource
	Camera       CameraSwitcher
	Recorder     VideoRecorder
	Gallery      Gallery
	Settings     SettingsStore
	DownloadDir  string
	RecordingDir string
	RecordFPS    float64
	JPEGQuality  int
	Encode       func(b *filter.Buffer, quality int) ([]byte, error)
	Collage      func(shots []*filter.Buffer) (*filter.Buffer, error)
	Clock        Clock
	Logger       *slog.Logger
}

// Studio applies actions to the studio state. All methods are safe for concurrent
// use.
type Studio struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	settings Settings
	stopTick func() bool
	publish  func(Feedback)
	booth    []*filter.Buffer
}

// New creates a Studio and restores persisted settings.
func New(cfg Config) *Studio {
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}
	if cfg.Encode == nil {
		cfg.Encode = capture.EncodeJPEG
	}
	if cfg.Collage == nil {
		cfg.Collage = capture.Collage
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = capture.DefaultJPEGQuality
	}
	if cfg.RecordFPS <= 0 {
		cfg.RecordFPS = capture.DefaultFPS
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RecordingDir == "" {
		cfg.RecordingDir = filepath.Join(os.TempDir(), "airframe")
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "."
	}

	s := &Studio{
		cfg:     cfg,
		logger:  cfg.Logger,
		publish: func(Feedback) {},
		settings: Settings{
			Filter: filter.KindNone,
			Zoom:   capture.MinZoom,
			Timer:  DefaultTimer,
			Facing: capture.FacingUser,
		},
	}
	s.restore()
	return s
}

// restore loads persisted settings and re-applies the camera facing.
func (s *Studio) restore() {
	if s.cfg.Settings == nil {
		return
	}

	if v, err := s.cfg.Settings.Get(keyFilter); err == nil {
		if k, err := filter.ParseKind(v); err == nil {
			s.settings.Filter = k
		}
	}
	if v, err := s.cfg.Settings.Get(keyZoom); err == nil {
		if z, err := strconv.ParseFloat(v, 64); err == nil {
			s.settings.Zoom = capture.ClampZoom(z)
		}
	}
	if v, err := s.cfg.Settings.Get(keyTimer); err == nil {
		if n, err := strconv.Atoi(v); err == nil && timerIndex(n) >= 0 {
			s.settings.Timer = n
		}
	}
	if v, err := s.cfg.Settings.Get(keyFacing); err == nil {
		f := capture.Facing(v)
		if f == capture.FacingUser || f == capture.FacingEnvironment {
			s.settings.Facing = f
		}
	}

	if s.cfg.Camera != nil && s.cfg.Camera.Facing() != s.settings.Facing {
		if err := s.cfg.Camera.SetFacing(s.settings.Facing); err != nil {
			s.logger.Warn("restore camera facing", "facing", s.settings.Facing, "error", err)
			s.settings.Facing = s.cfg.Camera.Facing()
		}
	}
}

// persist stores one setting. Failures are logged; the in-memory value stays.
func (s *Studio) persist(key, value string) {
	if s.cfg.Settings == nil {
		return
	}
	if err := s.cfg.Settings.Set(key, value); err != nil {
		s.logger.Warn("persist setting", "key", key, "error", err)
	}
}

// Settings returns a snapshot of the current state.
func (s *Studio) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.settings
	out.BoothShots = len(s.booth)
	if s.cfg.Recorder != nil {
		out.Recording = s.cfg.Recorder.Recording()
	}
	return out
}

// Filter returns the active filter.
func (s *Studio) Filter() filter.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Filter
}

// Zoom returns the active zoom factor.
func (s *Studio) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Zoom
}

// Close cancels a pending countdown.
func (s *Studio) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
		s.settings.Countdown = 0
	}
}

func timerIndex(seconds int) int {
	for i, v := range TimerSteps {
		if v == seconds {
			return i
		}
	}
	return -1
}
