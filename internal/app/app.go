// Package app wires the AirFrame studio together: the camera render cycle, the
// hand detection loop, the gesture cycle and the action dispatcher.
package app

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airframe/internal/capture"
	"github.com/ayusman/airframe/internal/detector"
	"github.com/ayusman/airframe/internal/filter"
	"github.com/ayusman/airframe/internal/gesture"
	"github.com/ayusman/airframe/internal/metrics"
	"github.com/ayusman/airframe/internal/plugin"
	"github.com/ayusman/airframe/internal/store"
	"github.com/ayusman/airframe/internal/studio"
)

// Pipeline defaults.
const (
	// DefaultRenderFPS is the render cycle rate.
	DefaultRenderFPS = 30
	// DefaultMotionThreshold is the percentage of changed pixels that counts as motion.
	DefaultMotionThreshold = 1.0
	// notifyQueue bounds plugin notifications waiting to run.
	notifyQueue = 32
)

// ErrRunning is returned by Start when the cycles are already running.
var ErrRunning = errors.New("app already running")

// Config holds configuration options for the application.
type Config struct {
	// Store is required; it backs the gallery, settings and action log.
	Store *store.Store

	// Camera is optional. Without it no frames are rendered and landmark frames
	// must be submitted with SubmitFrame.
	Camera   capture.Camera
	Detector detector.Detector
	Hooks    *plugin.Hooks
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	Timings           gesture.Timings
	ResetMotionOnLoss bool

	Gate            capture.GateConfig
	MotionThreshold float64
	RenderFPS       int
	NoiseSeed       uint64

	DownloadDir  string
	RecordingDir string
	JPEGQuality  int
}

// State is a snapshot of the studio and the gesture session.
type State struct {
	Enabled   bool            `json:"enabled"`
	Studio    studio.Settings `json:"studio"`
	Session   gesture.Session `json:"session"`
	Last      gesture.Result  `json:"last"`
	Rendered  uint64          `json:"rendered"`
	HasCamera bool            `json:"has_camera"`
}

// capturedFrame is a camera frame admitted for hand detection.
type capturedFrame struct {
	mat *gocv.Mat
	at  time.Time
}

// App is the main application that runs the render and gesture cycles.
type App struct {
	config   Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionDetector
	gate     *capture.Gate
	pipeline *filter.Pipeline
	recorder *capture.Recorder
	frames   *FrameBuffer
	studio   *studio.Studio
	dispatch *studio.Dispatcher
	engine   *gesture.Engine

	captured  *Handoff[capturedFrame]
	landmarks *Handoff[detector.Frame]
	notify    chan plugin.Request

	mu      sync.RWMutex
	enabled bool
	session gesture.Session
	last    gesture.Result
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = DefaultMotionThreshold
	}
	if config.RenderFPS <= 0 {
		config.RenderFPS = DefaultRenderFPS
	}
	if config.RecordingDir == "" && config.Store != nil {
		config.RecordingDir = filepath.Join(filepath.Dir(config.Store.Path()), "recordings")
	}

	a := &App{
		config:   config,
		logger:   config.Logger,
		metrics:  config.Metrics,
		camera:   config.Camera,
		detector: config.Detector,
		motion:   capture.NewMotionDetector(config.MotionThreshold),
		pipeline: filter.NewPipeline(filter.NewNoise(config.NoiseSeed)),
		recorder: capture.NewRecorder(),
		frames:   NewFrameBuffer(),
		dispatch: studio.NewDispatcher(config.Logger),
		enabled:  true,
		captured: NewHandoff(func(f capturedFrame) {
			f.mat.Close()
		}),
		landmarks: NewHandoff[detector.Frame](nil),
		notify:    make(chan plugin.Request, notifyQueue),
	}
	a.gate = capture.NewGate(a.motion, config.Gate)

	studioCfg := studio.Config{
		Frames:       a.frames,
		Recorder:     a.recorder,
		DownloadDir:  config.DownloadDir,
		RecordingDir: config.RecordingDir,
		RecordFPS:    float64(config.RenderFPS),
		JPEGQuality:  config.JPEGQuality,
		Logger:       config.Logger,
	}
	if config.Camera != nil {
		studioCfg.Camera = config.Camera
	}
	if config.Store != nil {
		studioCfg.Gallery = config.Store.Photos()
		studioCfg.Settings = config.Store.Settings()
	}
	a.studio = studio.New(studioCfg)
	a.studio.Register(a.dispatch)
	a.dispatch.Subscribe(a.onFeedback)

	a.engine = gesture.NewEngine(gesture.Options{
		Timings:           config.Timings,
		ResetMotionOnLoss: config.ResetMotionOnLoss,
		OnAction:          a.onAction,
		Logger:            config.Logger,
	})

	return a
}

// SetEnabled enables or disables gesture recognition. Manual triggers keep
// working while disabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start launches the cycles. The render and detection loops run only when a
// camera is configured.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return ErrRunning
	}

	if a.camera != nil {
		if err := a.camera.Open(); err != nil {
			return err
		}
		a.camera.SetFPS(a.config.RenderFPS)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(2)
	go a.runGestureCycle(ctx)
	go a.runNotifier(ctx)

	if a.camera != nil {
		a.wg.Add(1)
		go a.runRenderCycle(ctx)
		if a.detector != nil {
			a.wg.Add(1)
			go a.runDetectLoop(ctx)
		}
	}

	a.logger.Info("pipeline started", "camera", a.camera != nil, "detector", a.detector != nil)
	return nil
}

// Stop halts the cycles and releases resources. A recording in progress is
// finished through the studio so that it lands in the gallery.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	a.wg.Wait()

	a.studio.Close()
	if a.recorder.Recording() {
		a.Trigger(context.Background(), gesture.ActionToggleRecording)
	}

	a.captured.Drain()
	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			a.logger.Warn("close camera", "error", err)
		}
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Warn("close detector", "error", err)
		}
	}

	a.logger.Info("pipeline stopped")
}

// SubmitFrame hands a landmark frame to the gesture cycle. Invalid frames are
// rejected here and never reach the engine.
func (a *App) SubmitFrame(f detector.Frame) error {
	if err := f.Validate(); err != nil {
		a.metrics.IncRejects()
		return err
	}
	a.landmarks.Publish(f)
	return nil
}

// Trigger dispatches action as if it had been recognized, tagged as manual.
func (a *App) Trigger(ctx context.Context, action gesture.Action) studio.Feedback {
	ev := gesture.Event{Action: action, Timestamp: time.Now()}
	return a.dispatch.Dispatch(ctx, ev, studio.SourceManual)
}

// SetFilter selects kind directly and publishes the change to subscribers as
// set_filter feedback.
func (a *App) SetFilter(kind filter.Kind) (studio.Feedback, error) {
	msg, err := a.studio.SetFilter(kind)
	if err != nil {
		return studio.Feedback{}, err
	}
	fb := studio.Feedback{
		Action:    gesture.ActionSetFilter,
		Source:    studio.SourceManual,
		Message:   msg,
		Timestamp: time.Now(),
	}
	a.dispatch.Publish(fb)
	return fb, nil
}

// Subscribe registers fn for every action feedback.
func (a *App) Subscribe(fn func(studio.Feedback)) (cancel func()) {
	return a.dispatch.Subscribe(fn)
}

// State returns a snapshot of the studio and gesture session.
func (a *App) State() State {
	a.mu.RLock()
	s := State{
		Enabled:   a.enabled,
		Session:   a.session,
		Last:      a.last,
		HasCamera: a.camera != nil,
	}
	a.mu.RUnlock()

	s.Studio = a.studio.Settings()
	s.Rendered = a.frames.Seq()
	return s
}

// Studio returns the studio state holder.
func (a *App) Studio() *studio.Studio {
	return a.studio
}

// Frames returns the rendered frame buffer.
func (a *App) Frames() *FrameBuffer {
	return a.frames
}

// Metrics returns the metrics registry the app reports to.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Store returns the backing store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// onAction runs on the gesture goroutine for every fired event.
func (a *App) onAction(ev gesture.Event) {
	a.dispatch.Dispatch(context.Background(), ev, studio.SourceGesture)
}

// onFeedback records every dispatched action and queues plugin notifications.
func (a *App) onFeedback(fb studio.Feedback) {
	a.metrics.IncAction(string(fb.Action), fb.Source)

	if a.config.Store != nil {
		msg := fb.Message
		if fb.Error != "" {
			msg = fb.Error
		}
		entry := &store.ActionEntry{
			Action:  string(fb.Action),
			Label:   string(fb.Label),
			Source:  fb.Source,
			Message: msg,
			FiredAt: fb.Timestamp,
		}
		if err := a.config.Store.ActionLog().Append(entry); err != nil {
			a.logger.Warn("append action log", "action", fb.Action, "error", err)
		}
	}

	if a.config.Hooks == nil || fb.Error != "" || fb.Message == "" {
		return
	}
	req := plugin.Request{
		Action:    string(fb.Action),
		Label:     string(fb.Label),
		Message:   fb.Message,
		Timestamp: fb.Timestamp.UnixMilli(),
	}
	select {
	case a.notify <- req:
	default:
		a.logger.Warn("plugin queue full, dropping notification", "action", fb.Action)
	}
}

func (a *App) runNotifier(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.notify:
			if err := a.config.Hooks.Notify(ctx, req); err != nil {
				a.logger.Warn("plugin notification failed", "action", req.Action, "error", err)
			}
		}
	}
}
