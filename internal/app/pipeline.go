package app

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airframe/internal/capture"
	"github.com/ayusman/airframe/internal/detector"
	"github.com/ayusman/airframe/internal/gesture"
)

// runRenderCycle reads camera frames at the render rate and, per frame:
//  1. offers the raw frame to the motion gate for hand detection
//  2. crops it to the current zoom
//  3. converts it into the back buffer and applies the current filter
//  4. feeds the recorder when a recording is in progress
//  5. swaps the buffer to the front for capture and the stream
func (a *App) runRenderCycle(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.RenderFPS))
	defer ticker.Stop()

	wasActive := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				if !errors.Is(err, capture.ErrCameraNotOpen) {
					a.logger.Debug("read frame", "error", err)
				}
				continue
			}

			now := time.Now()
			if a.detector != nil && a.IsEnabled() && a.gate.Admit(frame, now) {
				clone := frame.Clone()
				a.captured.Publish(capturedFrame{mat: &clone, at: now})
			}
			if active := a.gate.Active(); active != wasActive {
				wasActive = active
				a.logger.Debug("detection rate changed", "active", active, "fps", a.gate.FPS())
			}

			if err := a.render(frame); err != nil {
				a.logger.Warn("render frame", "error", err)
			}
			frame.Close()
		}
	}
}

// render turns one camera frame into the next front buffer.
func (a *App) render(frame *gocv.Mat) error {
	settings := a.studio.Settings()

	zoomed := capture.Zoom(*frame, settings.Zoom)
	buf, err := capture.MatToBuffer(zoomed, a.frames.Back())
	zoomed.Close()
	if err != nil {
		return err
	}

	start := time.Now()
	if err := a.pipeline.Apply(settings.Filter, buf); err != nil {
		return err
	}
	a.metrics.ObserveFilter(string(settings.Filter), time.Since(start))

	if a.recorder.Recording() {
		if err := a.recorder.Write(buf); err != nil && !errors.Is(err, capture.ErrNotRecording) {
			a.logger.Warn("record frame", "error", err)
		}
	}

	a.frames.Swap(buf)
	a.metrics.IncRendered()
	return nil
}

// runDetectLoop runs hand detection on frames admitted by the motion gate and
// passes the landmarks to the gesture cycle.
func (a *App) runDetectLoop(ctx context.Context) {
	defer a.wg.Done()

	for {
		f, err := a.captured.Take(ctx)
		if err != nil {
			return
		}

		frame, err := detector.DetectFrame(a.detector, f.mat, f.at)
		f.mat.Close()
		if err != nil {
			a.logger.Warn("detect hands", "error", err)
			continue
		}
		a.landmarks.Publish(frame)
	}
}

// runGestureCycle feeds landmark frames to the engine one at a time.
func (a *App) runGestureCycle(ctx context.Context) {
	defer a.wg.Done()

	for {
		frame, err := a.landmarks.Take(ctx)
		if err != nil {
			return
		}
		if !a.IsEnabled() {
			continue
		}
		a.processFrame(frame)
	}
}

// processFrame runs one engine cycle and records its outcome.
func (a *App) processFrame(frame detector.Frame) {
	a.metrics.IncFrames()

	res, err := a.engine.Process(frame)
	if err != nil {
		a.metrics.IncRejects()
		a.logger.Debug("frame rejected", "error", err)
		return
	}
	if res.Label != gesture.None {
		a.metrics.IncLabel(string(res.Label))
	}

	a.mu.Lock()
	a.session = a.engine.Session()
	a.last = res
	a.mu.Unlock()
}
