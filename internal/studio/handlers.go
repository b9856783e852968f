package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/airframe/internal/capture"
	"github.com/ayusman/airframe/internal/filter"
	"github.com/ayusman/airframe/internal/gesture"
	"github.com/ayusman/airframe/internal/store"
)

// MIME types of gallery items.
const (
	MIMEPhoto = "image/jpeg"
	MIMEVideo = "video/x-msvideo"
)

// Register installs a handler for every action on d and routes deferred
// feedback, such as countdown ticks, through d.
func (s *Studio) Register(d *Dispatcher) {
	s.mu.Lock()
	s.publish = d.Publish
	s.mu.Unlock()

	d.Handle(gesture.ActionCapture, s.capture)
	d.Handle(gesture.ActionSwitchCamera, s.switchCamera)
	d.Handle(gesture.ActionNextFilter, s.nextFilter)
	d.Handle(gesture.ActionRemoveFilter, s.removeFilter)
	d.Handle(gesture.ActionZoomIn, s.zoomIn)
	d.Handle(gesture.ActionZoomOut, s.zoomOut)
	d.Handle(gesture.ActionToggleRecording, s.toggleRecording)
	d.Handle(gesture.ActionToggleTimer, s.toggleTimer)
	d.Handle(gesture.ActionDiscardLast, s.discardLast)
	d.Handle(gesture.ActionSaveLast, s.saveLast)
	d.Handle(gesture.ActionPhotoBooth, s.togglePhotoBooth)
}

// capture takes a photo immediately, or starts the countdown when a timer is set.
// The first countdown number is the returned message; later numbers and the
// capture itself are published as SourceTimer feedback.
func (s *Studio) capture(ctx context.Context, ev gesture.Event) (string, error) {
	s.mu.Lock()
	if s.stopTick != nil {
		s.mu.Unlock()
		return "Countdown in progress", nil
	}
	timer := s.settings.Timer
	if timer <= 0 {
		s.mu.Unlock()
		return s.TakePhoto()
	}
	s.settings.Countdown = timer
	s.stopTick = s.cfg.Clock.AfterFunc(time.Second, s.tick)
	s.mu.Unlock()

	return strconv.Itoa(timer), nil
}

func (s *Studio) tick() {
	s.mu.Lock()
	if s.stopTick == nil {
		s.mu.Unlock()
		return
	}
	s.settings.Countdown--
	remaining := s.settings.Countdown
	publish := s.publish

	if remaining > 0 {
		s.stopTick = s.cfg.Clock.AfterFunc(time.Second, s.tick)
		s.mu.Unlock()
		publish(Feedback{
			Action:    gesture.ActionCapture,
			Source:    SourceTimer,
			Message:   strconv.Itoa(remaining),
			Timestamp: s.cfg.Clock.Now(),
		})
		return
	}
	s.stopTick = nil
	s.mu.Unlock()

	msg, err := s.TakePhoto()
	fb := Feedback{
		Action:    gesture.ActionCapture,
		Source:    SourceTimer,
		Message:   msg,
		Timestamp: s.cfg.Clock.Now(),
	}
	if err != nil {
		fb.Error = err.Error()
		s.logger.Warn("timed capture failed", "error", err)
	}
	publish(fb)
}

// TakePhoto encodes the latest rendered frame and adds it to the gallery. In
// photo booth mode the frame is held back until four shots have been taken, then
// the 2x2 collage is added instead.
func (s *Studio) TakePhoto() (string, error) {
	if s.cfg.Frames == nil {
		return "", ErrNoFrame
	}
	buf, ok := s.cfg.Frames.Snapshot()
	if !ok {
		return "", ErrNoFrame
	}

	s.mu.Lock()
	if !s.settings.Booth {
		s.mu.Unlock()
		p, err := s.save(buf)
		if err != nil {
			return "", err
		}
		s.logger.Debug("photo captured", "id", p.ID, "size", p.Size)
		return "Photo captured!", nil
	}

	s.booth = append(s.booth, buf)
	n := len(s.booth)
	if n < capture.CollageShots {
		s.mu.Unlock()
		return fmt.Sprintf("Photo %d/%d", n, capture.CollageShots), nil
	}
	shots := s.booth
	s.booth = nil
	s.settings.Booth = false
	s.mu.Unlock()

	collage, err := s.cfg.Collage(shots)
	if err != nil {
		return "", fmt.Errorf("build collage: %w", err)
	}
	p, err := s.save(collage)
	if err != nil {
		return "", err
	}
	s.logger.Debug("collage captured", "id", p.ID, "width", collage.Width, "height", collage.Height)
	return fmt.Sprintf("Photo %d/%d: collage saved", n, capture.CollageShots), nil
}

func (s *Studio) save(buf *filter.Buffer) (*store.Photo, error) {
	data, err := s.cfg.Encode(buf, s.cfg.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}

	p := &store.Photo{
		ID:        uuid.NewString(),
		Kind:      store.MediaPhoto,
		Filter:    string(s.Filter()),
		MIME:      MIMEPhoto,
		Data:      data,
		CreatedAt: s.cfg.Clock.Now(),
	}
	if err := s.cfg.Gallery.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// togglePhotoBooth arms or cancels a collage. Shots collected so far are dropped
// either way.
func (s *Studio) togglePhotoBooth(ctx context.Context, ev gesture.Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.booth = nil
	s.settings.Booth = !s.settings.Booth
	if s.settings.Booth {
		return fmt.Sprintf("Photo booth: take %d photos", capture.CollageShots), nil
	}
	return "Photo booth off", nil
}

func (s *Studio) switchCamera(ctx context.Context, ev gesture.Event) (string, error) {
	if s.cfg.Camera == nil {
		return "", ErrNoCamera
	}

	next := s.cfg.Camera.Facing().Toggle()
	if err := s.cfg.Camera.SetFacing(next); err != nil {
		return "", fmt.Errorf("switch camera: %w", err)
	}

	s.mu.Lock()
	s.settings.Facing = next
	s.mu.Unlock()
	s.persist(keyFacing, string(next))

	return "Camera switched", nil
}

func (s *Studio) nextFilter(ctx context.Context, ev gesture.Event) (string, error) {
	s.mu.Lock()
	next := s.settings.Filter.Next()
	s.mu.Unlock()

	return s.SetFilter(next)
}

func (s *Studio) removeFilter(ctx context.Context, ev gesture.Event) (string, error) {
	if _, err := s.SetFilter(filter.KindNone); err != nil {
		return "", err
	}
	return "Filter removed", nil
}

// SetFilter selects kind for the render cycle.
func (s *Studio) SetFilter(kind filter.Kind) (string, error) {
	if kind.Index() < 0 {
		return "", fmt.Errorf("%w: %q", filter.ErrUnknownKind, kind)
	}

	s.mu.Lock()
	s.settings.Filter = kind
	s.mu.Unlock()
	s.persist(keyFilter, string(kind))

	return "Filter: " + string(kind), nil
}

func (s *Studio) zoomIn(ctx context.Context, ev gesture.Event) (string, error) {
	return s.zoomBy(capture.ZoomStep), nil
}

func (s *Studio) zoomOut(ctx context.Context, ev gesture.Event) (string, error) {
	return s.zoomBy(-capture.ZoomStep), nil
}

func (s *Studio) zoomBy(delta float64) string {
	s.mu.Lock()
	z := capture.ClampZoom(s.settings.Zoom + delta)
	s.settings.Zoom = z
	s.mu.Unlock()
	s.persist(keyZoom, strconv.FormatFloat(z, 'f', 1, 64))

	return fmt.Sprintf("Zoom: %d%%", int(math.Round(z*100)))
}

func (s *Studio) toggleTimer(ctx context.Context, ev gesture.Event) (string, error) {
	s.mu.Lock()
	next := TimerSteps[(timerIndex(s.settings.Timer)+1)%len(TimerSteps)]
	s.settings.Timer = next
	s.mu.Unlock()
	s.persist(keyTimer, strconv.Itoa(next))

	return fmt.Sprintf("Timer: %ds", next), nil
}

func (s *Studio) toggleRecording(ctx context.Context, ev gesture.Event) (string, error) {
	rec := s.cfg.Recorder
	if rec == nil {
		return "", ErrNoRecorder
	}

	if !rec.Recording() {
		if err := os.MkdirAll(s.cfg.RecordingDir, 0755); err != nil {
			return "", fmt.Errorf("create recording dir: %w", err)
		}
		name := fmt.Sprintf("airframe-video-%d.avi", s.cfg.Clock.Now().UnixMilli())
		if err := rec.Start(filepath.Join(s.cfg.RecordingDir, name), s.cfg.RecordFPS); err != nil {
			return "", err
		}
		return "Recording started", nil
	}

	done, err := rec.Stop()
	if err != nil {
		return "", fmt.Errorf("stop recording: %w", err)
	}
	if done.Frames == 0 {
		return "Recording stopped", nil
	}

	info, err := os.Stat(done.Path)
	if err != nil {
		return "", fmt.Errorf("stat recording: %w", err)
	}
	p := &store.Photo{
		ID:        uuid.NewString(),
		Kind:      store.MediaVideo,
		Filter:    string(s.Filter()),
		MIME:      MIMEVideo,
		Path:      done.Path,
		Size:      info.Size(),
		CreatedAt: s.cfg.Clock.Now(),
	}
	if err := s.cfg.Gallery.Create(p); err != nil {
		return "", err
	}
	s.logger.Debug("recording saved", "id", p.ID, "frames", done.Frames, "path", done.Path)
	return "Recording stopped", nil
}

func (s *Studio) latest() (*store.Photo, error) {
	p, err := s.cfg.Gallery.Latest()
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEmptyGallery
	}
	return p, err
}

func (s *Studio) discardLast(ctx context.Context, ev gesture.Event) (string, error) {
	p, err := s.latest()
	if err != nil {
		return "", err
	}
	if err := s.cfg.Gallery.Delete(p.ID); err != nil {
		return "", err
	}
	if p.Path != "" {
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove recording", "path", p.Path, "error", err)
		}
	}
	return "Photo discarded", nil
}

func (s *Studio) saveLast(ctx context.Context, ev gesture.Event) (string, error) {
	p, err := s.latest()
	if err != nil {
		return "", err
	}
	path, err := s.Export(p)
	if err != nil {
		return "", err
	}
	s.logger.Debug("exported", "id", p.ID, "path", path)

	if p.Kind == store.MediaVideo {
		return "Video saved", nil
	}
	return "Photo saved", nil
}

// Export writes p into the downloads directory and returns the file path.
func (s *Studio) Export(p *store.Photo) (string, error) {
	if err := os.MkdirAll(s.cfg.DownloadDir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	ts := p.CreatedAt.UnixMilli()
	if p.Kind == store.MediaVideo {
		dst := filepath.Join(s.cfg.DownloadDir, fmt.Sprintf("airframe-video-%d.avi", ts))
		return dst, copyFile(p.Path, dst)
	}

	dst := filepath.Join(s.cfg.DownloadDir, fmt.Sprintf("airframe-photo-%d.jpg", ts))
	if len(p.Data) == 0 {
		return "", fmt.Errorf("photo %s has no data", p.ID)
	}
	if err := os.WriteFile(dst, p.Data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
