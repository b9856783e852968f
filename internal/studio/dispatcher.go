package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/airframe/internal/gesture"
)

// Sources of a dispatched action.
const (
	SourceGesture = "gesture"
	SourceManual  = "manual"
	SourceTimer   = "timer"
)

// ErrNoHandler is reported for an action without a registered handler.
var ErrNoHandler = errors.New("no handler for action")

// Feedback is the outcome of one handled action, or a follow-up such as a
// countdown tick.
type Feedback struct {
	Action    gesture.Action `json:"action"`
	Label     gesture.Label  `json:"label,omitempty"`
	Source    string         `json:"source"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Handler performs an action and returns the user-facing message.
type Handler func(ctx context.Context, ev gesture.Event) (string, error)

// Dispatcher is the action callback table. Dispatch runs one handler at a time and
// publishes the resulting Feedback to every subscriber.
type Dispatcher struct {
	run      sync.Mutex
	mu       sync.RWMutex
	handlers map[gesture.Action]Handler
	subs     map[int]func(Feedback)
	nextSub  int
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher with no handlers. A nil logger uses slog.Default.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[gesture.Action]Handler),
		subs:     make(map[int]func(Feedback)),
		logger:   logger,
	}
}

// Handle registers h for action, replacing any previous handler.
func (d *Dispatcher) Handle(action gesture.Action, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = h
}

// Subscribe registers fn for every published Feedback. Subscribers run
// synchronously on the publishing goroutine and must not block. The returned
// function removes the subscription.
func (d *Dispatcher) Subscribe(fn func(Feedback)) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// Dispatch runs the handler for ev.Action and publishes the outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, ev gesture.Event, source string) Feedback {
	d.mu.RLock()
	h, ok := d.handlers[ev.Action]
	d.mu.RUnlock()

	fb := Feedback{
		Action:    ev.Action,
		Label:     ev.Label,
		Source:    source,
		Timestamp: ev.Timestamp,
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}

	if !ok {
		fb.Error = fmt.Errorf("%w: %s", ErrNoHandler, ev.Action).Error()
		d.logger.Warn("action dropped", "action", ev.Action, "source", source)
		d.Publish(fb)
		return fb
	}

	d.run.Lock()
	msg, err := h(ctx, ev)
	d.run.Unlock()

	fb.Message = msg
	if err != nil {
		fb.Error = err.Error()
		d.logger.Warn("action failed", "action", ev.Action, "source", source, "error", err)
	} else {
		d.logger.Info("action", "action", ev.Action, "label", ev.Label, "source", source, "message", msg)
	}

	d.Publish(fb)
	return fb
}

// Publish sends fb to every subscriber.
func (d *Dispatcher) Publish(fb Feedback) {
	d.mu.RLock()
	subs := make([]func(Feedback), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.RUnlock()

	for _, fn := range subs {
		fn(fb)
	}
}
