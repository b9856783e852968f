package gesture

import (
	"log/slog"

	"github.com/ayusman/airframe/internal/detector"
)

// Options configures an Engine.
type Options struct {
	Timings Timings

	// ResetMotionOnLoss forgets the swipe baseline when a frame has no hands. When
	// false, a swipe after a detection gap compares against the last seen palm.
	ResetMotionOnLoss bool

	// OnAction is called synchronously for every fired event.
	OnAction func(Event)

	Logger *slog.Logger
}

// Result describes what one frame did to the engine.
type Result struct {
	NoHand  bool        `json:"no_hand"`
	Fingers FingerState `json:"fingers"`
	Label   Label       `json:"label"`
	Event   *Event      `json:"event,omitempty"`
}

// Engine runs the per-frame gesture cycle. It owns the motion sample and the
// session state; it is not safe for concurrent use and expects frames from a
// single goroutine in timestamp order.
type Engine struct {
	opts    Options
	tracker MotionTracker
	session Session
	started bool
}

// NewEngine creates an Engine. A zero Timings value selects DefaultTimings.
func NewEngine(opts Options) *Engine {
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{opts: opts}
}

// Process runs one classifier, tracker, recognizer and state machine cycle.
//
// A frame that fails validation returns an error wrapping detector.ErrInvalidLandmarks
// and leaves all state untouched. A frame without hands returns a NoHand result and
// dispatches nothing.
func (e *Engine) Process(frame detector.Frame) (Result, error) {
	if err := frame.Validate(); err != nil {
		return Result{}, err
	}

	hand := frame.Primary()
	if hand == nil {
		if e.opts.ResetMotionOnLoss {
			e.tracker.Reset()
		}
		return Result{NoHand: true, Label: None}, nil
	}

	fingers, err := ClassifyFingers(hand.Points[:])
	if err != nil {
		return Result{}, err
	}

	swipe := e.tracker.Track(hand.Palm())
	label := Recognize(fingers, swipe, hand.Points[:])

	if !e.started {
		e.session = NewSession(frame.Timestamp)
		e.started = true
	}

	next, ev, fired := e.opts.Timings.Step(e.session, label, frame.Timestamp)
	e.session = next

	res := Result{Fingers: fingers, Label: label}
	if fired {
		res.Event = &ev
		e.opts.Logger.Debug("gesture action",
			slog.String("action", string(ev.Action)),
			slog.String("label", string(label)),
		)
		if e.opts.OnAction != nil {
			e.opts.OnAction(ev)
		}
	}

	return res, nil
}

// Session returns a copy of the current session state.
func (e *Engine) Session() Session {
	return e.session
}

// Reset returns the engine to its initial state.
func (e *Engine) Reset() {
	e.tracker.Reset()
	e.session = Session{}
	e.started = false
}
