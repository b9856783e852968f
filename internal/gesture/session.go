package gesture

import "time"

// Timings holds the state machine's duration thresholds.
type Timings struct {
	Debounce time.Duration
	Hold     time.Duration
	Sustain  time.Duration
}

// DefaultTimings returns the calibrated thresholds: 100ms debounce, 1s hold, 2s sustain.
func DefaultTimings() Timings {
	return Timings{
		Debounce: 100 * time.Millisecond,
		Hold:     1000 * time.Millisecond,
		Sustain:  2000 * time.Millisecond,
	}
}

// Session is the state machine's entire state: the label being held, when it was
// first seen and for how long it has been seen since.
type Session struct {
	Label   Label         `json:"label"`
	Start   time.Time     `json:"start"`
	Elapsed time.Duration `json:"elapsed"`
}

// NewSession returns the initial state at now.
func NewSession(now time.Time) Session {
	return Session{Label: None, Start: now}
}

// Step advances s by one recognized label observed at now. It returns the next state
// and, when an action fires, the event. Step is pure: it reads no clock and keeps no
// state of its own. now should come from a monotonic clock.
func (t Timings) Step(s Session, label Label, now time.Time) (Session, Event, bool) {
	if label != s.Label {
		return Session{Label: label, Start: now}, Event{}, false
	}

	s.Elapsed = now.Sub(s.Start)
	if s.Elapsed < t.Debounce {
		return s, Event{}, false
	}

	b := BindingFor(label)
	switch b.Policy {
	case PolicyInstant:
		return NewSession(now), newEvent(b, label, now), true
	case PolicySustained:
		if s.Elapsed > t.Sustain {
			return NewSession(now), newEvent(b, label, now), true
		}
	case PolicyHeld:
		if s.Elapsed > t.Hold {
			return NewSession(now), newEvent(b, label, now), true
		}
	case PolicyContinuous:
		return s, newEvent(b, label, now), true
	}

	return s, Event{}, false
}

func newEvent(b Binding, label Label, now time.Time) Event {
	return Event{Action: b.Action, Label: label, Timestamp: now}
}

// Step advances s with DefaultTimings.
func Step(s Session, label Label, now time.Time) (Session, Event, bool) {
	return DefaultTimings().Step(s, label, now)
}
