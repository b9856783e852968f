package gesture

import "time"

// Action is a discrete user command emitted by the state machine.
type Action string

const (
	ActionCapture         Action = "capture"
	ActionSwitchCamera    Action = "switch_camera"
	ActionNextFilter      Action = "next_filter"
	ActionRemoveFilter    Action = "remove_filter"
	ActionZoomIn          Action = "zoom_in"
	ActionZoomOut         Action = "zoom_out"
	ActionToggleRecording Action = "toggle_recording"
	ActionToggleTimer     Action = "toggle_timer"
	ActionDiscardLast     Action = "discard_last"
	ActionSaveLast        Action = "save_last"

	// ActionPhotoBooth has no gesture binding; it is triggered manually.
	ActionPhotoBooth Action = "photo_booth"

	// ActionSetFilter reports a filter chosen directly rather than cycled. It
	// carries an argument, so it is not in Actions and cannot be dispatched.
	ActionSetFilter Action = "set_filter"
)

// Actions lists every action.
func Actions() []Action {
	return []Action{
		ActionCapture, ActionSwitchCamera, ActionNextFilter, ActionRemoveFilter,
		ActionZoomIn, ActionZoomOut, ActionToggleRecording, ActionToggleTimer,
		ActionDiscardLast, ActionSaveLast, ActionPhotoBooth,
	}
}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions() {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Event is an action dispatched by the state machine.
type Event struct {
	Action    Action    `json:"action"`
	Label     Label     `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// Policy decides when a held label fires its action.
type Policy int

const (
	// PolicyInert never fires.
	PolicyInert Policy = iota
	// PolicyInstant fires once as soon as the debounce has passed, then resets.
	PolicyInstant
	// PolicySustained fires once the label has been held longer than Timings.Sustain, then resets.
	PolicySustained
	// PolicyHeld fires once the label has been held longer than Timings.Hold, then resets.
	PolicyHeld
	// PolicyContinuous fires on every frame past the debounce and never resets.
	PolicyContinuous
)

func (p Policy) String() string {
	switch p {
	case PolicyInstant:
		return "instant"
	case PolicySustained:
		return "sustained"
	case PolicyHeld:
		return "held"
	case PolicyContinuous:
		return "continuous"
	default:
		return "inert"
	}
}

// Binding ties a label to the action it fires and the policy that governs firing.
type Binding struct {
	Action Action
	Policy Policy
}

var bindings = map[Label]Binding{
	OpenPalm:   {ActionCapture, PolicySustained},
	Peace:      {ActionSwitchCamera, PolicyInstant},
	ThumbsUp:   {ActionNextFilter, PolicyInstant},
	ThumbsDown: {ActionRemoveFilter, PolicyInstant},
	PointUp:    {ActionZoomIn, PolicyContinuous},
	PointDown:  {ActionZoomOut, PolicyContinuous},
	Fist:       {ActionToggleRecording, PolicyHeld},
	Rock:       {ActionToggleTimer, PolicyInstant},
	SwipeLeft:  {ActionDiscardLast, PolicyInstant},
	SwipeRight: {ActionSaveLast, PolicyInstant},
}

// BindingFor returns the binding of label. Unbound labels, including None, are inert.
func BindingFor(label Label) Binding {
	if b, ok := bindings[label]; ok {
		return b
	}
	return Binding{Policy: PolicyInert}
}
