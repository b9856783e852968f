package gesture

import "github.com/ayusman/airframe/internal/detector"

// Label is the gesture recognized in one frame.
type Label string

const (
	None       Label = "none"
	OpenPalm   Label = "open_palm"
	Peace      Label = "peace"
	ThumbsUp   Label = "thumbs_up"
	ThumbsDown Label = "thumbs_down"
	PointUp    Label = "point_up"
	PointDown  Label = "point_down"
	Fist       Label = "fist"
	Rock       Label = "rock"
	SwipeLeft  Label = "swipe_left"
	SwipeRight Label = "swipe_right"
)

// Labels lists every label in priority-independent declaration order.
func Labels() []Label {
	return []Label{None, OpenPalm, Peace, ThumbsUp, ThumbsDown, PointUp, PointDown, Fist, Rock, SwipeLeft, SwipeRight}
}

// PointDeadZone is the vertical index tip offset from its knuckle within which a
// pointing hand is neither up nor down.
const PointDeadZone = 0.1

// Recognize maps one frame's finger state, swipe outcome and landmarks to a label.
// Rules are evaluated in fixed priority order and the first match wins:
// swipe, open palm, peace, thumbs up/down, point up/down, fist, rock.
// points must hold detector.NumLandmarks entries.
func Recognize(fingers FingerState, swipe Label, points []detector.Point3D) Label {
	if swipe == SwipeLeft || swipe == SwipeRight {
		return swipe
	}

	if fingers.All() {
		return OpenPalm
	}

	if fingers.Only(Index, Middle) {
		return Peace
	}

	if fingers.Only(Thumb) {
		if points[detector.ThumbTip].Y < points[detector.IndexMCP].Y {
			return ThumbsUp
		}
		return ThumbsDown
	}

	if fingers.Only(Index) {
		offset := points[detector.IndexTip].Y - points[detector.IndexMCP].Y
		switch {
		case offset < -PointDeadZone:
			return PointUp
		case offset > PointDeadZone:
			return PointDown
		}
	}

	// Thumb is ignored for a fist.
	if !fingers[Index] && !fingers[Middle] && !fingers[Ring] && !fingers[Pinky] {
		return Fist
	}

	if fingers[Index] && fingers[Pinky] && !fingers[Middle] && !fingers[Ring] {
		return Rock
	}

	return None
}
