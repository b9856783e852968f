package gesture

import (
	"testing"

	"github.com/ayusman/airframe/internal/detector"
)

func recognizeHand(t *testing.T, hand detector.HandLandmarks, swipe Label) Label {
	t.Helper()
	fingers, err := ClassifyFingers(hand.Points[:])
	if err != nil {
		t.Fatalf("ClassifyFingers() error = %v", err)
	}
	return Recognize(fingers, swipe, hand.Points[:])
}

func TestRecognize_Presets(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Label
	}{
		{"open palm", detector.OpenPalmLandmarks(), OpenPalm},
		{"peace", detector.PeaceLandmarks(), Peace},
		{"thumbs up", detector.ThumbsUpLandmarks(), ThumbsUp},
		{"thumbs down", detector.ThumbsDownLandmarks(), ThumbsDown},
		{"point up", detector.PointUpLandmarks(), PointUp},
		{"point down", detector.PointDownLandmarks(), PointDown},
		{"fist", detector.FistLandmarks(), Fist},
		{"rock", detector.RockLandmarks(), Rock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recognizeHand(t, tt.hand, None); got != tt.want {
				t.Errorf("Recognize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecognize_SwipeOverridesShape(t *testing.T) {
	for _, hand := range []detector.HandLandmarks{
		detector.OpenPalmLandmarks(),
		detector.FistLandmarks(),
		detector.PeaceLandmarks(),
	} {
		if got := recognizeHand(t, hand, SwipeLeft); got != SwipeLeft {
			t.Errorf("Recognize() = %s, want swipe_left", got)
		}
		if got := recognizeHand(t, hand, SwipeRight); got != SwipeRight {
			t.Errorf("Recognize() = %s, want swipe_right", got)
		}
	}
}

func TestRecognize_PriorityOrder(t *testing.T) {
	palm := detector.OpenPalmLandmarks()
	points := palm.Points[:]

	t.Run("thumbs rule precedes fist", func(t *testing.T) {
		fist := detector.FistLandmarks()
		got := Recognize(FingerState{true, false, false, false, false}, None, fist.Points[:])
		if got != ThumbsDown {
			t.Errorf("Recognize() = %s, want thumbs_down", got)
		}
		if got := Recognize(FingerState{}, None, points); got != Fist {
			t.Errorf("Recognize() = %s, want fist", got)
		}
	})

	t.Run("rock ignores thumb", func(t *testing.T) {
		got := Recognize(FingerState{true, true, false, false, true}, None, points)
		if got != Rock {
			t.Errorf("Recognize() = %s, want rock", got)
		}
	})

	t.Run("peace requires closed thumb", func(t *testing.T) {
		got := Recognize(FingerState{true, true, true, false, false}, None, points)
		if got != None {
			t.Errorf("Recognize() = %s, want none", got)
		}
	})

	t.Run("unmatched pattern is none", func(t *testing.T) {
		got := Recognize(FingerState{false, false, true, true, true}, None, points)
		if got != None {
			t.Errorf("Recognize() = %s, want none", got)
		}
	})
}

func TestRecognize_PointDeadZone(t *testing.T) {
	index := FingerState{false, true, false, false, false}

	tests := []struct {
		name   string
		offset float64
		want   Label
	}{
		{"well above", -0.30, PointUp},
		{"just above", -0.11, PointUp},
		{"inside above", -0.09, None},
		{"level", 0, None},
		{"inside below", 0.09, None},
		{"just below", 0.11, PointDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := detector.PointUpLandmarks()
			hand.Points[detector.IndexMCP].Y = 0.5
			hand.Points[detector.IndexTip].Y = 0.5 + tt.offset
			if got := Recognize(index, None, hand.Points[:]); got != tt.want {
				t.Errorf("Recognize() = %s, want %s", got, tt.want)
			}
		})
	}
}
