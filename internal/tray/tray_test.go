package tray

import (
	"testing"

	"github.com/ayusman/airframe/internal/gesture"
	"github.com/ayusman/airframe/internal/studio"
)

func TestTray_Toggle(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("new tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("IsEnabled() = false after two toggles")
	}
}

func TestTray_Action(t *testing.T) {
	tr := New()
	tr.handleAction(gesture.ActionCapture)

	var got gesture.Action
	tr.OnAction(func(a gesture.Action) { got = a })
	tr.handleAction(gesture.ActionNextFilter)

	if got != gesture.ActionNextFilter {
		t.Errorf("action = %q", got)
	}
}

func TestTray_UpdatesBeforeReady(t *testing.T) {
	tr := New()

	// Menu items do not exist until the tray runs; updates must be no-ops.
	tr.ShowFeedback(studio.Feedback{Action: gesture.ActionCapture, Message: "Photo captured!"})
	tr.SetFilter("sepia")
	tr.handleSettings()
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(true), "● Gestures On"},
		{toggleTitle(false), "○ Gestures Off"},
		{lastActionTitle(""), "Last: none"},
		{lastActionTitle("Zoom: 120%"), "Last: Zoom: 120%"},
		{filterTitle(""), "Filter: none"},
		{filterTitle("colorPop"), "Filter: colorPop"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("title = %q, want %q", tt.got, tt.want)
		}
	}
}
