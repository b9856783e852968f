package main

import (
	"slices"
	"testing"
)

func TestSpeechCommand(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		cfg      config
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{
			name:     "macOS default voice",
			goos:     "darwin",
			wantName: "say",
			wantArgs: []string{"Filter: sepia"},
		},
		{
			name:     "macOS voice and rate",
			goos:     "darwin",
			cfg:      config{Voice: "Samantha", Rate: 180},
			wantName: "say",
			wantArgs: []string{"-v", "Samantha", "-r", "180", "Filter: sepia"},
		},
		{
			name:     "linux rate",
			goos:     "linux",
			cfg:      config{Rate: 150},
			wantName: "espeak",
			wantArgs: []string{"-s", "150", "Filter: sepia"},
		},
		{
			name:    "unsupported platform",
			goos:    "windows",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, err := speechCommand(tt.goos, "Filter: sepia", tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("speechCommand() error = %v", err)
			}
			if name != tt.wantName || !slices.Equal(args, tt.wantArgs) {
				t.Errorf("speechCommand() = %s %v, want %s %v", name, args, tt.wantName, tt.wantArgs)
			}
		})
	}
}
