package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptPlugin writes an executable shell script into a fresh plugin directory.
func scriptPlugin(t *testing.T, name, script string, actions ...string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    actions,
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "test-plugin", `cat <<'END'
{"success":true,"data":{"message":"hello world"}}
END
`, "capture")

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "capture"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}
	if response.Error != "" {
		t.Errorf("expected empty error, got %q", response.Error)
	}

	var data map[string]string
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo-plugin", `INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`, "next_filter")
	plugin.Manifest.Config = json.RawMessage(`{"voice":"Samantha"}`)

	request := &Request{
		Action:    "next_filter",
		Label:     "thumbs_up",
		Message:   "Filter: sepia",
		Timestamp: 1700000000000,
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received struct {
			Action  string            `json:"action"`
			Label   string            `json:"label"`
			Message string            `json:"message"`
			Config  map[string]string `json:"config"`
		} `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	got := data.Received
	if got.Action != "next_filter" || got.Label != "thumbs_up" || got.Message != "Filter: sepia" {
		t.Errorf("plugin received %+v", got)
	}
	if got.Config["voice"] != "Samantha" {
		t.Errorf("manifest config not attached, got %v", got.Config)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", "sleep 10\necho '{\"success\":true}'\n", "capture")

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: "capture"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
		wantMsg string
	}{
		{
			name:    "error response",
			script:  "echo '{\"success\":false,\"error\":\"something went wrong\"}'\n",
			wantMsg: "something went wrong",
		},
		{
			name:    "invalid json",
			script:  "echo 'not valid json'\n",
			wantErr: true,
		},
		{
			name:    "non-zero exit",
			script:  "echo 'Error: something failed' >&2\nexit 1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := scriptPlugin(t, "failing-plugin", tt.script, "capture")

			response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "capture"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() failed: %v", err)
			}
			if response.Success {
				t.Error("expected success=false")
			}
			if response.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", response.Error, tt.wantMsg)
			}
		})
	}
}

func TestExecutor_Execute_CancelledContext(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", "sleep 10\n", "capture")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{Action: "capture"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("Timeout() = %s, want 3s", got)
	}
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %s, want default %s", got, DefaultTimeout)
	}
}
