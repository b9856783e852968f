// Package main provides a plugin that speaks studio feedback messages.
// It uses `say` on macOS and `espeak` elsewhere.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action    string          `json:"action"`
	Label     string          `json:"label"`
	Message   string          `json:"message"`
	Timestamp int64           `json:"timestamp"`
	Config    json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type config struct {
	Voice string `json:"voice"`
	Rate  int    `json:"rate"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Message == "" {
		writeResponse(Response{Error: "empty message"})
		return
	}

	var cfg config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(Response{Error: fmt.Sprintf("invalid config: %v", err)})
			return
		}
	}

	if err := speak(req.Message, cfg); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("speak %q: %v", req.Message, err)})
		return
	}

	writeResponse(Response{Success: true})
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

// speechCommand builds the platform speech command for message.
func speechCommand(goos, message string, cfg config) (string, []string, error) {
	switch goos {
	case "darwin":
		var args []string
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		if cfg.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(cfg.Rate))
		}
		return "say", append(args, message), nil
	case "linux", "freebsd":
		var args []string
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		if cfg.Rate > 0 {
			args = append(args, "-s", strconv.Itoa(cfg.Rate))
		}
		return "espeak", append(args, message), nil
	}
	return "", nil, errors.New("speech is not supported on " + goos)
}

func speak(message string, cfg config) error {
	name, args, err := speechCommand(runtime.GOOS, message, cfg)
	if err != nil {
		return err
	}
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
