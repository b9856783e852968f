// Package plugin runs external hooks for studio actions. A plugin is a directory
// holding a plugin.json manifest and an executable that receives one JSON request
// on stdin and answers with one JSON response on stdout.
package plugin

import "encoding/json"

// Wildcard in Manifest.Actions subscribes a plugin to every action.
const Wildcard = "*"

// Manifest describes a plugin's metadata and the actions it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Actions     []string        `json:"actions"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the manifest subscribes to action.
func (m *Manifest) Handles(action string) bool {
	for _, a := range m.Actions {
		if a == action || a == Wildcard {
			return true
		}
	}
	return false
}

// Request is sent to a plugin for one handled action.
type Request struct {
	Action    string          `json:"action"`
	Label     string          `json:"label,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
