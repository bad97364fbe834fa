// Package feedback routes navigation and detection announcements to the
// user through external speaker plugins.
package feedback

import "encoding/json"

// Category groups announcements for throttling: repeats within one
// category are suppressed for a cooldown period.
type Category string

const (
	CategoryNavigation Category = "navigation"
	CategoryDetection  Category = "detection"
	CategoryText       Category = "text"
	CategorySystem     Category = "system"
)

// Priority orders announcements. Urgent announcements bypass throttling.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityUrgent
)

// Announcement is one message for the user.
type Announcement struct {
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// Manifest describes a speaker plugin's metadata.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is the JSON payload sent to a speaker plugin on stdin.
type Request struct {
	Category string          `json:"category"`
	Priority int             `json:"priority"`
	Message  string          `json:"message"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// Response is the JSON payload a speaker plugin writes to stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Plugin is a discovered speaker plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
