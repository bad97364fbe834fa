package app

import "fmt"

// Mode selects what the pipeline looks for in each frame.
type Mode int

const (
	// ModeNavigate analyzes depth frames for obstacle avoidance.
	ModeNavigate Mode = iota
	// ModeCurrency detects currency notes.
	ModeCurrency
	// ModeObject detects everyday objects.
	ModeObject
	// ModeRead recognizes printed text.
	ModeRead
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNavigate:
		return "navigate"
	case ModeCurrency:
		return "currency"
	case ModeObject:
		return "object"
	case ModeRead:
		return "read"
	default:
		return "unknown"
	}
}

// ParseMode converts a wire name back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "navigate":
		return ModeNavigate, nil
	case "currency":
		return ModeCurrency, nil
	case "object":
		return ModeObject, nil
	case "read":
		return ModeRead, nil
	default:
		return ModeNavigate, fmt.Errorf("unknown mode %q", s)
	}
}
