// Package main provides a text-to-speech speaker plugin.
// It reads an announcement from stdin and speaks it through the local
// speech synthesizer: espeak-ng on Linux, say on macOS.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Category string          `json:"category"`
	Priority int             `json:"priority"`
	Message  string          `json:"message"`
	Config   json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// pluginConfig holds the optional per-plugin settings.
type pluginConfig struct {
	// Voice selects the synthesizer voice, empty for the default.
	Voice string `json:"voice"`
	// RateWPM is the speaking rate in words per minute, 0 for the default.
	RateWPM int `json:"rate_wpm"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Message == "" {
		writeErrorResponse("empty message")
		return
	}

	var cfg pluginConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to decode config: %v", err))
			return
		}
	}

	if err := speak(req.Message, cfg); err != nil {
		writeErrorResponse(fmt.Sprintf("speech failed: %v", err))
		return
	}

	writeSuccessResponse()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// speak runs the platform synthesizer and blocks until the message has
// been spoken.
func speak(message string, cfg pluginConfig) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		args := []string{}
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		if cfg.RateWPM > 0 {
			args = append(args, "-r", strconv.Itoa(cfg.RateWPM))
		}
		args = append(args, message)
		cmd = exec.Command("say", args...)
	} else {
		args := []string{}
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		if cfg.RateWPM > 0 {
			args = append(args, "-s", strconv.Itoa(cfg.RateWPM))
		}
		args = append(args, message)
		cmd = exec.Command("espeak-ng", args...)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
