package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Executor runs speaker plugins with timeout support.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor with the given per-invocation timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Speak invokes a plugin with the announcement as JSON on stdin and
// parses its stdout as a Response.
func (e *Executor) Speak(plugin *Plugin, a Announcement) (*Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	// The kill on deadline reaches only the direct child; a grandchild
	// still holding the stdout pipe must not stall Wait past this.
	cmd.WaitDelay = time.Second

	req := Request{
		Category: string(a.Category),
		Priority: int(a.Priority),
		Message:  a.Message,
		Config:   plugin.Manifest.Config,
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("speaker plugin timeout after %s", e.timeout)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("speaker plugin failed: %w, stderr: %s", err, s)
		}
		return nil, fmt.Errorf("speaker plugin failed: %w", err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("parse plugin response: %w, stdout: %s", err, stdout.String())
	}

	return &response, nil
}
