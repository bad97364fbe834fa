package api

import (
	"net/http"

	"github.com/nandita/sightline/internal/app"
)

// FrameHandler serves the most recent pipeline result as JSON.
type FrameHandler struct {
	app *app.App
}

// NewFrameHandler creates a FrameHandler over the given app.
func NewFrameHandler(a *app.App) *FrameHandler {
	return &FrameHandler{app: a}
}

// ServeHTTP handles GET /api/frames.
func (h *FrameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := h.app.LastResult()
	if result == nil {
		writeError(w, http.StatusNotFound, "No frames processed yet")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
