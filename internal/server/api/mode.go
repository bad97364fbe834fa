package api

import (
	"encoding/json"
	"net/http"

	"github.com/nandita/sightline/internal/app"
)

// ModeHandler exposes the operating mode and the enabled switch.
type ModeHandler struct {
	app *app.App
}

// NewModeHandler creates a ModeHandler over the given app.
func NewModeHandler(a *app.App) *ModeHandler {
	return &ModeHandler{app: a}
}

type modeResponse struct {
	Mode       string `json:"mode"`
	Enabled    bool   `json:"enabled"`
	Generation uint64 `json:"generation"`
}

type setModeRequest struct {
	Mode    *string `json:"mode,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// ServeHTTP handles GET and POST on /api/mode.
func (h *ModeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.set(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ModeHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modeResponse{
		Mode:       h.app.Mode().String(),
		Enabled:    h.app.IsEnabled(),
		Generation: h.app.Generation(),
	})
}

func (h *ModeHandler) set(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Mode == nil && req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "mode or enabled is required")
		return
	}

	if req.Mode != nil {
		mode, err := app.ParseMode(*req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.app.SetMode(mode)
	}
	if req.Enabled != nil {
		h.app.SetEnabled(*req.Enabled)
	}

	h.get(w, r)
}
