package api

import (
	"encoding/json"
	"net/http"

	"github.com/nandita/sightline/internal/app"
	"github.com/nandita/sightline/internal/config"
)

// ParamsHandler exposes the runtime tuning document.
type ParamsHandler struct {
	app *app.App
}

// NewParamsHandler creates a ParamsHandler over the given app.
func NewParamsHandler(a *app.App) *ParamsHandler {
	return &ParamsHandler{app: a}
}

// ServeHTTP handles GET and PUT on /api/params. PUT accepts a partial
// tuning document; fields absent from the body keep their current
// values.
func (h *ParamsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ParamsHandler) get(w http.ResponseWriter, r *http.Request) {
	tuning := h.app.Tuning()
	writeJSON(w, http.StatusOK, &tuning)
}

func (h *ParamsHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch config.Tuning
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.app.UpdateTuning(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tuning := h.app.Tuning()
	writeJSON(w, http.StatusOK, &tuning)
}
