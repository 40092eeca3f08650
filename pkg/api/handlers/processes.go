package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProcessHandler handles fleet inspection API endpoints.
//
// All endpoints are read-only: the process list is declared in the config
// file and changed by restarting Flotilla.
type ProcessHandler struct {
	source StatusSource
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(source StatusSource) *ProcessHandler {
	return &ProcessHandler{source: source}
}

// Status handles GET /api/v1/status.
// Returns the fleet summary with per-component state.
func (h *ProcessHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		ServiceUnavailable(w, "Supervisor not initialized")
		return
	}

	WriteJSONOK(w, h.source.Status())
}

// List handles GET /api/v1/processes.
// Lists all supervised components in start order.
func (h *ProcessHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		ServiceUnavailable(w, "Supervisor not initialized")
		return
	}

	status := h.source.Status()
	if status.Processes == nil {
		status.Processes = []ProcessStatus{}
	}

	WriteJSONOK(w, status.Processes)
}

// Get handles GET /api/v1/processes/{name}.
// Returns one component by name.
func (h *ProcessHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		ServiceUnavailable(w, "Supervisor not initialized")
		return
	}

	name := chi.URLParam(r, "name")

	for _, p := range h.source.Status().Processes {
		if p.Name == name {
			WriteJSONOK(w, p)
			return
		}
	}

	NotFound(w, "Process not found")
}
