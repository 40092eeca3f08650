package handlers

import (
	"net/http"
)

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the supervisor process running?
//   - Readiness probe: Is the fleet up with no failed components?
type HealthHandler struct {
	source StatusSource
}

// NewHealthHandler creates a new health handler.
//
// The source parameter may be nil, in which case the readiness check
// returns unhealthy status.
func NewHealthHandler(source StatusSource) *HealthHandler {
	return &HealthHandler{source: source}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the supervisor process is running. This endpoint is
// designed for Kubernetes liveness probes and should always succeed as long
// as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "flotilla",
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK if the fleet is up. This checks:
//   - The supervisor is initialized
//   - No component is in the failed state
//
// Returns 503 Service Unavailable if the fleet is not ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("supervisor not initialized"))
		return
	}

	status := h.source.Status()

	running := 0
	failed := 0
	for _, p := range status.Processes {
		switch p.State {
		case StateRunning:
			running++
		case StateFailed:
			failed++
		}
	}

	if failed > 0 {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(map[string]interface{}{
			"run_id":  status.RunID,
			"failed":  failed,
			"running": running,
		}))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"run_id":     status.RunID,
		"components": len(status.Processes),
		"running":    running,
		"uptime":     status.Uptime,
	}))
}
