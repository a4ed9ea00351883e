package handlers

import (
	"net/http"
	"runtime"

	"book-catalog/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Volume        string `json:"volume"`
	VolumePresent bool   `json:"volumePresent"`
	Sessions      int    `json:"sessions"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. A missing volume
// reports "degraded" with a 200.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	present := h.provider.VolumePresent(r.Context())

	response := HealthResponse{
		Status:        statusHealthy,
		Version:       startup.Version,
		Volume:        h.volume,
		VolumePresent: present,
		Sessions:      h.sessions.Len(),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutine:  runtime.NumGoroutine(),
	}
	if !present {
		response.Status = statusDegraded
	}

	writeJSONResponse(w, response, http.StatusOK)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the storage volume is present
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.provider.VolumePresent(r.Context()) {
		writeJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
		return
	}
	writeJSONResponse(w, map[string]string{"status": "not_ready"}, http.StatusServiceUnavailable)
}
