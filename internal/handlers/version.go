package handlers

import (
	"net/http"

	"book-catalog/internal/startup"
)

// VersionResponse is the build information plus what this build can read.
type VersionResponse struct {
	startup.BuildInfo
	Formats []string `json:"formats"`
	Volume  string   `json:"volume"`
}

// GetVersion returns the build information and the book formats the
// preview registry extracts.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	resp := VersionResponse{
		BuildInfo: startup.GetBuildInfo(),
		Formats:   h.registry.Formats(),
		Volume:    h.volume,
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, resp, http.StatusOK)
}
