package handlers

import (
	"net/http"
	"time"

	"certview/internal/backend"
	"certview/internal/version"
)

type statusResponse struct {
	Version          string    `json:"version"`
	BackendConnected bool      `json:"backend_connected"`
	BackendError     string    `json:"backend_error,omitempty"`
	CheckedAt        time.Time `json:"checked_at"`
}

// StatusHandler reports backend reachability from the shared health check.
func StatusHandler(health *backend.Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := health.Check(r.Context())
		writeJSON(w, r, http.StatusOK, statusResponse{
			Version:          version.Version,
			BackendConnected: status.Connected,
			BackendError:     status.Err,
			CheckedAt:        status.CheckedAt,
		})
	}
}

// VersionInfo serves the build information.
func VersionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, version.Info())
}
