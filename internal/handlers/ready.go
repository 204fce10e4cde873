package handlers

import (
	"net/http"

	"certview/internal/logger"
	"certview/middleware"
)

type probeResponse struct {
	Status string `json:"status"`
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, probeResponse{Status: "ok"})
}

// ReadinessCheck reports ready once the first certificate load has finished,
// whether it rendered or posted a notice.
func ReadinessCheck(console *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := console.Fetcher.Stats()
		if stats.Renders+stats.NetworkErrors+stats.SchemaErrors == 0 {
			logger.HTTPEvent(r.Method, r.URL.Path, http.StatusServiceUnavailable, 0).
				Str("request_id", middleware.GetRequestID(r.Context())).
				Msg("readiness check before first load")
			writeJSON(w, r, http.StatusServiceUnavailable, probeResponse{Status: "loading"})
			return
		}
		writeJSON(w, r, http.StatusOK, probeResponse{Status: "ready"})
	}
}
