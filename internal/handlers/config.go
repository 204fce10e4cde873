package handlers

import (
	"net/http"

	"certview/config"
)

// ConfigResponse is the public part of the configuration.
type ConfigResponse struct {
	Env            string `json:"env"`
	BackendAddress string `json:"backend_address"`
	RevokeURL      string `json:"revoke_url"`
	BackendTimeout string `json:"backend_timeout"`
	RetryMax       int    `json:"retry_max"`
}

// GetConfig serves the configuration the console runs with.
func GetConfig(cfg config.Config, revokeURL string) http.HandlerFunc {
	resp := ConfigResponse{
		Env:            string(cfg.Env),
		BackendAddress: cfg.Backend.Addr,
		RevokeURL:      revokeURL,
		BackendTimeout: cfg.Backend.Timeout.String(),
		RetryMax:       cfg.Backend.RetryMax,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, resp)
	}
}
