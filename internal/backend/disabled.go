package backend

import (
	"context"

	"certview/internal/certs"
	viewerrors "certview/internal/errors"
)

// ErrBackendNotConfigured is returned by the disabled client.
var ErrBackendNotConfigured = viewerrors.ErrBackendNotConfigured

type disabledClient struct{}

// NewDisabledClient returns a client used when no backend address is configured.
func NewDisabledClient() Client {
	return &disabledClient{}
}

func (c *disabledClient) CheckConnection(_ context.Context) error {
	return ErrBackendNotConfigured
}

func (c *disabledClient) ListCertificates(_ context.Context, _ bool) ([]certs.Record, error) {
	return []certs.Record{}, nil
}

func (c *disabledClient) RevokeURL() string {
	return ""
}

func (c *disabledClient) Shutdown() {
}
