package backend

import (
	"context"

	"certview/internal/certs"
)

// Client defines the interface for talking to the certificate authority backend.
type Client interface {
	CheckConnection(ctx context.Context) error
	ListCertificates(ctx context.Context, showAll bool) ([]certs.Record, error)
	RevokeURL() string
	Shutdown()
}
