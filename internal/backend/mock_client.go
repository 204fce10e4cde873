package backend

import (
	"context"

	"github.com/stretchr/testify/mock"

	"certview/internal/certs"
)

// MockClient is a testify mock implementing Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CheckConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClient) ListCertificates(ctx context.Context, showAll bool) ([]certs.Record, error) {
	args := m.Called(ctx, showAll)
	if list, ok := args.Get(0).([]certs.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) RevokeURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) Shutdown() {
	m.Called()
}
