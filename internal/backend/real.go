package backend

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"certview/config"
	"certview/internal/certs"
	viewerrors "certview/internal/errors"
	"certview/internal/logger"
)

const (
	certsPath       = "/admin/certs.json"
	revokePath      = "/admin/revoke"
	healthcheckPath = "/healthcheck"

	maxResponseBytes int64 = 32 << 20
)

type realClient struct {
	client    *retryablehttp.Client
	addr      string
	revokeURL string
}

// NewClientFromConfig builds a backend client. An empty address yields the
// disabled client.
func NewClientFromConfig(cfg config.BackendConfig) (Client, error) {
	addr := strings.TrimRight(strings.TrimSpace(cfg.Addr), "/")
	if addr == "" {
		return NewDisabledClient(), nil
	}
	if _, err := url.ParseRequestURI(addr); err != nil {
		return nil, fmt.Errorf("invalid backend address %q: %w", cfg.Addr, err)
	}

	httpClient := cleanhttp.DefaultPooledClient()
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if cfg.TLSInsecure {
		transport, ok := httpClient.Transport.(*http.Transport)
		if !ok {
			return nil, fmt.Errorf("unexpected transport type %T", httpClient.Transport)
		}
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for lab backends
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = leveledLogger{}
	// Hand the final response back instead of a generic "giving up" error so
	// the status code survives into the NetworkError.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	revokeURL := strings.TrimSpace(cfg.RevokeURL)
	if revokeURL == "" {
		revokeURL = addr + revokePath
	}

	return &realClient{client: retryClient, addr: addr, revokeURL: revokeURL}, nil
}

// CheckConnection probes the backend health endpoint.
func (c *realClient) CheckConnection(ctx context.Context) error {
	endpoint := c.addr + healthcheckPath
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}

// ListCertificates reads the issued certificate list. showAll includes
// expired and revoked records.
func (c *realClient) ListCertificates(ctx context.Context, showAll bool) ([]certs.Record, error) {
	endpoint := CertsURL(c.addr, showAll)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &viewerrors.NetworkError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	return DecodeRecords(body)
}

func (c *realClient) RevokeURL() string {
	return c.revokeURL
}

func (c *realClient) Shutdown() {
	c.client.HTTPClient.CloseIdleConnections()
}

func (c *realClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &viewerrors.NetworkError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, &viewerrors.NetworkError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &viewerrors.NetworkError{Op: http.MethodGet, URL: endpoint, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// CertsURL returns the listing endpoint for the given visibility.
func CertsURL(addr string, showAll bool) string {
	endpoint := strings.TrimRight(addr, "/") + certsPath
	if showAll {
		endpoint += "?all=true"
	}
	return endpoint
}

// leveledLogger routes retryablehttp's logging through zerolog.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.Get().Error().Fields(keysAndValues).Str("component", "backend").Msg(msg)
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.Get().Warn().Fields(keysAndValues).Str("component", "backend").Msg(msg)
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Get().Debug().Fields(keysAndValues).Str("component", "backend").Msg(msg)
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.Get().Debug().Fields(keysAndValues).Str("component", "backend").Msg(msg)
}
