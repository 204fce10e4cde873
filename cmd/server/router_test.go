package main

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"certview/config"
	"certview/internal/backend"
	"certview/internal/certs"
	"certview/internal/handlers"
	"certview/internal/metrics"
	"certview/internal/view"
)

func embeddedWebFS(t *testing.T) fs.FS {
	t.Helper()
	webFS, err := fs.Sub(embeddedWeb, "web")
	require.NoError(t, err)
	return webFS
}

func testConfig() config.Config {
	return config.Config{
		Env:            config.EnvDev,
		Port:           "52100",
		Backend:        config.BackendConfig{Addr: "https://ca.example.com", Timeout: 5 * time.Second, RetryMax: 1},
		StatusCacheTTL: 30 * time.Second,
	}
}

func newTestRouter(t *testing.T, client *backend.MockClient) (http.Handler, *handlers.Console) {
	t.Helper()
	console := handlers.NewConsole(client)
	registry := prometheus.NewRegistry()
	cfg := testConfig()
	health := backend.NewHealth(client, cfg.StatusCacheTTL)
	registry.MustRegister(metrics.NewViewCollector(console.Fetcher, health))
	router, err := buildRouter(cfg, console, health, registry, embeddedWebFS(t))
	require.NoError(t, err)
	return router, console
}

func newMockBackend() *backend.MockClient {
	client := &backend.MockClient{}
	client.On("RevokeURL").Return("https://ca.example.com/admin/revoke")
	client.On("CheckConnection", mock.Anything).Return(nil)
	client.On("ListCertificates", mock.Anything, false).Return([]certs.Record{
		{KeyID: "abc123", CreatedAt: "2017-01-01 00:00:00 +0000", Expires: "2099-01-01 00:00:00 +0000", Principals: "alice", Message: "m"},
	}, nil)
	client.On("ListCertificates", mock.Anything, true).Return([]certs.Record{
		{KeyID: "abc123", CreatedAt: "2017-01-01 00:00:00 +0000", Expires: "2099-01-01 00:00:00 +0000", Principals: "alice", Message: "m"},
		{KeyID: "old", CreatedAt: "2016-01-01 00:00:00 +0000", Expires: "2016-01-02 00:00:00 +0000", Principals: "bob", Revoked: true},
	}, nil)
	return client
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildRouterEndpoints(t *testing.T) {
	client := newMockBackend()
	router, console := newTestRouter(t, client)
	console.Controller.Start(t.Context())
	console.Fetcher.Wait()

	t.Run("index", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "form-action 'self' https://ca.example.com")

		doc, err := html.Parse(rec.Body)
		require.NoError(t, err)
		button := findByID(doc, "toggle-expired")
		require.NotNil(t, button)
		assert.Equal(t, "Show Expired", textOf(button))
		assert.Equal(t, "submit", attr(button, "type"))
		assert.Empty(t, attr(button, "hx-post"), "the page posts the toggle as a plain form")
		form := findByID(doc, "revoke-form")
		require.NotNil(t, form)
		assert.Equal(t, "https://ca.example.com/admin/revoke", attr(form, "action"))
		boxes := findAll(doc, func(n *html.Node) bool { return n.Data == "input" && attr(n, "type") == "checkbox" })
		require.Len(t, boxes, 1)
		assert.Equal(t, "cert_id", attr(boxes[0], "name"))
		assert.Equal(t, "abc123", attr(boxes[0], "value"))
	})

	t.Run("asset", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/assets/certview.css")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "td.keyid")
	})

	t.Run("probes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/health").Code)
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/ready").Code)
	})

	t.Run("status", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/api/status")
		assert.Equal(t, http.StatusOK, rec.Code)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		assert.Equal(t, true, payload["backend_connected"])
	})

	t.Run("version", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/api/version")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"version"`)
	})

	t.Run("config", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/api/config")
		var payload handlers.ConfigResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		assert.Equal(t, "https://ca.example.com", payload.BackendAddress)
		assert.Equal(t, "https://ca.example.com/admin/revoke", payload.RevokeURL)
		assert.Equal(t, 1, payload.RetryMax)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "certview_renders_total 1")
	})
}

func TestStatusAndMetricsShareHealthCheck(t *testing.T) {
	client := newMockBackend()
	router, _ := newTestRouter(t, client)

	for i := 0; i < 2; i++ {
		assert.Contains(t, serve(router, http.MethodGet, "/metrics").Body.String(), "certview_backend_connected 1")
		assert.Contains(t, serve(router, http.MethodGet, "/api/status").Body.String(), `"backend_connected":true`)
	}
	client.AssertNumberOfCalls(t, "CheckConnection", 1)
}

func TestToggleThroughRouter(t *testing.T) {
	client := newMockBackend()
	router, console := newTestRouter(t, client)
	console.Controller.Start(t.Context())
	console.Fetcher.Wait()

	rec := serve(router, http.MethodPost, "/ui/toggle")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	console.Fetcher.Wait()

	rec = serve(router, http.MethodGet, "/api/certs")
	var payload struct {
		ShowAll      bool `json:"show_all"`
		Certificates []struct {
			KeyID   string `json:"key_id"`
			Revoked bool   `json:"revoked"`
		} `json:"certificates"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.True(t, payload.ShowAll)
	require.Len(t, payload.Certificates, 2)
	assert.True(t, payload.Certificates[1].Revoked)

	body := serve(router, http.MethodGet, "/").Body.String()
	assert.Contains(t, body, "Hide Expired")
	assert.Equal(t, view.LabelHideExpired, console.Label.Text())
}

func TestBuildRouterRejectsBrokenTemplates(t *testing.T) {
	client := newMockBackend()
	console := handlers.NewConsole(client)
	broken := subFS{FS: embeddedWebFS(t), skip: "index.html"}
	_, err := buildRouter(testConfig(), console, backend.NewHealth(client, time.Minute), prometheus.NewRegistry(), broken)
	assert.Error(t, err)
}

func TestLoadTimeout(t *testing.T) {
	assert.Equal(t, 35*time.Second, loadTimeout(config.BackendConfig{Timeout: 10 * time.Second, RetryMax: 2}))
}

// subFS hides one file of the embedded tree.
type subFS struct {
	fs.FS
	skip string
}

func (s subFS) Open(name string) (fs.File, error) {
	if name == s.skip {
		return nil, fs.ErrNotExist
	}
	return s.FS.Open(name)
}

func findByID(n *html.Node, id string) *html.Node {
	nodes := findAll(n, func(node *html.Node) bool { return attr(node, "id") == id })
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			out = append(out, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
