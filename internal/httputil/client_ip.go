// Package httputil holds request helpers for middleware.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address a request came from. Proxy headers
// (X-Forwarded-For first hop, then X-Real-IP) are honoured only when
// trustProxy is set.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
