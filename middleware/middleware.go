package middleware

import (
	"context"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"certview/internal/httputil"
	"certview/internal/logger"
)

type contextKey string

// RequestIDKey is the context key for the request ID.
const RequestIDKey contextKey = "request_id"

const maxRequestIDLength = 128

// Logger logs every request with its status and duration.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		logger.HTTPEvent(r.Method, r.URL.Path, wrapped.status, elapsed).
			Str("request_id", GetRequestID(r.Context())).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("HTTP request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Recoverer turns a panicking handler into a 500 response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.PanicEvent(err, string(debug.Stack())).
					Str("request_id", GetRequestID(r.Context())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("Panic recovered")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestID propagates a well-formed X-Request-ID or assigns a random UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := sanitizeRequestID(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored by RequestID.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func sanitizeRequestID(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || len(trimmed) > maxRequestIDLength {
		return ""
	}
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return ""
		}
	}
	return trimmed
}

// CSRFProtection rejects unsafe requests whose Origin or Referer is not this
// server. Requests carrying neither header are let through.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		fetchSite := strings.ToLower(strings.TrimSpace(r.Header.Get("Sec-Fetch-Site")))
		if fetchSite == "cross-site" || fetchSite == "same-site" {
			forbidden(w)
			return
		}
		if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
			if !sameOrigin(origin, targetOrigin(r)) {
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if referer := strings.TrimSpace(r.Header.Get("Referer")); referer != "" {
			parsed, err := url.Parse(referer)
			if err != nil || !sameOrigin(parsed.Scheme+"://"+parsed.Host, targetOrigin(r)) {
				forbidden(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func targetOrigin(r *http.Request) string {
	proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))
	if proto == "" {
		proto = "http"
		if r.TLS != nil {
			proto = "https"
		}
	}
	host := strings.TrimSpace(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = strings.TrimSpace(r.Host)
	}
	return proto + "://" + host
}

func sameOrigin(left, right string) bool {
	return strings.EqualFold(strings.TrimSuffix(left, "/"), strings.TrimSuffix(right, "/"))
}

// BodyLimit caps request bodies at maxBytes.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitConfig bounds how many requests one client may make per window.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	MaxEntries  int
	TrustProxy  bool
}

// DefaultRateLimitConfig suits the console's mutation routes, which each
// start a backend load.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{MaxRequests: 60, Window: time.Minute, MaxEntries: 10_000}
}

type window struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	config  RateLimitConfig
	clients map[string]window
	now     func() time.Time
}

// RateLimit answers 429 once a client exceeds config.MaxRequests in a window.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	limiter := &rateLimiter{config: config, clients: make(map[string]window), now: time.Now}
	return limiter.middleware
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := l.allow(httputil.ClientIP(r, l.config.TrustProxy))
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *rateLimiter) allow(key string) (bool, int) {
	if key == "" {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(now)
	current := l.clients[key]
	if current.resetAt.IsZero() || now.After(current.resetAt) {
		current = window{resetAt: now.Add(l.config.Window)}
	}
	current.count++
	l.clients[key] = current
	if current.count <= l.config.MaxRequests {
		return true, 0
	}
	retryAfter := int(current.resetAt.Sub(now).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}

func (l *rateLimiter) prune(now time.Time) {
	for key, w := range l.clients {
		if now.After(w.resetAt) {
			delete(l.clients, key)
		}
	}
	for l.config.MaxEntries > 0 && len(l.clients) > l.config.MaxEntries {
		var oldestKey string
		var oldest time.Time
		for key, w := range l.clients {
			if oldestKey == "" || w.resetAt.Before(oldest) {
				oldestKey, oldest = key, w.resetAt
			}
		}
		delete(l.clients, oldestKey)
	}
}

// SecurityHeaders sets the hardening headers. formActions are extra origins
// the page's forms may post to, such as the CA backend's revoke endpoint.
func SecurityHeaders(formActions ...string) func(http.Handler) http.Handler {
	csp := contentSecurityPolicy(formActions)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			if r.TLS != nil || strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			h.Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}

func contentSecurityPolicy(formActions []string) string {
	sources := []string{"'self'"}
	for _, action := range formActions {
		if origin := originOf(action); origin != "" {
			sources = append(sources, origin)
		}
	}
	return "default-src 'self'; base-uri 'self'; object-src 'none'; frame-ancestors 'none'; " +
		"form-action " + strings.Join(sources, " ") + "; " +
		"script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'"
}

func originOf(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
