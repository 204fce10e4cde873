package backend

import (
	"context"
	"time"

	"certview/internal/cache"
)

const (
	healthCacheKey     = "backend"
	healthCheckTimeout = 5 * time.Second
)

// HealthStatus is the outcome of one connection check.
type HealthStatus struct {
	Connected bool
	Err       string
	CheckedAt time.Time
}

// Health probes the backend at most once per TTL. The status endpoint and
// metrics scrapes read the same cached result.
type Health struct {
	client Client
	checks *cache.Cache[HealthStatus]
	now    func() time.Time
}

func NewHealth(client Client, ttl time.Duration) *Health {
	return &Health{client: client, checks: cache.New[HealthStatus](ttl), now: time.Now}
}

// Check returns the cached status, probing the backend when it has expired.
// Cancelling ctx does not cut a probe short, so a dropped caller never caches
// a false disconnect.
func (h *Health) Check(ctx context.Context) HealthStatus {
	status, _ := h.checks.GetOrLoad(healthCacheKey, func() (HealthStatus, error) {
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), healthCheckTimeout)
		defer cancel()
		status := HealthStatus{Connected: true, CheckedAt: h.now().UTC()}
		if err := h.client.CheckConnection(probeCtx); err != nil {
			status.Connected = false
			status.Err = err.Error()
		}
		return status, nil
	})
	return status
}
