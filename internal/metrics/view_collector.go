package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"certview/internal/backend"
	"certview/internal/view"
)

var (
	displayedRowsDesc    = prometheus.NewDesc("certview_displayed_certificates", "Certificates in the rendered table grouped by status", []string{"status"}, nil)
	rendersDesc          = prometheus.NewDesc("certview_renders_total", "Completed table renders", nil, nil)
	discardedDesc        = prometheus.NewDesc("certview_stale_responses_discarded_total", "Backend responses dropped because a newer request had been issued", nil, nil)
	fetchErrorsDesc      = prometheus.NewDesc("certview_fetch_errors_total", "Failed certificate list loads grouped by kind", []string{"kind"}, nil)
	lastRenderDesc       = prometheus.NewDesc("certview_last_render_timestamp_seconds", "Timestamp of the last completed render", nil, nil)
	lastSeqDesc          = prometheus.NewDesc("certview_last_rendered_sequence", "Sequence number of the request behind the rendered table", nil, nil)
	latestSeqDesc        = prometheus.NewDesc("certview_latest_request_sequence", "Sequence number of the most recently issued request", nil, nil)
	showAllDesc          = prometheus.NewDesc("certview_show_all", "Whether the rendered table includes expired and revoked certificates (1) or not (0)", nil, nil)
	pendingDesc          = prometheus.NewDesc("certview_loads_in_flight", "Certificate list loads that have not completed", nil, nil)
	backendConnectedDesc = prometheus.NewDesc("certview_backend_connected", "CA backend connection status (1=connected,0=disconnected)", nil, nil)
)

// StatsSource exposes the view's counters.
type StatsSource interface {
	Stats() view.Stats
}

// HealthSource reports backend reachability, typically from a cache.
type HealthSource interface {
	Check(ctx context.Context) backend.HealthStatus
}

type viewCollector struct {
	source StatsSource
	health HealthSource
}

// NewViewCollector returns a collector reporting render and fetch activity
// together with backend reachability.
func NewViewCollector(source StatsSource, health HealthSource) prometheus.Collector {
	return &viewCollector{source: source, health: health}
}

func (c *viewCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- displayedRowsDesc
	ch <- rendersDesc
	ch <- discardedDesc
	ch <- fetchErrorsDesc
	ch <- lastRenderDesc
	ch <- lastSeqDesc
	ch <- latestSeqDesc
	ch <- showAllDesc
	ch <- pendingDesc
	ch <- backendConnectedDesc
}

func (c *viewCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	last := stats.Last

	ch <- prometheus.MustNewConstMetric(displayedRowsDesc, prometheus.GaugeValue, float64(last.Rows-last.Revoked), "active")
	ch <- prometheus.MustNewConstMetric(displayedRowsDesc, prometheus.GaugeValue, float64(last.Revoked), "revoked")
	ch <- prometheus.MustNewConstMetric(rendersDesc, prometheus.CounterValue, float64(stats.Renders))
	ch <- prometheus.MustNewConstMetric(discardedDesc, prometheus.CounterValue, float64(stats.Discarded))
	ch <- prometheus.MustNewConstMetric(fetchErrorsDesc, prometheus.CounterValue, float64(stats.NetworkErrors), "network")
	ch <- prometheus.MustNewConstMetric(fetchErrorsDesc, prometheus.CounterValue, float64(stats.SchemaErrors), "schema")
	var lastRender float64
	if !last.At.IsZero() {
		lastRender = float64(last.At.Unix())
	}
	ch <- prometheus.MustNewConstMetric(lastRenderDesc, prometheus.GaugeValue, lastRender)
	ch <- prometheus.MustNewConstMetric(lastSeqDesc, prometheus.GaugeValue, float64(last.Seq))
	ch <- prometheus.MustNewConstMetric(latestSeqDesc, prometheus.GaugeValue, float64(stats.LatestSeq))
	ch <- prometheus.MustNewConstMetric(showAllDesc, prometheus.GaugeValue, boolValue(last.ShowAll))
	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(stats.InFlight))
	ch <- prometheus.MustNewConstMetric(backendConnectedDesc, prometheus.GaugeValue, boolValue(c.health.Check(context.Background()).Connected))
}

func boolValue(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
