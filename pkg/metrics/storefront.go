package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart reconciliation and upstream health metadata.
type StorefrontMetrics struct {
	upstreamDuration *prometheus.HistogramVec
	syncFallback     *prometheus.CounterVec
	mirrorFailure    *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of commerce backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	fallback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_fallback_total",
		Help: "Cart syncs that degraded to the local durable copy.",
	}, []string{"reason"})
	mirror := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mirror_failure_total",
		Help: "Fire-and-forget cart mirror writes that failed.",
	}, []string{"op"})
	reg.MustRegister(duration, fallback, mirror)
	return &StorefrontMetrics{
		upstreamDuration: duration,
		syncFallback:     fallback,
		mirrorFailure:    mirror,
	}
}

// ObserveUpstream records the duration of a commerce backend call.
func (m *StorefrontMetrics) ObserveUpstream(endpoint string, duration time.Duration) {
	if m == nil || m.upstreamDuration == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

// IncSyncFallback counts a sync that adopted the local copy instead of the remote cart.
func (m *StorefrontMetrics) IncSyncFallback(reason string) {
	if m == nil || m.syncFallback == nil {
		return
	}
	m.syncFallback.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncMirrorFailure counts a failed fire-and-forget remote write.
func (m *StorefrontMetrics) IncMirrorFailure(op string) {
	if m == nil || m.mirrorFailure == nil {
		return
	}
	m.mirrorFailure.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
