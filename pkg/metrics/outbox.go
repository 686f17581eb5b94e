package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outbox relay activity.
type PublisherMetrics struct {
	batchDuration prometheus.Histogram
	published     *prometheus.CounterVec
	failed        *prometheus.CounterVec
}

// NewPublisherMetrics registers the outbox publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events relayed to the broker.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_failed_total",
		Help: "Outbox publish failures by event type and terminal flag.",
	}, []string{"event_type", "terminal"})
	reg.MustRegister(batchDuration, published, failed)
	return &PublisherMetrics{
		batchDuration: batchDuration,
		published:     published,
		failed:        failed,
	}
}

// ObserveBatch records how long one publish batch took.
func (m *PublisherMetrics) ObserveBatch(d time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}

// IncPublished increments the published counter for eventType.
func (m *PublisherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for eventType.
func (m *PublisherMetrics) IncFailed(eventType string, terminal bool) {
	if m == nil || m.failed == nil {
		return
	}
	flag := "false"
	if terminal {
		flag = "true"
	}
	m.failed.WithLabelValues(normalizeLabel(eventType), flag).Inc()
}
