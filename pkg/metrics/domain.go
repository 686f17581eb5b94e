package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by the domain counters.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultNotFound = "not_found"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// LikeMetrics counts like and unlike attempts per target kind.
type LikeMetrics struct {
	mutations *prometheus.CounterVec
}

// NewLikeMetrics registers the like metrics on the provided registerer.
func NewLikeMetrics(reg prometheus.Registerer) *LikeMetrics {
	if reg == nil {
		return &LikeMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "like_mutations_total",
		Help: "Like and unlike attempts by target, operation and result.",
	}, []string{"target", "op", "result"})
	reg.MustRegister(mutations)
	return &LikeMetrics{mutations: mutations}
}

// Observe records one like mutation attempt.
func (m *LikeMetrics) Observe(target, op, result string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(target), normalizeLabel(op), normalizeLabel(result)).Inc()
}

// OrderMetrics counts order creations and status transitions.
type OrderMetrics struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Order creation attempts by result.",
	}, []string{"result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status update attempts by target status and result.",
	}, []string{"to", "result"})
	reg.MustRegister(created, transitions)
	return &OrderMetrics{created: created, transitions: transitions}
}

// IncCreated records one order creation attempt.
func (m *OrderMetrics) IncCreated(result string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncTransition records one status update attempt.
func (m *OrderMetrics) IncTransition(to, result string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to), normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
