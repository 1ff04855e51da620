package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics counts cart transitions, persistence failures and broadcast
// handling for the kiosk cart container.
type CartMetrics struct {
	transitions *prometheus.CounterVec
	persistence *prometheus.CounterVec
	broadcast   *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_cart_transitions_total",
		Help: "Cart reducer transitions by action.",
	}, []string{"action"})
	persistence := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_cart_persistence_failures_total",
		Help: "Failed reads or writes of the cart snapshot.",
	}, []string{"op"})
	broadcast := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_cart_broadcast_messages_total",
		Help: "State-changed messages by handling result.",
	}, []string{"result"})
	reg.MustRegister(transitions, persistence, broadcast)
	return &CartMetrics{
		transitions: transitions,
		persistence: persistence,
		broadcast:   broadcast,
	}
}

// IncTransition counts one reducer transition.
func (c *CartMetrics) IncTransition(action string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncPersistenceFailure counts a failed load, save or publish.
func (c *CartMetrics) IncPersistenceFailure(op string) {
	if c == nil || c.persistence == nil {
		return
	}
	c.persistence.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncBroadcast counts a received broadcast message ("applied", "ignored", "invalid").
func (c *CartMetrics) IncBroadcast(result string) {
	if c == nil || c.broadcast == nil {
		return
	}
	c.broadcast.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
