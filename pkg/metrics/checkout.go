package metrics

import "github.com/prometheus/client_golang/prometheus"

// Checkout outcome labels.
const (
	CheckoutSuccess  = "success"
	CheckoutFailure  = "failure"
	CheckoutEmpty    = "empty"
	CheckoutConflict = "conflict"
)

// CheckoutMetrics records checkout attempts.
type CheckoutMetrics struct {
	outcomes *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(outcomes)
	return &CheckoutMetrics{outcomes: outcomes}
}

func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}
