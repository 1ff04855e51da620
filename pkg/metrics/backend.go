package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics records latency of calls to the kiosk REST backend.
type BackendMetrics struct {
	duration *prometheus.HistogramVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kiosk_backend_request_duration_seconds",
		Help:    "Duration of backend REST calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})
	reg.MustRegister(duration)
	return &BackendMetrics{duration: duration}
}

// ObserveRequest records one call. A zero status means the request never
// produced a response.
func (b *BackendMetrics) ObserveRequest(operation string, status int, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	b.duration.WithLabelValues(normalizeLabel(operation), label).Observe(duration.Seconds())
}
