package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)
	m.IncTransition("ADD_ITEM")
	m.IncTransition("ADD_ITEM")
	m.IncPersistenceFailure("save")
	m.IncBroadcast("ignored")
	m.IncBroadcast("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "kiosk_cart_transitions_total", "action", "ADD_ITEM"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected transitions=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "kiosk_cart_persistence_failures_total", "op", "save"); err != nil {
		t.Fatalf("fetch persistence: %v", err)
	} else if got != 1 {
		t.Fatalf("expected persistence failures=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "kiosk_cart_broadcast_messages_total", "result", "unknown"); err != nil {
		t.Fatalf("fetch broadcast: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown broadcast=1, got %f", got)
	}
}

func TestCheckoutMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.IncOutcome(CheckoutSuccess)
	m.IncOutcome(CheckoutFailure)
	m.IncOutcome(CheckoutFailure)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "kiosk_checkout_total", "outcome", CheckoutFailure); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 2 {
		t.Fatalf("expected failure=2, got %f", got)
	}
}

func TestBackendMetricsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBackendMetrics(reg)
	m.ObserveRequest("list_bills", 200, 150*time.Millisecond)
	m.ObserveRequest("create_bill", 0, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchHistogramSum(mfs, "kiosk_backend_request_duration_seconds", "status", "200"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
	if _, err := fetchHistogramSum(mfs, "kiosk_backend_request_duration_seconds", "status", "error"); err != nil {
		t.Fatalf("fetch error duration: %v", err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var cart *CartMetrics
	cart.IncTransition("x")
	cart.IncPersistenceFailure("x")
	cart.IncBroadcast("x")

	var checkout *CheckoutMetrics
	checkout.IncOutcome("x")

	NewBackendMetrics(nil).ObserveRequest("x", 200, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
