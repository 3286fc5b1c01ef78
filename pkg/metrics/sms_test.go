package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSMSMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSMSMetrics(reg)
	kind := "otp"
	m.ObserveDuration(kind, 250*time.Millisecond)
	m.IncSuccess(kind)
	m.IncFailure(kind)

	if got := testutil.ToFloat64(m.success.WithLabelValues(kind)); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues(kind)); got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if got := testutil.CollectAndCount(m.duration, "sms_send_duration_seconds"); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestSMSMetricsNilReceiverIsNoop(t *testing.T) {
	var m *SMSMetrics
	m.ObserveDuration("otp", time.Second)
	m.IncSuccess("otp")
	m.IncFailure("otp")

	empty := NewSMSMetrics(nil)
	empty.IncSuccess("otp")
}
