package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SMSMetrics records delivery outcomes for the SMS worker.
type SMSMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewSMSMetrics registers the SMS worker metrics on the provided registerer.
func NewSMSMetrics(reg prometheus.Registerer) *SMSMetrics {
	if reg == nil {
		return &SMSMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sms_send_duration_seconds",
		Help:    "Duration of SMS provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sms_send_success",
		Help: "Successfully delivered SMS messages.",
	}, []string{"kind"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sms_send_failure",
		Help: "Failed SMS delivery attempts.",
	}, []string{"kind"})
	reg.MustRegister(duration, success, failure)
	return &SMSMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the provider call duration for the message kind.
func (s *SMSMetrics) ObserveDuration(kind string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the message kind.
func (s *SMSMetrics) IncSuccess(kind string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFailure increments the failure counter for the message kind.
func (s *SMSMetrics) IncFailure(kind string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(kind)).Inc()
}

// SuccessCounter exposes the success series for a kind, mainly for tests.
func (s *SMSMetrics) SuccessCounter(kind string) prometheus.Counter {
	if s == nil || s.success == nil {
		return nil
	}
	return s.success.WithLabelValues(normalizeLabel(kind))
}

// FailureCounter exposes the failure series for a kind, mainly for tests.
func (s *SMSMetrics) FailureCounter(kind string) prometheus.Counter {
	if s == nil || s.failure == nil {
		return nil
	}
	return s.failure.WithLabelValues(normalizeLabel(kind))
}

func normalizeLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
