// Package metrics holds the Prometheus collectors for calls the API makes to
// TMDb and ViaCEP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
)

const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeRejected    = "rejected"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Both upstreams answer in tens of milliseconds when healthy.
var durationBuckets = []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10}

type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewUpstreamMetrics registers on reg. A nil reg yields a recorder that
// drops every observation.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	m := &UpstreamMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream API calls in seconds.",
			Buckets: durationBuckets,
		}, []string{"upstream", "operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Upstream API calls by outcome.",
		}, []string{"upstream", "operation", "outcome"}),
	}
	reg.MustRegister(m.duration, m.requests)
	return m
}

// Observe records one call started at started that finished with err.
func (m *UpstreamMetrics) Observe(upstream, operation string, started time.Time, err error) {
	if m == nil || m.duration == nil {
		return
	}
	upstream, operation = labelOrUnknown(upstream), labelOrUnknown(operation)
	m.duration.WithLabelValues(upstream, operation).Observe(time.Since(started).Seconds())
	m.requests.WithLabelValues(upstream, operation, Outcome(err)).Inc()
}

// Outcome classifies a call result by its error code.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNotFound:
		return OutcomeNotFound
	case pkgerrors.CodeValidation:
		return OutcomeRejected
	case pkgerrors.CodeRateLimit:
		return OutcomeRateLimited
	default:
		return OutcomeError
	}
}

func labelOrUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
