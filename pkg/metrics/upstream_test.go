package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
)

func TestUpstreamMetricsCountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewUpstreamMetrics(reg)
	started := time.Now().Add(-250 * time.Millisecond)
	metrics.Observe("tmdb", "popular", started, nil)
	metrics.Observe("tmdb", "popular", started, errors.New("boom"))
	metrics.Observe("tmdb", "details", started, pkgerrors.New(pkgerrors.CodeNotFound, "movie not found"))
	metrics.Observe("viacep", "", started, nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	cases := []struct {
		labels map[string]string
		want   float64
	}{
		{map[string]string{"operation": "popular", "outcome": OutcomeOK}, 1},
		{map[string]string{"operation": "popular", "outcome": OutcomeError}, 1},
		{map[string]string{"operation": "details", "outcome": OutcomeNotFound}, 1},
		{map[string]string{"upstream": "viacep", "operation": "unknown"}, 1},
	}
	for _, tc := range cases {
		got, err := counterValue(mfs, "upstream_requests_total", tc.labels)
		if err != nil {
			t.Fatalf("fetch %v: %v", tc.labels, err)
		}
		if got != tc.want {
			t.Fatalf("labels %v: expected %v, got %v", tc.labels, tc.want, got)
		}
	}

	sum, err := histogramSum(mfs, "upstream_request_duration_seconds", map[string]string{"operation": "popular"})
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if sum <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", sum)
	}
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		OutcomeOK:          nil,
		OutcomeNotFound:    pkgerrors.New(pkgerrors.CodeNotFound, "x"),
		OutcomeRejected:    pkgerrors.New(pkgerrors.CodeValidation, "x"),
		OutcomeRateLimited: pkgerrors.New(pkgerrors.CodeRateLimit, "x"),
		OutcomeError:       pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("timeout"), "x"),
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Fatalf("Outcome(%v) = %s, want %s", err, got, want)
		}
	}
}

func TestNilUpstreamMetricsIsNoop(t *testing.T) {
	var m *UpstreamMetrics
	m.Observe("tmdb", "genres", time.Now(), nil)
	NewUpstreamMetrics(nil).Observe("tmdb", "genres", time.Now(), nil)
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func histogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleSum(), nil
}

// findMetric returns the first series of name carrying every given label.
func findMetric(mfs []*dto.MetricFamily, name string, labels map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric, nil
			}
		}
		return nil, fmt.Errorf("metric %q has no series with labels %v", name, labels)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
