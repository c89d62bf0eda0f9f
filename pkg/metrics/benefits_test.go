package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBenefitMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBenefitMetrics(reg)
	metrics.AddEffects(StageReceived, 4)
	metrics.AddEffects(StageKept, 2)
	metrics.AddEffects(StageKept, 0)
	metrics.AddBuilt("free_gift", 3)
	metrics.AddDropped("free_gift", 1)
	metrics.IncValidation(OutcomeInvalid, "max_receive")
	metrics.IncValidation(OutcomeValid, "")
	metrics.ObserveDuration("resolve", 250*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "promocart_effects_total", "stage", StageReceived); err != nil {
		t.Fatalf("fetch received: %v", err)
	} else if got != 4 {
		t.Fatalf("expected received=4, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "promocart_effects_total", "stage", StageKept); err != nil {
		t.Fatalf("fetch kept: %v", err)
	} else if got != 2 {
		t.Fatalf("expected kept=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "promocart_benefits_built_total", "kind", "free_gift"); err != nil {
		t.Fatalf("fetch built: %v", err)
	} else if got != 3 {
		t.Fatalf("expected built=3, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "promocart_benefits_dropped_total", "kind", "free_gift"); err != nil {
		t.Fatalf("fetch dropped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dropped=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "promocart_validations_total", "reason", "max_receive"); err != nil {
		t.Fatalf("fetch validations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected max_receive=1, got %f", got)
	}

	if _, err := fetchCounterValue(mfs, "promocart_validations_total", "reason", "none"); err != nil {
		t.Fatalf("expected empty reason normalized: %v", err)
	}

	if got, err := fetchHistogramSum(mfs, "promocart_resolution_duration_seconds", "operation", "resolve"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestBenefitMetricsNilSafe(t *testing.T) {
	var metrics *BenefitMetrics
	metrics.AddEffects(StageReceived, 1)
	metrics.IncValidation(OutcomeValid, "")
	metrics.ObserveDuration("resolve", time.Second)

	unregistered := NewBenefitMetrics(nil)
	unregistered.AddBuilt("add_on", 1)
	unregistered.AddDropped("add_on", 1)
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
