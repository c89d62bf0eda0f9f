package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Effect pipeline stages.
const (
	StageReceived  = "received"
	StageGrouped   = "grouped"
	StageKept      = "kept"
	StageConverted = "converted"
)

// Validation outcomes.
const (
	OutcomeValid    = "valid"
	OutcomeInvalid  = "invalid"
	OutcomeVerify   = "verify_required"
	OutcomeRejected = "stock_rejected"
)

// BenefitMetrics records how promotion effects turn into cart benefits.
type BenefitMetrics struct {
	effects     *prometheus.CounterVec
	built       *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	validations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewBenefitMetrics registers the benefit metrics on the provided registerer.
func NewBenefitMetrics(reg prometheus.Registerer) *BenefitMetrics {
	if reg == nil {
		return &BenefitMetrics{}
	}
	effects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promocart_effects_total",
		Help: "Promotion effects seen per pipeline stage.",
	}, []string{"stage"})
	built := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promocart_benefits_built_total",
		Help: "Benefits built from converted effects.",
	}, []string{"kind"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promocart_benefits_dropped_total",
		Help: "Benefits dropped because no published variant backs them.",
	}, []string{"kind"})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promocart_validations_total",
		Help: "Cart change validations by outcome and reason.",
	}, []string{"outcome", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promocart_resolution_duration_seconds",
		Help:    "Duration of benefit resolution in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(effects, built, dropped, validations, duration)
	return &BenefitMetrics{
		effects:     effects,
		built:       built,
		dropped:     dropped,
		validations: validations,
		duration:    duration,
	}
}

// AddEffects counts n effects at the named stage.
func (m *BenefitMetrics) AddEffects(stage string, n int) {
	if m == nil || m.effects == nil || n <= 0 {
		return
	}
	m.effects.WithLabelValues(normalizeLabel(stage)).Add(float64(n))
}

// AddBuilt counts n benefits of kind.
func (m *BenefitMetrics) AddBuilt(kind string, n int) {
	if m == nil || m.built == nil || n <= 0 {
		return
	}
	m.built.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

// AddDropped counts n benefits of kind removed during enrichment.
func (m *BenefitMetrics) AddDropped(kind string, n int) {
	if m == nil || m.dropped == nil || n <= 0 {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

// IncValidation records one validation outcome.
func (m *BenefitMetrics) IncValidation(outcome, reason string) {
	if m == nil || m.validations == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.validations.WithLabelValues(normalizeLabel(outcome), reason).Inc()
}

// ObserveDuration records how long the named operation took.
func (m *BenefitMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
