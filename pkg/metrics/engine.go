package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records issuance and verification outcomes.
type EngineMetrics struct {
	issued          *prometheus.CounterVec
	issuanceSkipped *prometheus.CounterVec
	verifications   *prometheus.CounterVec
	codeRetries     prometheus.Histogram
	revocations     prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
// A nil registerer yields a no-op recorder, which keeps tests quiet.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	issued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "certificates_issued_total",
		Help: "Certificates issued, labelled by mode (single/bulk).",
	}, []string{"mode"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_issuance_skipped_total",
		Help: "Bulk-issuance candidates skipped, labelled by reason.",
	}, []string{"reason"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verifications_total",
		Help: "Public verification lookups, labelled by outcome.",
	}, []string{"outcome"})
	codeRetries := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "code_generation_attempts",
		Help:    "Attempts needed to allocate a unique code pair.",
		Buckets: []float64{1, 2, 3, 4, 5},
	})
	revocations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certificates_revoked_total",
		Help: "Certificates revoked.",
	})
	reg.MustRegister(issued, skipped, verifications, codeRetries, revocations)
	return &EngineMetrics{
		issued:          issued,
		issuanceSkipped: skipped,
		verifications:   verifications,
		codeRetries:     codeRetries,
		revocations:     revocations,
	}
}

// IncIssued increments the issued counter for the given mode.
func (m *EngineMetrics) IncIssued(mode string) {
	if m == nil || m.issued == nil {
		return
	}
	m.issued.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncSkipped increments the skipped counter for the given reason.
func (m *EngineMetrics) IncSkipped(reason string) {
	if m == nil || m.issuanceSkipped == nil {
		return
	}
	m.issuanceSkipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncVerification increments the verification counter for the given outcome.
func (m *EngineMetrics) IncVerification(outcome string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCodeAttempts records how many generation attempts a write needed.
func (m *EngineMetrics) ObserveCodeAttempts(attempts int) {
	if m == nil || m.codeRetries == nil {
		return
	}
	m.codeRetries.Observe(float64(attempts))
}

// IncRevoked increments the revocation counter.
func (m *EngineMetrics) IncRevoked() {
	if m == nil || m.revocations == nil {
		return
	}
	m.revocations.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
