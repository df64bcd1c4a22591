package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verimotive/claims-engine/internal/domain/claim"
	"github.com/verimotive/claims-engine/internal/domain/values"
)

// AssessmentBuilder builds test DamageAssessment values
type AssessmentBuilder struct {
	t        *testing.T
	parts    []string
	severity string
	cost     float64
}

// NewAssessmentBuilder creates an AssessmentBuilder with a plausible
// two-part moderate claim
func NewAssessmentBuilder(t *testing.T) *AssessmentBuilder {
	t.Helper()
	return &AssessmentBuilder{
		t:        t,
		parts:    []string{"front bumper", "hood"},
		severity: "moderate",
		cost:     1500,
	}
}

// WithParts sets the damaged parts
func (b *AssessmentBuilder) WithParts(parts ...string) *AssessmentBuilder {
	b.parts = parts
	return b
}

// WithSeverity sets the severity label
func (b *AssessmentBuilder) WithSeverity(severity string) *AssessmentBuilder {
	b.severity = severity
	return b
}

// WithCost sets the estimated repair cost
func (b *AssessmentBuilder) WithCost(cost float64) *AssessmentBuilder {
	b.cost = cost
	return b
}

// Build validates and returns the assessment
func (b *AssessmentBuilder) Build() *claim.DamageAssessment {
	a, err := claim.NewDamageAssessment(b.parts, b.severity, b.cost)
	require.NoError(b.t, err)
	return a
}

// HistoryEntry builds one prior claim the given number of days in the past
func HistoryEntry(t *testing.T, daysAgo int, cost float64, parts ...string) claim.HistoryEntry {
	t.Helper()
	money, err := values.NewMoneyFromFloat(cost, values.USD)
	require.NoError(t, err)
	return claim.HistoryEntry{
		Date:         time.Now().AddDate(0, 0, -daysAgo),
		DamagedParts: parts,
		Cost:         money,
	}
}
