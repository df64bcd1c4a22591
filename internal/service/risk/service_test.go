package risk

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimotive/claims-engine/internal/domain/claim"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
)

func testRiskConfig() config.RiskConfig {
	return config.RiskConfig{
		MediumThreshold: 0.5,
		HighThreshold:   0.75,
		Weights: config.RiskWeights{
			HarshBraking: 0.20,
			RapidAccel:   0.15,
			Speeding:     0.30,
			HighJerk:     0.10,
			EngineStress: 0.05,
			OverallScore: -0.20,
		},
	}
}

func newTestAssessor() *Assessor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAssessor(testRiskConfig(), logger, nil)
}

func safeDriverMetrics() *telematics.BehaviorMetrics {
	return &telematics.BehaviorMetrics{
		SmoothnessScore:      100,
		SpeedManagementScore: 100,
		OverallDrivingScore:  100,
	}
}

func riskyDriverMetrics() *telematics.BehaviorMetrics {
	return &telematics.BehaviorMetrics{
		HarshBrakingPct:      100,
		RapidAccelPct:        100,
		SpeedingPct:          100,
		HighJerkPct:          100,
		EngineStressPct:      100,
		SmoothnessScore:      0,
		SpeedManagementScore: 0,
		OverallDrivingScore:  0,
	}
}

func TestScore(t *testing.T) {
	a := newTestAssessor()
	ctx := context.Background()

	t.Run("nil metrics rejected", func(t *testing.T) {
		_, err := a.Score(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("perfect driver gets a discount", func(t *testing.T) {
		report, err := a.Score(ctx, safeDriverMetrics())
		require.NoError(t, err)

		// All event terms are zero and the overall score subtracts 0.20,
		// so the clamp floors the risk at zero.
		assert.Zero(t, report.RiskScore)
		assert.Equal(t, claim.RiskLow, report.RiskCategory)
		assert.InDelta(t, 0.7, report.PremiumAdjustmentFactor, 1e-9)
		assert.InDelta(t, -30.0, report.PremiumChangePct, 1e-9)
		assert.Empty(t, report.RiskFactors)
		assert.InDelta(t, 100.0, report.DrivingMetrics.OverallDrivingScore, 1e-9)
	})

	t.Run("worst driver pays the full surcharge", func(t *testing.T) {
		report, err := a.Score(ctx, riskyDriverMetrics())
		require.NoError(t, err)

		// Positive weights sum to 0.80 with nothing subtracted.
		assert.InDelta(t, 0.80, report.RiskScore, 1e-9)
		assert.Equal(t, claim.RiskHigh, report.RiskCategory)
		assert.InDelta(t, 1.2+0.8*(0.80-0.75)/0.25, report.PremiumAdjustmentFactor, 1e-9)
		assert.Len(t, report.RiskFactors, 5)
	})

	t.Run("moderate driver lands in medium", func(t *testing.T) {
		m := &telematics.BehaviorMetrics{
			SpeedingPct:          100,
			HarshBrakingPct:      100,
			SmoothnessScore:      60,
			SpeedManagementScore: 0,
			OverallDrivingScore:  0,
		}
		report, err := a.Score(ctx, m)
		require.NoError(t, err)

		// 0.30 + 0.20 = 0.50, exactly at the medium threshold.
		assert.InDelta(t, 0.50, report.RiskScore, 1e-9)
		assert.Equal(t, claim.RiskMedium, report.RiskCategory)
		assert.Contains(t, report.RiskFactors, "Frequent speeding")
		assert.Contains(t, report.RiskFactors, "Frequent harsh braking")
	})
}

func TestPremiumAdjustmentContinuity(t *testing.T) {
	a := newTestAssessor()
	eps := 1e-9

	// The adjustment curve must not jump at either category boundary.
	atMedium := a.premiumAdjustment(0.5)
	belowMedium := a.premiumAdjustment(0.5 - eps)
	assert.InDelta(t, atMedium, belowMedium, 1e-6)
	assert.InDelta(t, 0.9, atMedium, 1e-9)

	atHigh := a.premiumAdjustment(0.75)
	belowHigh := a.premiumAdjustment(0.75 - eps)
	assert.InDelta(t, atHigh, belowHigh, 1e-6)
	assert.InDelta(t, 1.2, atHigh, 1e-9)
}

func TestPremiumAdjustmentBounds(t *testing.T) {
	a := newTestAssessor()

	for s := 0.0; s <= 1.0; s += 0.01 {
		adj := a.premiumAdjustment(s)
		assert.GreaterOrEqual(t, adj, 0.7, "score %f", s)
		assert.LessOrEqual(t, adj, 2.0, "score %f", s)
	}
	assert.InDelta(t, 0.7, a.premiumAdjustment(0), 1e-9)
	assert.InDelta(t, 2.0, a.premiumAdjustment(1), 1e-9)
}

func TestPremiumAdjustmentMonotone(t *testing.T) {
	a := newTestAssessor()

	prev := a.premiumAdjustment(0)
	for s := 0.01; s <= 1.0; s += 0.01 {
		adj := a.premiumAdjustment(s)
		assert.GreaterOrEqual(t, adj, prev, "score %f", s)
		prev = adj
	}
}
