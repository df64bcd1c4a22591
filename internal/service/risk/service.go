package risk

import (
	"context"
	"log/slog"
	"math"

	"github.com/verimotive/claims-engine/internal/domain/claim"
	"github.com/verimotive/claims-engine/internal/domain/errors"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
	"github.com/verimotive/claims-engine/internal/metrics"
)

// Risk factor rule thresholds, in percent of samples
const (
	harshBrakingFactorPct = 5
	rapidAccelFactorPct   = 5
	speedingFactorPct     = 10
	highJerkFactorPct     = 3
	engineStressFactorPct = 15
)

// Assessor maps aggregate behavior metrics to a bounded risk score, a
// category, and a premium adjustment for policy pricing.
type Assessor struct {
	cfg      config.RiskConfig
	logger   *slog.Logger
	registry *metrics.Registry
}

// NewAssessor creates a risk assessor; cfg invariants are validated at
// config load. registry may be nil.
func NewAssessor(cfg config.RiskConfig, logger *slog.Logger, registry *metrics.Registry) *Assessor {
	return &Assessor{cfg: cfg, logger: logger, registry: registry}
}

// Score produces the full risk report for a set of behavior metrics
func (a *Assessor) Score(ctx context.Context, m *telematics.BehaviorMetrics) (*claim.RiskReport, error) {
	if m == nil {
		return nil, errors.NewValidationError("INVALID_METRICS", "behavior metrics cannot be nil")
	}

	score := a.riskScore(m)
	category := a.category(score)
	adjustment := a.premiumAdjustment(score)

	report := &claim.RiskReport{
		RiskScore:               score,
		RiskCategory:            category,
		PremiumAdjustmentFactor: adjustment,
		PremiumChangePct:        (adjustment - 1.0) * 100,
		RiskFactors:             riskFactors(m),
		DrivingMetrics: claim.DrivingScores{
			SmoothnessScore:      m.SmoothnessScore,
			SpeedManagementScore: m.SpeedManagementScore,
			OverallDrivingScore:  m.OverallDrivingScore,
		},
	}

	a.logger.Info("generated risk report", "category", category, "risk_score", score)
	if a.registry != nil {
		a.registry.RecordRiskReport(ctx, string(category))
	}
	return report, nil
}

// riskScore is the weighted blend of behavior metrics, clamped to [0,1].
// The overall driving score enters inverted: safe driving subtracts risk.
func (a *Assessor) riskScore(m *telematics.BehaviorMetrics) float64 {
	w := a.cfg.Weights
	score := w.HarshBraking*(m.HarshBrakingPct/100) +
		w.RapidAccel*(m.RapidAccelPct/100) +
		w.Speeding*(m.SpeedingPct/100) +
		w.HighJerk*(m.HighJerkPct/100) +
		w.EngineStress*(m.EngineStressPct/100) +
		w.OverallScore*(m.OverallDrivingScore/100)
	return math.Max(0, math.Min(1, score))
}

func (a *Assessor) category(score float64) claim.RiskCategory {
	switch {
	case score >= a.cfg.HighThreshold:
		return claim.RiskHigh
	case score >= a.cfg.MediumThreshold:
		return claim.RiskMedium
	default:
		return claim.RiskLow
	}
}

// premiumAdjustment maps the score to a multiplier, piecewise continuous at
// both thresholds: 10-30% discount below medium, -10% to +20% between, and
// 20-100% surcharge above high.
func (a *Assessor) premiumAdjustment(score float64) float64 {
	medium, high := a.cfg.MediumThreshold, a.cfg.HighThreshold
	switch {
	case score < medium:
		return 0.9 - 0.2*(medium-score)/medium
	case score < high:
		return 0.9 + 0.3*(score-medium)/(high-medium)
	default:
		return 1.2 + 0.8*(score-high)/(1-high)
	}
}

func riskFactors(m *telematics.BehaviorMetrics) []string {
	factors := []string{}
	if m.HarshBrakingPct > harshBrakingFactorPct {
		factors = append(factors, "Frequent harsh braking")
	}
	if m.RapidAccelPct > rapidAccelFactorPct {
		factors = append(factors, "Frequent rapid acceleration")
	}
	if m.SpeedingPct > speedingFactorPct {
		factors = append(factors, "Frequent speeding")
	}
	if m.HighJerkPct > highJerkFactorPct {
		factors = append(factors, "Erratic driving patterns")
	}
	if m.EngineStressPct > engineStressFactorPct {
		factors = append(factors, "Engine stress from improper gear usage")
	}
	return factors
}
