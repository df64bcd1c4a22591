package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verimotive/claims-engine/internal/domain/claim"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
	"github.com/verimotive/claims-engine/internal/metrics"
)

type service struct {
	cfg        config.FraudConfig
	classifier Classifier
	logger     *slog.Logger
	registry   *metrics.Registry
	now        func() time.Time
}

// NewService creates the fraud detection service. classifier may be nil, in
// which case scoring is rule-based only. registry may be nil.
func NewService(cfg config.FraudConfig, classifier Classifier, logger *slog.Logger, registry *metrics.Registry) Service {
	return &service{
		cfg:        cfg,
		classifier: classifier,
		logger:     logger.With("service", "fraud"),
		registry:   registry,
		now:        time.Now,
	}
}

// EvaluateClaim scores a claim for fraud risk. It never returns an error:
// any internal failure degrades to RatingUnknown with investigation required,
// so a scoring fault can never silently approve a claim.
func (s *service) EvaluateClaim(ctx context.Context, req *EvaluateRequest) (result *claim.FraudEvaluation) {
	start := s.now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("claim evaluation panicked",
				"panic", fmt.Sprint(r))
			result = &claim.FraudEvaluation{
				ID:                    uuid.New(),
				FraudProbability:      0,
				Rating:                claim.RatingUnknown,
				Flags:                 []string{},
				RequiresInvestigation: true,
				EvaluatedAt:           s.now().UTC(),
				Err:                   fmt.Sprintf("evaluation failed: %v", r),
			}
		}
		if s.registry != nil {
			s.registry.RecordEvaluation(ctx, string(result.Rating), s.now().Sub(start).Seconds())
		}
	}()

	if req == nil || req.Assessment == nil {
		return &claim.FraudEvaluation{
			ID:                    uuid.New(),
			Rating:                claim.RatingUnknown,
			Flags:                 []string{},
			RequiresInvestigation: true,
			EvaluatedAt:           s.now().UTC(),
			Err:                   "evaluation failed: missing damage assessment",
		}
	}

	probability := s.cfg.BaselineProbability
	flags := []string{}

	if flag := s.checkDamageConsistency(req.Assessment); flag != "" {
		probability += s.cfg.DamageIncrement
		flags = append(flags, flag)
	}

	probability, flags = s.checkTelematics(req, probability, flags)
	probability, flags, recentCount := s.checkHistory(req, probability, flags)

	probability = math.Min(probability, 1.0)

	if s.classifier != nil {
		probability = s.blendWithModel(req, probability, recentCount)
	}

	rating := s.rate(probability)

	eval := &claim.FraudEvaluation{
		ID:                    uuid.New(),
		ClaimRef:              s.newClaimRef(),
		FraudProbability:      probability,
		Rating:                rating,
		Flags:                 flags,
		RequiresInvestigation: probability >= s.cfg.MediumRating,
		EvaluatedAt:           s.now().UTC(),
	}
	if rating == claim.RatingHigh {
		eval.Message = fmt.Sprintf("Claim %s flagged for manual investigation: fraud probability %.2f",
			eval.ClaimRef, probability)
		s.logger.Warn("claim escalated for investigation",
			"claim_ref", eval.ClaimRef,
			"fraud_probability", probability,
			"flags", strings.Join(flags, ","))
	} else {
		s.logger.Info("claim evaluated",
			"claim_ref", eval.ClaimRef,
			"fraud_probability", probability,
			"rating", rating)
	}
	return eval
}

// checkDamageConsistency compares the estimated repair cost against the
// expected band for the number of damaged parts. Returns the flag to raise,
// or empty when the cost is plausible.
func (s *service) checkDamageConsistency(a *claim.DamageAssessment) string {
	parts := a.PartCount()
	if parts == 0 {
		return ""
	}
	cost := a.EstimatedRepairCost.Float64()
	expectedMin := float64(parts) * s.cfg.PartCostMin * s.cfg.CostLowMultiplier
	expectedMax := float64(parts) * s.cfg.PartCostMax * s.cfg.CostHighMultiplier
	switch {
	case cost < expectedMin:
		return claim.FlagCostTooLow
	case cost > expectedMax:
		return claim.FlagCostTooHigh
	default:
		return ""
	}
}

// checkTelematics corroborates the claim against driving data around the
// incident. Synthetic fallback reports never contribute, and absence of
// incident indicators only counts when window statistics were actually
// computed. A report whose window could not be evaluated is "unknown",
// not "clean".
func (s *service) checkTelematics(req *EvaluateRequest, probability float64, flags []string) (float64, []string) {
	report := req.Telematics
	if report == nil || req.IncidentTime == nil || !report.TelematicsAvailable {
		return probability, flags
	}
	if report.WindowEvaluated && !report.HasIncidentIndicators {
		probability += s.cfg.NoIncidentIncrement
		flags = append(flags, claim.FlagNoTelematicsIncident)
	}
	if report.TimeMismatch {
		probability += s.cfg.MismatchIncrement
		flags = append(flags, claim.FlagTimeMismatch)
	}
	return probability, flags
}

// checkHistory looks for suspicious claim frequency and repeated damage
// patterns in the driver's prior claims. Returns the recent claim count for
// use as a model feature.
func (s *service) checkHistory(req *EvaluateRequest, probability float64, flags []string) (float64, []string, int) {
	if len(req.History) == 0 {
		return probability, flags, 0
	}

	cutoff := s.now().AddDate(0, 0, -s.cfg.RecentClaimWindowDays)
	recent := 0
	for _, entry := range req.History {
		if entry.Date.After(cutoff) {
			recent++
		}
	}
	if recent >= s.cfg.RecentClaimCount {
		probability += s.cfg.RecentClaimsIncrement
		flags = append(flags, claim.FlagMultipleRecentClaims)
	}

	currentParts := req.Assessment.PartSet()
	matching := 0
	for i := range req.History {
		if req.History[i].SharedParts(currentParts) >= s.cfg.SharedPartMinimum {
			matching++
		}
	}
	if matching >= s.cfg.PatternEntryCount {
		probability += s.cfg.PatternIncrement
		flags = append(flags, claim.FlagRepeatedDamagePattern)
	}

	return probability, flags, recent
}

// blendWithModel combines the rule-based probability with the statistical
// classifier's prediction. A model failure falls back to the rule score.
func (s *service) blendWithModel(req *EvaluateRequest, ruleProbability float64, recentCount int) float64 {
	indicator := 0.0
	if req.Telematics != nil && req.Telematics.TelematicsAvailable && req.Telematics.HasIncidentIndicators {
		indicator = 1.0
	}
	features := []float64{
		float64(req.Assessment.PartCount()),
		req.Assessment.EstimatedRepairCost.Float64() / 1000,
		indicator,
		float64(recentCount),
	}
	modelProbability, err := s.classifier.Predict(features)
	if err != nil {
		s.logger.Warn("classifier prediction failed, using rule-based score", "error", err)
		return ruleProbability
	}
	blended := s.cfg.RuleWeight*ruleProbability + s.cfg.ModelWeight*modelProbability
	return math.Min(blended, 1.0)
}

func (s *service) rate(probability float64) claim.FraudRating {
	switch {
	case probability >= s.cfg.HighRating:
		return claim.RatingHigh
	case probability >= s.cfg.MediumRating:
		return claim.RatingMedium
	default:
		return claim.RatingLow
	}
}

// newClaimRef mints a human-referenceable claim identifier.
func (s *service) newClaimRef() string {
	short := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("CL-%s-%s", s.now().UTC().Format("200601021504"), short)
}
