package fraud

import (
	"context"
	"time"

	"github.com/verimotive/claims-engine/internal/domain/claim"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
)

// Service defines the fraud detection service interface
type Service interface {
	// EvaluateClaim evaluates a claim for potential fraud. It never returns
	// an error: internal faults degrade to an Unknown rating that still
	// requires investigation.
	EvaluateClaim(ctx context.Context, req *EvaluateRequest) *claim.FraudEvaluation
}

// Classifier is the optional statistical fraud model. Its absence is a
// normal, fully supported code path; the detector then scores on rules only.
type Classifier interface {
	// Predict returns a fraud probability in [0,1] for a feature vector
	Predict(features []float64) (float64, error)
}

// TelematicsChecker produces the driving-behavior report around an incident
type TelematicsChecker interface {
	CheckDrivingBehavior(ctx context.Context, rawDriverID string, incidentTime time.Time) *telematics.BehaviorReport
}

// EvaluateRequest carries the inputs of one claim evaluation. Telematics,
// History and IncidentTime are optional; each enables its own check.
type EvaluateRequest struct {
	Assessment   *claim.DamageAssessment
	Telematics   *telematics.BehaviorReport
	History      []claim.HistoryEntry
	IncidentTime *time.Time
}
