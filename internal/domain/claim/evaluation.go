package claim

import (
	"time"

	"github.com/google/uuid"
)

// FraudRating is the categorical fraud assessment
type FraudRating string

const (
	RatingLow     FraudRating = "Low"
	RatingMedium  FraudRating = "Medium"
	RatingHigh    FraudRating = "High"
	RatingUnknown FraudRating = "Unknown"
)

// Stable machine-readable fraud flags; downstream systems branch on these
const (
	FlagCostTooLow            = "cost_too_low"
	FlagCostTooHigh           = "cost_too_high"
	FlagNoTelematicsIncident  = "no_telematics_incident"
	FlagTimeMismatch          = "time_mismatch"
	FlagMultipleRecentClaims  = "multiple_recent_claims"
	FlagRepeatedDamagePattern = "repeated_damage_pattern"
)

// FraudEvaluation is the terminal artifact of a claim evaluation. It is
// created once per request and never mutated afterwards.
type FraudEvaluation struct {
	ID                    uuid.UUID   `json:"id"`
	ClaimRef              string      `json:"claim_ref,omitempty"`
	FraudProbability      float64     `json:"fraud_probability"`
	Rating                FraudRating `json:"fraud_rating"`
	Flags                 []string    `json:"fraud_flags"`
	RequiresInvestigation bool        `json:"requires_investigation"`
	Message               string      `json:"message,omitempty"`
	EvaluatedAt           time.Time   `json:"evaluated_at"`
	Err                   string      `json:"error,omitempty"`
}
