package rest

import (
	"time"

	"github.com/verimotive/claims-engine/internal/domain/claim"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
)

// DamageAssessmentRequest is the external shape of an image-detector result
type DamageAssessmentRequest struct {
	DamagedParts        []string `json:"damaged_parts" validate:"required,min=1,dive,min=1"`
	Severity            string   `json:"severity" validate:"required,oneof=none minor moderate severe"`
	EstimatedRepairCost float64  `json:"estimated_repair_cost" validate:"gte=0"`
}

// HistoryEntryRequest is one prior claim supplied by the caller
type HistoryEntryRequest struct {
	Date         time.Time `json:"date" validate:"required"`
	DamagedParts []string  `json:"damaged_parts"`
	Cost         float64   `json:"cost" validate:"gte=0"`
}

// EvaluateClaimRequest is the body of POST /api/v1/claims/evaluate
type EvaluateClaimRequest struct {
	DriverID         string                  `json:"driver_id" validate:"required"`
	IncidentTime     string                  `json:"incident_time"`
	DamageAssessment DamageAssessmentRequest `json:"damage_assessment" validate:"required"`
	ClaimHistory     []HistoryEntryRequest   `json:"claim_history" validate:"dive"`
}

// EvaluateClaimResponse pairs the fraud evaluation with the telematics
// context that informed it
type EvaluateClaimResponse struct {
	Evaluation *claim.FraudEvaluation     `json:"evaluation"`
	Telematics *telematics.BehaviorReport `json:"telematics,omitempty"`
}

// RiskScoreRequest is the body of POST /api/v1/risk/score
type RiskScoreRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
}

// RiskScoreResponse wraps the risk report with the series summary behind it
type RiskScoreResponse struct {
	DriverID int64                     `json:"driver_id"`
	Report   *claim.RiskReport         `json:"report"`
	Summary  *telematics.SeriesSummary `json:"series_summary,omitempty"`
}

// ErrorResponse is the uniform error body for all endpoints
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status  string    `json:"status"`
	Version string    `json:"version"`
	Time    time.Time `json:"time"`
}
