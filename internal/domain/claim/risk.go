package claim

// RiskCategory buckets a continuous risk score for pricing decisions
type RiskCategory string

const (
	RiskLow    RiskCategory = "low"
	RiskMedium RiskCategory = "medium"
	RiskHigh   RiskCategory = "high"
)

// DrivingScores carries the score trio echoed into risk reports
type DrivingScores struct {
	SmoothnessScore      float64 `json:"smoothness_score"`
	SpeedManagementScore float64 `json:"speed_management_score"`
	OverallDrivingScore  float64 `json:"overall_driving_score"`
}

// RiskReport is the pricing-facing risk artifact derived from behavior
// metrics; immutable once produced for a given input.
type RiskReport struct {
	RiskScore               float64       `json:"risk_score"`
	RiskCategory            RiskCategory  `json:"risk_category"`
	PremiumAdjustmentFactor float64       `json:"premium_adjustment_factor"`
	PremiumChangePct        float64       `json:"premium_change_pct"`
	RiskFactors             []string      `json:"risk_factors"`
	DrivingMetrics          DrivingScores `json:"driving_metrics"`
}
