package telematics

import "time"

// BehaviorMetrics are aggregate percentages and scores summarizing driving
// safety over a span of samples. All percentage and score fields are clamped
// into [0,100]; higher scores mean safer driving.
type BehaviorMetrics struct {
	HarshBrakingPct      float64 `json:"harsh_braking_pct"`
	RapidAccelPct        float64 `json:"rapid_accel_pct"`
	SpeedingPct          float64 `json:"speeding_pct"`
	HighJerkPct          float64 `json:"high_jerk_pct"`
	EngineStressPct      float64 `json:"engine_stress_pct"`
	SmoothnessScore      float64 `json:"smoothness_score"`
	SpeedManagementScore float64 `json:"speed_management_score"`
	OverallDrivingScore  float64 `json:"overall_driving_score"`
}

// Clamp forces every field into [0,100]
func (m *BehaviorMetrics) Clamp() {
	for _, f := range []*float64{
		&m.HarshBrakingPct, &m.RapidAccelPct, &m.SpeedingPct,
		&m.HighJerkPct, &m.EngineStressPct,
		&m.SmoothnessScore, &m.SpeedManagementScore, &m.OverallDrivingScore,
	} {
		if *f < 0 {
			*f = 0
		}
		if *f > 100 {
			*f = 100
		}
	}
}

// SeriesSummary holds descriptive statistics over a full driver series,
// used by the policy pricing path.
type SeriesSummary struct {
	AvgSpeed               float64 `json:"avg_speed"`
	MaxSpeed               float64 `json:"max_speed"`
	P85Speed               float64 `json:"percentile_85_speed"`
	ExcessiveSpeedPct      float64 `json:"excessive_speed_pct"`
	AvgRPM                 float64 `json:"avg_rpm"`
	HighRPMPct             float64 `json:"high_rpm_pct"`
	DurationHours          float64 `json:"duration_hours"`
	EstimatedDistanceMiles float64 `json:"estimated_distance_miles"`
}

// BehaviorReport is the incident-time behavior contract handed to the fraud
// detector. When TelematicsAvailable is false the report was synthesized and
// must never be treated as corroborating evidence. WindowEvaluated is false
// when window statistics could not be computed; in that case
// HasIncidentIndicators says nothing about the incident.
type BehaviorReport struct {
	DriverID              int64             `json:"driver_id"`
	IncidentTime          time.Time         `json:"incident_time"`
	AnalysisTime          time.Time         `json:"analysis_time"`
	ClosestSample         *DrivingSample    `json:"closest_sample,omitempty"`
	Stats                 *WindowStatistics `json:"window_stats,omitempty"`
	Warning               string            `json:"warning,omitempty"`
	WindowEvaluated       bool              `json:"window_evaluated"`
	HasIncidentIndicators bool              `json:"has_incident_indicators"`
	TimeMismatch          bool              `json:"time_mismatch"`
	TimeMismatchMinutes   float64           `json:"time_mismatch_minutes,omitempty"`
	RiskScore             float64           `json:"risk_score"`
	RiskFactors           []string          `json:"risk_factors"`
	ConsistentWithClaim   bool              `json:"consistent_with_claim"`
	TelematicsAvailable   bool              `json:"telematics_available"`
	Err                   string            `json:"error,omitempty"`
}
