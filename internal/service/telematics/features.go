package telematics

import (
	"math"
	"sort"

	"github.com/verimotive/claims-engine/internal/domain/errors"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
)

// FeatureEngineer derives per-sample kinematic features from a raw series
// and aggregates them into behavior metrics for policy-level scoring.
type FeatureEngineer struct {
	cfg config.TelematicsConfig
}

func NewFeatureEngineer(cfg config.TelematicsConfig) *FeatureEngineer {
	return &FeatureEngineer{cfg: cfg}
}

// Derive computes behavior metrics over an arbitrary sample range.
// Acceleration is speed delta over time delta; jerk is the acceleration
// delta over time delta. Both are zero where the time delta is not positive.
// Unordered input is sorted on a local copy; the caller's slice is not
// modified.
func (e *FeatureEngineer) Derive(series *telematics.DriverSeries) (*telematics.BehaviorMetrics, error) {
	if series == nil || len(series.Samples) == 0 {
		return nil, errors.ErrEmptySeries
	}

	samples := series.Samples
	byTime := func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	}
	if !sort.SliceIsSorted(samples, byTime) {
		samples = append([]telematics.DrivingSample(nil), samples...)
		sort.SliceStable(samples, byTime)
	}

	n := len(samples)
	accel := make([]float64, n)
	jerk := make([]float64, n)
	for i := 1; i < n; i++ {
		dt := samples[i].Timestamp.Sub(samples[i-1].Timestamp).Seconds()
		if dt > 0 {
			accel[i] = (samples[i].Speed - samples[i-1].Speed) / dt
			jerk[i] = (accel[i] - accel[i-1]) / dt
		}
	}

	var harshBraking, rapidAccel, speeding, highJerk, engineStress int
	for i, sample := range samples {
		if math.Abs(jerk[i]) > e.cfg.HighJerkThreshold {
			highJerk++
		}
		if accel[i] > e.cfg.RapidAccelThreshold {
			rapidAccel++
		}
		if accel[i] < e.cfg.HarshBrakeThreshold {
			harshBraking++
		}
		if sample.Speed > e.cfg.FeatureSpeedingLimit {
			speeding++
		}
		if sample.Speed > 0 && sample.RPM/sample.Speed > e.cfg.EngineStressRatio {
			engineStress++
		}
	}

	total := float64(n)
	m := &telematics.BehaviorMetrics{
		HarshBrakingPct: float64(harshBraking) / total * 100,
		RapidAccelPct:   float64(rapidAccel) / total * 100,
		SpeedingPct:     float64(speeding) / total * 100,
		HighJerkPct:     float64(highJerk) / total * 100,
		EngineStressPct: float64(engineStress) / total * 100,
	}

	harshEvents := (m.HarshBrakingPct + m.RapidAccelPct + m.HighJerkPct) / 3
	m.SmoothnessScore = math.Max(0, 100-harshEvents)
	m.SpeedManagementScore = math.Max(0, 100-m.SpeedingPct)
	m.OverallDrivingScore = 0.6*m.SmoothnessScore + 0.4*m.SpeedManagementScore
	m.Clamp()
	return m, nil
}
