package telematics

import "time"

// IncidentWindow is the fixed-width span of samples surrounding a reported
// incident time. Samples are drawn only from the owning series within the
// closed interval [WindowStart, WindowEnd].
type IncidentWindow struct {
	Center      time.Time       `json:"center_timestamp"`
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Samples     []DrivingSample `json:"samples"`
}

// NewIncidentWindow builds the window around center from the series
func NewIncidentWindow(series *DriverSeries, center time.Time, halfWidth time.Duration) *IncidentWindow {
	start := center.Add(-halfWidth)
	end := center.Add(halfWidth)
	return &IncidentWindow{
		Center:      center,
		WindowStart: start,
		WindowEnd:   end,
		Samples:     series.Between(start, end),
	}
}

// WindowStatistics summarizes driving behavior inside one incident window.
// Derived, read-only; one per window evaluation.
type WindowStatistics struct {
	AvgSpeed              float64 `json:"avg_speed"`
	MaxSpeed              float64 `json:"max_speed"`
	AvgBraking            float64 `json:"avg_braking"`
	MaxBraking            float64 `json:"max_braking"`
	SuddenStopCount       int     `json:"sudden_stop_count"`
	SpeedingInstanceCount int     `json:"speeding_instance_count"`
	AnomaliesDetected     bool    `json:"anomalies_detected"`
	TimeMismatch          bool    `json:"time_mismatch"`
	TimeMismatchMinutes   float64 `json:"time_mismatch_minutes"`
}

// ComputeWindowStatistics aggregates samples in the window.
// suddenStopBraking and speedingSpeed are the configured event thresholds.
func ComputeWindowStatistics(samples []DrivingSample, suddenStopBraking, speedingSpeed float64) *WindowStatistics {
	stats := &WindowStatistics{}
	if len(samples) == 0 {
		return stats
	}
	var speedSum, brakeSum float64
	for _, s := range samples {
		speedSum += s.Speed
		brakeSum += s.BrakingIntensity
		if s.Speed > stats.MaxSpeed {
			stats.MaxSpeed = s.Speed
		}
		if s.BrakingIntensity > stats.MaxBraking {
			stats.MaxBraking = s.BrakingIntensity
		}
		if s.BrakingIntensity > suddenStopBraking {
			stats.SuddenStopCount++
		}
		if s.Speed > speedingSpeed {
			stats.SpeedingInstanceCount++
		}
	}
	n := float64(len(samples))
	stats.AvgSpeed = speedSum / n
	stats.AvgBraking = brakeSum / n
	stats.AnomaliesDetected = stats.SuddenStopCount > 0 || stats.SpeedingInstanceCount > 0
	return stats
}
