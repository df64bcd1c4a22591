package telematics

import (
	"math"
	"sort"
	"time"

	"github.com/verimotive/claims-engine/internal/domain/errors"
)

// DrivingSample is one timestamped telemetry reading from a vehicle.
// Samples are immutable once written; they are keyed by (driver_id, timestamp).
type DrivingSample struct {
	Timestamp        time.Time `json:"timestamp"`
	Speed            float64   `json:"speed"`
	RPM              float64   `json:"rpm"`
	Throttle         float64   `json:"throttle"`
	BrakingIntensity float64   `json:"braking_intensity"`
	SteeringAngle    float64   `json:"steering_angle"`
	LateralAccel     float64   `json:"lateral_acceleration"`
	FuelLevel        float64   `json:"fuel_level"`
	EngineTemp       float64   `json:"engine_temperature"`
}

// DriverSeries is the ordered sample sequence for one driver.
// Invariant: timestamps are non-decreasing after Clean.
type DriverSeries struct {
	DriverID int64           `json:"driver_id"`
	Samples  []DrivingSample `json:"samples"`
}

// Validate checks that the series can be analyzed
func (s *DriverSeries) Validate() error {
	if len(s.Samples) == 0 {
		return errors.ErrEmptySeries
	}
	for i := 1; i < len(s.Samples); i++ {
		if s.Samples[i].Timestamp.Before(s.Samples[i-1].Timestamp) {
			return errors.NewValidationError("UNORDERED_SERIES", "samples are not ordered by timestamp")
		}
	}
	return nil
}

// Clean sorts samples by timestamp and drops exact timestamp duplicates,
// keeping the first occurrence. Externally fed series are not guaranteed
// ordered or duplicate-free.
func (s *DriverSeries) Clean() {
	sort.SliceStable(s.Samples, func(i, j int) bool {
		return s.Samples[i].Timestamp.Before(s.Samples[j].Timestamp)
	})
	if len(s.Samples) < 2 {
		return
	}
	out := s.Samples[:1]
	for _, sample := range s.Samples[1:] {
		if sample.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, sample)
	}
	s.Samples = out
}

// Range returns the first and last timestamps of the series.
// Callers must check the series is non-empty first.
func (s *DriverSeries) Range() (time.Time, time.Time) {
	return s.Samples[0].Timestamp, s.Samples[len(s.Samples)-1].Timestamp
}

// ClosestIndex returns the index of the sample whose timestamp minimizes
// absolute distance to t.
func (s *DriverSeries) ClosestIndex(t time.Time) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, sample := range s.Samples {
		d := math.Abs(sample.Timestamp.Sub(t).Seconds())
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Between returns samples with timestamps in the closed interval [start, end]
func (s *DriverSeries) Between(start, end time.Time) []DrivingSample {
	var out []DrivingSample
	for _, sample := range s.Samples {
		if sample.Timestamp.Before(start) || sample.Timestamp.After(end) {
			continue
		}
		out = append(out, sample)
	}
	return out
}

// Len returns the number of samples
func (s *DriverSeries) Len() int {
	return len(s.Samples)
}
