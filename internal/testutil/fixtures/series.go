package fixtures

import (
	"testing"
	"time"

	"github.com/verimotive/claims-engine/internal/domain/telematics"
)

// SeriesBuilder builds test DriverSeries values
type SeriesBuilder struct {
	t        *testing.T
	driverID int64
	start    time.Time
	interval time.Duration
	samples  []telematics.DrivingSample
}

// NewSeriesBuilder creates a SeriesBuilder with defaults: driver 12345,
// samples every 10 minutes starting at a fixed time
func NewSeriesBuilder(t *testing.T) *SeriesBuilder {
	t.Helper()
	return &SeriesBuilder{
		t:        t,
		driverID: 12345,
		start:    time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		interval: 10 * time.Minute,
	}
}

// WithDriverID sets the driver
func (b *SeriesBuilder) WithDriverID(id int64) *SeriesBuilder {
	b.driverID = id
	return b
}

// WithStart sets the timestamp of the first sample
func (b *SeriesBuilder) WithStart(start time.Time) *SeriesBuilder {
	b.start = start
	return b
}

// WithInterval sets the spacing between appended samples
func (b *SeriesBuilder) WithInterval(d time.Duration) *SeriesBuilder {
	b.interval = d
	return b
}

// AddSample appends a sample at the next interval slot with the given
// speed and braking intensity; other channels get steady cruising values
func (b *SeriesBuilder) AddSample(speed, braking float64) *SeriesBuilder {
	ts := b.start.Add(time.Duration(len(b.samples)) * b.interval)
	b.samples = append(b.samples, telematics.DrivingSample{
		Timestamp:        ts,
		Speed:            speed,
		RPM:              speed * 50,
		Throttle:         speed / 120,
		BrakingIntensity: braking,
		FuelLevel:        0.8,
		EngineTemp:       90,
	})
	return b
}

// AddCruising appends n steady samples at the given speed with no braking
func (b *SeriesBuilder) AddCruising(n int, speed float64) *SeriesBuilder {
	for i := 0; i < n; i++ {
		b.AddSample(speed, 0)
	}
	return b
}

// Build returns the series
func (b *SeriesBuilder) Build() *telematics.DriverSeries {
	return &telematics.DriverSeries{
		DriverID: b.driverID,
		Samples:  append([]telematics.DrivingSample(nil), b.samples...),
	}
}

// MidTime returns the timestamp halfway through the built samples,
// convenient as an in-range incident time
func (b *SeriesBuilder) MidTime() time.Time {
	return b.start.Add(time.Duration(len(b.samples)/2) * b.interval)
}
