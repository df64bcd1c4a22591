package telematics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimotive/claims-engine/internal/domain/errors"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/testutil/fixtures"
)

func TestDeriveBehaviorMetrics(t *testing.T) {
	engineer := NewFeatureEngineer(testTelematicsConfig())

	t.Run("empty series is rejected", func(t *testing.T) {
		_, err := engineer.Derive(&telematics.DriverSeries{DriverID: 1})
		assert.ErrorIs(t, err, errors.ErrEmptySeries)
	})

	t.Run("steady cruising scores perfectly", func(t *testing.T) {
		series := fixtures.NewSeriesBuilder(t).AddCruising(10, 50).Build()

		m, err := engineer.Derive(series)
		require.NoError(t, err)

		assert.Zero(t, m.HarshBrakingPct)
		assert.Zero(t, m.RapidAccelPct)
		assert.Zero(t, m.SpeedingPct)
		assert.Zero(t, m.HighJerkPct)
		assert.InDelta(t, 100.0, m.SmoothnessScore, 1e-9)
		assert.InDelta(t, 100.0, m.SpeedManagementScore, 1e-9)
		assert.InDelta(t, 100.0, m.OverallDrivingScore, 1e-9)
	})

	t.Run("speeding lowers speed management only", func(t *testing.T) {
		// Speeds 70, 80, 80 at ten-minute spacing: the accelerations are
		// tiny, but two of three samples exceed the 75 mph limit.
		series := fixtures.NewSeriesBuilder(t).
			AddSample(70, 0).
			AddSample(80, 0).
			AddSample(80, 0).
			Build()

		m, err := engineer.Derive(series)
		require.NoError(t, err)

		assert.InDelta(t, 200.0/3, m.SpeedingPct, 1e-9)
		assert.InDelta(t, 100.0, m.SmoothnessScore, 1e-9)
		assert.InDelta(t, 100.0/3, m.SpeedManagementScore, 1e-9)
		assert.InDelta(t, 0.6*100+0.4*100.0/3, m.OverallDrivingScore, 1e-9)
	})

	t.Run("unordered samples are sorted before differencing", func(t *testing.T) {
		ordered := fixtures.NewSeriesBuilder(t).
			AddSample(70, 0).
			AddSample(80, 0).
			AddSample(80, 0).
			Build()
		shuffled := &telematics.DriverSeries{
			DriverID: ordered.DriverID,
			Samples: []telematics.DrivingSample{
				ordered.Samples[2], ordered.Samples[0], ordered.Samples[1],
			},
		}

		want, err := engineer.Derive(ordered)
		require.NoError(t, err)
		got, err := engineer.Derive(shuffled)
		require.NoError(t, err)

		assert.Equal(t, want, got)
		// The caller's slice keeps its original order.
		assert.True(t, shuffled.Samples[0].Timestamp.After(shuffled.Samples[1].Timestamp))
	})

	t.Run("hard stop counts as harsh braking and jerk", func(t *testing.T) {
		// 60 mph to standstill within one second.
		base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		series := &telematics.DriverSeries{DriverID: 1, Samples: []telematics.DrivingSample{
			{Timestamp: base, Speed: 60},
			{Timestamp: base.Add(time.Second), Speed: 0},
			{Timestamp: base.Add(2 * time.Second), Speed: 0},
		}}

		m, err := engineer.Derive(series)
		require.NoError(t, err)

		assert.Greater(t, m.HarshBrakingPct, 0.0)
		assert.Greater(t, m.HighJerkPct, 0.0)
		assert.Less(t, m.SmoothnessScore, 100.0)
	})

	t.Run("scores stay within bounds", func(t *testing.T) {
		end := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
		series := &telematics.DriverSeries{
			DriverID: 9,
			Samples:  SynthesizeSeries(9, end, 7, 10*time.Minute),
		}

		m, err := engineer.Derive(series)
		require.NoError(t, err)

		for name, v := range map[string]float64{
			"harsh_braking":    m.HarshBrakingPct,
			"rapid_accel":      m.RapidAccelPct,
			"speeding":         m.SpeedingPct,
			"high_jerk":        m.HighJerkPct,
			"engine_stress":    m.EngineStressPct,
			"smoothness":       m.SmoothnessScore,
			"speed_management": m.SpeedManagementScore,
			"overall":          m.OverallDrivingScore,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 100.0, name)
		}
	})
}
