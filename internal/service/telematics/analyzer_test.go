package telematics

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimotive/claims-engine/internal/domain/errors"
	"github.com/verimotive/claims-engine/internal/testutil/fixtures"
)

func newTestAnalyzer(store *fakeStore) *Analyzer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores := NewStoreService(store, testTelematicsConfig(), logger, nil)
	return NewAnalyzer(stores, testTelematicsConfig(), logger, nil)
}

func seedSeries(t *testing.T, store *fakeStore, b *fixtures.SeriesBuilder) {
	t.Helper()
	series := b.Build()
	require.NoError(t, store.SaveSeries(context.Background(), series.DriverID, series.Samples))
}

func TestParseIncidentTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"rfc3339", "2026-08-20T14:30:00Z", time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC), true},
		{"no zone", "2026-08-20T14:30:00", time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC), true},
		{"space separated", "2026-08-20 14:30:00", time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC), true},
		{"date only", "2026-08-20", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), true},
		{"garbage", "yesterday around noon", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIncidentTime(tt.raw)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestParseIncidentTimeFailuresCarryIndependentDetails(t *testing.T) {
	_, err1 := ParseIncidentTime("around noon")
	_, err2 := ParseIncidentTime("last tuesday")

	var app1, app2 *errors.AppError
	require.ErrorAs(t, err1, &app1)
	require.ErrorAs(t, err2, &app2)
	assert.Equal(t, "around noon", app1.Details["value"])
	assert.Equal(t, "last tuesday", app2.Details["value"])
	assert.Nil(t, errors.ErrUnparseableTime.Details)
}

func TestAnalyzeIncidentWindow(t *testing.T) {
	store := newFakeStore()
	// One sudden stop and one speeding sample inside a series of quiet
	// cruising, incident reported at the middle sample.
	builder := fixtures.NewSeriesBuilder(t).WithDriverID(501).
		AddCruising(2, 50).
		AddSample(85, 0.1). // speeding
		AddSample(55, 0.7). // sudden stop
		AddCruising(2, 50)
	seedSeries(t, store, builder)

	a := newTestAnalyzer(store)
	analysis := a.Analyze(context.Background(), 501, builder.MidTime())

	require.NoError(t, analysis.Err)
	require.NotNil(t, analysis.Stats)
	assert.Equal(t, 1, analysis.Stats.SuddenStopCount)
	assert.Equal(t, 1, analysis.Stats.SpeedingInstanceCount)
	assert.True(t, analysis.Stats.AnomaliesDetected)
	assert.False(t, analysis.TimeMismatch)
	require.NotNil(t, analysis.ClosestSample)
	assert.Empty(t, analysis.Warning)
}

func TestAnalyzeIncidentOutsideDataRange(t *testing.T) {
	store := newFakeStore()
	builder := fixtures.NewSeriesBuilder(t).WithDriverID(502).AddCruising(6, 50)
	seedSeries(t, store, builder)

	a := newTestAnalyzer(store)
	series := builder.Build()
	last := series.Samples[len(series.Samples)-1].Timestamp
	incident := last.Add(45 * time.Minute)

	analysis := a.Analyze(context.Background(), 502, incident)

	require.NoError(t, analysis.Err)
	assert.Nil(t, analysis.Stats)
	assert.True(t, analysis.TimeMismatch)
	assert.InDelta(t, 45.0, analysis.TimeMismatchMinutes, 1e-9)
	assert.NotEmpty(t, analysis.Warning)
	require.NotNil(t, analysis.ClosestSample)
	assert.True(t, analysis.ClosestSample.Timestamp.Equal(last))
}

func TestAnalyzeShortGapOutsideRange(t *testing.T) {
	store := newFakeStore()
	builder := fixtures.NewSeriesBuilder(t).WithDriverID(503).AddCruising(6, 50)
	seedSeries(t, store, builder)

	a := newTestAnalyzer(store)
	series := builder.Build()
	last := series.Samples[len(series.Samples)-1].Timestamp

	// 10 minutes past the data is within the mismatch tolerance.
	analysis := a.Analyze(context.Background(), 503, last.Add(10*time.Minute))

	require.NoError(t, analysis.Err)
	assert.False(t, analysis.TimeMismatch)
	assert.InDelta(t, 10.0, analysis.TimeMismatchMinutes, 1e-9)
}

func TestAnalyzeInsufficientWindow(t *testing.T) {
	store := newFakeStore()
	// Samples two hours apart: the one-hour window centered between two
	// samples holds nothing even though the incident is in range.
	builder := fixtures.NewSeriesBuilder(t).WithDriverID(504).
		WithInterval(2 * time.Hour).
		AddCruising(4, 50)
	seedSeries(t, store, builder)

	a := newTestAnalyzer(store)
	series := builder.Build()
	incident := series.Samples[1].Timestamp.Add(time.Hour)

	analysis := a.Analyze(context.Background(), 504, incident)

	require.NoError(t, analysis.Err)
	assert.Nil(t, analysis.Stats)
	assert.NotEmpty(t, analysis.Warning)
}

func TestAnalyzeSynthesizesForUnknownDriver(t *testing.T) {
	store := newFakeStore()
	a := newTestAnalyzer(store)

	// No seeded data: the store layer synthesizes a week of samples ending
	// near now, so a recent incident lands inside the series.
	analysis := a.Analyze(context.Background(), 77001, time.Now().UTC().Add(-2*time.Hour))

	require.NoError(t, analysis.Err)
	require.NotNil(t, analysis.Stats)
	assert.Equal(t, 1, store.saveCalls)
}

func TestCheckDrivingBehavior(t *testing.T) {
	t.Run("healthy analysis produces a real report", func(t *testing.T) {
		store := newFakeStore()
		builder := fixtures.NewSeriesBuilder(t).WithDriverID(12345).AddCruising(8, 50)
		seedSeries(t, store, builder)

		a := newTestAnalyzer(store)
		report := a.CheckDrivingBehavior(context.Background(), "U042XYZ", builder.MidTime())

		require.NotNil(t, report)
		assert.True(t, report.TelematicsAvailable)
		assert.EqualValues(t, 12345, report.DriverID)
		assert.True(t, report.WindowEvaluated)
		assert.False(t, report.HasIncidentIndicators)
		assert.GreaterOrEqual(t, report.RiskScore, 0.0)
		assert.LessOrEqual(t, report.RiskScore, 1.0)
		assert.True(t, report.ConsistentWithClaim)
		assert.Equal(t, []string{"none"}, report.RiskFactors)
	})

	t.Run("unevaluated window is labeled unknown", func(t *testing.T) {
		store := newFakeStore()
		builder := fixtures.NewSeriesBuilder(t).WithDriverID(12345).AddCruising(8, 50)
		seedSeries(t, store, builder)

		a := newTestAnalyzer(store)
		series := builder.Build()
		last := series.Samples[len(series.Samples)-1].Timestamp

		report := a.CheckDrivingBehavior(context.Background(), "12345", last.Add(45*time.Minute))

		require.NotNil(t, report)
		assert.True(t, report.TelematicsAvailable)
		assert.False(t, report.WindowEvaluated)
		assert.False(t, report.HasIncidentIndicators)
		assert.True(t, report.TimeMismatch)
		assert.Nil(t, report.Stats)
	})

	t.Run("store failure degrades to a labeled synthetic report", func(t *testing.T) {
		store := newFakeStore()
		store.failLoad = assert.AnError
		a := newTestAnalyzer(store)
		incident := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

		report := a.CheckDrivingBehavior(context.Background(), "600", incident)
		require.NotNil(t, report)
		assert.False(t, report.TelematicsAvailable)
		assert.NotEmpty(t, report.Warning)
		assert.NotEmpty(t, report.Err)
		assert.GreaterOrEqual(t, report.RiskScore, 0.2)
		assert.LessOrEqual(t, report.RiskScore, 0.6)

		// Same claim, same synthetic summary.
		again := a.CheckDrivingBehavior(context.Background(), "600", incident)
		assert.Equal(t, report.RiskScore, again.RiskScore)
	})
}
