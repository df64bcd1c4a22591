package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
)

// TelemetryStore persists per-driver driving sample series. Records are
// append-only, keyed (driver_id, timestamp); nothing outside this package
// mutates them. This is the only persisted state the engine owns.
type TelemetryStore interface {
	Init(ctx context.Context) error
	Close() error
	// LoadSeries returns the ordered series for a driver; an empty series
	// means no telemetry has been recorded.
	LoadSeries(ctx context.Context, driverID int64) (*telematics.DriverSeries, error)
	// SaveSeries appends samples for a driver. Existing (driver_id, ts)
	// keys are left untouched so repeated writes stay idempotent.
	SaveSeries(ctx context.Context, driverID int64, samples []telematics.DrivingSample) error
	// HasSeries reports whether any samples exist for the driver
	HasSeries(ctx context.Context, driverID int64) (bool, error)
}

// NewStore builds the configured store backend
func NewStore(cfg config.StorageConfig) (TelemetryStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseStore) hasSeries(ctx context.Context, driverID int64, query string) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx, query, driverID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *baseStore) loadSeries(ctx context.Context, driverID int64, query string) (*telematics.DriverSeries, error) {
	rows, err := b.db.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := &telematics.DriverSeries{DriverID: driverID}
	for rows.Next() {
		var s telematics.DrivingSample
		if err := rows.Scan(
			&s.Timestamp, &s.Speed, &s.RPM, &s.Throttle, &s.BrakingIntensity,
			&s.SteeringAngle, &s.LateralAccel, &s.FuelLevel, &s.EngineTemp,
		); err != nil {
			return nil, err
		}
		series.Samples = append(series.Samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return series, nil
}
