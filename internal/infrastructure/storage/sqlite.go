package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/verimotive/claims-engine/internal/domain/telematics"
)

type sqliteStore struct {
	baseStore
}

// NewSQLite opens a local database file; the default lives under data/.
// This keeps the store a local file read for the core, no network involved.
func NewSQLite(dsn string) (TelemetryStore, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:data/telematics.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS driving_samples (
			driver_id INTEGER NOT NULL,
			ts TIMESTAMP NOT NULL,
			speed REAL NOT NULL,
			rpm REAL NOT NULL,
			throttle REAL NOT NULL,
			braking REAL NOT NULL,
			steering REAL NOT NULL,
			lateral_accel REAL NOT NULL,
			fuel_level REAL NOT NULL,
			engine_temp REAL NOT NULL,
			PRIMARY KEY (driver_id, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_driver_ts ON driving_samples(driver_id, ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) LoadSeries(ctx context.Context, driverID int64) (*telematics.DriverSeries, error) {
	return s.loadSeries(ctx, driverID,
		`SELECT ts, speed, rpm, throttle, braking, steering, lateral_accel, fuel_level, engine_temp
		FROM driving_samples WHERE driver_id = ? ORDER BY ts`)
}

func (s *sqliteStore) SaveSeries(ctx context.Context, driverID int64, samples []telematics.DrivingSample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO driving_samples (driver_id, ts, speed, rpm, throttle, braking, steering, lateral_accel, fuel_level, engine_temp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (driver_id, ts) DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx,
			driverID,
			sample.Timestamp.UTC(),
			sample.Speed,
			sample.RPM,
			sample.Throttle,
			sample.BrakingIntensity,
			sample.SteeringAngle,
			sample.LateralAccel,
			sample.FuelLevel,
			sample.EngineTemp,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) HasSeries(ctx context.Context, driverID int64) (bool, error) {
	return s.hasSeries(ctx, driverID,
		`SELECT 1 FROM driving_samples WHERE driver_id = ? LIMIT 1`)
}
