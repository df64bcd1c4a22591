package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
)

type postgresStore struct {
	baseStore
}

// NewPostgres is the shared-database variant for deployments where the
// telemetry feed already lands in postgres.
func NewPostgres(cfg config.StorageConfig) (TelemetryStore, error) {
	dsn := cfg.DSN
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/claims?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnLifetime)
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS driving_samples (
			driver_id BIGINT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			speed DOUBLE PRECISION NOT NULL,
			rpm DOUBLE PRECISION NOT NULL,
			throttle DOUBLE PRECISION NOT NULL,
			braking DOUBLE PRECISION NOT NULL,
			steering DOUBLE PRECISION NOT NULL,
			lateral_accel DOUBLE PRECISION NOT NULL,
			fuel_level DOUBLE PRECISION NOT NULL,
			engine_temp DOUBLE PRECISION NOT NULL,
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

func (s *postgresStore) LoadSeries(ctx context.Context, driverID int64) (*telematics.DriverSeries, error) {
	return s.loadSeries(ctx, driverID,
		`SELECT ts, speed, rpm, throttle, braking, steering, lateral_accel, fuel_level, engine_temp
		FROM driving_samples WHERE driver_id = $1 ORDER BY ts`)
}

func (s *postgresStore) SaveSeries(ctx context.Context, driverID int64, samples []telematics.DrivingSample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO driving_samples (driver_id, ts, speed, rpm, throttle, braking, steering, lateral_accel, fuel_level, engine_temp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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

func (s *postgresStore) HasSeries(ctx context.Context, driverID int64) (bool, error) {
	return s.hasSeries(ctx, driverID,
		`SELECT 1 FROM driving_samples WHERE driver_id = $1 LIMIT 1`)
}
