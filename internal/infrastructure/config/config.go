package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Telematics TelematicsConfig `koanf:"telematics"`
	Risk       RiskConfig       `koanf:"risk"`
	Fraud      FraudConfig      `koanf:"fraud"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type StorageConfig struct {
	// Driver selects the telemetry store backend: "sqlite" or "postgres".
	Driver       string        `koanf:"driver"`
	DSN          string        `koanf:"dsn"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	ConnLifetime time.Duration `koanf:"conn_lifetime"`
}

type TelematicsConfig struct {
	// Incident window analysis
	WindowHalfWidth   time.Duration `koanf:"window_half_width"`
	SuddenStopBraking float64       `koanf:"sudden_stop_braking"`
	SpeedingThreshold float64       `koanf:"speeding_threshold"`
	TimeMismatchLimit time.Duration `koanf:"time_mismatch_limit"`

	// Behavior feature thresholds
	HighJerkThreshold    float64 `koanf:"high_jerk_threshold"`
	RapidAccelThreshold  float64 `koanf:"rapid_accel_threshold"`
	HarshBrakeThreshold  float64 `koanf:"harsh_brake_threshold"`
	FeatureSpeedingLimit float64 `koanf:"feature_speeding_limit"`
	EngineStressRatio    float64 `koanf:"engine_stress_ratio"`

	// Synthetic series fallback
	SynthDays       int           `koanf:"synth_days"`
	SynthResolution time.Duration `koanf:"synth_resolution"`
	DefaultDriverID int64         `koanf:"default_driver_id"`
}

type RiskConfig struct {
	MediumThreshold float64     `koanf:"medium_threshold"`
	HighThreshold   float64     `koanf:"high_threshold"`
	Weights         RiskWeights `koanf:"weights"`
}

// RiskWeights are the behavior-metric contributions to the risk score.
// OverallScore is negative: a high driving score reduces computed risk.
type RiskWeights struct {
	HarshBraking float64 `koanf:"harsh_braking"`
	RapidAccel   float64 `koanf:"rapid_accel"`
	Speeding     float64 `koanf:"speeding"`
	HighJerk     float64 `koanf:"high_jerk"`
	EngineStress float64 `koanf:"engine_stress"`
	OverallScore float64 `koanf:"overall_score"`
}

type FraudConfig struct {
	BaselineProbability float64 `koanf:"baseline_probability"`

	// Damage consistency: expected cost range is part count times
	// [PartCostMin, PartCostMax], flagged outside the multiplier band.
	PartCostMin        float64 `koanf:"part_cost_min"`
	PartCostMax        float64 `koanf:"part_cost_max"`
	CostLowMultiplier  float64 `koanf:"cost_low_multiplier"`
	CostHighMultiplier float64 `koanf:"cost_high_multiplier"`

	// Probability increments
	DamageIncrement       float64 `koanf:"damage_increment"`
	NoIncidentIncrement   float64 `koanf:"no_incident_increment"`
	MismatchIncrement     float64 `koanf:"mismatch_increment"`
	RecentClaimsIncrement float64 `koanf:"recent_claims_increment"`
	PatternIncrement      float64 `koanf:"pattern_increment"`

	// History pattern thresholds
	RecentClaimWindowDays int `koanf:"recent_claim_window_days"`
	RecentClaimCount      int `koanf:"recent_claim_count"`
	SharedPartMinimum     int `koanf:"shared_part_minimum"`
	PatternEntryCount     int `koanf:"pattern_entry_count"`

	// Rating thresholds
	MediumRating float64 `koanf:"medium_rating"`
	HighRating   float64 `koanf:"high_rating"`

	// Optional statistical classifier
	ModelPath   string  `koanf:"model_path"`
	RuleWeight  float64 `koanf:"rule_weight"`
	ModelWeight float64 `koanf:"model_weight"`
}

// Load builds configuration from defaults, an optional YAML file, and
// CLAIMS_-prefixed environment variables, in that precedence order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := k.Load(file.Provider("configs/config.yaml"), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading configs/config.yaml: %w", err)
		}
	}

	if err := k.Load(env.Provider("CLAIMS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CLAIMS_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Driver:       "sqlite",
			DSN:          "file:data/telematics.db?_pragma=busy_timeout(5000)",
			MaxOpenConns: 10,
			ConnLifetime: 5 * time.Minute,
		},
		Telematics: TelematicsConfig{
			WindowHalfWidth:      30 * time.Minute,
			SuddenStopBraking:    0.6,
			SpeedingThreshold:    70,
			TimeMismatchLimit:    30 * time.Minute,
			HighJerkThreshold:    2.0,
			RapidAccelThreshold:  3.0,
			HarshBrakeThreshold:  -3.0,
			FeatureSpeedingLimit: 75,
			EngineStressRatio:    100,
			SynthDays:            7,
			SynthResolution:      10 * time.Minute,
			DefaultDriverID:      12345,
		},
		Risk: RiskConfig{
			MediumThreshold: 0.5,
			HighThreshold:   0.75,
			Weights: RiskWeights{
				HarshBraking: 0.20,
				RapidAccel:   0.15,
				Speeding:     0.30,
				HighJerk:     0.10,
				EngineStress: 0.05,
				OverallScore: -0.20,
			},
		},
		Fraud: FraudConfig{
			BaselineProbability:   0.05,
			PartCostMin:           400,
			PartCostMax:           1200,
			CostLowMultiplier:     0.5,
			CostHighMultiplier:    1.5,
			DamageIncrement:       0.20,
			NoIncidentIncrement:   0.40,
			MismatchIncrement:     0.25,
			RecentClaimsIncrement: 0.20,
			PatternIncrement:      0.15,
			RecentClaimWindowDays: 365,
			RecentClaimCount:      3,
			SharedPartMinimum:     2,
			PatternEntryCount:     2,
			MediumRating:          0.4,
			HighRating:            0.7,
			RuleWeight:            0.6,
			ModelWeight:           0.4,
		},
	}
}

// Validate enforces construction-time invariants and fails fast
func (c *Config) Validate() error {
	if c.Risk.MediumThreshold < 0 || c.Risk.MediumThreshold > c.Risk.HighThreshold || c.Risk.HighThreshold > 1 {
		return fmt.Errorf("risk thresholds must satisfy 0 <= medium (%v) <= high (%v) <= 1",
			c.Risk.MediumThreshold, c.Risk.HighThreshold)
	}
	w := c.Risk.Weights
	// The negative overall-score weight offsets the positive metric weights.
	sum := w.HarshBraking + w.RapidAccel + w.Speeding + w.HighJerk + w.EngineStress - w.OverallScore
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("risk weight magnitudes must sum to 1.0, got %v", sum)
	}
	if c.Fraud.MediumRating < 0 || c.Fraud.MediumRating > c.Fraud.HighRating || c.Fraud.HighRating > 1 {
		return fmt.Errorf("fraud rating thresholds must satisfy 0 <= medium (%v) <= high (%v) <= 1",
			c.Fraud.MediumRating, c.Fraud.HighRating)
	}
	if math.Abs(c.Fraud.RuleWeight+c.Fraud.ModelWeight-1.0) > 1e-9 {
		return fmt.Errorf("classifier blend weights must sum to 1.0")
	}
	if c.Fraud.PartCostMin <= 0 || c.Fraud.PartCostMax < c.Fraud.PartCostMin {
		return fmt.Errorf("per-part cost bounds must satisfy 0 < min (%v) <= max (%v)",
			c.Fraud.PartCostMin, c.Fraud.PartCostMax)
	}
	if c.Telematics.WindowHalfWidth <= 0 {
		return fmt.Errorf("incident window half-width must be positive")
	}
	if c.Telematics.SynthDays <= 0 || c.Telematics.SynthResolution <= 0 {
		return fmt.Errorf("synthetic series span and resolution must be positive")
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	return nil
}
