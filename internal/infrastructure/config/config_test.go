package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Telematics.WindowHalfWidth)
	assert.EqualValues(t, 12345, cfg.Telematics.DefaultDriverID)
	assert.InDelta(t, 0.05, cfg.Fraud.BaselineProbability, 1e-9)
	assert.InDelta(t, 0.5, cfg.Risk.MediumThreshold, 1e-9)
	assert.InDelta(t, 0.75, cfg.Risk.HighThreshold, 1e-9)
}

func TestLoadYAMLFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
telematics:
  default_driver_id: 777
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.EqualValues(t, 777, cfg.Telematics.DefaultDriverID)
	// Untouched keys keep their defaults.
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("CLAIMS_SERVER_PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted risk thresholds", func(c *Config) {
			c.Risk.MediumThreshold = 0.9
			c.Risk.HighThreshold = 0.5
		}},
		{"risk threshold above one", func(c *Config) {
			c.Risk.HighThreshold = 1.5
		}},
		{"risk weights not summing to one", func(c *Config) {
			c.Risk.Weights.Speeding = 0.9
		}},
		{"inverted fraud ratings", func(c *Config) {
			c.Fraud.MediumRating = 0.8
			c.Fraud.HighRating = 0.4
		}},
		{"blend weights not summing to one", func(c *Config) {
			c.Fraud.RuleWeight = 0.8
			c.Fraud.ModelWeight = 0.8
		}},
		{"non-positive part cost", func(c *Config) {
			c.Fraud.PartCostMin = 0
		}},
		{"inverted part cost bounds", func(c *Config) {
			c.Fraud.PartCostMin = 2000
			c.Fraud.PartCostMax = 1200
		}},
		{"zero window half-width", func(c *Config) {
			c.Telematics.WindowHalfWidth = 0
		}},
		{"zero synthesis span", func(c *Config) {
			c.Telematics.SynthDays = 0
		}},
		{"unknown storage driver", func(c *Config) {
			c.Storage.Driver = "cassandra"
		}},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
