package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "simple", cfg.Logger.Format)
	assert.Equal(t, "methodology.yaml", cfg.Persistence.MethodologyPath)
	assert.Equal(t, "agency.yaml", cfg.Persistence.AgencyPath)
	require.NotNil(t, cfg.Metrics.Enabled)
	assert.True(t, *cfg.Metrics.Enabled)
}

func TestConfig_SetDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := &Config{Persistence: PersistenceConfig{MethodologyPath: "custom.yaml"}}
	cfg.SetDefaults()

	assert.Equal(t, "custom.yaml", cfg.Persistence.MethodologyPath)
	assert.Equal(t, "agency.yaml", cfg.Persistence.AgencyPath)
}

func TestConfig_Validate_RequiresPersistencePaths(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())

	cfg.Persistence.MethodologyPath = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_MetricsEnabled_DefaultsTrueWhenUnset(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.MetricsEnabled())

	disabled := false
	cfg.Metrics.Enabled = &disabled
	assert.False(t, cfg.MetricsEnabled())
}

func TestLoggerConfig_Validate_RejectsUnknownLevel(t *testing.T) {
	c := LoggerConfig{Level: "trace"}
	assert.Error(t, c.Validate())

	c.Level = "warning"
	assert.NoError(t, c.Validate())
}
