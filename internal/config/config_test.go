package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "v1", cfg.Analytics.StageWeightsVersion)
	assert.Equal(t, 10, cfg.Analytics.TopN)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTLDuration())
	assert.Equal(t, "0 */5 * * * *", cfg.Jobs.CacheWarmSchedule)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"/health", "/health/db", "/health/ready"}, cfg.RateLimit.WhitelistPaths)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ANALYTICS_TIMEZONE", "Europe/Paris")
	t.Setenv("ANALYTICS_TOPN", "5")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Analytics.TopN)
	assert.True(t, cfg.Redis.Enabled)
	loc, err := cfg.Analytics.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"unknown weight table", func(c *config.Config) { c.Analytics.StageWeightsVersion = "v9" }, "stage_weights.version"},
		{"unknown timezone", func(c *config.Config) { c.Analytics.Timezone = "Mars/Olympus" }, "analytics.timezone"},
		{"non positive top n", func(c *config.Config) { c.Analytics.TopN = 0 }, "analytics.topN"},
		{"unknown storage mode", func(c *config.Config) { c.Storage.Mode = "ftp" }, "storage.mode"},
		{"redis without url", func(c *config.Config) { c.Redis.Enabled = true; c.Redis.URL = "" }, "redis.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			assert.ErrorIs(t, err, analytics.ErrConfiguration)
			var cfgErr *analytics.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
