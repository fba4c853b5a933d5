package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 480, cfg.Engine.OvertimeThresholdMinutes)
	assert.Equal(t, 960, cfg.Engine.MaxShiftMinutes)
	assert.Equal(t, 120, cfg.Engine.MaxBreakMinutes)
	assert.Equal(t, 2*time.Second, cfg.Engine.GeofenceLookupTimeout)
	assert.Equal(t, 15*time.Second, cfg.Engine.StatusFreshnessBound)
	assert.Equal(t, "reject", cfg.Engine.LocationMissingPolicy)
	assert.Equal(t, "exclude", cfg.Engine.RejectedPunchPolicy)
	assert.False(t, cfg.UsesRedis())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STATUS_CACHE_TTL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "STATUS_CACHE_TTL")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWT: JWTConfig{Secret: "s"},
			Engine: EngineConfig{
				StoreType:                "memory",
				LockType:                 "memory",
				CacheType:                "memory",
				LocationMissingPolicy:    "reject",
				RejectedPunchPolicy:      "exclude",
				DefaultTimezone:          "UTC",
				OvertimeThresholdMinutes: 480,
				MaxShiftMinutes:          960,
				MaxBreakMinutes:          120,
				PunchRateLimit:           10,
				PunchRateWindow:          time.Minute,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"postgres without password", func(c *Config) { c.Engine.StoreType = "postgres" }, true},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"unknown lock type", func(c *Config) { c.Engine.LockType = "etcd" }, true},
		{"unknown location policy", func(c *Config) { c.Engine.LocationMissingPolicy = "ignore" }, true},
		{"bad timezone", func(c *Config) { c.Engine.DefaultTimezone = "Mars/Olympus" }, true},
		{"redis lock", func(c *Config) { c.Engine.LockType = "redis" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngineConfig_DefaultPolicy(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("LOCATION_MISSING_POLICY", "flag")
	t.Setenv("DEFAULT_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	require.NoError(t, err)

	policy := cfg.Engine.DefaultPolicy()
	assert.Equal(t, "Asia/Jakarta", policy.Timezone)
	assert.Equal(t, 480, policy.OvertimeThresholdMinutes)
	assert.EqualValues(t, "flag", policy.LocationMissingPolicy)
	assert.EqualValues(t, "exclude", policy.RejectedPunchPolicy)
}
