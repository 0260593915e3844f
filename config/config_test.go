package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	v, err := LoadConfig()
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Brokers)
	assert.InDelta(t, 0.4, cfg.Report.Popularity.Registrations, 1e-9)
	assert.InDelta(t, 0.2, cfg.Report.Popularity.AverageRating, 1e-9)
	assert.True(t, cfg.Feedback.RequireAttendance)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_DATABASE_DRIVER", "memory")
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_FEEDBACK_REQUIRE_ATTENDANCE", "false")

	v, err := LoadConfig()
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Feedback.RequireAttendance)
	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddress())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverMemory},
			Broker:   BrokerConfig{Driver: BrokerNone},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown database driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "unknown broker", mutate: func(c *Config) { c.Broker.Driver = "nats" }, wantErr: true},
		{name: "auth without secret", mutate: func(c *Config) { c.Auth.Enabled = true }, wantErr: true},
		{name: "auth with secret", mutate: func(c *Config) { c.Auth.Enabled = true; c.Auth.Secret = "s3cret" }},
		{name: "negative weight", mutate: func(c *Config) { c.Report.Popularity.AverageRating = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
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
