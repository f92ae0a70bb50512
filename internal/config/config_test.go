package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"TagDock/internal/drone"
	errs "TagDock/internal/errors"
	"TagDock/internal/state"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, 10.0, cfg.Control.RateHz)
	assert.Equal(t, 0.1, cfg.Control.SearchSpeed)
	assert.Equal(t, 0.6, cfg.Control.LateralScale)
	assert.Equal(t, 2*time.Second, cfg.Control.LegPause)
	assert.Equal(t, 300*time.Millisecond, cfg.Control.HoldPeriod)
	assert.Equal(t, 2, cfg.Control.SettlePulses)
	assert.Zero(t, cfg.Control.YawGain)
	assert.True(t, cfg.MAVLink.CaptureInitialPose)
	assert.True(t, cfg.BridgeConfig().CaptureInitialPose)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagdock.yaml")
	contents := `
control:
  pattern: cone
  settle_pause: 1500ms
  yaw_gain: 0.5
mavlink:
  enabled: false
state:
  seed:
    /x_init: 1.25
    /offboard: 0
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, drone.PatternCone, cfg.Control.Pattern)
	assert.Equal(t, 1500*time.Millisecond, cfg.Control.SettlePause)
	assert.Equal(t, 0.5, cfg.Control.YawGain)
	assert.False(t, cfg.MAVLink.Enabled)
	assert.Equal(t, map[state.Key]float64{
		state.KeyInitialX:      1.25,
		state.KeyOffboardReady: 0,
	}, cfg.Seed())

	search, err := cfg.SearchConfig()
	require.NoError(t, err)
	assert.Equal(t, drone.PatternCone, search.Pattern.Name())
	assert.Equal(t, 1500*time.Millisecond, cfg.SupervisorConfig().SettlePause)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TAGDOCK_CONTROL_SEARCH_SPEED", "0.25")
	t.Setenv("TAGDOCK_CONTROL_HOLD_PERIOD", "1s")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Control.SearchSpeed)
	assert.Equal(t, time.Second, cfg.Control.HoldPeriod)
}

func TestLoadFlagOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("mavlink-address", "", "")
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse([]string{"--mavlink-address=127.0.0.1:14551", "--log-level=debug"}))

	cfg, err := Load("", map[string]*pflag.Flag{
		"mavlink.address": fs.Lookup("mavlink-address"),
		"logging.level":   fs.Lookup("log-level"),
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:14551", cfg.MAVLink.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero speed", func(c *Config) { c.Control.SearchSpeed = 0 }},
		{"negative rate", func(c *Config) { c.Control.RateHz = -1 }},
		{"negative pulses", func(c *Config) { c.Control.SettlePulses = -1 }},
		{"zero hold", func(c *Config) { c.Control.HoldPeriod = 0 }},
		{"zero poll", func(c *Config) { c.Control.OffboardPoll = 0 }},
		{"unknown pattern", func(c *Config) { c.Control.Pattern = "spiral" }},
		{"no mavlink address", func(c *Config) { c.MAVLink.Address = "" }},
		{"no ack attempts", func(c *Config) { c.MAVLink.AckAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
		})
	}

	t.Run("mavlink settings ignored when disabled", func(t *testing.T) {
		cfg := Default()
		cfg.MAVLink.Enabled = false
		cfg.MAVLink.Address = ""
		assert.NoError(t, cfg.Validate())
	})
}
