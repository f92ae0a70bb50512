package config

import (
	"fmt"
	"strings"
	"time"

	"TagDock/internal/drone"
	"TagDock/internal/drone/pathing"
	errs "TagDock/internal/errors"
	"TagDock/internal/maneuver"
	"TagDock/internal/state"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the complete process configuration. Every field has a compiled-in
// default; a config file and TAGDOCK_* environment variables only override.
type Config struct {
	Control ControlConfig `mapstructure:"control"`
	MAVLink MAVLinkConfig `mapstructure:"mavlink"`
	Logging LoggingConfig `mapstructure:"logging"`
	State   StateConfig   `mapstructure:"state"`
}

// ControlConfig holds the maneuver rates, speeds and timings.
type ControlConfig struct {
	// RateHz is the setpoint streaming rate inside a leg
	RateHz float64 `mapstructure:"rate_hz"`
	// SearchSpeed is the speed along search legs in m/s
	SearchSpeed float64 `mapstructure:"search_speed"`
	// Pattern selects the search pattern: "lawnmower" or "cone"
	Pattern string `mapstructure:"pattern"`
	// LateralScale is the forward spacing between lawnmower passes in meters
	LateralScale float64       `mapstructure:"lateral_scale"`
	LegPause     time.Duration `mapstructure:"leg_pause"`
	OffboardPoll time.Duration `mapstructure:"offboard_poll"`
	PreDockPause time.Duration `mapstructure:"pre_dock_pause"`
	SettlePause  time.Duration `mapstructure:"settle_pause"`
	SettlePulses int           `mapstructure:"settle_pulses"`
	HoldPeriod   time.Duration `mapstructure:"hold_period"`
	// YawGain scales the docking heading correction (0 disables it)
	YawGain float64 `mapstructure:"yaw_gain"`
}

// MAVLinkConfig controls the flight-controller bridge.
type MAVLinkConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Address is a UDP host:port the autopilot streams to
	Address         string        `mapstructure:"address"`
	SystemID        uint8         `mapstructure:"system_id"`
	TargetSystem    uint8         `mapstructure:"target_system"`
	TargetComponent uint8         `mapstructure:"target_component"`
	PublishRateHz   float64       `mapstructure:"publish_rate_hz"`
	Altitude        float64       `mapstructure:"altitude"`
	AckTimeout      time.Duration `mapstructure:"ack_timeout"`
	AckAttempts     int           `mapstructure:"ack_attempts"`
	// CaptureInitialPose records /x_init, /y_init and /yaw_init from the
	// vehicle when offboard is first entered
	CaptureInitialPose bool `mapstructure:"capture_initial_pose"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// StateConfig pre-seeds the in-process command channel. Keys are channel
// parameter names such as "/x_init".
type StateConfig struct {
	Seed map[string]float64 `mapstructure:"seed"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	search := maneuver.DefaultSearchConfig()
	sup := maneuver.DefaultSupervisorConfig()
	return Config{
		Control: ControlConfig{
			RateHz:       pathing.DefaultRate,
			SearchSpeed:  search.Speed,
			Pattern:      drone.PatternLawnmower,
			LateralScale: drone.DefaultLateralScale,
			LegPause:     search.LegPause,
			OffboardPoll: sup.OffboardPoll,
			PreDockPause: sup.PreDockPause,
			SettlePause:  sup.SettlePause,
			SettlePulses: sup.SettlePulses,
			HoldPeriod:   sup.HoldPeriod,
			YawGain:      0,
		},
		MAVLink: MAVLinkConfig{
			Enabled:         true,
			Address:         "0.0.0.0:14550",
			SystemID:        10,
			TargetSystem:    1,
			TargetComponent: 1,
			PublishRateHz:   20,
			Altitude:        1.5,
			AckTimeout:      5 * time.Second,
			AckAttempts:     5,

			CaptureInitialPose: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("control.rate_hz", d.Control.RateHz)
	v.SetDefault("control.search_speed", d.Control.SearchSpeed)
	v.SetDefault("control.pattern", d.Control.Pattern)
	v.SetDefault("control.lateral_scale", d.Control.LateralScale)
	v.SetDefault("control.leg_pause", d.Control.LegPause)
	v.SetDefault("control.offboard_poll", d.Control.OffboardPoll)
	v.SetDefault("control.pre_dock_pause", d.Control.PreDockPause)
	v.SetDefault("control.settle_pause", d.Control.SettlePause)
	v.SetDefault("control.settle_pulses", d.Control.SettlePulses)
	v.SetDefault("control.hold_period", d.Control.HoldPeriod)
	v.SetDefault("control.yaw_gain", d.Control.YawGain)

	v.SetDefault("mavlink.enabled", d.MAVLink.Enabled)
	v.SetDefault("mavlink.address", d.MAVLink.Address)
	v.SetDefault("mavlink.system_id", d.MAVLink.SystemID)
	v.SetDefault("mavlink.target_system", d.MAVLink.TargetSystem)
	v.SetDefault("mavlink.target_component", d.MAVLink.TargetComponent)
	v.SetDefault("mavlink.publish_rate_hz", d.MAVLink.PublishRateHz)
	v.SetDefault("mavlink.altitude", d.MAVLink.Altitude)
	v.SetDefault("mavlink.ack_timeout", d.MAVLink.AckTimeout)
	v.SetDefault("mavlink.ack_attempts", d.MAVLink.AckAttempts)
	v.SetDefault("mavlink.capture_initial_pose", d.MAVLink.CaptureInitialPose)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
}

// Load builds the configuration from defaults, an optional file at path,
// TAGDOCK_* environment variables and any flags bound in flags.
func Load(path string, flags map[string]*pflag.Flag) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("TAGDOCK")
	// TAGDOCK_CONTROL_SEARCH_SPEED for control.search_speed
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the maneuver cannot run with.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", errs.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	ctl := c.Control
	switch {
	case ctl.RateHz <= 0:
		return invalid("control.rate_hz must be positive, got %v", ctl.RateHz)
	case ctl.SearchSpeed <= 0:
		return invalid("control.search_speed must be positive, got %v", ctl.SearchSpeed)
	case ctl.SettlePulses < 0:
		return invalid("control.settle_pulses must not be negative, got %d", ctl.SettlePulses)
	case ctl.HoldPeriod <= 0:
		return invalid("control.hold_period must be positive, got %v", ctl.HoldPeriod)
	case ctl.OffboardPoll <= 0:
		return invalid("control.offboard_poll must be positive, got %v", ctl.OffboardPoll)
	}
	if _, err := drone.PatternByName(ctl.Pattern, ctl.LateralScale); err != nil {
		return invalid("control.pattern: %v", err)
	}

	if c.MAVLink.Enabled {
		switch {
		case c.MAVLink.Address == "":
			return invalid("mavlink.address is required when mavlink is enabled")
		case c.MAVLink.PublishRateHz <= 0:
			return invalid("mavlink.publish_rate_hz must be positive, got %v", c.MAVLink.PublishRateHz)
		case c.MAVLink.AckAttempts <= 0:
			return invalid("mavlink.ack_attempts must be positive, got %d", c.MAVLink.AckAttempts)
		}
	}
	return nil
}

// SearchConfig converts the control section for the search controller.
func (c Config) SearchConfig() (maneuver.SearchConfig, error) {
	pattern, err := drone.PatternByName(c.Control.Pattern, c.Control.LateralScale)
	if err != nil {
		return maneuver.SearchConfig{}, err
	}
	return maneuver.SearchConfig{
		Pattern:  pattern,
		Speed:    c.Control.SearchSpeed,
		LegPause: c.Control.LegPause,
	}, nil
}

func (c Config) SupervisorConfig() maneuver.SupervisorConfig {
	return maneuver.SupervisorConfig{
		OffboardPoll: c.Control.OffboardPoll,
		PreDockPause: c.Control.PreDockPause,
		SettlePause:  c.Control.SettlePause,
		SettlePulses: c.Control.SettlePulses,
		HoldPeriod:   c.Control.HoldPeriod,
	}
}

func (c Config) BridgeConfig() drone.BridgeConfig {
	return drone.BridgeConfig{
		TargetSystem:    c.MAVLink.TargetSystem,
		TargetComponent: c.MAVLink.TargetComponent,
		PublishRate:     c.MAVLink.PublishRateHz,
		Altitude:        c.MAVLink.Altitude,
		AckTimeout:      c.MAVLink.AckTimeout,
		AckAttempts:     c.MAVLink.AckAttempts,

		CaptureInitialPose: c.MAVLink.CaptureInitialPose,
	}
}

// Seed converts the configured seed into channel keys.
func (c Config) Seed() map[state.Key]float64 {
	out := make(map[state.Key]float64, len(c.State.Seed))
	for k, v := range c.State.Seed {
		out[state.Key(k)] = v
	}
	return out
}
