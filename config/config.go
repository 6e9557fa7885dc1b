// Package config loads runtime settings from a YAML file, environment
// variables (ROBOTMASTERS_*) and built-in defaults, in that order of
// precedence after explicit flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Sim     SimConfig     `mapstructure:"sim"`
	Window  WindowConfig  `mapstructure:"window"`
	Prefabs PrefabsConfig `mapstructure:"prefabs"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Audio   AudioConfig   `mapstructure:"audio"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type SimConfig struct {
	TickRate int     `mapstructure:"tick_rate"`
	Substeps int     `mapstructure:"substeps"`
	Gravity  float64 `mapstructure:"gravity"`
	Seed     uint64  `mapstructure:"seed"`
	Level    string  `mapstructure:"level"`
	Boss     string  `mapstructure:"boss"` // overrides the level's boss placements
}

// Delta is the fixed step length in seconds.
func (s SimConfig) Delta() float64 {
	if s.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / float64(s.TickRate)
}

type WindowConfig struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	Scale  float64 `mapstructure:"scale"`
	Title  string  `mapstructure:"title"`
	Debug  bool    `mapstructure:"debug"`
}

type PrefabsConfig struct {
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

type LedgerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AudioConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Volume     float64 `mapstructure:"volume"`
	SampleRate int     `mapstructure:"sample_rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("sim.tick_rate", 60)
	v.SetDefault("sim.substeps", 2)
	v.SetDefault("sim.gravity", 900.0)
	v.SetDefault("sim.seed", 1)
	v.SetDefault("sim.level", "arena")
	v.SetDefault("sim.boss", "")
	v.SetDefault("window.width", 384)
	v.SetDefault("window.height", 224)
	v.SetDefault("window.scale", 3.0)
	v.SetDefault("window.title", "robotmasters")
	v.SetDefault("window.debug", false)
	v.SetDefault("prefabs.dir", "prefabs")
	v.SetDefault("prefabs.watch", false)
	v.SetDefault("ledger.enabled", false)
	v.SetDefault("ledger.addr", "localhost:6379")
	v.SetDefault("ledger.db", 0)
	v.SetDefault("ledger.prefix", "robotmasters")
	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.5)
	v.SetDefault("audio.sample_rate", 44100)
}

// New returns a viper instance with defaults and environment binding
// applied, for callers that want to bind flags before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("robotmasters")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads path (if non-empty) over the defaults.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates v.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var ErrInvalid = errors.New("config: invalid")

func (c *Config) Validate() error {
	var errs []error
	if c.Sim.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: sim.tick_rate must be positive, got %d", ErrInvalid, c.Sim.TickRate))
	}
	if c.Sim.Substeps <= 0 {
		errs = append(errs, fmt.Errorf("%w: sim.substeps must be positive, got %d", ErrInvalid, c.Sim.Substeps))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("%w: audio.volume must be within [0, 1], got %g", ErrInvalid, c.Audio.Volume))
	}
	if c.Ledger.Enabled && c.Ledger.Addr == "" {
		errs = append(errs, fmt.Errorf("%w: ledger.addr is required when the ledger is enabled", ErrInvalid))
	}
	return errors.Join(errs...)
}
