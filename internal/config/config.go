// Package config loads and validates the ratnav configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes as a string ("5m", "30s").
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// ShipConfig describes the ship the jump calculation assumes.
type ShipConfig struct {
	Name string `yaml:"name"`
	// Realistic jump range with cargo and fuel, in light years.
	LadenJumpRangeLY float64 `yaml:"laden_jump_range_ly"`
}

// Config holds all settings. Validate runs at load time; downstream code
// treats the values as already-validated constants.
type Config struct {
	// Announcer is the chat identity dispatch lines are accepted from.
	Announcer string `yaml:"announcer"`
	// SignalKeyword marks a dispatch line.
	SignalKeyword string `yaml:"signal_keyword"`
	// Commander is the local pilot name, for display only.
	Commander string `yaml:"commander"`
	// HomeSystem is the default origin when none is supplied.
	HomeSystem string `yaml:"home_system"`

	Ship ShipConfig `yaml:"ship"`

	CacheTTL      Duration `yaml:"cache_ttl"`
	LookupTimeout Duration `yaml:"lookup_timeout"`

	NeutronThresholdLY    float64 `yaml:"neutron_threshold_ly"`
	WhiteDwarfThresholdLY float64 `yaml:"white_dwarf_threshold_ly"`

	// ResultFormat supports {jumps} {distance} {route} {system} {from} {to}.
	ResultFormat string `yaml:"result_format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Announcer:     "MechaSqueak[BOT]",
		SignalKeyword: "RATSIGNAL",
		HomeSystem:    "Fuelum",
		Ship: ShipConfig{
			Name:             "Asp Explorer",
			LadenJumpRangeLY: 35.0,
		},
		CacheTTL:              Duration(5 * time.Minute),
		LookupTimeout:         Duration(30 * time.Second),
		NeutronThresholdLY:    500.0,
		WhiteDwarfThresholdLY: 150.0,
		ResultFormat:          "{jumps} jumps to {system} ({distance} LY) via {route}",
	}
}

// Validate rejects configurations that would violate planner preconditions.
// Violations are fatal at startup and must never reach request time.
func (c *Config) Validate() error {
	if c.Announcer == "" {
		return errors.New("announcer must be set")
	}
	if c.SignalKeyword == "" {
		return errors.New("signal_keyword must be set")
	}
	if c.Ship.LadenJumpRangeLY <= 0 {
		return fmt.Errorf("ship.laden_jump_range_ly must be positive, got %.2f", c.Ship.LadenJumpRangeLY)
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache_ttl must be positive")
	}
	if c.LookupTimeout <= 0 {
		return errors.New("lookup_timeout must be positive")
	}
	if c.NeutronThresholdLY < 0 {
		return errors.New("neutron_threshold_ly must be non-negative")
	}
	if c.WhiteDwarfThresholdLY < 0 {
		return errors.New("white_dwarf_threshold_ly must be non-negative")
	}
	if c.ResultFormat == "" {
		return errors.New("result_format must be set")
	}
	return nil
}

// DefaultPath returns the configuration file location: XDG config dir on
// Unix, APPDATA on Windows, ~/.config otherwise.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "ratnav", "config.yaml")
	}
	if dir := os.Getenv("APPDATA"); dir != "" {
		return filepath.Join(dir, "ratnav", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config", "config.yaml")
	}
	return filepath.Join(home, ".config", "ratnav", "config.yaml")
}

// Load reads and validates the configuration at path. A missing file yields
// the defaults; a present but invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

const sampleConfig = `# ratnav configuration
#
# System coordinates come from EDSM (Elite Dangerous Star Map).
# No API key is required.

# Chat identity rescue dispatches are accepted from.
announcer: "MechaSqueak[BOT]"

# Keyword marking a dispatch line.
signal_keyword: "RATSIGNAL"

# Your pilot name (display only).
commander: ""

# Default origin system when none is given on the command line.
home_system: "Fuelum"

ship:
  name: "Asp Explorer"
  # Realistic jump range with cargo and fuel, in light years.
  laden_jump_range_ly: 35.0

# How long resolved coordinates stay fresh.
cache_ttl: 5m

# Upper bound on a single EDSM lookup.
lookup_timeout: 30s

# Distance thresholds for suggesting boosted routes.
neutron_threshold_ly: 500.0
white_dwarf_threshold_ly: 150.0

# Placeholders: {jumps} {distance} {route} {system} {from} {to}
result_format: "{jumps} jumps to {system} ({distance} LY) via {route}"
`

// WriteSample creates a commented sample configuration at path. It refuses
// to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
