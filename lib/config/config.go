// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted by [Load].
const EnvVar = "ARMADA_CONFIG"

// Config is the full armada configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Ship    ShipConfig    `yaml:"ship"`
	Captain CaptainConfig `yaml:"captain"`
	Ursula  UrsulaConfig  `yaml:"ursula"`
}

// PathsConfig locates the files the processes share.
type PathsConfig struct {
	// Root is the base directory other paths may refer to as ${ARMADA_ROOT}.
	Root string `yaml:"root"`

	// Map is the chart file every process loads.
	Map string `yaml:"map"`

	// Manifest lists the ships a captain launches.
	Manifest string `yaml:"manifest"`

	// Bus is the named pipe ursula reads events from.
	Bus string `yaml:"bus"`

	// Journal is the SQLite database ursula records into. Empty disables it.
	Journal string `yaml:"journal"`

	// Snapshot is where ursula writes its final state. Empty disables it.
	Snapshot string `yaml:"snapshot"`
}

// ShipConfig holds per-ship defaults.
type ShipConfig struct {
	Food   int           `yaml:"food"`
	Steps  int           `yaml:"steps"`
	Period time.Duration `yaml:"period"`
}

// CaptainConfig holds captain settings.
type CaptainConfig struct {
	Name string `yaml:"name"`

	// ReplyTimeout bounds how long the captain waits for a ship to
	// answer a directive or status request.
	ReplyTimeout time.Duration `yaml:"reply_timeout"`

	// Mode is "commanded" or "autonomous".
	Mode string `yaml:"mode"`

	// ShipBinary is the executable launched for each ship. Empty means
	// the running armada binary.
	ShipBinary string `yaml:"ship_binary"`
}

// UrsulaConfig holds arbiter settings.
type UrsulaConfig struct {
	Treasury int `yaml:"treasury"`

	// Seed fixes the combat winner picker. Zero seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

// Captain modes.
const (
	ModeCommanded  = "commanded"
	ModeAutonomous = "autonomous"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Root:     "${HOME}/.armada",
			Map:      "map.txt",
			Manifest: "ships.txt",
			Bus:      "${ARMADA_ROOT}/bus",
		},
		Ship: ShipConfig{
			Food:   100,
			Steps:  5,
			Period: 2 * time.Second,
		},
		Captain: CaptainConfig{
			ReplyTimeout: 5 * time.Second,
			Mode:         ModeCommanded,
		},
		Ursula: UrsulaConfig{
			Treasury: 100,
		},
	}
}

// Load loads configuration from the file named by ARMADA_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your armada.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, layered over [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ExpandPaths expands variables in the path fields. [LoadFile] calls it;
// callers starting from [Default] call it themselves.
func (c *Config) ExpandPaths() {
	c.expandVariables()
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["ARMADA_ROOT"] = c.Paths.Root

	for _, field := range []*string{
		&c.Paths.Map,
		&c.Paths.Manifest,
		&c.Paths.Bus,
		&c.Paths.Journal,
		&c.Paths.Snapshot,
		&c.Captain.ShipBinary,
	} {
		*field = expandVars(*field, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} and ${VAR:-default}. Known vars win over
// the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, fallback := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return fallback
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Ship.Food <= 0 {
		errs = append(errs, fmt.Errorf("ship.food must be positive, got %d", c.Ship.Food))
	}
	if c.Ship.Period <= 0 {
		errs = append(errs, fmt.Errorf("ship.period must be positive, got %s", c.Ship.Period))
	}
	if c.Captain.ReplyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("captain.reply_timeout must be positive, got %s", c.Captain.ReplyTimeout))
	}
	if c.Captain.Mode != ModeCommanded && c.Captain.Mode != ModeAutonomous {
		errs = append(errs, fmt.Errorf("captain.mode must be %q or %q, got %q", ModeCommanded, ModeAutonomous, c.Captain.Mode))
	}
	if c.Ursula.Treasury <= 0 {
		errs = append(errs, fmt.Errorf("ursula.treasury must be positive, got %d", c.Ursula.Treasury))
	}

	return errors.Join(errs...)
}
