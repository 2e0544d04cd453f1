// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/morphogen/vecmath"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world" toml:"world"`
	Grid       GridConfig       `yaml:"grid" toml:"grid"`
	Cell       CellConfig       `yaml:"cell" toml:"cell"`
	Link       LinkConfig       `yaml:"link" toml:"link"`
	ModelLink  LinkConfig       `yaml:"model_link" toml:"model_link"`
	Population PopulationConfig `yaml:"population" toml:"population"`
	Behavior   BehaviorConfig   `yaml:"behavior" toml:"behavior"`
	Models     []ModelConfig    `yaml:"models" toml:"models"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" toml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// WorldConfig holds global physics parameters.
type WorldConfig struct {
	DT                  float64    `yaml:"dt" toml:"dt"`
	Gravity             [3]float64 `yaml:"gravity" toml:"gravity"`
	Viscosity           float64    `yaml:"viscosity" toml:"viscosity"`
	CellCellCollisions  bool       `yaml:"cell_cell_collisions" toml:"cell_cell_collisions"`
	CellModelCollisions bool       `yaml:"cell_model_collisions" toml:"cell_model_collisions"`
	Integrator          string     `yaml:"integrator" toml:"integrator"` // euler or explicit
	Workers             int        `yaml:"workers" toml:"workers"`       // 0 = GOMAXPROCS, 1 = serial
}

// GridConfig sizes the broad-phase grids relative to the nominal cell radius.
type GridConfig struct {
	CellFactor  float64 `yaml:"cell_factor" toml:"cell_factor"`
	ModelFactor float64 `yaml:"model_factor" toml:"model_factor"`
}

// CellConfig holds the nominal cell body.
type CellConfig struct {
	Radius    float64 `yaml:"radius" toml:"radius"`
	Mass      float64 `yaml:"mass" toml:"mass"`
	MinRadius float64 `yaml:"min_radius" toml:"min_radius"` // daughter cells never start smaller
}

// LinkConfig holds the parameters of a link family.
type LinkConfig struct {
	Stiffness  float64 `yaml:"stiffness" toml:"stiffness"`
	Damping    float64 `yaml:"damping" toml:"damping"`
	BreakRatio float64 `yaml:"break_ratio" toml:"break_ratio"`
	Adhesion   float64 `yaml:"adhesion" toml:"adhesion"`
}

// PopulationConfig holds the initial population.
type PopulationConfig struct {
	Initial int     `yaml:"initial" toml:"initial"`
	Spread  float64 `yaml:"spread" toml:"spread"` // half-width of the seeding cube
	Seed    uint64  `yaml:"seed" toml:"seed"`
}

// BehaviorConfig drives the cell program.
type BehaviorConfig struct {
	Script         string  `yaml:"script" toml:"script"`
	GrowthRate     float64 `yaml:"growth_rate" toml:"growth_rate"`
	DivisionRadius float64 `yaml:"division_radius" toml:"division_radius"`
	DivisionSigma  float64 `yaml:"division_sigma" toml:"division_sigma"`
	MaxAge         float64 `yaml:"max_age" toml:"max_age"`
	DeathRate      float64 `yaml:"death_rate" toml:"death_rate"`
}

// ModelConfig declares a static model. Kind is "file" (Path is a YAML
// mesh), "plane" (Y, Half) or "box" (Lo, Hi).
type ModelConfig struct {
	Name string     `yaml:"name" toml:"name"`
	Kind string     `yaml:"kind" toml:"kind"`
	Path string     `yaml:"path,omitempty" toml:"path"`
	Y    float64    `yaml:"y,omitempty" toml:"y"`
	Half float64    `yaml:"half,omitempty" toml:"half"`
	Lo   [3]float64 `yaml:"lo,omitempty" toml:"lo"`
	Hi   [3]float64 `yaml:"hi,omitempty" toml:"hi"`
}

// TelemetryConfig holds stats and output settings.
type TelemetryConfig struct {
	StatsWindow   float64 `yaml:"stats_window" toml:"stats_window"`
	PerfWindow    int     `yaml:"perf_window" toml:"perf_window"`
	SnapshotEvery uint64  `yaml:"snapshot_every" toml:"snapshot_every"`
	HistorySize   int     `yaml:"history_size" toml:"history_size"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // json or text
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	Gravity       vecmath.Vec
	AgentCellSize float64
	ModelCellSize float64
	LogLevel      slog.Level
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load reads a configuration file over the embedded defaults. Only the keys
// present in the file are overridden. Files ending in .toml are decoded as
// TOML, anything else as YAML. If path is empty, only the defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	g := c.World.Gravity
	c.Derived.Gravity = vecmath.V(g[0], g[1], g[2])
	c.Derived.AgentCellSize = c.Grid.CellFactor * c.Cell.Radius
	c.Derived.ModelCellSize = c.Grid.ModelFactor * c.Cell.Radius

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if err := c.Derived.LogLevel.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w: %w", ErrInvalid, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.World.DT > 0, "world.dt must be positive"},
		{c.World.Viscosity >= 0, "world.viscosity must not be negative"},
		{c.World.Workers >= 0, "world.workers must not be negative"},
		{c.World.Integrator == "" || c.World.Integrator == "euler" || c.World.Integrator == "explicit", "world.integrator must be euler or explicit"},
		{c.Grid.CellFactor > 0 && c.Grid.ModelFactor > 0, "grid factors must be positive"},
		{c.Cell.Radius > 0 && c.Cell.Mass > 0, "cell radius and mass must be positive"},
		{c.Link.BreakRatio >= c.Link.Adhesion, "link.break_ratio must not be below link.adhesion"},
		{c.ModelLink.BreakRatio >= c.ModelLink.Adhesion, "model_link.break_ratio must not be below model_link.adhesion"},
		{c.Population.Initial >= 0, "population.initial must not be negative"},
		{c.Logging.Format == "json" || c.Logging.Format == "text", "logging.format must be json or text"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalid, chk.msg)
		}
	}
	for i, m := range c.Models {
		switch {
		case m.Name == "":
			return fmt.Errorf("%w: models[%d] has no name", ErrInvalid, i)
		case m.Kind != "file" && m.Kind != "plane" && m.Kind != "box":
			return fmt.Errorf("%w: models[%d] has unknown kind %q", ErrInvalid, i, m.Kind)
		case m.Kind == "file" && m.Path == "":
			return fmt.Errorf("%w: models[%d] needs a path", ErrInvalid, i)
		}
	}
	return nil
}

// Logger builds the slog logger described by the logging section.
func (c *Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Derived.LogLevel}
	if c.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
