package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/ccdsim/internal/compute"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDims      = 2
	DefaultPrecision = "float64"
	DefaultTimestep  = 0.05
	DefaultFrames    = 200
	DefaultCount     = 64
	DefaultBox       = 20.0
	DefaultSpeed     = 1.0
	DefaultRadius    = 0.25
	DefaultMass      = 1.0
)

type Config struct {
	Name      string  `yaml:"name"`
	Dims      int     `yaml:"dims"`
	Precision string  `yaml:"precision"`
	Timestep  float64 `yaml:"timestep"`
	Frames    int     `yaml:"frames"`
	Anchor    bool    `yaml:"anchor"`
	Backend   string  `yaml:"backend"`
	Workers   int     `yaml:"workers"`
	MaxDepth  int     `yaml:"max_depth"`
	MaxEvents int     `yaml:"max_events"`
	MaxNodes  int     `yaml:"max_nodes"`
	Seed      int64   `yaml:"seed"`

	Particles []ParticleConfig `yaml:"particles,omitempty"`
	Generator GeneratorConfig  `yaml:"generator"`
	// Active restricts contacts to the listed particles; empty means all.
	Active []int `yaml:"active,omitempty"`
}

type ParticleConfig struct {
	Pos    []float64 `yaml:"pos"`
	Vel    []float64 `yaml:"vel"`
	Mass   float64   `yaml:"mass"`
	Radius float64   `yaml:"radius"`
}

type GeneratorConfig struct {
	Kind   string  `yaml:"kind"`
	Count  int     `yaml:"count"`
	Box    float64 `yaml:"box"`
	Speed  float64 `yaml:"speed"`
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`
}

func DefaultConfig() *Config {
	opts := dynamo.DefaultOptions()
	return &Config{
		Name:      "gas",
		Dims:      DefaultDims,
		Precision: DefaultPrecision,
		Timestep:  DefaultTimestep,
		Frames:    DefaultFrames,
		Anchor:    false,
		Backend:   "auto",
		MaxDepth:  opts.MaxDepth,
		MaxEvents: opts.MaxEvents,
		Seed:      1,
		Generator: GeneratorConfig{
			Kind:   "gas",
			Count:  DefaultCount,
			Box:    DefaultBox,
			Speed:  DefaultSpeed,
			Radius: DefaultRadius,
			Mass:   DefaultMass,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets can be overridden safely.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Particles = make([]ParticleConfig, len(c.Particles))
	for i, p := range c.Particles {
		cp.Particles[i] = ParticleConfig{
			Pos:    append([]float64(nil), p.Pos...),
			Vel:    append([]float64(nil), p.Vel...),
			Mass:   p.Mass,
			Radius: p.Radius,
		}
	}
	if c.Active != nil {
		cp.Active = append([]int(nil), c.Active...)
	}
	return &cp
}

// Validate checks the scenario settings. Particle values are checked when
// the system is built.
func (c *Config) Validate() error {
	if c.Dims < 1 || c.Dims > dynamo.MaxDims {
		return fmt.Errorf("%w: dims %d (supported 1..%d)", dynamo.ErrDimensionMismatch, c.Dims, dynamo.MaxDims)
	}
	switch c.Precision {
	case "float32", "float64":
	default:
		return fmt.Errorf("unknown precision %q, want float32 or float64", c.Precision)
	}
	if math.IsNaN(c.Timestep) || math.IsInf(c.Timestep, 0) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidTimestep, c.Timestep)
	}
	if c.Timestep < 0 {
		return fmt.Errorf("%w: %v", dynamo.ErrNegativeTimestep, c.Timestep)
	}
	if c.Frames < 0 {
		return fmt.Errorf("frames must be non-negative, got %d", c.Frames)
	}
	if _, err := compute.ByName(c.Backend, c.Workers); err != nil {
		return err
	}
	if len(c.Particles) == 0 {
		if _, ok := generators[c.Generator.Kind]; !ok {
			return fmt.Errorf("unknown generator %q", c.Generator.Kind)
		}
	}
	return nil
}

func (c *Config) Options() dynamo.Options {
	return dynamo.Options{
		Anchor:    c.Anchor,
		MaxDepth:  c.MaxDepth,
		MaxEvents: c.MaxEvents,
		MaxNodes:  c.MaxNodes,
	}
}

func (c *Config) ComputeBackend() (compute.Backend, error) {
	return compute.ByName(c.Backend, c.Workers)
}

// ActiveIndices returns the configured active set, or nil for all particles.
func (c *Config) ActiveIndices() []int {
	if len(c.Active) == 0 {
		return nil
	}
	return c.Active
}
