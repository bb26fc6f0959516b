package config

import "sort"

var Presets = map[string]*Config{
	"head_on": {
		Name: "head_on", Dims: 1, Precision: "float64", Timestep: 10, Frames: 1,
		Backend: "serial", MaxDepth: 64, MaxEvents: 1_000_000,
		Particles: []ParticleConfig{
			{Pos: []float64{-2}, Vel: []float64{1}, Mass: 1, Radius: 0.5},
			{Pos: []float64{2}, Vel: []float64{-1}, Mass: 1, Radius: 0.5},
		},
	},
	"cradle": {
		Name: "cradle", Dims: 1, Precision: "float64", Timestep: 0.25, Frames: 80,
		Backend: "serial", MaxDepth: 64, MaxEvents: 1_000_000,
		Generator: GeneratorConfig{Kind: "cradle", Count: 5, Box: 4, Speed: 1, Radius: 0.5, Mass: 1},
	},
	"wall": {
		Name: "wall", Dims: 2, Precision: "float64", Timestep: 0.1, Frames: 100, Anchor: true,
		Backend: "serial", MaxDepth: 64, MaxEvents: 1_000_000,
		Particles: []ParticleConfig{
			{Pos: []float64{0, 0}, Vel: []float64{0, 0}, Mass: 1, Radius: 2},
			{Pos: []float64{-6, 0.5}, Vel: []float64{1, 0}, Mass: 1, Radius: 0.5},
			{Pos: []float64{6, -1}, Vel: []float64{-1.5, 0}, Mass: 2, Radius: 0.5},
			{Pos: []float64{0, 7}, Vel: []float64{0.2, -1}, Mass: 1, Radius: 0.5},
			{Pos: []float64{-1, -8}, Vel: []float64{0, 2}, Mass: 0.5, Radius: 0.25},
		},
	},
	"gas2d": {
		Name: "gas2d", Dims: 2, Precision: "float64", Timestep: 0.1, Frames: 300,
		Backend: "auto", MaxDepth: 64, MaxEvents: 1_000_000, Seed: 7,
		Generator: GeneratorConfig{Kind: "gas", Count: 256, Box: 40, Speed: 1, Radius: 0.3, Mass: 1},
	},
	"gas3d": {
		Name: "gas3d", Dims: 3, Precision: "float32", Timestep: 0.1, Frames: 200, Anchor: true,
		Backend: "auto", MaxDepth: 64, MaxEvents: 1_000_000, Seed: 11,
		Generator: GeneratorConfig{Kind: "gas", Count: 512, Box: 24, Speed: 1, Radius: 0.3, Mass: 1},
	},
	"lattice": {
		Name: "lattice", Dims: 2, Precision: "float64", Timestep: 0.05, Frames: 400,
		Backend: "auto", MaxDepth: 64, MaxEvents: 1_000_000, Seed: 3,
		Generator: GeneratorConfig{Kind: "lattice", Count: 100, Box: 20, Speed: 2, Radius: 0.4, Mass: 1},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
