package config

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

type generator func(c *Config, rng *rand.Rand) ([]ParticleConfig, error)

var generators = map[string]generator{
	"gas":     generateGas,
	"lattice": generateLattice,
	"cradle":  generateCradle,
}

// BuildParticles returns the scenario's particles, either the explicit list
// or the output of its generator.
func BuildParticles[F constraints.Float](c *Config) ([]dynamo.Particle[F], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	specs := c.Particles
	if len(specs) == 0 {
		var err error
		specs, err = generators[c.Generator.Kind](c, rand.New(rand.NewSource(c.Seed)))
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", c.Generator.Kind, err)
		}
	}

	particles := make([]dynamo.Particle[F], len(specs))
	for i, s := range specs {
		if len(s.Pos) != c.Dims || len(s.Vel) != c.Dims {
			return nil, fmt.Errorf("%w: particle %d has pos=%d vel=%d, want %d",
				dynamo.ErrDimensionMismatch, i, len(s.Pos), len(s.Vel), c.Dims)
		}
		particles[i] = dynamo.Particle[F]{
			Pos:    vecmath.FromFloat64[F](s.Pos),
			Vel:    vecmath.FromFloat64[F](s.Vel),
			Mass:   F(s.Mass),
			Radius: F(s.Radius),
		}
	}

	if _, err := dynamo.Validate(particles, c.ActiveIndices()); err != nil {
		return nil, err
	}
	return particles, nil
}

// sites returns the centres of a regular grid with at least count cells
// filling [0, box]^dims, and the grid spacing.
func sites(dims, count int, box float64) ([][]float64, float64) {
	side := int(math.Ceil(math.Pow(float64(count), 1/float64(dims))))
	for pow(side, dims) < count {
		side++
	}
	spacing := box / float64(side)

	out := make([][]float64, 0, pow(side, dims))
	for cell := 0; cell < pow(side, dims); cell++ {
		pos := make([]float64, dims)
		c := cell
		for d := range pos {
			pos[d] = (float64(c%side) + 0.5) * spacing
			c /= side
		}
		out = append(out, pos)
	}
	return out, spacing
}

func pow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}

// anchorBody places a heavy static obstacle at the centre of the box.
func anchorBody(c *Config) ParticleConfig {
	g := c.Generator
	centre := make([]float64, c.Dims)
	for d := range centre {
		centre[d] = g.Box / 2
	}
	return ParticleConfig{
		Pos:    centre,
		Vel:    make([]float64, c.Dims),
		Mass:   g.Mass * 1000,
		Radius: g.Box / 8,
	}
}

func clearOf(pos []float64, body ParticleConfig, radius float64) bool {
	var d2 float64
	for d := range pos {
		diff := pos[d] - body.Pos[d]
		d2 += diff * diff
	}
	reach := body.Radius + radius
	return d2 > reach*reach
}

// lay fills randomly chosen grid sites with moving particles. With the
// anchor enabled particle 0 is a static obstacle and counts toward the
// total. jitter is the fraction of free space a
// particle may be displaced within its cell.
func lay(c *Config, rng *rand.Rand, jitter float64, velocity func() []float64) ([]ParticleConfig, error) {
	g := c.Generator
	if g.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", g.Count)
	}

	var out []ParticleConfig
	want := g.Count
	if c.Anchor {
		out = append(out, anchorBody(c))
	}

	grid, spacing := sites(c.Dims, 2*want, g.Box)
	if spacing <= 2*g.Radius {
		return nil, fmt.Errorf("box %.3g too small for %d particles of radius %.3g", g.Box, g.Count, g.Radius)
	}
	free := (spacing - 2*g.Radius) / 2
	rng.Shuffle(len(grid), func(i, j int) { grid[i], grid[j] = grid[j], grid[i] })

	for _, site := range grid {
		if len(out) == want {
			break
		}
		pos := make([]float64, c.Dims)
		for d := range pos {
			pos[d] = site[d] + jitter*free*(2*rng.Float64()-1)
		}
		if c.Anchor && !clearOf(pos, out[0], g.Radius) {
			continue
		}
		out = append(out, ParticleConfig{Pos: pos, Vel: velocity(), Mass: g.Mass, Radius: g.Radius})
	}

	if len(out) < want {
		return nil, fmt.Errorf("only %d of %d particles fit in box %.3g", len(out), want, g.Box)
	}
	return out, nil
}

func generateGas(c *Config, rng *rand.Rand) ([]ParticleConfig, error) {
	return lay(c, rng, 0.9, func() []float64 {
		v := make([]float64, c.Dims)
		for d := range v {
			v[d] = c.Generator.Speed * (2*rng.Float64() - 1)
		}
		return v
	})
}

func generateLattice(c *Config, rng *rand.Rand) ([]ParticleConfig, error) {
	return lay(c, rng, 0, func() []float64 {
		v := make([]float64, c.Dims)
		var norm float64
		for norm == 0 {
			norm = 0
			for d := range v {
				v[d] = rng.NormFloat64()
				norm += v[d] * v[d]
			}
		}
		norm = math.Sqrt(norm)
		for d := range v {
			v[d] *= c.Generator.Speed / norm
		}
		return v
	})
}

// generateCradle lines up touching balls along the first axis and sends a
// striker into them from the left.
func generateCradle(c *Config, rng *rand.Rand) ([]ParticleConfig, error) {
	g := c.Generator
	if g.Count < 2 {
		return nil, fmt.Errorf("cradle needs at least 2 particles, got %d", g.Count)
	}

	out := make([]ParticleConfig, 0, g.Count)
	striker := ParticleConfig{
		Pos:    make([]float64, c.Dims),
		Vel:    make([]float64, c.Dims),
		Mass:   g.Mass,
		Radius: g.Radius,
	}
	striker.Pos[0] = -g.Box
	striker.Vel[0] = g.Speed
	out = append(out, striker)

	for i := 1; i < g.Count; i++ {
		p := ParticleConfig{
			Pos:    make([]float64, c.Dims),
			Vel:    make([]float64, c.Dims),
			Mass:   g.Mass,
			Radius: g.Radius,
		}
		p.Pos[0] = float64(i-1) * 2 * g.Radius
		out = append(out, p)
	}
	return out, nil
}
