package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

// MaxDims bounds the dimension count; a node fans out to 2^dims children.
const MaxDims = 8

// AnchorIndex is the particle treated as an immovable anchor when
// Options.Anchor is set.
const AnchorIndex = 0

type Particle[F constraints.Float] struct {
	Pos    vecmath.Vec[F]
	Vel    vecmath.Vec[F]
	Mass   F
	Radius F
}

func (p Particle[F]) Clone() Particle[F] {
	return Particle[F]{
		Pos:    p.Pos.Clone(),
		Vel:    p.Vel.Clone(),
		Mass:   p.Mass,
		Radius: p.Radius,
	}
}

// SweptBox returns the box covering p over the next horizon of time.
func (p Particle[F]) SweptBox(horizon F) vecmath.Box[F] {
	return vecmath.Swept(p.Pos, p.Vel, p.Radius, horizon)
}

// KineticEnergy returns 0.5*m*|v|^2.
func (p Particle[F]) KineticEnergy() F {
	return 0.5 * p.Mass * p.Vel.Dot(p.Vel)
}

func Clone[F constraints.Float](particles []Particle[F]) []Particle[F] {
	c := make([]Particle[F], len(particles))
	for i, p := range particles {
		c[i] = p.Clone()
	}
	return c
}

// AllIndices returns [0, n).
func AllIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Event is a resolved contact. Time is measured from the start of the step
// that resolved it.
type Event[F constraints.Float] struct {
	A, B   int
	Time   F
	Anchor bool
}

type Options struct {
	// Anchor makes particle 0 an immovable, infinite-mass body.
	Anchor bool
	// MaxDepth bounds centroid splitting; deeper nodes are split by index and
	// coincident positions still unseparated there are reported as ErrDegenerateTree.
	MaxDepth int
	// MaxEvents caps the collisions resolved inside one step.
	MaxEvents int
	// MaxNodes caps the node arena size; 0 means unbounded.
	MaxNodes int
}

func DefaultOptions() Options {
	return Options{
		Anchor:    true,
		MaxDepth:  64,
		MaxEvents: 1_000_000,
	}
}

// Validate checks particles and active indices and returns the system dimension.
func Validate[F constraints.Float](particles []Particle[F], active []int) (int, error) {
	if len(particles) == 0 {
		return 0, nil
	}

	dims := len(particles[0].Pos)
	if dims < 1 || dims > MaxDims {
		return 0, fmt.Errorf("%w: %d dimensions (supported 1..%d)", ErrDimensionMismatch, dims, MaxDims)
	}

	for i, p := range particles {
		if len(p.Pos) != dims || len(p.Vel) != dims {
			return 0, fmt.Errorf("%w: particle %d has pos=%d vel=%d, want %d",
				ErrDimensionMismatch, i, len(p.Pos), len(p.Vel), dims)
		}
		if !p.Pos.IsValid() || !p.Vel.IsValid() {
			return 0, fmt.Errorf("%w: particle %d has non-finite position or velocity", ErrInvalidParticle, i)
		}
		if !(p.Mass > 0) || math.IsInf(float64(p.Mass), 0) {
			return 0, fmt.Errorf("%w: particle %d mass %v must be positive", ErrInvalidParticle, i, p.Mass)
		}
		if !(p.Radius >= 0) || math.IsInf(float64(p.Radius), 0) {
			return 0, fmt.Errorf("%w: particle %d radius %v must be non-negative", ErrInvalidParticle, i, p.Radius)
		}
	}

	seen := make(map[int]struct{}, len(active))
	for _, idx := range active {
		if idx < 0 || idx >= len(particles) {
			return 0, fmt.Errorf("%w: %d (have %d particles)", ErrIndexOutOfRange, idx, len(particles))
		}
		if _, dup := seen[idx]; dup {
			return 0, fmt.Errorf("%w: %d listed twice", ErrIndexOutOfRange, idx)
		}
		seen[idx] = struct{}{}
	}

	return dims, nil
}
