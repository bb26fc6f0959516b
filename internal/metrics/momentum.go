package metrics

import (
	"math"

	"github.com/san-kum/ccdsim/internal/dynamo"
	"golang.org/x/exp/constraints"
)

// MomentumDrift reports the largest change in total linear momentum since
// the first observation, relative to the initial magnitude when it is
// non-zero. Contacts with an anchor do not conserve momentum.
type MomentumDrift[F constraints.Float] struct {
	name     string
	initial  []float64
	maxDrift float64
}

func NewMomentumDrift[F constraints.Float]() *MomentumDrift[F] {
	return &MomentumDrift[F]{name: "momentum_drift"}
}

func (m *MomentumDrift[F]) Name() string { return m.name }

func (m *MomentumDrift[F]) Observe(particles []dynamo.Particle[F], t float64) {
	p := TotalMomentum(particles)
	if m.initial == nil {
		m.initial = p
		return
	}

	var diff, ref float64
	for d := range p {
		diff += (p[d] - m.initial[d]) * (p[d] - m.initial[d])
		ref += m.initial[d] * m.initial[d]
	}
	drift := math.Sqrt(diff)
	if ref > 0 {
		drift /= math.Sqrt(ref)
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift[F]) Value() float64 { return m.maxDrift }

func (m *MomentumDrift[F]) Reset() {
	m.initial = nil
	m.maxDrift = 0
}

// TotalMomentum sums m*v over every particle, per axis.
func TotalMomentum[F constraints.Float](particles []dynamo.Particle[F]) []float64 {
	if len(particles) == 0 {
		return []float64{}
	}

	total := make([]float64, len(particles[0].Vel))
	for _, p := range particles {
		for d, v := range p.Vel {
			total[d] += float64(p.Mass) * float64(v)
		}
	}
	return total
}
