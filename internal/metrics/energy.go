package metrics

import (
	"math"

	"github.com/san-kum/ccdsim/internal/dynamo"
	"golang.org/x/exp/constraints"
)

// KineticEnergy reports the total kinetic energy at the last observation.
type KineticEnergy[F constraints.Float] struct {
	name    string
	current float64
}

func NewKineticEnergy[F constraints.Float]() *KineticEnergy[F] {
	return &KineticEnergy[F]{name: "kinetic_energy"}
}

func (k *KineticEnergy[F]) Name() string { return k.name }

func (k *KineticEnergy[F]) Observe(particles []dynamo.Particle[F], t float64) {
	k.current = TotalEnergy(particles)
}

func (k *KineticEnergy[F]) Value() float64 { return k.current }

func (k *KineticEnergy[F]) Reset() { k.current = 0 }

// EnergyDrift reports the largest relative change in total kinetic energy
// since the first observation. Elastic contacts keep it at rounding level.
type EnergyDrift[F constraints.Float] struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift[F constraints.Float]() *EnergyDrift[F] {
	return &EnergyDrift[F]{name: "energy_drift"}
}

func (e *EnergyDrift[F]) Name() string { return e.name }

func (e *EnergyDrift[F]) Observe(particles []dynamo.Particle[F], t float64) {
	energy := TotalEnergy(particles)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift[F]) Value() float64 { return e.maxDrift }

func (e *EnergyDrift[F]) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// TotalEnergy sums the kinetic energy of every particle in float64.
func TotalEnergy[F constraints.Float](particles []dynamo.Particle[F]) float64 {
	var total float64
	for _, p := range particles {
		total += float64(p.KineticEnergy())
	}
	return total
}
