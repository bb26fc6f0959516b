package sim

import (
	"github.com/san-kum/ccdsim/internal/dynamo"
	"golang.org/x/exp/constraints"
)

type Metric[F constraints.Float] interface {
	Name() string
	Observe(particles []dynamo.Particle[F], t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Config[F constraints.Float] struct {
	Timestep F
	Frames   int
	// Active lists the particles taking part in contacts; nil means all.
	Active []int
	// SkipFrames keeps only the initial and final frames in the result.
	SkipFrames bool
}

// Frame is a float64 snapshot of the system after Index steps.
type Frame struct {
	Index      int         `json:"index"`
	Time       float64     `json:"time"`
	Positions  [][]float64 `json:"positions"`
	Velocities [][]float64 `json:"velocities"`
	Energy     float64     `json:"energy"`
}

// EventRecord is a resolved contact placed on the run's clock.
type EventRecord struct {
	Frame  int     `json:"frame"`
	Time   float64 `json:"time"`
	A      int     `json:"a"`
	B      int     `json:"b"`
	Anchor bool    `json:"anchor"`
}

type Result[F constraints.Float] struct {
	Frames  []Frame
	Events  []EventRecord
	Final   []dynamo.Particle[F]
	Metrics map[string]float64
	Steps   int
	// Iterations sums the event loop iterations over every step.
	Iterations int
	MaxDepth   int
}

func snapshot[F constraints.Float](particles []dynamo.Particle[F], index int, t float64, energy float64) Frame {
	f := Frame{
		Index:      index,
		Time:       t,
		Positions:  make([][]float64, len(particles)),
		Velocities: make([][]float64, len(particles)),
		Energy:     energy,
	}
	for i, p := range particles {
		f.Positions[i] = p.Pos.Float64()
		f.Velocities[i] = p.Vel.Float64()
	}
	return f
}
