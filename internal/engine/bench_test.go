package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/san-kum/ccdsim/internal/compute"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/vecmath"
)

func gas(n, dims int, seed int64) []dynamo.Particle[float64] {
	rng := rand.New(rand.NewSource(seed))
	side := 1
	for pow(side, dims) < n {
		side++
	}

	ps := make([]dynamo.Particle[float64], n)
	for i := range ps {
		pos := vecmath.Zero[float64](dims)
		vel := vecmath.Zero[float64](dims)
		cell := i
		for d := 0; d < dims; d++ {
			pos[d] = float64(cell%side) * 2
			cell /= side
			vel[d] = rng.Float64()*2 - 1
		}
		ps[i] = dynamo.Particle[float64]{Pos: pos, Vel: vel, Mass: 1, Radius: 0.4}
	}
	return ps
}

func pow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}

func BenchmarkStep(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		for _, backend := range []compute.Backend{compute.NewSerialBackend(), compute.NewCPUBackend(0)} {
			b.Run(fmt.Sprintf("Particles-%d-%s", n, backend.Name()), func(b *testing.B) {
				base := gas(n, 2, 1)
				active := dynamo.AllIndices(n)
				s := New[float64](dynamo.DefaultOptions(), backend)

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					b.StopTimer()
					ps := dynamo.Clone(base)
					b.StartTimer()
					if _, err := s.Step(ps, active, 0.5); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
