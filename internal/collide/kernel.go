package collide

import (
	"github.com/san-kum/ccdsim/internal/compute"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/tree"
	"golang.org/x/exp/constraints"
)

// Candidate is a seeker's earliest impact within the horizon. When Found is
// false, Other is -1 and T equals the horizon.
type Candidate[F constraints.Float] struct {
	Seeker int
	Other  int
	T      F
	Found  bool
}

// Kernel scans seekers against an immutable tree. It only reads particles,
// so one Kernel value may be shared by every worker of a backend.
type Kernel[F constraints.Float] struct {
	Particles []dynamo.Particle[F]
	Tree      *tree.Tree[F]
	Horizon   F
	// Anchor enables the immovable particle rules for dynamo.AnchorIndex.
	Anchor bool
}

// Earliest fills out[k] with the earliest impact of seekers[k]. out must be
// at least as long as seekers. Each worker writes only its own range of out.
func (k *Kernel[F]) Earliest(backend compute.Backend, seekers []int, out []Candidate[F]) {
	backend.For(len(seekers), func(start, end int) {
		var buf []int
		for s := start; s < end; s++ {
			out[s], buf = k.seek(seekers[s], buf[:0])
		}
	})
}

func (k *Kernel[F]) seek(i int, buf []int) (Candidate[F], []int) {
	best := Candidate[F]{Seeker: i, Other: -1, T: k.Horizon}

	p := &k.Particles[i]
	buf = k.Tree.AppendQuery(buf, 0, p.SweptBox(k.Horizon))

	for _, j := range buf {
		if j == i {
			continue
		}

		overlapOK := k.Anchor && j == dynamo.AnchorIndex
		t, ok := TimeOfImpact(p, &k.Particles[j], k.Horizon, overlapOK)
		if !ok {
			continue
		}
		if !best.Found || t < best.T || (t == best.T && j < best.Other) {
			best.Other = j
			best.T = t
			best.Found = true
		}
	}
	return best, buf
}

// Seekers returns the active particles that search for impacts. With the
// anchor enabled the anchor itself never seeks; it is found as a candidate.
func Seekers(active []int, anchor bool) []int {
	if !anchor {
		return active
	}

	seekers := make([]int, 0, len(active))
	for _, i := range active {
		if i != dynamo.AnchorIndex {
			seekers = append(seekers, i)
		}
	}
	return seekers
}

// Reduce picks the earliest found candidate. Ties go to the lowest seeker
// index; the result has Found false when no candidate was found.
func Reduce[F constraints.Float](cands []Candidate[F]) Candidate[F] {
	best := Candidate[F]{Other: -1}
	for _, c := range cands {
		if !c.Found {
			continue
		}
		if !best.Found || c.T < best.T || (c.T == best.T && c.Seeker < best.Seeker) {
			best = c
		}
	}
	return best
}
