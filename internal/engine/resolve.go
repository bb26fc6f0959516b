package engine

import (
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

// contactNormal returns the unit vector from a to b. Coincident centres,
// which only point particles can reach, fall back to the relative velocity.
func contactNormal[F constraints.Float](a, b *dynamo.Particle[F]) (vecmath.Vec[F], bool) {
	n := b.Pos.Sub(a.Pos)
	if l := n.Norm(); l > 0 {
		return n.Scale(1 / l), true
	}

	n = a.Vel.Sub(b.Vel)
	if l := n.Norm(); l > 0 {
		return n.Scale(1 / l), true
	}
	return nil, false
}

// resolveElastic exchanges momentum between a and b along their contact
// normal using the 1-D elastic formula. Tangential velocity is unchanged.
func resolveElastic[F constraints.Float](particles []dynamo.Particle[F], ia, ib int) {
	a, b := &particles[ia], &particles[ib]

	n, ok := contactNormal(a, b)
	if !ok {
		return
	}

	ua := a.Vel.Dot(n)
	ub := b.Vel.Dot(n)
	total := a.Mass + b.Mass

	va := ((a.Mass-b.Mass)*ua + 2*b.Mass*ub) / total
	vb := ((b.Mass-a.Mass)*ub + 2*a.Mass*ua) / total

	a.Vel.AddScaled(n, va-ua)
	b.Vel.AddScaled(n, vb-ub)
}

// resolveAnchor treats the anchor as infinitely heavy: its normal velocity
// is removed and the other particle's normal velocity is negated.
func resolveAnchor[F constraints.Float](particles []dynamo.Particle[F], ia, ib int) {
	anchor, other := ia, ib
	if ib == dynamo.AnchorIndex {
		anchor, other = ib, ia
	}
	a, o := &particles[anchor], &particles[other]

	n, ok := contactNormal(a, o)
	if !ok {
		return
	}

	a.Vel.AddScaled(n, -a.Vel.Dot(n))
	o.Vel.AddScaled(n, -2*o.Vel.Dot(n))
}
