package collide

import (
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

// contactSlack scales machine epsilon into the overlap still counted as touching.
const contactSlack = 64

// TimeOfImpact returns the time at which a and b first touch, provided it
// lies in [0, horizon). Pairs without relative motion or moving apart report
// false, as do pairs whose paths miss. A pair that is touching and closing
// reports an impact at 0.
//
// Pairs that already overlap are ignored unless allowOverlap is set, in which
// case the non-negative root of the contact equation is used.
func TimeOfImpact[F constraints.Float](a, b *dynamo.Particle[F], horizon F, allowOverlap bool) (F, bool) {
	var dpdp, dpdv, dvdv F
	for d := range a.Pos {
		dp := a.Pos[d] - b.Pos[d]
		dv := a.Vel[d] - b.Vel[d]
		dpdp += dp * dp
		dpdv += dp * dv
		dvdv += dv * dv
	}
	if dvdv == 0 || dpdv >= 0 {
		return 0, false
	}

	reach := a.Radius + b.Radius
	c := dpdp - reach*reach
	if c < 0 && !allowOverlap {
		// An overlap within rounding of contact is a pair that has just
		// touched, usually a second contact at the same instant as the one
		// resolved before it.
		if -c > contactSlack*vecmath.Epsilon[F]()*(dpdp+reach*reach) {
			return 0, false
		}
		return 0, horizon > 0
	}

	disc := dpdv*dpdv - dvdv*c
	if disc < 0 {
		return 0, false
	}

	sq := vecmath.Sqrt(disc)
	t1 := (-sq - dpdv) / dvdv
	t0 := (sq - dpdv) / dvdv

	t := t1
	if t < 0 {
		t = t0
	}
	if !(t >= 0 && t < horizon) {
		return 0, false
	}
	return t, true
}
