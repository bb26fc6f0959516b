package metrics

import (
	"github.com/san-kum/ccdsim/internal/dynamo"
	"golang.org/x/exp/constraints"
)

// CollisionCount counts resolved contacts. Register it as an event observer
// on the stepper as well as a metric.
type CollisionCount[F constraints.Float] struct {
	name    string
	total   int
	anchors int
}

func NewCollisionCount[F constraints.Float]() *CollisionCount[F] {
	return &CollisionCount[F]{name: "collisions"}
}

func (c *CollisionCount[F]) Name() string { return c.name }

func (c *CollisionCount[F]) OnEvent(ev dynamo.Event[F]) {
	c.total++
	if ev.Anchor {
		c.anchors++
	}
}

func (c *CollisionCount[F]) Observe(particles []dynamo.Particle[F], t float64) {}

func (c *CollisionCount[F]) Value() float64 { return float64(c.total) }

// Anchors returns how many of the counted contacts involved the anchor.
func (c *CollisionCount[F]) Anchors() int { return c.anchors }

func (c *CollisionCount[F]) Reset() {
	c.total = 0
	c.anchors = 0
}
