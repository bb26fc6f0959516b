package vecmath

import "golang.org/x/exp/constraints"

// Box is an axis-aligned bounding box.
type Box[F constraints.Float] struct {
	Min Vec[F]
	Max Vec[F]
}

// Swept returns the box covering a sphere of the given radius moving from
// pos to pos+vel*horizon.
func Swept[F constraints.Float](pos, vel Vec[F], radius, horizon F) Box[F] {
	b := Box[F]{
		Min: make(Vec[F], len(pos)),
		Max: make(Vec[F], len(pos)),
	}
	for d := range pos {
		travel := vel[d] * horizon
		b.Min[d] = pos[d] + Min(0, travel) - radius
		b.Max[d] = pos[d] + Max(0, travel) + radius
	}
	return b
}

// Overlaps reports whether b and other intersect on every axis. Touching
// faces count as overlap.
func (b Box[F]) Overlaps(other Box[F]) bool {
	for d := range b.Min {
		if b.Max[d] < other.Min[d] || b.Min[d] > other.Max[d] {
			return false
		}
	}
	return true
}

// Union returns the smallest box containing both b and other.
func (b Box[F]) Union(other Box[F]) Box[F] {
	u := Box[F]{
		Min: make(Vec[F], len(b.Min)),
		Max: make(Vec[F], len(b.Max)),
	}
	for d := range b.Min {
		u.Min[d] = Min(b.Min[d], other.Min[d])
		u.Max[d] = Max(b.Max[d], other.Max[d])
	}
	return u
}

func (b Box[F]) Contains(other Box[F]) bool {
	for d := range b.Min {
		if other.Min[d] < b.Min[d] || other.Max[d] > b.Max[d] {
			return false
		}
	}
	return true
}

func (b Box[F]) Clone() Box[F] {
	return Box[F]{Min: b.Min.Clone(), Max: b.Max.Clone()}
}
