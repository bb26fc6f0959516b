package tree

import (
	"fmt"

	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

type builder[F constraints.Float] struct {
	particles []dynamo.Particle[F]
	horizon   F
	dims      int
	fanout    int
	maxDepth  int
	maxNodes  int
	tree      *Tree[F]
}

// Build partitions the active particles into a tree keyed on their swept
// boxes over horizon. An empty active set yields an empty tree.
//
// Particles are split at the unweighted centroid of their current
// positions: bit d of the bucket is set when the position on axis d is at or
// above the centroid. If every member lands in one bucket the members are
// split in half by index so recursion always shrinks. Beyond opts.MaxDepth
// every node is split this way; a group that still shares one position
// there returns ErrDegenerateTree. Appending past opts.MaxNodes returns
// ErrResourceExhausted.
func Build[F constraints.Float](particles []dynamo.Particle[F], active []int, horizon F, opts dynamo.Options) (*Tree[F], error) {
	if len(active) == 0 {
		return &Tree[F]{}, nil
	}

	dims := len(particles[active[0]].Pos)
	if dims < 1 || dims > dynamo.MaxDims {
		return nil, fmt.Errorf("%w: %d dimensions", dynamo.ErrDimensionMismatch, dims)
	}

	b := &builder[F]{
		particles: particles,
		horizon:   horizon,
		dims:      dims,
		fanout:    1 << dims,
		maxDepth:  opts.MaxDepth,
		maxNodes:  opts.MaxNodes,
		tree: &Tree[F]{
			Nodes: make([]Node[F], 0, 2*len(active)),
			Dims:  dims,
		},
	}

	members := make([]int, len(active))
	copy(members, active)

	if _, err := b.build(members, 0); err != nil {
		return nil, err
	}
	return b.tree, nil
}

func (b *builder[F]) build(members []int, depth int) (int, error) {
	if len(members) == 0 {
		return NoChild, nil
	}
	if b.maxNodes > 0 && len(b.tree.Nodes) >= b.maxNodes {
		return NoChild, fmt.Errorf("%w: node arena reached %d nodes", dynamo.ErrResourceExhausted, b.maxNodes)
	}
	if depth > b.tree.Depth {
		b.tree.Depth = depth
	}
	if len(members) == 1 {
		return b.leaf(members[0]), nil
	}

	// Past the depth cap members are halved by index; a group that still
	// shares one position there is reported instead.
	pastCap := b.maxDepth > 0 && depth > b.maxDepth
	if pastCap && b.coincident(members) {
		return NoChild, fmt.Errorf("%w: depth %d exceeded with %d coincident particles left",
			dynamo.ErrDegenerateTree, b.maxDepth, len(members))
	}

	self := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node[F]{
		Mid:      b.centroid(members),
		Particle: NoParticle,
		Children: make([]int, b.fanout),
	})

	var buckets [][]int
	if pastCap {
		buckets = b.halve(members)
	} else {
		buckets = b.partition(members, b.tree.Nodes[self].Mid)
	}

	var box vecmath.Box[F]
	size, count := 1, 0
	for region, bucket := range buckets {
		child, err := b.build(bucket, depth+1)
		if err != nil {
			return NoChild, err
		}
		// b.tree.Nodes may have been reallocated by the recursion.
		b.tree.Nodes[self].Children[region] = child
		if child == NoChild {
			continue
		}

		c := &b.tree.Nodes[child]
		if count == 0 {
			box = c.Box.Clone()
		} else {
			box = box.Union(c.Box)
		}
		size += c.Size
		count += c.Count
	}

	n := &b.tree.Nodes[self]
	n.Box = box
	n.Size = size
	n.Count = count
	return self, nil
}

func (b *builder[F]) leaf(idx int) int {
	p := b.particles[idx]
	children := make([]int, b.fanout)
	for i := range children {
		children[i] = NoChild
	}
	b.tree.Nodes = append(b.tree.Nodes, Node[F]{
		Box:      p.SweptBox(b.horizon),
		Particle: idx,
		Children: children,
		Size:     1,
		Count:    1,
	})
	return len(b.tree.Nodes) - 1
}

func (b *builder[F]) centroid(members []int) vecmath.Vec[F] {
	mid := vecmath.Zero[F](b.dims)
	for _, idx := range members {
		for d, x := range b.particles[idx].Pos {
			mid[d] += x
		}
	}
	n := F(len(members))
	for d := range mid {
		mid[d] /= n
	}
	return mid
}

func (b *builder[F]) partition(members []int, mid vecmath.Vec[F]) [][]int {
	buckets := make([][]int, b.fanout)
	for _, idx := range members {
		region := 0
		for d, x := range b.particles[idx].Pos {
			if x >= mid[d] {
				region |= 1 << d
			}
		}
		buckets[region] = append(buckets[region], idx)
	}

	for _, bucket := range buckets {
		if len(bucket) == len(members) {
			// nothing separated
			return b.halve(members)
		}
	}
	return buckets
}

// halve splits members by index into the first two buckets.
func (b *builder[F]) halve(members []int) [][]int {
	half := len(members) / 2
	buckets := make([][]int, b.fanout)
	buckets[0] = members[:half:half]
	buckets[1] = members[half:]
	b.tree.ForcedSplits++
	return buckets
}

func (b *builder[F]) coincident(members []int) bool {
	first := b.particles[members[0]].Pos
	for _, idx := range members[1:] {
		for d, x := range b.particles[idx].Pos {
			if x != first[d] {
				return false
			}
		}
	}
	return true
}
