package tree

import (
	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

const (
	// NoChild marks an empty child slot.
	NoChild = -1
	// NoParticle marks an internal node.
	NoParticle = -1
)

type Node[F constraints.Float] struct {
	// Box bounds the swept volume of every particle in the subtree.
	Box vecmath.Box[F]
	// Mid is the partition centroid; only meaningful for internal nodes.
	Mid vecmath.Vec[F]
	// Particle is the particle index for a leaf, NoParticle otherwise.
	Particle int
	// Children holds 2^D absolute node indices or NoChild.
	Children []int
	// Size counts the nodes in this subtree, including this one.
	Size int
	// Count counts the particles in this subtree.
	Count int
}

func (n *Node[F]) IsLeaf() bool { return n.Particle != NoParticle }

type Tree[F constraints.Float] struct {
	Nodes []Node[F]
	Dims  int
	// Depth is the deepest level reached; a lone leaf root has depth 0.
	Depth int
	// ForcedSplits counts partitions that did not separate their members
	// and had to be split by index instead.
	ForcedSplits int
}

func (t *Tree[F]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

func (t *Tree[F]) Empty() bool { return t.Len() == 0 }

// Root returns the root node, or nil for an empty tree.
func (t *Tree[F]) Root() *Node[F] {
	if t.Empty() {
		return nil
	}
	return &t.Nodes[0]
}
