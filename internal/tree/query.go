package tree

import "github.com/san-kum/ccdsim/internal/vecmath"

// Query returns the indices of every particle whose swept box overlaps box.
// Order follows the node layout and is stable for a given tree.
func (t *Tree[F]) Query(box vecmath.Box[F]) []int {
	return t.AppendQuery(nil, 0, box)
}

// AppendQuery appends to dst the particles under the node at root whose
// swept box overlaps box, and returns the extended slice.
func (t *Tree[F]) AppendQuery(dst []int, root int, box vecmath.Box[F]) []int {
	if t.Empty() || root < 0 || root >= len(t.Nodes) {
		return dst
	}

	n := &t.Nodes[root]
	if !n.Box.Overlaps(box) {
		return dst
	}
	if n.IsLeaf() {
		return append(dst, n.Particle)
	}
	for _, child := range n.Children {
		if child != NoChild {
			dst = t.AppendQuery(dst, child, box)
		}
	}
	return dst
}
