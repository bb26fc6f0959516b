// Package tree builds a flattened 2^D-ary spatial tree over swept particle
// boxes and answers axis-aligned range queries against it.
//
// Nodes live in a single contiguous slice. A parent is stored before its
// subtree and refers to children by absolute index into that slice, so a
// tree can be copied or shipped as one block:
//
//	t, err := tree.Build(particles, active, horizon, dynamo.DefaultOptions())
//	hits := t.Query(box)
//
// A tree is immutable once built and is valid only for the particle
// positions and horizon it was built from.
package tree
