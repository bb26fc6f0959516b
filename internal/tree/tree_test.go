package tree

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/vecmath"
	"github.com/stretchr/testify/require"
)

func randomParticles(rng *rand.Rand, n, dims int) []dynamo.Particle[float64] {
	ps := make([]dynamo.Particle[float64], n)
	for i := range ps {
		pos := make(vecmath.Vec[float64], dims)
		vel := make(vecmath.Vec[float64], dims)
		for d := 0; d < dims; d++ {
			pos[d] = rng.Float64()*20 - 10
			vel[d] = rng.Float64()*2 - 1
		}
		ps[i] = dynamo.Particle[float64]{Pos: pos, Vel: vel, Mass: 1, Radius: rng.Float64() * 0.3}
	}
	return ps
}

// checkInvariants walks the arena and verifies boxes, offsets and counters.
func checkInvariants(t *testing.T, tr *Tree[float64], ps []dynamo.Particle[float64], active []int, horizon float64) {
	t.Helper()

	seen := make(map[int]int)
	var walk func(idx int) (size, count int)
	walk = func(idx int) (int, int) {
		n := &tr.Nodes[idx]
		require.Len(t, n.Children, 1<<tr.Dims)

		if n.IsLeaf() {
			want := ps[n.Particle].SweptBox(horizon)
			require.Equal(t, want.Min, n.Box.Min, "leaf %d min", idx)
			require.Equal(t, want.Max, n.Box.Max, "leaf %d max", idx)
			for _, c := range n.Children {
				require.Equal(t, NoChild, c)
			}
			seen[n.Particle]++
			require.Equal(t, 1, n.Size)
			require.Equal(t, 1, n.Count)
			return 1, 1
		}

		var union *vecmath.Box[float64]
		size, count := 1, 0
		for _, c := range n.Children {
			if c == NoChild {
				continue
			}
			require.Greater(t, c, idx, "child stored before parent")
			cs, cc := walk(c)
			size += cs
			count += cc
			if union == nil {
				b := tr.Nodes[c].Box.Clone()
				union = &b
			} else {
				u := union.Union(tr.Nodes[c].Box)
				union = &u
			}
		}
		require.NotNil(t, union, "internal node %d without children", idx)
		require.Equal(t, union.Min, n.Box.Min)
		require.Equal(t, union.Max, n.Box.Max)
		require.Equal(t, size, n.Size)
		require.Equal(t, count, n.Count)
		return size, count
	}

	size, count := walk(0)
	require.Equal(t, tr.Len(), size, "arena holds unreachable nodes")
	require.Equal(t, len(active), count)
	for _, idx := range active {
		require.Equal(t, 1, seen[idx], "particle %d leaf count", idx)
	}
}

func TestBuild_Empty(t *testing.T) {
	tr, err := Build[float64](nil, nil, 1, dynamo.DefaultOptions())
	require.NoError(t, err)
	require.True(t, tr.Empty())
	require.Nil(t, tr.Root())
	require.Empty(t, tr.Query(vecmath.Box[float64]{Min: vecmath.Vec[float64]{-1}, Max: vecmath.Vec[float64]{1}}))
}

func TestBuild_SingleLeaf(t *testing.T) {
	ps := []dynamo.Particle[float64]{
		{Pos: vecmath.Vec[float64]{1, 2}, Vel: vecmath.Vec[float64]{-1, 3}, Mass: 1, Radius: 0.5},
	}

	tr, err := Build(ps, []int{0}, 2, dynamo.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, tr.Len())

	root := tr.Root()
	require.True(t, root.IsLeaf())
	require.Equal(t, 0, root.Particle)
	require.Equal(t, vecmath.Vec[float64]{-1.5, 1.5}, root.Box.Min)
	require.Equal(t, vecmath.Vec[float64]{1.5, 8.5}, root.Box.Max)
}

func TestBuild_QuadrantBitmask(t *testing.T) {
	ps := []dynamo.Particle[float64]{
		{Pos: vecmath.Vec[float64]{-1, -1}, Vel: vecmath.Vec[float64]{0, 0}, Mass: 1},
		{Pos: vecmath.Vec[float64]{1, -1}, Vel: vecmath.Vec[float64]{0, 0}, Mass: 1},
		{Pos: vecmath.Vec[float64]{-1, 1}, Vel: vecmath.Vec[float64]{0, 0}, Mass: 1},
		{Pos: vecmath.Vec[float64]{1, 1}, Vel: vecmath.Vec[float64]{0, 0}, Mass: 1},
	}

	tr, err := Build(ps, dynamo.AllIndices(4), 1, dynamo.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 5, tr.Len())

	root := tr.Root()
	require.Equal(t, vecmath.Vec[float64]{0, 0}, root.Mid)
	for region, child := range root.Children {
		require.NotEqual(t, NoChild, child)
		require.Equal(t, region, tr.Nodes[child].Particle, "region %d", region)
	}
}

func TestBuild_SkipsEmptyBuckets(t *testing.T) {
	ps := []dynamo.Particle[float64]{
		{Pos: vecmath.Vec[float64]{0, 0, 0}, Vel: vecmath.Vec[float64]{0, 0, 0}, Mass: 1},
		{Pos: vecmath.Vec[float64]{2, 2, 2}, Vel: vecmath.Vec[float64]{0, 0, 0}, Mass: 1},
	}

	tr, err := Build(ps, []int{0, 1}, 1, dynamo.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, tr.Len())

	present := 0
	for _, c := range tr.Root().Children {
		if c != NoChild {
			present++
		}
	}
	require.Equal(t, 2, present)
	require.Equal(t, tr.Nodes[1].Particle, 0)
	require.Equal(t, tr.Root().Children[7], 2)
}

func TestBuild_Invariants(t *testing.T) {
	for _, dims := range []int{1, 2, 3, 4} {
		rng := rand.New(rand.NewSource(int64(dims)))
		ps := randomParticles(rng, 200, dims)

		// every other particle active
		active := make([]int, 0, len(ps)/2)
		for i := 0; i < len(ps); i += 2 {
			active = append(active, i)
		}

		tr, err := Build(ps, active, 1.5, dynamo.DefaultOptions())
		require.NoError(t, err, "dims=%d", dims)
		require.Equal(t, dims, tr.Dims)
		checkInvariants(t, tr, ps, active, 1.5)
	}
}

func TestBuild_CoincidentPositions(t *testing.T) {
	ps := make([]dynamo.Particle[float64], 9)
	for i := range ps {
		ps[i] = dynamo.Particle[float64]{
			Pos:    vecmath.Vec[float64]{3, 3},
			Vel:    vecmath.Vec[float64]{float64(i), 0},
			Mass:   1,
			Radius: 0.1,
		}
	}
	active := dynamo.AllIndices(len(ps))

	tr, err := Build(ps, active, 1, dynamo.DefaultOptions())
	require.NoError(t, err)
	require.Greater(t, tr.ForcedSplits, 0)
	checkInvariants(t, tr, ps, active, 1)

	opts := dynamo.DefaultOptions()
	opts.MaxDepth = 2
	_, err = Build(ps, active, 1, opts)
	require.True(t, errors.Is(err, dynamo.ErrDegenerateTree), "got %v", err)
}

func TestBuild_NodeCap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ps := randomParticles(rng, 50, 2)

	opts := dynamo.DefaultOptions()
	opts.MaxNodes = 10
	_, err := Build(ps, dynamo.AllIndices(len(ps)), 1, opts)
	require.True(t, errors.Is(err, dynamo.ErrResourceExhausted), "got %v", err)
}

func TestBuild_NodeCapExactFit(t *testing.T) {
	// Root plus two leaves; bucket 3 is empty and visited after the last leaf.
	ps := []dynamo.Particle[float64]{
		{Pos: vecmath.Vec[float64]{0, 1}, Vel: vecmath.Vec[float64]{0, 0}, Mass: 1},
		{Pos: vecmath.Vec[float64]{1, 0}, Vel: vecmath.Vec[float64]{0, 0}, Mass: 1},
	}
	active := dynamo.AllIndices(len(ps))

	opts := dynamo.DefaultOptions()
	opts.MaxNodes = 3
	tr, err := Build(ps, active, 1, opts)
	require.NoError(t, err)
	require.Equal(t, 3, tr.Len())
	require.Equal(t, NoChild, tr.Root().Children[3])
	checkInvariants(t, tr, ps, active, 1)

	opts.MaxNodes = 2
	_, err = Build(ps, active, 1, opts)
	require.True(t, errors.Is(err, dynamo.ErrResourceExhausted), "got %v", err)
}

func TestBuild_SkewedDistinctPositions(t *testing.T) {
	// Each centroid split peels off only the largest particle.
	ps := make([]dynamo.Particle[float64], 100)
	for i := range ps {
		ps[i] = dynamo.Particle[float64]{
			Pos:    vecmath.Vec[float64]{math.Pow(1000, 0.99*float64(i))},
			Vel:    vecmath.Vec[float64]{0},
			Mass:   1,
			Radius: 0.1,
		}
	}
	active := dynamo.AllIndices(len(ps))
	opts := dynamo.DefaultOptions()

	tr, err := Build(ps, active, 1, opts)
	require.NoError(t, err)
	require.Greater(t, tr.Depth, opts.MaxDepth)
	require.Greater(t, tr.ForcedSplits, 0)
	checkInvariants(t, tr, ps, active, 1)
}

func TestQuery_MatchesBruteForce(t *testing.T) {
	for _, dims := range []int{1, 2, 3} {
		rng := rand.New(rand.NewSource(42 + int64(dims)))
		ps := randomParticles(rng, 300, dims)
		active := dynamo.AllIndices(len(ps))
		horizon := 0.75

		tr, err := Build(ps, active, horizon, dynamo.DefaultOptions())
		require.NoError(t, err)

		for q := 0; q < 50; q++ {
			lo := make(vecmath.Vec[float64], dims)
			hi := make(vecmath.Vec[float64], dims)
			for d := 0; d < dims; d++ {
				a, b := rng.Float64()*24-12, rng.Float64()*24-12
				lo[d], hi[d] = vecmath.Min(a, b), vecmath.Max(a, b)
			}
			box := vecmath.Box[float64]{Min: lo, Max: hi}

			var want []int
			for _, i := range active {
				if ps[i].SweptBox(horizon).Overlaps(box) {
					want = append(want, i)
				}
			}

			got := tr.Query(box)
			sort.Ints(got)
			require.Equal(t, len(want), len(got), "dims=%d query=%d", dims, q)
			if len(want) > 0 {
				require.Equal(t, want, got)
			}
		}
	}
}

func TestAppendQuery_Subtree(t *testing.T) {
	ps := []dynamo.Particle[float64]{
		{Pos: vecmath.Vec[float64]{-5}, Vel: vecmath.Vec[float64]{0}, Mass: 1, Radius: 1},
		{Pos: vecmath.Vec[float64]{5}, Vel: vecmath.Vec[float64]{0}, Mass: 1, Radius: 1},
	}
	tr, err := Build(ps, []int{0, 1}, 1, dynamo.DefaultOptions())
	require.NoError(t, err)

	everything := vecmath.Box[float64]{Min: vecmath.Vec[float64]{-100}, Max: vecmath.Vec[float64]{100}}
	low := tr.Root().Children[0]
	require.Equal(t, []int{0}, tr.AppendQuery(nil, low, everything))

	dst := []int{42}
	dst = tr.AppendQuery(dst, 0, everything)
	require.Len(t, dst, 3)
	require.Equal(t, 42, dst[0])

	require.Empty(t, tr.AppendQuery(nil, 99, everything))
}
