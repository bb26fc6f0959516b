package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVec_Arithmetic(t *testing.T) {
	a := Vec[float64]{1, 2, 3}
	b := Vec[float64]{4, 5, 6}

	require.Equal(t, Vec[float64]{5, 7, 9}, a.Add(b))
	require.Equal(t, Vec[float64]{3, 3, 3}, b.Sub(a))
	require.Equal(t, Vec[float64]{2, 4, 6}, a.Scale(2))
	require.Equal(t, 32.0, a.Dot(b))

	// inputs untouched
	require.Equal(t, Vec[float64]{1, 2, 3}, a)
}

func TestVec_AddScaled(t *testing.T) {
	v := Vec[float32]{1, 1}
	v.AddScaled(Vec[float32]{2, -4}, 0.5)
	require.Equal(t, Vec[float32]{2, -1}, v)
}

func TestVec_Norm(t *testing.T) {
	tests := []struct {
		v        Vec[float64]
		expected float64
	}{
		{Vec[float64]{3, 4}, 5},
		{Vec[float64]{0, 0, 0}, 0},
		{Vec[float64]{1, 1, 1, 1}, 2},
	}

	for _, tt := range tests {
		require.InDelta(t, tt.expected, tt.v.Norm(), 1e-12)
	}
}

func TestVec_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec[float64]
		valid bool
	}{
		{"empty", Vec[float64]{}, true},
		{"normal", Vec[float64]{1, -2}, true},
		{"NaN", Vec[float64]{1, math.NaN()}, false},
		{"+Inf", Vec[float64]{math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.valid, tt.v.IsValid())
		})
	}
}

func TestSwept(t *testing.T) {
	pos := Vec[float64]{0, 10}
	vel := Vec[float64]{2, -1}

	b := Swept(pos, vel, 0.5, 3)
	require.Equal(t, Vec[float64]{-0.5, 6.5}, b.Min)
	require.Equal(t, Vec[float64]{6.5, 10.5}, b.Max)

	still := Swept(pos, Vec[float64]{0, 0}, 1, 100)
	require.Equal(t, Vec[float64]{-1, 9}, still.Min)
	require.Equal(t, Vec[float64]{1, 11}, still.Max)
}

func TestBox_Overlaps(t *testing.T) {
	unit := Box[float64]{Min: Vec[float64]{0, 0}, Max: Vec[float64]{1, 1}}

	tests := []struct {
		name     string
		other    Box[float64]
		expected bool
	}{
		{"inside", Box[float64]{Min: Vec[float64]{0.2, 0.2}, Max: Vec[float64]{0.4, 0.4}}, true},
		{"touching face", Box[float64]{Min: Vec[float64]{1, 0}, Max: Vec[float64]{2, 1}}, true},
		{"apart on x", Box[float64]{Min: Vec[float64]{1.1, 0}, Max: Vec[float64]{2, 1}}, false},
		{"apart on y only", Box[float64]{Min: Vec[float64]{0, -3}, Max: Vec[float64]{1, -0.5}}, false},
		{"enclosing", Box[float64]{Min: Vec[float64]{-5, -5}, Max: Vec[float64]{5, 5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, unit.Overlaps(tt.other))
			require.Equal(t, tt.expected, tt.other.Overlaps(unit))
		})
	}
}

func TestBox_Union(t *testing.T) {
	a := Box[float64]{Min: Vec[float64]{0, 0}, Max: Vec[float64]{1, 1}}
	b := Box[float64]{Min: Vec[float64]{-1, 0.5}, Max: Vec[float64]{0.5, 3}}

	u := a.Union(b)
	require.Equal(t, Vec[float64]{-1, 0}, u.Min)
	require.Equal(t, Vec[float64]{1, 3}, u.Max)
	require.True(t, u.Contains(a))
	require.True(t, u.Contains(b))
	require.False(t, a.Contains(u))
}
