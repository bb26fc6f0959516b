package vecmath

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Vec is a fixed-dimension vector. The dimension is the slice length and is
// shared by every vector of one particle system.
type Vec[F constraints.Float] []F

func Zero[F constraints.Float](dims int) Vec[F] {
	return make(Vec[F], dims)
}

func (v Vec[F]) Dims() int { return len(v) }

func (v Vec[F]) Clone() Vec[F] {
	c := make(Vec[F], len(v))
	copy(c, v)
	return c
}

func (v Vec[F]) Add(other Vec[F]) Vec[F] {
	result := make(Vec[F], len(v))
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

func (v Vec[F]) Sub(other Vec[F]) Vec[F] {
	result := make(Vec[F], len(v))
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result
}

func (v Vec[F]) Scale(factor F) Vec[F] {
	result := make(Vec[F], len(v))
	for i := range v {
		result[i] = v[i] * factor
	}
	return result
}

func (v Vec[F]) Dot(other Vec[F]) F {
	var sum F
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

// AddScaled adds other*factor to v in place.
func (v Vec[F]) AddScaled(other Vec[F], factor F) {
	for i := range v {
		v[i] += other[i] * factor
	}
}

func (v Vec[F]) Norm() F {
	return Sqrt(v.Dot(v))
}

func (v Vec[F]) IsValid() bool {
	for _, c := range v {
		if !IsFinite(c) {
			return false
		}
	}
	return true
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite[F constraints.Float](x F) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float64 widens v for output and storage.
func (v Vec[F]) Float64() []float64 {
	out := make([]float64, len(v))
	for i, c := range v {
		out[i] = float64(c)
	}
	return out
}

func FromFloat64[F constraints.Float](in []float64) Vec[F] {
	v := make(Vec[F], len(in))
	for i, c := range in {
		v[i] = F(c)
	}
	return v
}

func Sqrt[F constraints.Float](x F) F {
	return F(math.Sqrt(float64(x)))
}

func Min[F constraints.Float](a, b F) F {
	if a < b {
		return a
	}
	return b
}

func Max[F constraints.Float](a, b F) F {
	if a > b {
		return a
	}
	return b
}

// Epsilon returns the machine epsilon of F.
func Epsilon[F constraints.Float]() F {
	if F(1)+F(0x1p-30) == 1 {
		return 0x1p-23
	}
	return 0x1p-52
}
