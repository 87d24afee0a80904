// Package simdops binds the float32 and float64 kernels of
// github.com/tphakala/simd behind one generic table, so the DSP stages are
// written once for both precisions.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the set of sample types the stages compute in.
type Float interface {
	float32 | float64
}

// Ops holds the SIMD kernels for one precision.
type Ops[F Float] struct {
	// DotProductUnsafe requires len(a) == len(b).
	DotProductUnsafe func(a, b []F) F

	Sum   func(a []F) F
	Scale func(dst, a []F, s F)

	// CubicInterpDot computes Σ hist[i]·(a[i] + x·(b[i] + x·(c[i] + x·d[i]))),
	// a dot product against coefficients interpolated between two phases.
	CubicInterpDot func(hist, a, b, c, d []F, x F) F
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
		CubicInterpDot:   f32.CubicInterpDot,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
		CubicInterpDot:   f64.CubicInterpDot,
	}
)

// For returns the kernel table for F.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		return any(&ops32).(*Ops[F])
	default:
		return any(&ops64).(*Ops[F])
	}
}

// Bits returns the width of F in bits.
func Bits[F Float]() int {
	var zero F
	if _, ok := any(zero).(float32); ok {
		return 32
	}
	return 64
}

// CPU describes the instruction sets the kernels dispatch to.
func CPU() string {
	return cpu.Info()
}
