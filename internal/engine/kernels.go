package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-soxr/internal/filter"
	"github.com/tphakala/go-soxr/internal/mathutil"
	"github.com/tphakala/go-soxr/internal/simdops"
)

// sincKernel evaluates a Kaiser-windowed sinc stored as an oversampled
// table. When decimating, the kernel is stretched by 1/scale so its cutoff
// follows the output Nyquist.
type sincKernel[F simdops.Float] struct {
	table   *filter.InterpolationTable
	scratch []F
	ops     *simdops.Ops[F]
}

func newSincKernel[F simdops.Float](cfg Config) (*sincKernel[F], error) {
	b := designBand(cfg, 1)

	half := (mathutil.EstimateFilterLength(b.attenuation, b.transition()) + 1) / 2
	half = min(max(half, minHalfTaps), maxHalfTaps)

	oversample := oversampleLow
	switch {
	case cfg.Bits >= bitsVeryHigh:
		oversample = oversampleVeryHigh
	case cfg.Bits >= bitsHigh:
		oversample = oversampleHigh
	}

	table, err := filter.DesignInterpolationTable(b.cutoff(), b.attenuation, half, oversample)
	if err != nil {
		return nil, fmt.Errorf("%w: sinc table: %w", ErrInvalidConfig, err)
	}
	return &sincKernel[F]{table: table, ops: simdops.For[F]()}, nil
}

func (k *sincKernel[F]) reach(scale float64) (before, after int) {
	r := int(math.Ceil(float64(k.table.HalfTaps)/scale)) + 1
	return r, r
}

func (k *sincKernel[F]) eval(hist []F, pos, scale float64) F {
	r := float64(k.table.HalfTaps) / scale
	first := max(0, int(math.Ceil(pos-r)))
	last := min(len(hist)-1, int(math.Floor(pos+r)))
	n := last - first + 1
	if n <= 0 {
		return 0
	}

	if cap(k.scratch) < n {
		k.scratch = make([]F, n)
	}
	coeffs := k.scratch[:n]
	for i := range coeffs {
		coeffs[i] = F(k.table.At((pos - float64(first+i)) * scale))
	}
	return k.ops.DotProductUnsafe(hist[first:last+1], coeffs) * F(scale)
}

func (k *sincKernel[F]) clone() kernel[F] {
	return &sincKernel[F]{table: k.table, ops: k.ops}
}

func (k *sincKernel[F]) name() string { return "vr-sinc" }

// cubicKernel is 4-point Hermite interpolation with no anti-alias filter.
type cubicKernel[F simdops.Float] struct{}

func newCubicKernel[F simdops.Float]() *cubicKernel[F] {
	return &cubicKernel[F]{}
}

func (cubicKernel[F]) reach(float64) (before, after int) {
	return 1, 2
}

func (cubicKernel[F]) eval(hist []F, pos, _ float64) F {
	i := int(pos)
	x := F(pos - float64(i))
	y0, y1, y2, y3 := hist[i-1], hist[i], hist[i+1], hist[i+2]

	a := -hermite05*y0 + hermite15*y1 - hermite15*y2 + hermite05*y3
	b := y0 - hermite25*y1 + 2*y2 - hermite05*y3
	c := -hermite05*y0 + hermite05*y2
	return ((a*x+b)*x+c)*x + y1
}

func (cubicKernel[F]) clone() kernel[F] { return cubicKernel[F]{} }

func (cubicKernel[F]) name() string { return "cubic" }
