package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-soxr/internal/mathutil"
)

// InterpolationTable is one half of a continuous windowed-sinc kernel,
// sampled Oversample times per input sample. Values between entries are
// linearly interpolated.
type InterpolationTable struct {
	Coeffs     []float64 // Coeffs[i] = h(i / Oversample); two trailing zeros
	Oversample int
	HalfTaps   int // kernel support is ±HalfTaps input samples
}

// DesignInterpolationTable samples a Kaiser-windowed sinc with the given
// cutoff (cycles per sample) over ±halfTaps samples. The table is scaled so
// that the kernel integrates to one.
func DesignInterpolationTable(cutoff, attenuation float64, halfTaps, oversample int) (*InterpolationTable, error) {
	p := Params{
		NumTaps:     2*halfTaps*oversample + 1,
		Cutoff:      cutoff,
		Attenuation: attenuation,
		Gain:        1,
	}
	if halfTaps < 1 || oversample < 1 {
		return nil, fmt.Errorf("%w: table of %d taps x%d", ErrInvalidParams, halfTaps, oversample)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	beta := mathutil.KaiserBeta(attenuation)
	norm := mathutil.BesselI0(beta)
	n := halfTaps * oversample
	coeffs := make([]float64, n+2)

	var area float64
	for i := 0; i <= n; i++ {
		x := float64(i) / float64(oversample)
		r := x / float64(halfTaps)
		w := mathutil.BesselI0(beta*math.Sqrt(max(0, 1-r*r))) / norm
		coeffs[i] = sinc(2*cutoff, x) * w
		if i == 0 {
			area += coeffs[i]
		} else {
			area += 2 * coeffs[i]
		}
	}

	scale := float64(oversample) / area
	for i := range coeffs {
		coeffs[i] *= scale
	}

	return &InterpolationTable{Coeffs: coeffs, Oversample: oversample, HalfTaps: halfTaps}, nil
}

// At returns the kernel value at distance x (input samples) from its centre.
func (t *InterpolationTable) At(x float64) float64 {
	pos := math.Abs(x) * float64(t.Oversample)
	i := int(pos)
	if i >= len(t.Coeffs)-1 {
		return 0
	}
	frac := pos - float64(i)
	return t.Coeffs[i] + frac*(t.Coeffs[i+1]-t.Coeffs[i])
}
