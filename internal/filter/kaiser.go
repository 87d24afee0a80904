// Package filter designs the Kaiser-windowed low-pass FIR filters behind the
// resampling stages.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-soxr/internal/mathutil"
	"github.com/tphakala/go-soxr/internal/simdops"
)

const (
	minTaps = 3
	// MaxTaps bounds a single prototype filter. Polyphase banks and
	// interpolation tables are designed as one long prototype, so the limit
	// is far above what a plain FIR would need.
	MaxTaps = 1 << 21

	sincZeroThreshold = 1e-12
)

// ErrInvalidParams is returned when a filter cannot be designed from the
// requested parameters.
var ErrInvalidParams = errors.New("invalid filter parameters")

// KaiserWindow returns a symmetric Kaiser window of the given length.
//
//	w[n] = I₀(β·√(1 − ((n − α)/α)²)) / I₀(β),  α = (length − 1)/2
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / 2
	norm := mathutil.BesselI0(beta)
	for n := range window {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(max(0, 1-x*x))) / norm
	}
	return window
}

// Params describes a low-pass prototype.
type Params struct {
	// NumTaps is the filter length. Odd lengths give an integer group delay.
	NumTaps int

	// Cutoff is the -6 dB point in cycles per sample, in (0, 0.5).
	Cutoff float64

	// Attenuation is the stopband attenuation in dB; it selects the Kaiser β.
	Attenuation float64

	// Gain is the DC gain of the designed filter.
	Gain float64
}

// Validate checks the parameters without designing anything.
func (p *Params) Validate() error {
	switch {
	case p.NumTaps < minTaps || p.NumTaps > MaxTaps:
		return fmt.Errorf("%w: %d taps (allowed %d..%d)", ErrInvalidParams, p.NumTaps, minTaps, MaxTaps)
	case !(p.Cutoff > 0 && p.Cutoff < 0.5):
		return fmt.Errorf("%w: cutoff %g outside (0, 0.5)", ErrInvalidParams, p.Cutoff)
	case p.Attenuation < 0 || math.IsNaN(p.Attenuation):
		return fmt.Errorf("%w: attenuation %g dB", ErrInvalidParams, p.Attenuation)
	case !(p.Gain > 0) || math.IsInf(p.Gain, 0):
		return fmt.Errorf("%w: gain %g", ErrInvalidParams, p.Gain)
	}
	return nil
}

// DesignLowPass returns the coefficients of a linear-phase windowed-sinc
// low-pass filter normalized to p.Gain at DC.
func DesignLowPass(p Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	coeffs := KaiserWindow(p.NumTaps, mathutil.KaiserBeta(p.Attenuation))
	center := float64(p.NumTaps-1) / 2
	for n := range coeffs {
		coeffs[n] *= sinc(2*p.Cutoff, float64(n)-center)
	}

	ops := simdops.For[float64]()
	if sum := ops.Sum(coeffs); math.Abs(sum) > sincZeroThreshold {
		ops.Scale(coeffs, coeffs, p.Gain/sum)
	}
	return coeffs, nil
}

// sinc returns bw·sinc(bw·x), the ideal low-pass impulse response with a
// normalized bandwidth of bw (1 = full band).
func sinc(bw, x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return bw
	}
	return math.Sin(math.Pi*bw*x) / (math.Pi * x)
}
