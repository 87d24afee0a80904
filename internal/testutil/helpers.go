// Package testutil provides signal generators and assertions shared by the
// resampler tests.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Sine returns n samples of amp·sin(2π·freq·i/rate).
func Sine(n int, freq, rate, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

// Constant returns n copies of v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ToFloat32 narrows s to float32.
func ToFloat32(s []float64) []float32 {
	out := make([]float32, len(s))
	for i, v := range s {
		out[i] = float32(v)
	}
	return out
}

// RMS returns the root mean square of s.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

// Mean returns the arithmetic mean of s.
func Mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

// Spectrum returns the Hann-windowed magnitude spectrum of s and the
// frequency in Hz of each bin.
func Spectrum(s []float64, rate float64) (mags, freqs []float64) {
	n := len(s)
	windowed := make([]float64, n)
	for i, v := range s {
		windowed[i] = v * 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)
	mags = make([]float64, len(coeffs))
	freqs = make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
		freqs[i] = fft.Freq(i) * rate
	}
	return mags, freqs
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin.
func DominantFrequency(s []float64, rate float64) float64 {
	mags, freqs := Spectrum(s, rate)
	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}
	return freqs[best]
}

// PeakToRestDB returns how far, in dB, the strongest spectral peak stands
// above the strongest bin outside ±guard bins around it.
func PeakToRestDB(s []float64, rate float64, guard int) float64 {
	mags, _ := Spectrum(s, rate)
	peak := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	var rest float64
	for i := 1; i < len(mags); i++ {
		if i >= peak-guard && i <= peak+guard {
			continue
		}
		rest = max(rest, mags[i])
	}
	return 20 * math.Log10(mags[peak]/max(rest, 1e-300))
}

// AssertNoNaNOrInf fails when any element is NaN or infinite.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, "non-finite sample", "s[%d] = %v", i, v)
		}
	}
	return true
}

// AssertAllInRange fails when any element lies outside [minVal, maxVal].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertFrequency fails when the dominant tone of s is further than tol Hz
// from want.
func AssertFrequency(t *testing.T, s []float64, rate, want, tol float64) bool {
	t.Helper()
	got := DominantFrequency(s, rate)
	return assert.InDelta(t, want, got, tol, "dominant frequency %.1f Hz, want %.1f Hz", got, want)
}
