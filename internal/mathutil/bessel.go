// Package mathutil holds the special functions used by the filter designer.
package mathutil

import "math"

// BesselI0 returns the zeroth-order modified Bessel function of the first kind.
//
// Two polynomial approximations are used (Abramowitz & Stegun 9.8.1/9.8.2):
// a power series in (x/3.75)² for small arguments and an exponentially scaled
// asymptotic series otherwise. Relative error stays below 2e-7, far under the
// resolution a Kaiser window needs.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < besselSplit {
		t := x / besselSplit
		t *= t
		return 1 + t*(i0Small1+t*(i0Small2+t*(i0Small3+t*(i0Small4+t*(i0Small5+t*i0Small6)))))
	}

	t := besselSplit / ax
	p := i0Large0 + t*(i0Large1+t*(i0Large2+t*(i0Large3+t*(i0Large4+
		t*(i0Large5+t*(i0Large6+t*(i0Large7+t*i0Large8)))))))
	return math.Exp(ax) / math.Sqrt(ax) * p
}

// KaiserBeta maps a stopband attenuation in dB to the Kaiser window β.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserHighAtt:
		return kaiserHighSlope * (attenuation - kaiserHighBias)
	case attenuation >= kaiserMidAtt:
		d := attenuation - kaiserMidAtt
		return kaiserMidCoeff*math.Pow(d, kaiserMidPower) + kaiserMidLinear*d
	default:
		return 0
	}
}

// EstimateFilterLength returns an odd tap count that reaches attenuation dB
// with the given transition bandwidth (cycles per sample, 0.5 = Nyquist).
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = fallbackTransitionBW
	}

	taps := int(math.Ceil((attenuation-kaiserLengthBias)/(kaiserLengthSlope*transitionBW))) + 1
	if taps%2 == 0 {
		taps++
	}
	return min(max(taps, minFilterLength), maxFilterLength)
}

// AttenuationForBits returns the stopband attenuation that keeps aliasing
// below the quantisation floor of a bits-wide sample.
func AttenuationForBits(bits int) float64 {
	return float64(bits+1) * DBPerBit
}
