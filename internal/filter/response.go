package filter

import "math"

// Passband rolloff compensation constants, after lsx_inv_f_resp in libsoxr.
const (
	sinePhiA3 = 2.0517e-07
	sinePhiA2 = -1.1303e-04
	sinePhiA1 = 0.023154
	sinePhiA0 = 0.55924

	minRolloffAttenuation = 1.0
	maxRolloffAttenuation = 300.0
	sineEpsilon           = 1e-10
)

// Response is the sampled frequency response of an FIR filter.
type Response struct {
	Frequencies []float64 // cycles per sample, [0, 0.5)
	Magnitude   []float64
	Phase       []float64
}

// FrequencyResponse evaluates the DTFT of coeffs at numPoints frequencies
// evenly spread from DC towards Nyquist.
func FrequencyResponse(coeffs []float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = 512
	}
	r := Response{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}
	for k := range numPoints {
		f := float64(k) / float64(2*numPoints)
		re, im := Evaluate(coeffs, f)
		r.Frequencies[k] = f
		r.Magnitude[k] = math.Hypot(re, im)
		r.Phase[k] = math.Atan2(im, re)
	}
	return r
}

// Evaluate returns the complex response of coeffs at a single frequency in
// cycles per sample.
func Evaluate(coeffs []float64, freq float64) (re, im float64) {
	omega := 2 * math.Pi * freq
	for n, h := range coeffs {
		s, c := math.Sincos(omega * float64(n))
		re += h * c
		im -= h * s
	}
	return re, im
}

// MagnitudeDB converts a linear magnitude to dB, flooring at -200 dB.
func MagnitudeDB(magnitude float64) float64 {
	const floor = 1e-10
	return 20 * math.Log10(max(magnitude, floor))
}

// InvFResp returns the position inside the transition band, as a fraction
// from its upper edge, at which a Kaiser filter of the given attenuation has
// fallen by drop dB (drop is negative). Moving the passband edge down by
// (Fs-Fp)/(1-InvFResp) keeps the droop at the requested edge within drop.
func InvFResp(drop, attenuation float64) float64 {
	a := min(max(attenuation, minRolloffAttenuation), maxRolloffAttenuation)
	phi := ((sinePhiA3*a+sinePhiA2)*a+sinePhiA1)*a + sinePhiA0

	level := math.Pow(10, drop/20)
	s := level
	if level > 0.5 {
		s = 1 - level
	}

	sv := max(math.Sin(phi/2), sineEpsilon)
	pow := math.Log(0.5) / math.Log(sv)
	x := math.Asin(math.Pow(s, 1/pow)) / phi
	if level > 0.5 {
		return x
	}
	return 1 - x
}
