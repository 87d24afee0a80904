package engine

import "github.com/tphakala/go-soxr/internal/simdops"

// appendSamples appends src to dst at the stage's precision.
func appendSamples[F simdops.Float](dst []F, src []float64) []F {
	if d, ok := any(dst).([]float64); ok {
		return any(append(d, src...)).([]F)
	}
	for _, v := range src {
		dst = append(dst, F(v))
	}
	return dst
}
