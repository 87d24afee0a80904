package soxr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-soxr/internal/testutil"
)

func TestResampleMono_Tone(t *testing.T) {
	tests := []struct {
		name    string
		in, out float64
		recipe  QualityRecipe
	}{
		{"CD to DAT high", RateCD, RateDAT, QualityHigh},
		{"DAT to CD medium", RateDAT, RateCD, QualityMedium},
		{"CD to 2x low", RateCD, RateHiRes88, QualityLow},
		{"DAT to VoIP very high", RateDAT, RateVoIP, QualityVeryHigh},
		{"VoIP to DAT quick", RateVoIP, RateDAT, QualityQuick},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := int(tt.in) / 2
			input := testutil.Sine(n, 1000, tt.in, 0.5)

			got, err := ResampleMono(input, tt.in, tt.out, tt.recipe)
			require.NoError(t, err)
			assert.InDelta(t, math.Round(float64(n)*tt.out/tt.in), len(got), 1)

			testutil.AssertNoNaNOrInf(t, got)
			settled := got[len(got)/8 : len(got)*7/8]
			testutil.AssertFrequency(t, settled, tt.out, 1000, 5)
			assert.InDelta(t, 0.5/math.Sqrt2, testutil.RMS(settled), 0.02)
		})
	}
}

func TestResampleStereo(t *testing.T) {
	left := testutil.Sine(4800, 440, RateDAT, 0.5)
	right := testutil.Sine(4800, 880, RateDAT, 0.5)

	outL, outR, err := ResampleStereo(left, right, RateDAT, RateCD, QualityHigh)
	require.NoError(t, err)
	assert.Len(t, outL, 4410)
	assert.Len(t, outR, 4410)
	testutil.AssertFrequency(t, outL[441:], RateCD, 440, 15)
	testutil.AssertFrequency(t, outR[441:], RateCD, 880, 15)

	_, _, err = ResampleStereo(left, right[:10], RateDAT, RateCD, QualityHigh)
	assert.ErrorIs(t, err, ErrBufferMisaligned)
}

func TestOneShot_IntegerFormats(t *testing.T) {
	in := make([]int16, 2*1000)
	for i := range 1000 {
		in[2*i] = int16(8000 * math.Sin(2*math.Pi*300*float64(i)/8000))
		in[2*i+1] = -in[2*i]
	}
	out, err := OneShot[int16, int32](8000, 16000, 2, in, nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 2*2000)

	planar := Deinterleave(out, 2)
	for i := range planar[0] {
		assert.InDelta(t, -int64(planar[0][i]), int64(planar[1][i]), 1<<17, "frame %d", i)
	}

	_, err = OneShot[int16, int16](8000, 16000, 2, in[:3], nil, nil)
	assert.ErrorIs(t, err, ErrBufferMisaligned)
	_, err = OneShot[int16, int16](8000, 16000, 0, in, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)
}

func TestInterleaveRoundTrip(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	packed := Interleave(a, b)
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, packed)
	assert.Equal(t, [][]float32{a, b}, Deinterleave(packed, 2))
	assert.Nil(t, Interleave[float32]())
}
