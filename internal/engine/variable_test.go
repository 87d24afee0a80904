package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-soxr/internal/testutil"
)

func newSincStage(t *testing.T, ratio float64, bits int) *VariableStage[float64] {
	t.Helper()
	cfg := testConfig(ratio, bits)
	cfg.VariableRate = true
	k, err := newSincKernel[float64](cfg)
	require.NoError(t, err)
	s, err := NewVariableStage[float64](cfg, k)
	require.NoError(t, err)
	return s
}

func TestVariableStage_OutputLength(t *testing.T) {
	const n = 4000
	input := testutil.Sine(n, 440, 44100, 0.5)
	for _, ratio := range []float64{48000.0 / 44100.0, 44100.0 / 48000.0, 2.5, 0.3} {
		s := newSincStage(t, ratio, 16)
		out := processAll(t, s, input, 500)
		assert.InDelta(t, n*ratio, float64(len(out)), 1.5, "ratio %v", ratio)
	}
}

func TestVariableStage_DCGain(t *testing.T) {
	for _, ratio := range []float64{1.1, 0.7} {
		s := newSincStage(t, ratio, 20)
		out := processAll(t, s, testutil.Constant(6000, 1), 1000)
		testutil.AssertAllInRange(t, out[len(out)/4:3*len(out)/4], 1-1e-4, 1+1e-4)
	}
}

func TestVariableStage_Alignment(t *testing.T) {
	for _, ratio := range []float64{2, 0.5} {
		s := newSincStage(t, ratio, 20)
		input := make([]float64, 800)
		input[300] = 1
		out := processAll(t, s, input, len(input))
		assert.Equal(t, int(300*ratio), argmax(out), "ratio %v", ratio)
	}
}

func TestVariableStage_Delay(t *testing.T) {
	const ratio = 48000.0 / 44100.0
	s := newSincStage(t, ratio, 20)

	out, err := s.Process(testutil.Constant(4410, 0.25))
	require.NoError(t, err)
	assert.InDelta(t, 4410*ratio, float64(len(out))+s.Delay(), 1e-6)
	assert.Greater(t, s.Delay(), 0.0)
}

func TestVariableStage_SlewToNewRatio(t *testing.T) {
	const (
		inRate = 44100.0
		tone   = 1000.0
		slew   = 2000
	)
	s := newSincStage(t, 1, 20)
	require.NoError(t, s.SetRatio(2, slew))
	assert.InDelta(t, 1, s.Ratio(), 1e-12, "slew starts from the current ratio")

	out := processAll(t, s, testutil.Sine(44100, tone, inRate, 0.5), 4096)
	assert.InDelta(t, 2, s.Ratio(), 1e-12)
	assert.Greater(t, len(out), 44100+slew/2)

	// After the ramp the output runs at twice the input rate.
	tail := out[len(out)-16384-2048 : len(out)-2048]
	testutil.AssertFrequency(t, tail, 2*inRate, tone, 2*inRate/16384)
}

func TestVariableStage_ImmediateRatioChange(t *testing.T) {
	s := newSincStage(t, 1, 16)
	_, err := s.Process(testutil.Constant(1000, 0.5))
	require.NoError(t, err)

	require.NoError(t, s.SetRatio(0.5, 0))
	assert.InDelta(t, 0.5, s.Ratio(), 1e-15)

	require.ErrorIs(t, s.SetRatio(0, 0), ErrInvalidRatio)
	require.ErrorIs(t, s.SetRatio(math.Inf(1), 10), ErrInvalidRatio)
	require.ErrorIs(t, s.SetRatio(math.NaN(), 10), ErrInvalidRatio)
	assert.InDelta(t, 0.5, s.Ratio(), 1e-15, "rejected ratios leave state untouched")
}

func TestVariableStage_HiPrecClock(t *testing.T) {
	cfg := testConfig(math.Sqrt2, 20)
	cfg.VariableRate = true
	input := testutil.Sine(6000, 1000, 44100, 0.5)

	k1, err := newSincKernel[float64](cfg)
	require.NoError(t, err)
	lo, err := NewVariableStage[float64](cfg, k1)
	require.NoError(t, err)

	cfg.HiPrecClock = true
	k2, err := newSincKernel[float64](cfg)
	require.NoError(t, err)
	hi, err := NewVariableStage[float64](cfg, k2)
	require.NoError(t, err)

	a := processAll(t, lo, input, 999)
	b := processAll(t, hi, input, 999)
	n := min(len(a), len(b)) - 1
	for i := range n {
		assert.InDelta(t, a[i], b[i], 1e-6, "sample %d", i)
	}
}

func TestVariableStage_Reset(t *testing.T) {
	s := newSincStage(t, 1.5, 16)
	require.NoError(t, s.SetRatio(1.25, 100))
	_ = processAll(t, s, testutil.Sine(500, 300, 44100, 1), 64)

	s.Reset()
	assert.InDelta(t, 1.25, s.Ratio(), 1e-15, "reset completes the pending ratio")
	assert.Zero(t, s.Delay())

	fresh := newSincStage(t, 1.25, 16)
	input := testutil.Sine(2000, 700, 44100, 0.5)
	assert.Equal(t, processAll(t, fresh, input, 300), processAll(t, s, input, 300))
}

func TestCubicKernel_ReproducesRamp(t *testing.T) {
	const ratio = 1.5
	s, err := NewVariableStage[float64](Config{Ratio: ratio, Quick: true}, newCubicKernel[float64]())
	require.NoError(t, err)

	input := make([]float64, 300)
	for i := range input {
		input[i] = float64(i)
	}
	out, err := s.Process(input)
	require.NoError(t, err)
	require.Greater(t, len(out), 400)

	for k := 2; k < len(out); k++ {
		assert.InDelta(t, float64(k)/ratio, out[k], 1e-9, "output %d", k)
	}
}

func TestCubicKernel_Float32(t *testing.T) {
	s, err := NewVariableStage[float32](Config{Ratio: 0.5, Quick: true}, newCubicKernel[float32]())
	require.NoError(t, err)

	out := processAll(t, s, testutil.Constant(1000, 0.5), 100)
	assert.InDelta(t, 500, len(out), 1)
	testutil.AssertAllInRange(t, out[2:len(out)-2], 0.5-1e-6, 0.5+1e-6)
	assert.Equal(t, "cubic-f32", s.Name())
}

func BenchmarkVariableStage(b *testing.B) {
	for _, bits := range []int{16, 20, 28} {
		cfg := testConfig(48000.0/44100.0, bits)
		k, err := newSincKernel[float64](cfg)
		require.NoError(b, err)
		s, err := NewVariableStage[float64](cfg, k)
		require.NoError(b, err)
		input := testutil.Sine(4410, 1000, 44100, 0.5)
		b.Run(s.Name(), func(b *testing.B) {
			for b.Loop() {
				_, _ = s.Process(input)
			}
		})
	}
}

func TestVariableStage_CloneSharesTable(t *testing.T) {
	s := newSincStage(t, 0.75, 16)
	c, ok := s.Clone().(*VariableStage[float64])
	require.True(t, ok)

	sk := s.kernel.(*sincKernel[float64])
	ck := c.kernel.(*sincKernel[float64])
	assert.Same(t, sk.table, ck.table)

	input := testutil.Sine(2000, 500, 44100, 0.5)
	want := processAll(t, newSincStage(t, 0.75, 16), input, 250)
	assert.Equal(t, want, processAll(t, c, input, 250))
	assert.Equal(t, want, processAll(t, s, input, 250), "clone does not disturb the original")
}
