package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-soxr/internal/engine"
	"github.com/tphakala/go-soxr/internal/testutil"
)

func stageBuilder(cfg engine.Config) func() (engine.Stage, error) {
	return func() (engine.Stage, error) { return engine.NewStage(cfg) }
}

func lowConfig(ratio float64) engine.Config {
	return engine.Config{Ratio: ratio, Bits: 16, PassbandEnd: 0.67625, StopbandBegin: 1}
}

func feedTones(t *testing.T, b *Bank, n int) {
	t.Helper()
	inputs := make([][]float64, b.NumChannels())
	for ch := range inputs {
		inputs[ch] = testutil.Sine(n, 200*float64(ch+1), 44100, 0.5)
	}
	require.NoError(t, b.Feed(context.Background(), inputs))
}

func drain(b *Bank) [][]float64 {
	out := make([][]float64, b.NumChannels())
	n := b.Pending()
	for ch := range out {
		out[ch] = make([]float64, n)
		b.Read(ch, out[ch])
	}
	return out
}

func TestBank_ParallelMatchesSequential(t *testing.T) {
	cfg := lowConfig(48000.0 / 44100.0)

	seq, err := NewBank(6, 1, stageBuilder(cfg))
	require.NoError(t, err)
	par, err := NewBank(6, 4, stageBuilder(cfg))
	require.NoError(t, err)
	assert.Equal(t, 1, seq.Threads())
	assert.Equal(t, 4, par.Threads())

	for range 3 {
		feedTones(t, seq, 1000)
		feedTones(t, par, 1000)
	}
	require.NoError(t, seq.Flush(context.Background()))
	require.NoError(t, par.Flush(context.Background()))

	assert.Equal(t, seq.Pending(), par.Pending())
	assert.Equal(t, int(math.Round(3000*cfg.Ratio)), seq.Pending())
	assert.Equal(t, drain(seq), drain(par))
}

func TestBank_ThreadsClampedToChannels(t *testing.T) {
	b, err := NewBank(2, 16, stageBuilder(lowConfig(2)))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Threads())
	assert.Equal(t, "polyphase-f32", b.Name())
}

func TestBank_DelayAndReset(t *testing.T) {
	b, err := NewBank(2, 1, stageBuilder(lowConfig(2)))
	require.NoError(t, err)

	feedTones(t, b, 500)
	assert.InDelta(t, 1000, b.Delay(), 1e-9)
	assert.Positive(t, b.Pending())

	b.Reset()
	assert.Zero(t, b.Pending())
	assert.Zero(t, b.Delay())
}

func TestBank_SetRatio(t *testing.T) {
	fixed, err := NewBank(2, 1, stageBuilder(lowConfig(2)))
	require.NoError(t, err)
	assert.ErrorIs(t, fixed.SetRatio(1.5, 0), ErrFixedRatio)

	cfg := lowConfig(2)
	cfg.VariableRate = true
	vr, err := NewBank(2, 1, stageBuilder(cfg))
	require.NoError(t, err)
	require.NoError(t, vr.SetRatio(1.5, 10))
	assert.ErrorIs(t, vr.SetRatio(-1, 0), engine.ErrInvalidRatio)
}

func TestBank_FeedChannelMismatch(t *testing.T) {
	b, err := NewBank(2, 1, stageBuilder(lowConfig(2)))
	require.NoError(t, err)
	assert.Error(t, b.Feed(context.Background(), [][]float64{{1}}))
}

func TestNewBank_BuildError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewBank(3, 1, func() (engine.Stage, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestBank_RestartKeepsQueuedOutput(t *testing.T) {
	b, err := NewBank(2, 1, stageBuilder(lowConfig(2)))
	require.NoError(t, err)

	feedTones(t, b, 500)
	require.NoError(t, b.Flush(context.Background()))
	queued := b.Pending()
	require.Equal(t, 1000, queued)

	b.Restart()
	assert.Equal(t, queued, b.Pending())
	assert.InDelta(t, float64(queued), b.Delay(), 1e-9)
}

func TestNewBank_DesignsOnce(t *testing.T) {
	calls := 0
	build := func() (engine.Stage, error) {
		calls++
		return engine.NewStage(lowConfig(48000.0 / 44100.0))
	}
	b, err := NewBank(4, 1, build)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	inputs := make([][]float64, b.NumChannels())
	for ch := range inputs {
		inputs[ch] = testutil.Sine(2000, 440, 44100, 0.5)
	}
	require.NoError(t, b.Feed(context.Background(), inputs))
	require.NoError(t, b.Flush(context.Background()))

	out := drain(b)
	for ch := 1; ch < len(out); ch++ {
		assert.Equal(t, out[0], out[ch], "channel %d", ch)
	}
}
