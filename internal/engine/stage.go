// Package engine implements the single-channel DSP stages that do the actual
// sample-rate conversion: a fixed-ratio polyphase FIR bank and a
// variable-rate interpolator with windowed-sinc or cubic kernels.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-soxr/internal/filter"
	"github.com/tphakala/go-soxr/internal/mathutil"
)

var (
	// ErrInvalidConfig reports a stage configuration that cannot be built.
	ErrInvalidConfig = errors.New("invalid stage configuration")
	// ErrInvalidRatio reports a non-positive or non-finite ratio.
	ErrInvalidRatio = errors.New("invalid ratio")
)

// Stage converts one channel of float64 samples.
//
// Slices returned by Process and Flush are owned by the stage and stay valid
// until its next call.
type Stage interface {
	Process(input []float64) ([]float64, error)

	// Flush pads the stream with silence and returns the remaining output,
	// trimmed so the total matches the input length times the ratio.
	Flush() ([]float64, error)

	// Reset drops all history, returning the stage to its initial state.
	Reset()

	// Delay is the number of output samples the stage still owes for input
	// it has already received.
	Delay() float64

	Name() string

	// Clone returns a stage with the same design and ratio and no history.
	// Read-only filter tables are shared with the receiver.
	Clone() Stage
}

// RatioSetter is implemented by stages whose ratio can change mid-stream.
type RatioSetter interface {
	// SetRatio moves to a new output/input ratio over slewLen output
	// samples; zero switches immediately.
	SetRatio(ratio float64, slewLen int) error
}

// Rolloff selects how much passband droop the filter may have.
type Rolloff int

const (
	RolloffSmall Rolloff = iota // ≤ 0.01 dB
	RolloffMedium               // ≤ 0.35 dB
	RolloffNone                 // no compensation
)

func (r Rolloff) drop() float64 {
	switch r {
	case RolloffSmall:
		return dropSmall
	case RolloffMedium:
		return dropMedium
	default:
		return 0
	}
}

// Config describes one channel's stage.
type Config struct {
	Ratio float64 // output rate / input rate

	Bits          int     // precision, sets the stopband attenuation
	PassbandEnd   float64 // fraction of the narrower Nyquist
	StopbandBegin float64 // fraction of the narrower Nyquist
	Rolloff       Rolloff

	Quick           bool // cubic interpolation, no filter
	VariableRate    bool
	HiPrecClock     bool
	DoublePrecision bool
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !(c.Ratio > 0) || math.IsInf(c.Ratio, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, c.Ratio)
	}
	if c.Quick {
		return nil
	}
	switch {
	case c.Bits <= 0:
		return fmt.Errorf("%w: precision %d bits", ErrInvalidConfig, c.Bits)
	case !(c.PassbandEnd > 0 && c.PassbandEnd < c.StopbandBegin && c.StopbandBegin <= 1):
		return fmt.Errorf("%w: passband %v, stopband %v", ErrInvalidConfig, c.PassbandEnd, c.StopbandBegin)
	case c.Rolloff < RolloffSmall || c.Rolloff > RolloffNone:
		return fmt.Errorf("%w: rolloff %d", ErrInvalidConfig, c.Rolloff)
	}
	return nil
}

// UsesDouble reports whether the stage computes in float64.
func (c *Config) UsesDouble() bool {
	return c.DoublePrecision || c.Bits >= bitsHigh
}

// NewStage builds the stage described by cfg: the cubic interpolator for
// quick conversions, the sinc interpolator when the ratio may change, and the
// polyphase bank otherwise.
func NewStage(cfg Config) (Stage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch {
	case cfg.Quick:
		if cfg.UsesDouble() {
			return asStage(NewVariableStage[float64](cfg, newCubicKernel[float64]()))
		}
		return asStage(NewVariableStage[float32](cfg, newCubicKernel[float32]()))

	case cfg.VariableRate:
		if cfg.UsesDouble() {
			k, err := newSincKernel[float64](cfg)
			if err != nil {
				return nil, err
			}
			return asStage(NewVariableStage[float64](cfg, k))
		}
		k, err := newSincKernel[float32](cfg)
		if err != nil {
			return nil, err
		}
		return asStage(NewVariableStage[float32](cfg, k))

	default:
		if cfg.UsesDouble() {
			return asStage(NewPolyphaseStage[float64](cfg))
		}
		return asStage(NewPolyphaseStage[float32](cfg))
	}
}

func asStage[S Stage](s S, err error) (Stage, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// band holds the filter edges for one design, in units of the input Nyquist.
type band struct {
	passband    float64 // after rolloff compensation
	stopband    float64
	attenuation float64 // dB
}

// cutoff returns the -6 dB point in cycles per input sample.
func (b band) cutoff() float64 {
	return (b.passband + b.stopband) / 4
}

// transition returns the transition width in cycles per input sample.
func (b band) transition() float64 {
	return (b.stopband - b.passband) / 2
}

// designBand places the pass and stop edges for a filter whose narrower
// Nyquist is bw times the input Nyquist, moving the passband edge down so the
// droop at the requested edge stays within the rolloff target.
func designBand(cfg Config, bw float64) band {
	b := band{
		passband:    cfg.PassbandEnd * bw,
		stopband:    cfg.StopbandBegin * bw,
		attenuation: mathutil.AttenuationForBits(cfg.Bits),
	}
	if drop := cfg.Rolloff.drop(); drop != 0 {
		if inv := filter.InvFResp(drop, b.attenuation); inv < maxInvFResp {
			if fp := b.stopband - (b.stopband-b.passband)/(1-inv); fp > 0 {
				b.passband = fp
			}
		}
	}
	return b
}
