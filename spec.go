package soxr

import (
	"fmt"
	"math"
)

// IOSpec pairs the input and output data types of an engine.
type IOSpec struct {
	in    DataType
	out   DataType
	scale float64
}

// NewIOSpec validates that both types are concrete formats.
func NewIOSpec(in, out DataType) (IOSpec, error) {
	for _, d := range [...]DataType{in, out} {
		if !d.known() {
			return IOSpec{}, validationError("io spec", ErrUnsupportedFormat, "%v", d)
		}
	}
	return IOSpec{in: in, out: out, scale: 1}, nil
}

// InputType returns the input data type.
func (s IOSpec) InputType() DataType { return s.in }

// OutputType returns the output data type.
func (s IOSpec) OutputType() DataType { return s.out }

// Scale returns the output gain.
func (s IOSpec) Scale() float64 { return s.scale }

// WithScale returns a copy of s with the output gain set to scale. The gain
// is checked when the engine is built.
func (s IOSpec) WithScale(scale float64) IOSpec {
	s.scale = scale
	return s
}

func (s IOSpec) validate() error {
	if !s.in.known() || !s.out.known() {
		return validationError("io spec", ErrUnsupportedFormat, "%v -> %v", s.in, s.out)
	}
	if !(s.scale > 0) || math.IsInf(s.scale, 0) {
		return validationError("io spec", ErrUnsupportedFormat, "scale %v", s.scale)
	}
	return nil
}

// QualityRecipe ranks the filter presets from fastest to best.
type QualityRecipe int

const (
	// QualityQuick uses cubic interpolation without an anti-alias filter.
	QualityQuick QualityRecipe = iota

	// QualityLow is 16-bit with a wide transition band.
	QualityLow

	// QualityMedium is 16-bit with soxr's standard band edges.
	QualityMedium

	// QualityHigh is 20-bit and the default.
	QualityHigh

	// QualityVeryHigh is 28-bit.
	QualityVeryHigh
)

var recipeNames = [...]string{"quick", "low", "medium", "high", "very-high"}

func (r QualityRecipe) String() string {
	if r < QualityQuick || r > QualityVeryHigh {
		return fmt.Sprintf("QualityRecipe(%d)", int(r))
	}
	return recipeNames[r]
}

// ParseQualityRecipe maps a recipe name as printed by String back to its
// value.
func ParseQualityRecipe(name string) (QualityRecipe, error) {
	for i, n := range recipeNames {
		if n == name {
			return QualityRecipe(i), nil
		}
	}
	return 0, validationError("quality spec", ErrInvalidQualityConfig, "unknown recipe %q", name)
}

// QualityFlags are independent options on top of a recipe.
type QualityFlags uint32

const (
	// RolloffSmall allows at most 0.01 dB of passband droop. This is the
	// default when no rolloff flag is given.
	RolloffSmall QualityFlags = 1 << iota

	// RolloffMedium allows at most 0.35 dB of droop for a shorter filter.
	RolloffMedium

	// RolloffNone places the passband edge without droop compensation.
	RolloffNone

	// HiPrecClock increases the resolution of the phase clock.
	HiPrecClock

	// DoublePrecision runs the filter arithmetic in float64 even at 16 bits.
	DoublePrecision

	// VariableRate allows SetIORatio to change the ratio while streaming.
	VariableRate

	allFlags = RolloffSmall | RolloffMedium | RolloffNone | HiPrecClock | DoublePrecision | VariableRate
)

const rolloffMask = RolloffSmall | RolloffMedium | RolloffNone

// Has reports whether every flag in f2 is set in f.
func (f QualityFlags) Has(f2 QualityFlags) bool {
	return f&f2 == f2
}

// QualitySpec is a validated recipe and flag combination.
type QualitySpec struct {
	recipe QualityRecipe
	flags  QualityFlags
}

// NewQualitySpec validates the combination. Unknown recipes, unknown flag bits
// and more than one rolloff flag are rejected with ErrInvalidQualityConfig.
func NewQualitySpec(recipe QualityRecipe, flags QualityFlags) (QualitySpec, error) {
	const op = "quality spec"
	if recipe < QualityQuick || recipe > QualityVeryHigh {
		return QualitySpec{}, validationError(op, ErrInvalidQualityConfig, "unknown recipe %d", int(recipe))
	}
	if flags&^allFlags != 0 {
		return QualitySpec{}, validationError(op, ErrInvalidQualityConfig, "unknown flags %#x", uint32(flags&^allFlags))
	}
	if r := flags & rolloffMask; r&(r-1) != 0 {
		return QualitySpec{}, validationError(op, ErrInvalidQualityConfig, "more than one rolloff flag")
	}
	return QualitySpec{recipe: recipe, flags: flags}, nil
}

// DefaultQualitySpec returns QualityHigh without flags.
func DefaultQualitySpec() QualitySpec {
	return QualitySpec{recipe: QualityHigh}
}

// Recipe returns the quality recipe.
func (q QualitySpec) Recipe() QualityRecipe { return q.recipe }

// Flags returns the quality flags.
func (q QualitySpec) Flags() QualityFlags { return q.flags }

// Precision returns the recipe's precision in bits.
func (q QualitySpec) Precision() int {
	switch q.recipe {
	case QualityQuick:
		return precisionQuick
	case QualityLow:
		return precisionLow
	case QualityMedium:
		return precisionMedium
	case QualityVeryHigh:
		return precisionVeryHigh
	default:
		return precisionHigh
	}
}

// PassbandEnd returns the end of the passband as a fraction of the narrower
// Nyquist frequency.
func (q QualitySpec) PassbandEnd() float64 {
	if q.recipe == QualityLow {
		return lowPassbandEnd
	}
	return standardPassbandEnd
}

// StopbandBegin returns the start of the stopband as a fraction of the
// narrower Nyquist frequency.
func (q QualitySpec) StopbandBegin() float64 {
	return stopbandBegin
}

// IsVariableRate reports whether engines built from q accept ratio changes.
func (q QualitySpec) IsVariableRate() bool {
	return q.recipe == QualityQuick || q.flags.Has(VariableRate)
}

// RuntimeSpec carries the worker-thread hint.
type RuntimeSpec struct {
	numThreads uint32
}

// NewRuntimeSpec accepts any thread count. 0 and 1 convert in the calling
// goroutine; larger values convert that many channels concurrently, capped at
// the channel count.
func NewRuntimeSpec(numThreads uint32) RuntimeSpec {
	return RuntimeSpec{numThreads: numThreads}
}

// NumThreads returns the requested thread count.
func (r RuntimeSpec) NumThreads() uint32 { return r.numThreads }
