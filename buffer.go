package soxr

import (
	"math"
	"slices"
)

// Sample is the set of element types a buffer can hold.
type Sample interface {
	int16 | int32 | float32 | float64
}

// Buffer is a borrowed view over caller memory. The engine never keeps a
// Buffer past the call it was passed to.
//
// Packed and Planar are the only implementations.
type Buffer interface {
	// DataType returns the format implied by the element type and layout.
	DataType() DataType

	// frames validates the layout against the channel count and returns the
	// number of frames the buffer holds. A nil Planar is accepted as an empty
	// input; as an output it has no channels and is rejected.
	frames(channels int, output bool) (int, error)

	// load converts the first n frames into one float64 slice per channel.
	load(dst [][]float64, n int)

	// store writes n frames from src, applying gain, and returns the number of
	// samples that had to be clamped.
	store(src [][]float64, n int, gain float64) uint64
}

// Packed is an interleaved buffer: frame i of channel c lives at
// i*channels + c.
type Packed[T Sample] []T

// Planar holds one slice per channel, all of equal length.
type Planar[T Sample] [][]T

// NewPlanar allocates a zeroed planar buffer.
func NewPlanar[T Sample](channels, frames int) Planar[T] {
	p := make(Planar[T], channels)
	for ch := range p {
		p[ch] = make([]T, frames)
	}
	return p
}

// DataType implements Buffer.
func (p Packed[T]) DataType() DataType { return dataTypeFor[T](false) }

// DataType implements Buffer.
func (p Planar[T]) DataType() DataType { return dataTypeFor[T](true) }

func (p Packed[T]) frames(channels int, _ bool) (int, error) {
	if channels <= 0 {
		return 0, validationError("process", ErrInvalidChannelCount, "%d channels", channels)
	}
	if len(p)%channels != 0 {
		return 0, validationError("process", ErrBufferMisaligned,
			"packed length %d is not a multiple of %d channels", len(p), channels)
	}
	return len(p) / channels, nil
}

func (p Planar[T]) frames(channels int, output bool) (int, error) {
	if p == nil && !output {
		return 0, nil
	}
	if len(p) != channels {
		return 0, validationError("process", ErrInvalidChannelCount,
			"planar buffer has %d channels, engine has %d", len(p), channels)
	}
	n := len(p[0])
	for ch, s := range p[1:] {
		if len(s) != n {
			return 0, validationError("process", ErrBufferMisaligned,
				"channel %d has %d frames, channel 0 has %d", ch+1, len(s), n)
		}
	}
	return n, nil
}

func (p Packed[T]) load(dst [][]float64, n int) {
	c := codecFor[T]()
	channels := len(dst)
	for ch := range dst {
		d := slices.Grow(dst[ch][:0], n)[:n]
		for i := range d {
			d[i] = float64(p[i*channels+ch]) / c.scale
		}
		dst[ch] = d
	}
}

func (p Planar[T]) load(dst [][]float64, n int) {
	c := codecFor[T]()
	for ch := range dst {
		d := slices.Grow(dst[ch][:0], n)[:n]
		for i, v := range p[ch][:n] {
			d[i] = float64(v) / c.scale
		}
		dst[ch] = d
	}
}

func (p Packed[T]) store(src [][]float64, n int, gain float64) uint64 {
	c := codecFor[T]()
	channels := len(src)
	var clips uint64
	for ch, s := range src {
		for i, x := range s[:n] {
			v, clipped := encode[T](x*gain, c)
			p[i*channels+ch] = v
			if clipped {
				clips++
			}
		}
	}
	return clips
}

func (p Planar[T]) store(src [][]float64, n int, gain float64) uint64 {
	c := codecFor[T]()
	var clips uint64
	for ch, s := range src {
		out := p[ch]
		for i, x := range s[:n] {
			v, clipped := encode[T](x*gain, c)
			out[i] = v
			if clipped {
				clips++
			}
		}
	}
	return clips
}

// codec describes how an element type maps to the engine's float64 range.
type codec struct {
	scale   float64
	integer bool
	lo, hi  float64
}

func codecFor[T Sample]() codec {
	var zero T
	switch any(zero).(type) {
	case int16:
		return codec{scale: int16Scale, integer: true, lo: math.MinInt16, hi: math.MaxInt16}
	case int32:
		return codec{scale: int32Scale, integer: true, lo: math.MinInt32, hi: math.MaxInt32}
	default:
		return codec{scale: 1}
	}
}

// encode rounds and clamps integer outputs. Float outputs pass through.
func encode[T Sample](x float64, c codec) (T, bool) {
	if !c.integer {
		return T(x), false
	}
	v := math.Round(x * c.scale)
	switch {
	case math.IsNaN(v):
		return 0, true
	case v > c.hi:
		return T(c.hi), true
	case v < c.lo:
		return T(c.lo), true
	}
	return T(v), false
}

func dataTypeFor[T Sample](planar bool) DataType {
	var zero T
	var d DataType
	switch any(zero).(type) {
	case float32:
		d = Float32I
	case float64:
		d = Float64I
	case int32:
		d = Int32I
	case int16:
		d = Int16I
	}
	if planar {
		d += Float32S - Float32I
	}
	return d
}

// dataTypeOf returns the format of buffer type B, or Dynamic when B is an
// interface type.
func dataTypeOf[B Buffer]() DataType {
	var zero B
	if any(zero) == nil {
		return Dynamic
	}
	return zero.DataType()
}
