package soxr

import (
	"fmt"
	"math"
)

// Common sample rates.
const (
	// RateTelephony is the narrowband telephony rate.
	RateTelephony = 8000

	// RateVoIP is the wideband VoIP rate.
	RateVoIP = 16000

	// RateSpeech is the common speech recognition rate.
	RateSpeech = 22050

	// RateCD is the CD rate (Red Book).
	RateCD = 44100

	// RateDAT is the DAT/DVD and video production rate.
	RateDAT = 48000

	// RateHiRes88 is 2x CD.
	RateHiRes88 = 88200

	// RateHiRes96 is 2x DAT.
	RateHiRes96 = 96000

	// RateHiRes176 is 4x CD.
	RateHiRes176 = 176400

	// RateHiRes192 is 4x DAT.
	RateHiRes192 = 192000
)

// OneShot converts a complete interleaved signal in a single call, flushing
// the filter tail. The result holds round(frames·outputRate/inputRate)
// frames per channel.
func OneShot[I, O Sample](inputRate, outputRate float64, channels int, in []I,
	quality *QualitySpec, runtime *RuntimeSpec,
) ([]O, error) {
	r, err := NewResampler[Packed[I], Packed[O]](inputRate, outputRate, channels, quality, runtime)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if len(in)%channels != 0 {
		return nil, validationError("oneshot", ErrBufferMisaligned,
			"length %d is not a multiple of %d channels", len(in), channels)
	}
	frames := len(in) / channels
	out := make(Packed[O], channels*(int(math.Ceil(float64(frames)*r.Ratio()))+1))

	pos := 0
	input := Packed[I](in)
	for len(input) > 0 {
		if pos == len(out) {
			out = append(out, make(Packed[O], len(out)/2+channels)...)
		}
		consumed, produced, err := r.Process(input, out[pos:])
		if err != nil {
			return nil, err
		}
		input = input[consumed*channels:]
		pos += produced * channels
		if consumed == 0 && produced == 0 {
			return nil, fmt.Errorf("oneshot: %w", ErrProcessingFailed)
		}
	}

	for {
		if pos == len(out) {
			out = append(out, make(Packed[O], len(out)/2+channels)...)
		}
		_, produced, err := r.Process(nil, out[pos:])
		if err != nil {
			return nil, err
		}
		if produced == 0 {
			break
		}
		pos += produced * channels
	}
	return out[:pos], nil
}

// ResampleMono converts a mono float64 signal with the given recipe.
func ResampleMono(input []float64, inputRate, outputRate float64, recipe QualityRecipe) ([]float64, error) {
	q, err := NewQualitySpec(recipe, 0)
	if err != nil {
		return nil, err
	}
	return OneShot[float64, float64](inputRate, outputRate, 1, input, &q, nil)
}

// ResampleStereo converts a planar stereo float64 signal with the given
// recipe.
func ResampleStereo(left, right []float64, inputRate, outputRate float64, recipe QualityRecipe,
) (outLeft, outRight []float64, err error) {
	if len(left) != len(right) {
		return nil, nil, validationError("oneshot", ErrBufferMisaligned,
			"left has %d frames, right has %d", len(left), len(right))
	}
	q, err := NewQualitySpec(recipe, 0)
	if err != nil {
		return nil, nil, err
	}
	out, err := OneShot[float64, float64](inputRate, outputRate, stereoChannels,
		Interleave(left, right), &q, nil)
	if err != nil {
		return nil, nil, err
	}
	planar := Deinterleave(out, stereoChannels)
	return planar[0], planar[1], nil
}

// Interleave packs equal-length channels into one slice.
func Interleave[T Sample](channels ...[]T) []T {
	if len(channels) == 0 {
		return nil
	}
	n := len(channels[0])
	out := make([]T, n*len(channels))
	for ch, s := range channels {
		for i, v := range s[:n] {
			out[i*len(channels)+ch] = v
		}
	}
	return out
}

// Deinterleave splits an interleaved slice into channels. Trailing samples
// that do not form a whole frame are dropped.
func Deinterleave[T Sample](in []T, channels int) [][]T {
	n := len(in) / channels
	out := make([][]T, channels)
	for ch := range out {
		out[ch] = make([]T, n)
		for i := range n {
			out[ch][i] = in[i*channels+ch]
		}
	}
	return out
}
