// Package soxr is a streaming sample-rate converter in pure Go, modelled on
// libsoxr (the SoX Resampler library).
//
// # Features
//
//   - Packed (interleaved) and planar buffers of int16, int32, float32 and
//     float64 samples, converted on the way in and out
//   - Five quality recipes from cubic interpolation to 28-bit polyphase FIR
//   - Variable-rate mode with linear ratio slew for clock drift correction
//   - Per-channel concurrency bounded by a thread hint
//   - Optional SIMD acceleration via github.com/tphakala/simd
//
// # Quick Start
//
// When the buffer types are known at compile time:
//
//	r, err := soxr.NewResampler[soxr.Planar[float32], soxr.Packed[int16]](
//	    44100, 48000, 2, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	for chunk := range chunks {
//	    for len(chunk[0]) > 0 {
//	        consumed, produced, err := r.Process(chunk, out)
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	        write(out[:produced*2])
//	        chunk = advance(chunk, consumed)
//	    }
//	}
//
//	// Drain the filter tail.
//	for {
//	    _, produced, err := r.Process(nil, out)
//	    if err != nil || produced == 0 {
//	        break
//	    }
//	    write(out[:produced*2])
//	}
//
// When the types are only known at run time, build a [Soxr] with [New] and
// pass any [Buffer]; its data type is checked on every call.
//
// For whole signals, [OneShot] and [ResampleMono] do the loop above.
//
// # Quality Recipes
//
//   - [QualityQuick]: cubic interpolation, no anti-alias filter.
//   - [QualityLow]: 16-bit, wide transition band.
//   - [QualityMedium]: 16-bit.
//   - [QualityHigh]: 20-bit, the default.
//   - [QualityVeryHigh]: 28-bit.
//
// [QualityFlags] adjust passband rolloff, clock precision, arithmetic width
// and whether the ratio may change while streaming.
//
// # Streaming
//
// Process consumes only as much input as the output buffer has room for, so
// callers loop until both the input is consumed and a flush returns zero
// frames. The first outputs trail the input by about half the filter length;
// [Soxr.Delay] reports how many output frames are owed.
//
// # Thread Safety
//
// Calls on one engine must be serialized. Independent engines share nothing.
//
// # Attribution
//
// The filter design follows libsoxr (https://sourceforge.net/projects/soxr/)
// by Rob Sykes, licensed under LGPL-2.1: quality recipes, band edges, rolloff
// compensation and the polyphase bank with interpolated coefficients.
package soxr
