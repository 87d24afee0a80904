package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	soxr "github.com/tphakala/go-soxr"
)

// wavInput holds an open, validated WAV file.
type wavInput struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openWAVInput opens a PCM WAV file and reads its format.
func openWAVInput(path string, log *logrus.Entry) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		_ = f.Close()
		return nil, fmt.Errorf("unsupported WAV encoding %#x, only integer PCM is supported", decoder.WavAudioFormat)
	}

	format := decoder.Format()
	in := &wavInput{
		file:     f,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: int(decoder.BitDepth),
		format:   format,
	}
	if d, err := decoder.Duration(); err == nil {
		in.totalFrames = int64(d.Seconds() * float64(in.rate))
	}

	log.WithFields(logrus.Fields{
		"rate":     in.rate,
		"channels": in.channels,
		"bits":     in.bitDepth,
		"frames":   in.totalFrames,
	}).Debug("input format")
	return in, nil
}

// Close closes the input file.
func (w *wavInput) Close() error {
	return w.file.Close()
}

// wavOutput encodes interleaved PCM with go-audio's encoder.
type wavOutput struct {
	file *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

// createWAVOutput creates the output file and writes a provisional header.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &wavOutput{
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteSamples appends interleaved samples.
func (w *wavOutput) WriteSamples(samples []int) error {
	if len(samples) == 0 {
		return nil
	}
	w.buf.Data = samples
	return w.enc.Write(w.buf)
}

// Close finalizes the header sizes and closes the file.
func (w *wavOutput) Close() error {
	if err := w.enc.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// pcmFormat maps a WAV bit depth onto an engine data type. 24-bit samples
// ride in the top 24 bits of an int32.
type pcmFormat struct {
	bits  int
	dtype soxr.DataType
	shift uint
}

func pcmFormatFor(bits int) (pcmFormat, error) {
	switch bits {
	case bitsPerSample16:
		return pcmFormat{bits: bits, dtype: soxr.Int16I}, nil
	case bitsPerSample24:
		return pcmFormat{bits: bits, dtype: soxr.Int32I, shift: bitShift24}, nil
	case bitsPerSample32:
		return pcmFormat{bits: bits, dtype: soxr.Int32I}, nil
	default:
		return pcmFormat{}, fmt.Errorf("unsupported bit depth %d", bits)
	}
}

// newBuffer allocates a packed engine buffer of n samples.
func (f pcmFormat) newBuffer(n int) soxr.Buffer {
	if f.dtype == soxr.Int16I {
		return make(soxr.Packed[int16], n)
	}
	return make(soxr.Packed[int32], n)
}

// encode copies go-audio samples into buf and returns the filled prefix.
func (f pcmFormat) encode(buf soxr.Buffer, src []int) soxr.Buffer {
	switch b := buf.(type) {
	case soxr.Packed[int16]:
		b = b[:len(src)]
		for i, v := range src {
			b[i] = int16(v)
		}
		return b
	case soxr.Packed[int32]:
		b = b[:len(src)]
		for i, v := range src {
			b[i] = int32(v << f.shift)
		}
		return b
	}
	return nil
}

// skip drops the first n samples of buf.
func (f pcmFormat) skip(buf soxr.Buffer, n int) soxr.Buffer {
	switch b := buf.(type) {
	case soxr.Packed[int16]:
		return b[n:]
	case soxr.Packed[int32]:
		return b[n:]
	}
	return nil
}

// decode appends the first n samples of buf to dst, rounding 24-bit values
// back down from int32.
func (f pcmFormat) decode(dst []int, buf soxr.Buffer, n int) []int {
	switch b := buf.(type) {
	case soxr.Packed[int16]:
		for _, v := range b[:n] {
			dst = append(dst, int(v))
		}
	case soxr.Packed[int32]:
		if f.shift == 0 {
			for _, v := range b[:n] {
				dst = append(dst, int(v))
			}
			break
		}
		limit := int64(math.MaxInt32) >> f.shift
		half := int64(1) << (f.shift - 1)
		for _, v := range b[:n] {
			dst = append(dst, int(min((int64(v)+half)>>f.shift, limit)))
		}
	}
	return dst
}
