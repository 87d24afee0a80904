package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/sirupsen/logrus"

	soxr "github.com/tphakala/go-soxr"
)

var errStalled = errors.New("engine made no progress")

type convertStats struct {
	inputRate    int
	outputRate   int
	channels     int
	inputBits    int
	outputBits   int
	inputFrames  int64
	outputFrames int64
	clips        uint64
	engine       string
}

// convertWAV streams inputPath through a dynamic-mode engine whose data types
// are chosen from the WAV headers.
func convertWAV(inputPath, outputPath string, job *Job, log *logrus.Entry) (stats *convertStats, err error) {
	in, err := openWAVInput(inputPath, log)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	outBits := job.Bits
	if outBits == 0 {
		outBits = in.bitDepth
	}
	inFmt, err := pcmFormatFor(in.bitDepth)
	if err != nil {
		return nil, err
	}
	outFmt, err := pcmFormatFor(outBits)
	if err != nil {
		return nil, err
	}

	s, err := newEngine(in, inFmt, outFmt, job)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	outputRate := int(math.Round(job.Rate))
	log.WithFields(logrus.Fields{
		"engine":  s.Engine(),
		"in":      s.InputType(),
		"out":     s.OutputType(),
		"ratio":   s.Ratio(),
		"threads": s.Threads(),
	}).Debug("engine ready")

	out, err := createWAVOutput(outputPath, outputRate, outBits, in.channels)
	if err != nil {
		return nil, err
	}
	// The header sizes are only written on close.
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	stats = &convertStats{
		inputRate:  in.rate,
		outputRate: outputRate,
		channels:   in.channels,
		inputBits:  in.bitDepth,
		outputBits: outBits,
		engine:     s.Engine(),
	}

	ch := in.channels
	pcm := &audio.IntBuffer{
		Data:           make([]int, job.ChunkSize*ch),
		Format:         in.format,
		SourceBitDepth: in.bitDepth,
	}
	inBuf := inFmt.newBuffer(job.ChunkSize * ch)
	roomFrames := int(math.Ceil(float64(job.ChunkSize)*s.Ratio())) + outputMarginFrames
	outBuf := outFmt.newBuffer(roomFrames * ch)
	samples := make([]int, 0, roomFrames*ch)

	write := func(frames int) error {
		if frames == 0 {
			return nil
		}
		samples = outFmt.decode(samples[:0], outBuf, frames*ch)
		stats.outputFrames += int64(frames)
		if err := out.WriteSamples(samples); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
		return nil
	}

	progress := newProgressTracker(in.totalFrames, log)
	for {
		pcm.Data = pcm.Data[:cap(pcm.Data)]
		n, readErr := in.decoder.PCMBuffer(pcm)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", readErr)
		}
		n -= n % ch
		if n == 0 {
			break
		}

		pending := inFmt.encode(inBuf, pcm.Data[:n])
		for left := n / ch; left > 0; {
			consumed, produced, err := s.Process(pending, outBuf)
			if err != nil {
				return nil, err
			}
			if err := write(produced); err != nil {
				return nil, err
			}
			if consumed == 0 && produced == 0 {
				return nil, errStalled
			}
			pending = inFmt.skip(pending, consumed*ch)
			left -= consumed
			stats.inputFrames += int64(consumed)
		}
		progress.reportIfNeeded(stats.inputFrames)
	}

	for {
		_, produced, err := s.Process(nil, outBuf)
		if err != nil {
			return nil, err
		}
		if produced == 0 {
			break
		}
		if err := write(produced); err != nil {
			return nil, err
		}
	}

	stats.clips = s.NumClips()
	return stats, nil
}

// newEngine builds the converter for one file and applies drift correction.
func newEngine(in *wavInput, inFmt, outFmt pcmFormat, job *Job) (*soxr.Soxr, error) {
	q, err := job.QualitySpec()
	if err != nil {
		return nil, err
	}
	rt := job.RuntimeSpec()

	spec, err := soxr.NewIOSpec(inFmt.dtype, outFmt.dtype)
	if err != nil {
		return nil, err
	}
	s, err := soxr.NewWithIOSpec(spec.WithScale(job.Gain), float64(in.rate), job.Rate, in.channels, &q, &rt)
	if err != nil {
		return nil, err
	}

	if job.DriftPPM != 0 {
		if err := s.SetIORatio(s.IORatio()*(1+job.DriftPPM*ppmScale), job.SlewLen); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// progressTracker logs progress every progressInterval percent.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	log          *logrus.Entry
}

func newProgressTracker(totalFrames int64, log *logrus.Entry) *progressTracker {
	return &progressTracker{totalFrames: totalFrames, log: log}
}

func (p *progressTracker) reportIfNeeded(frames int64) {
	if p.totalFrames == 0 || !p.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	progress := int(float64(frames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		p.log.WithField("percent", progress).Debug("progress")
		p.lastProgress = progress
	}
}
