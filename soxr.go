package soxr

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-soxr/internal/engine"
	"github.com/tphakala/go-soxr/internal/pipeline"
)

// ratioTolerance is the relative difference below which a fixed-ratio engine
// treats a requested ratio as unchanged.
const ratioTolerance = 1e-12

// Soxr is a streaming sample-rate converter for a fixed set of data types.
//
// Calls on one Soxr must be serialized. Independent engines share nothing and
// may run concurrently.
type Soxr struct {
	io      IOSpec
	quality QualitySpec
	threads int

	ratio    float64 // output rate / input rate
	channels int
	bank     *pipeline.Bank

	// per-channel scratch between caller buffers and the bank
	in  [][]float64
	out [][]float64

	flushed bool
	clips   uint64
	err     error
	closed  bool
}

// New builds an engine for the given data types. A nil quality selects
// DefaultQualitySpec and a nil runtime converts in the calling goroutine.
func New(inType, outType DataType, inputRate, outputRate float64, channels int,
	quality *QualitySpec, runtime *RuntimeSpec,
) (*Soxr, error) {
	io, err := NewIOSpec(inType, outType)
	if err != nil {
		return nil, constructionError(err)
	}
	return NewWithIOSpec(io, inputRate, outputRate, channels, quality, runtime)
}

// NewWithIOSpec is New taking the data types and output gain from io.
func NewWithIOSpec(io IOSpec, inputRate, outputRate float64, channels int,
	quality *QualitySpec, runtime *RuntimeSpec,
) (*Soxr, error) {
	if err := io.validate(); err != nil {
		return nil, constructionError(err)
	}

	q := DefaultQualitySpec()
	if quality != nil {
		if _, err := NewQualitySpec(quality.recipe, quality.flags); err != nil {
			return nil, constructionError(err)
		}
		q = *quality
	}

	threads := 1
	if runtime != nil && runtime.numThreads > 1 {
		threads = int(min(runtime.numThreads, MaxChannels))
	}

	if channels < 1 || channels > MaxChannels {
		return nil, constructionError(validationError("new", ErrInvalidChannelCount,
			"%d channels, want 1..%d", channels, MaxChannels))
	}

	ratio, err := rateRatio(inputRate, outputRate)
	if err != nil {
		return nil, constructionError(err)
	}

	s := &Soxr{
		io:      io,
		quality: q,
		threads: threads,
		ratio:   ratio,
	}
	bank, err := s.newBank(channels)
	if err != nil {
		return nil, constructionError(err)
	}
	s.setBank(bank)
	return s, nil
}

func rateRatio(inputRate, outputRate float64) (float64, error) {
	for _, r := range [...]float64{inputRate, outputRate} {
		if !(r > 0) || math.IsInf(r, 0) {
			return 0, validationError("new", ErrInvalidRatio, "sample rate %v", r)
		}
	}
	ratio := outputRate / inputRate
	if err := checkRatio("new", ratio); err != nil {
		return 0, err
	}
	return ratio, nil
}

func checkRatio(op string, ratio float64) error {
	if !(ratio >= minRatio && ratio <= maxRatio) {
		return validationError(op, ErrInvalidRatio, "ratio %v outside [%v, %v]", ratio, minRatio, maxRatio)
	}
	return nil
}

func constructionError(cause error) *Error {
	e := &Error{Op: "new", Origin: OriginValidation, Kind: ErrConstructionFailed, Err: cause}
	var inner *Error
	if errors.As(cause, &inner) {
		e.Origin = inner.Origin
		e.Msg = inner.Error()
	} else {
		e.Origin = OriginEngine
		e.Msg = cause.Error()
	}
	return e
}

// stageConfig maps the quality spec onto one channel's stage.
func (s *Soxr) stageConfig() engine.Config {
	q := s.quality
	rolloff := engine.RolloffSmall
	switch {
	case q.flags.Has(RolloffMedium):
		rolloff = engine.RolloffMedium
	case q.flags.Has(RolloffNone):
		rolloff = engine.RolloffNone
	}
	return engine.Config{
		Ratio:           s.ratio,
		Bits:            q.Precision(),
		PassbandEnd:     q.PassbandEnd(),
		StopbandBegin:   q.StopbandBegin(),
		Rolloff:         rolloff,
		Quick:           q.recipe == QualityQuick,
		VariableRate:    q.flags.Has(VariableRate),
		HiPrecClock:     q.flags.Has(HiPrecClock),
		DoublePrecision: q.flags.Has(DoublePrecision),
	}
}

func (s *Soxr) newBank(channels int) (*pipeline.Bank, error) {
	cfg := s.stageConfig()
	return pipeline.NewBank(channels, s.threads, func() (engine.Stage, error) {
		return engine.NewStage(cfg)
	})
}

func (s *Soxr) setBank(b *pipeline.Bank) {
	s.bank = b
	s.channels = b.NumChannels()
	s.in = make([][]float64, s.channels)
	s.out = make([][]float64, s.channels)
	s.flushed = false
}

// Process converts as much of in as fits in out and returns the number of
// frames consumed from in and produced into out.
//
// A nil or empty in of the engine's input type flushes: the filter tail is drained into out over as
// many calls as it takes, after which every further flush produces 0 frames.
// Input after a flush starts a new stream; output still queued from the old
// one is delivered first.
//
// Validation errors leave both the engine and out untouched.
func (s *Soxr) Process(in, out Buffer) (consumed, produced int, err error) {
	const op = "process"
	if s.closed {
		return 0, 0, &Error{Op: op, Origin: OriginValidation, Kind: ErrClosed}
	}

	if out == nil {
		return 0, 0, validationError(op, ErrDataTypeMismatch, "nil output buffer")
	}
	if t := out.DataType(); t != s.io.out {
		return 0, 0, validationError(op, ErrDataTypeMismatch, "output is %v, engine writes %v", t, s.io.out)
	}
	room, err := out.frames(s.channels, true)
	if err != nil {
		return 0, 0, err
	}

	var frames int
	if in != nil {
		if t := in.DataType(); t != s.io.in {
			return 0, 0, validationError(op, ErrDataTypeMismatch, "input is %v, engine reads %v", t, s.io.in)
		}
		if frames, err = in.frames(s.channels, false); err != nil {
			return 0, 0, err
		}
	}

	ctx := context.Background()
	if frames == 0 {
		if !s.flushed {
			if err := s.bank.Flush(ctx); err != nil {
				return 0, 0, s.fail(op, err)
			}
			s.flushed = true
		}
	} else {
		if s.flushed {
			s.bank.Restart()
			s.flushed = false
		}
		consumed = s.inputLimit(frames, room)
		if consumed > 0 {
			in.load(s.in, consumed)
			if err := s.bank.Feed(ctx, s.in); err != nil {
				return 0, 0, s.fail(op, err)
			}
		}
	}

	produced = min(room, s.bank.Pending())
	if produced > 0 {
		for ch := range s.out {
			buf := growFloats(s.out[ch], produced)
			s.bank.Read(ch, buf)
			s.out[ch] = buf
		}
		s.clips += out.store(s.out, produced, s.io.scale)
	}
	return consumed, produced, nil
}

// inputLimit returns how many of frames input frames to take so that the
// output they generate fits in room together with what is already queued.
func (s *Soxr) inputLimit(frames, room int) int {
	free := room - s.bank.Pending()
	if free <= 0 {
		return 0
	}
	want := math.Ceil(float64(free) / s.ratio)
	if want >= float64(frames) {
		return frames
	}
	return int(want)
}

func (s *Soxr) fail(op string, cause error) error {
	s.err = engineError(op, ErrProcessingFailed, cause)
	return s.err
}

func growFloats(b []float64, n int) []float64 {
	if cap(b) < n {
		return make([]float64, n)
	}
	return b[:n]
}

// Clear drops all history and queued output, keeping the ratio, data types
// and channel count. The last error is cleared too.
func (s *Soxr) Clear() error {
	if s.closed {
		return &Error{Op: "clear", Origin: OriginValidation, Kind: ErrResetFailed, Err: ErrClosed}
	}
	s.bank.Reset()
	s.flushed = false
	s.err = nil
	return nil
}

// SetIORatio changes the input/output ratio, soxr's io_ratio, moving to it
// linearly over slewLen output frames. Only variable-rate engines
// (QualityQuick or the VariableRate flag) accept a new ratio; a fixed-ratio
// engine accepts only its current one. On error nothing changes.
func (s *Soxr) SetIORatio(ioRatio float64, slewLen int) error {
	const op = "set io ratio"
	if s.closed {
		return &Error{Op: op, Origin: OriginValidation, Kind: ErrReconfigurationFailed, Err: ErrClosed}
	}
	if !(ioRatio > 0) || math.IsInf(ioRatio, 0) {
		return validationError(op, ErrInvalidRatio, "io ratio %v", ioRatio)
	}
	if slewLen < 0 {
		return validationError(op, ErrInvalidRatio, "slew length %d", slewLen)
	}
	ratio := 1 / ioRatio
	if err := checkRatio(op, ratio); err != nil {
		return err
	}

	if !s.quality.IsVariableRate() {
		if math.Abs(ratio-s.ratio) <= ratioTolerance*s.ratio {
			return nil
		}
		return &Error{
			Op: op, Origin: OriginValidation, Kind: ErrInvalidRatio,
			Msg: fmt.Sprintf("engine was not built with VariableRate, ratio fixed at %v", s.ratio),
			Err: pipeline.ErrFixedRatio,
		}
	}

	if err := s.bank.SetRatio(ratio, slewLen); err != nil {
		return engineError(op, ErrInvalidRatio, err)
	}
	s.ratio = ratio
	return nil
}

// SetNumChannels rebuilds the engine for n channels. History and queued
// output are discarded. On error the engine keeps its old channel count.
func (s *Soxr) SetNumChannels(n int) error {
	const op = "set num channels"
	if s.closed {
		return &Error{Op: op, Origin: OriginValidation, Kind: ErrReconfigurationFailed, Err: ErrClosed}
	}
	if n == s.channels {
		return nil
	}
	if n < 1 || n > MaxChannels {
		return &Error{
			Op: op, Origin: OriginValidation, Kind: ErrReconfigurationFailed,
			Msg: fmt.Sprintf("%d channels, want 1..%d", n, MaxChannels),
			Err: ErrInvalidChannelCount,
		}
	}
	bank, err := s.newBank(n)
	if err != nil {
		return engineError(op, ErrReconfigurationFailed, err)
	}
	s.setBank(bank)
	return nil
}

// NumChannels returns the current channel count.
func (s *Soxr) NumChannels() int { return s.channels }

// Ratio returns the output/input rate ratio, or the target of a slew in
// progress.
func (s *Soxr) Ratio() float64 { return s.ratio }

// IORatio returns the input/output rate ratio.
func (s *Soxr) IORatio() float64 { return 1 / s.ratio }

// InputType returns the committed input data type.
func (s *Soxr) InputType() DataType { return s.io.in }

// OutputType returns the committed output data type.
func (s *Soxr) OutputType() DataType { return s.io.out }

// Quality returns the quality spec the engine was built with.
func (s *Soxr) Quality() QualitySpec { return s.quality }

// Threads returns the number of channels converted concurrently.
func (s *Soxr) Threads() int {
	if s.bank == nil {
		return 0
	}
	return s.bank.Threads()
}

// Delay returns the output frames owed for input already consumed.
func (s *Soxr) Delay() float64 {
	if s.bank == nil {
		return 0
	}
	return s.bank.Delay()
}

// Engine identifies the active conversion backend, e.g. "go-polyphase-f64".
func (s *Soxr) Engine() string {
	if s.bank == nil {
		return ""
	}
	return "go-" + s.bank.Name()
}

// NumClips returns how many integer output samples were clamped.
func (s *Soxr) NumClips() uint64 { return s.clips }

// SetNumClips resets the clip counter to n.
func (s *Soxr) SetNumClips(n uint64) { s.clips = n }

// Error returns the last processing error without clearing it.
func (s *Soxr) Error() error { return s.err }

// Close releases all conversion state. Further calls to Close do nothing and
// every other operation fails with ErrClosed.
func (s *Soxr) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.bank = nil
	s.in, s.out = nil, nil
	return nil
}

// Version returns the identifier of this implementation.
func Version() string {
	return version
}
