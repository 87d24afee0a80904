package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-soxr/internal/simdops"
)

// kernel evaluates the band-limited signal between input samples.
type kernel[F simdops.Float] interface {
	// reach returns how many input samples before and after the read
	// position eval touches when the kernel is stretched by scale.
	reach(scale float64) (before, after int)

	// eval returns the signal value at pos (an index into hist, possibly
	// fractional). scale = min(1, ratio) widens the kernel when decimating.
	eval(hist []F, pos, scale float64) F

	// clone returns a kernel sharing read-only tables with its own scratch.
	clone() kernel[F]

	name() string
}

// VariableStage resamples by evaluating a kernel at a fractional read
// position that advances by 1/ratio per output. The ratio can be changed at
// any time, optionally ramping linearly over a number of outputs.
type VariableStage[F simdops.Float] struct {
	kernel kernel[F]

	history []F
	base    int64   // input index of history[0]; negative while priming
	pos     float64 // read position within history

	ratio    float64
	target   float64
	slewStep float64
	slewLeft int

	// With hiPrec the position is recomputed from anchor and a tick count
	// instead of accumulated, so rounding does not drift.
	hiPrec bool
	anchor float64
	ticks  int64

	out        []float64
	samplesIn  int64
	samplesOut int64
}

// NewVariableStage returns a stage evaluating k at cfg.Ratio.
func NewVariableStage[F simdops.Float](cfg Config, k kernel[F]) (*VariableStage[F], error) {
	if !(cfg.Ratio > 0) || math.IsInf(cfg.Ratio, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRatio, cfg.Ratio)
	}
	s := &VariableStage[F]{
		kernel: k,
		ratio:  cfg.Ratio,
		target: cfg.Ratio,
		hiPrec: cfg.HiPrecClock,
	}
	s.Reset()
	return s, nil
}

// scale is the kernel stretch for the narrower of the current and target
// ratios, so history kept now still covers the kernel after a slew.
func (s *VariableStage[F]) scale() float64 {
	return min(1, s.ratio, s.target)
}

// Process converts the next block of input.
func (s *VariableStage[F]) Process(input []float64) ([]float64, error) {
	s.out = s.out[:0]
	s.samplesIn += int64(len(input))
	s.history = appendSamples(s.history, input)
	s.run(math.Inf(1))
	s.trim()
	s.samplesOut += int64(len(s.out))
	return s.out, nil
}

// run emits outputs until the kernel would read past history or the read
// position reaches end (an input index).
func (s *VariableStage[F]) run(end float64) {
	for {
		sc := min(1, s.ratio)
		_, after := s.kernel.reach(sc)
		i := int(s.pos)
		if i+after >= len(s.history) || float64(s.base)+s.pos >= end {
			return
		}
		s.out = append(s.out, float64(s.kernel.eval(s.history, s.pos, sc)))
		s.advance()
	}
}

func (s *VariableStage[F]) advance() {
	if s.slewLeft > 0 {
		s.slewLeft--
		if s.slewLeft == 0 {
			s.ratio = s.target
		} else {
			s.ratio += s.slewStep
		}
		s.pos += 1 / s.ratio
		s.anchor, s.ticks = s.pos, 0
		return
	}
	if s.hiPrec {
		s.ticks++
		s.pos = s.anchor + float64(s.ticks)/s.ratio
		return
	}
	s.pos += 1 / s.ratio
}

// trim drops input the kernel can no longer reach.
func (s *VariableStage[F]) trim() {
	before, _ := s.kernel.reach(s.scale())
	drop := int(s.pos) - before - 1
	if drop <= 0 {
		return
	}
	n := copy(s.history, s.history[drop:])
	s.history = s.history[:n]
	s.pos -= float64(drop)
	s.anchor -= float64(drop)
	s.base += int64(drop)
}

// Flush emits the outputs whose read position falls inside the received
// input, reading silence past its end.
func (s *VariableStage[F]) Flush() ([]float64, error) {
	s.out = s.out[:0]
	_, after := s.kernel.reach(s.scale())
	s.history = append(s.history, make([]F, after+2)...)
	s.run(float64(s.samplesIn))
	s.trim()
	s.samplesOut += int64(len(s.out))
	return s.out, nil
}

// Reset drops history and completes any pending slew.
func (s *VariableStage[F]) Reset() {
	s.ratio = s.target
	s.slewLeft = 0
	before, _ := s.kernel.reach(s.scale())
	lead := before + 1
	s.history = append(s.history[:0], make([]F, lead)...)
	s.base = -int64(lead)
	s.pos = float64(lead)
	s.anchor, s.ticks = s.pos, 0
	s.samplesIn = 0
	s.samplesOut = 0
}

// SetRatio changes the ratio, ramping over slewLen outputs.
func (s *VariableStage[F]) SetRatio(ratio float64, slewLen int) error {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	s.target = ratio
	if slewLen <= 0 {
		s.ratio = ratio
		s.slewLeft = 0
	} else {
		s.slewStep = (ratio - s.ratio) / float64(slewLen)
		s.slewLeft = slewLen
	}
	s.anchor, s.ticks = s.pos, 0
	return nil
}

// Ratio returns the ratio in effect for the next output.
func (s *VariableStage[F]) Ratio() float64 {
	return s.ratio
}

// Delay returns the outputs still owed for input already received.
func (s *VariableStage[F]) Delay() float64 {
	return max(0, (float64(s.samplesIn)-float64(s.base)-s.pos)*s.ratio)
}

// Clone implements Stage. The kernel's table is shared.
func (s *VariableStage[F]) Clone() Stage {
	c := *s
	c.kernel = s.kernel.clone()
	c.history = nil
	c.out = nil
	c.Reset()
	return &c
}

// Name identifies the kernel and precision.
func (s *VariableStage[F]) Name() string {
	return fmt.Sprintf("%s-f%d", s.kernel.name(), simdops.Bits[F]())
}
