package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-soxr/internal/filter"
	"github.com/tphakala/go-soxr/internal/mathutil"
	"github.com/tphakala/go-soxr/internal/simdops"
)

// PolyphaseStage converts at a fixed ratio with a bank of FIR phases, the
// way libsoxr's poly-fir stage does.
//
// A fixed-point clock advances by numPhases/ratio prototype samples per
// output. Its integer part picks the input position and phase, and its
// fractional part interpolates the coefficients between neighbouring phases
// with a cubic polynomial:
//
//	coef(x) = a + x·(b + x·(c + x·d))
//
// Type parameter F is the arithmetic precision.
type PolyphaseStage[F simdops.Float] struct {
	// coeffsA..D[phase][tap], taps stored in reverse for a forward dot product.
	coeffsA [][]F
	coeffsB [][]F
	coeffsC [][]F
	coeffsD [][]F

	numPhases    int
	tapsPerPhase int
	ratio        float64

	at    int64 // clock, fixed point over prototype samples
	step  int64
	start int64 // clock value of the first output

	fracBits uint
	fracMask int64
	fracUnit F

	history []F
	out     []float64
	ops     *simdops.Ops[F]

	samplesIn  int64
	samplesOut int64
}

// PolyphaseDesign summarizes the filter behind a PolyphaseStage.
type PolyphaseDesign struct {
	NumPhases    int
	TapsPerPhase int
	TotalTaps    int
	Cutoff       float64 // prototype cycles per sample
	Passband     float64 // input-Nyquist units, after rolloff compensation
	Stopband     float64
	Attenuation  float64
}

// DesignPolyphase computes the bank dimensions and prototype cutoff for cfg.
func DesignPolyphase(cfg Config) PolyphaseDesign {
	b := designBand(cfg, min(1, cfg.Ratio))
	numPhases, _ := findRationalApprox(cfg.Ratio)

	taps := mathutil.EstimateFilterLength(b.attenuation, b.transition())
	taps = min(max(taps, minTapsPerPhase), maxTapsPerPhase)
	if numPhases*taps > maxBankCoeffs {
		numPhases = max(minPhases, maxBankCoeffs/taps)
	}

	total := numPhases*taps - 1
	if total%2 == 0 {
		total--
	}

	return PolyphaseDesign{
		NumPhases:    numPhases,
		TapsPerPhase: taps,
		TotalTaps:    total,
		Cutoff:       b.cutoff() / float64(numPhases),
		Passband:     b.passband,
		Stopband:     b.stopband,
		Attenuation:  b.attenuation,
	}
}

// NewPolyphaseStage designs the filter bank for cfg.Ratio.
func NewPolyphaseStage[F simdops.Float](cfg Config) (*PolyphaseStage[F], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := DesignPolyphase(cfg)
	prototype, err := filter.DesignLowPass(filter.Params{
		NumTaps:     d.TotalTaps,
		Cutoff:      d.Cutoff,
		Attenuation: d.Attenuation,
		Gain:        float64(d.NumPhases),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: prototype: %w", ErrInvalidConfig, err)
	}

	fracBits := uint(phaseFracBits)
	if cfg.HiPrecClock {
		fracBits = phaseFracBitsHiPrec
	}
	unit := float64(int64(1) << fracBits)

	s := &PolyphaseStage[F]{
		numPhases:    d.NumPhases,
		tapsPerPhase: d.TapsPerPhase,
		ratio:        cfg.Ratio,
		step:         int64(math.Round(float64(d.NumPhases) / cfg.Ratio * unit)),
		start:        int64(d.TotalTaps-1) / 2 << fracBits,
		fracBits:     fracBits,
		fracMask:     int64(1)<<fracBits - 1,
		fracUnit:     F(1 / unit),
		history:      make([]F, 0, 2*d.TapsPerPhase),
		ops:          simdops.For[F](),
	}
	s.decompose(prototype)
	s.Reset()
	return s, nil
}

// decompose splits the prototype into phases and precomputes the cubic
// interpolation terms towards the next phase.
func (s *PolyphaseStage[F]) decompose(prototype []float64) {
	L, T := s.numPhases, s.tapsPerPhase
	proto := func(i int) float64 {
		if i < 0 || i >= len(prototype) {
			return 0
		}
		return prototype[i]
	}

	s.coeffsA = make([][]F, L)
	s.coeffsB = make([][]F, L)
	s.coeffsC = make([][]F, L)
	s.coeffsD = make([][]F, L)
	for phase := range L {
		a := make([]F, T)
		b := make([]F, T)
		c := make([]F, T)
		d := make([]F, T)
		for tap := range T {
			i := tap*L + phase
			f0, f1, fm1, f2 := proto(i), proto(i+1), proto(i-1), proto(i+2)

			cc := cubicCenterCoeff*(f1+fm1) - f0
			dd := (f2 - f1 + fm1 - f0 - cubicCMultiplier*cc) / cubicDivisor
			bb := f1 - f0 - dd - cc

			rev := T - 1 - tap
			a[rev], b[rev], c[rev], d[rev] = F(f0), F(bb), F(cc), F(dd)
		}
		s.coeffsA[phase], s.coeffsB[phase], s.coeffsC[phase], s.coeffsD[phase] = a, b, c, d
	}
}

// Process converts the next block of input.
func (s *PolyphaseStage[F]) Process(input []float64) ([]float64, error) {
	s.out = s.out[:0]
	for len(input) > 0 {
		n := min(len(input), maxChunk)
		s.samplesIn += int64(n)
		s.history = appendSamples(s.history, input[:n])
		s.run()
		input = input[n:]
	}
	s.samplesOut += int64(len(s.out))
	return s.out, nil
}

// run produces every output whose taps are covered by history, then drops
// the input the clock has moved past.
func (s *PolyphaseStage[F]) run() {
	L := int64(s.numPhases)
	T := s.tapsPerPhase
	numIn := len(s.history) - T + 1
	if numIn <= 0 {
		return
	}

	limit := int64(numIn) * L << s.fracBits
	at := s.at
	for at < limit {
		full := at >> s.fracBits
		div := int(full / L)
		phase := int(full % L)
		x := F(at&s.fracMask) * s.fracUnit

		y := s.ops.CubicInterpDot(s.history[div:div+T],
			s.coeffsA[phase], s.coeffsB[phase], s.coeffsC[phase], s.coeffsD[phase], x)
		s.out = append(s.out, float64(y))
		at += s.step
	}

	consumed := int((at >> s.fracBits) / L)
	consumed = min(consumed, len(s.history))
	if consumed > 0 {
		n := copy(s.history, s.history[consumed:])
		s.history = s.history[:n]
	}
	s.at = at - int64(consumed)*L<<s.fracBits
}

// Flush pads with silence past the filter's reach and trims the result to
// round(samplesIn·ratio) outputs in total.
func (s *PolyphaseStage[F]) Flush() ([]float64, error) {
	s.out = s.out[:0]
	pad := s.tapsPerPhase + int(math.Ceil(1/s.ratio)) + 1
	s.history = append(s.history, make([]F, pad)...)
	s.run()

	want := int(math.Round(float64(s.samplesIn)*s.ratio)) - int(s.samplesOut)
	want = max(0, min(want, len(s.out)))
	s.out = s.out[:want]
	s.samplesOut += int64(want)
	return s.out, nil
}

// Reset primes the history with silence so the first output lines up with
// the first input sample.
func (s *PolyphaseStage[F]) Reset() {
	s.history = append(s.history[:0], make([]F, s.tapsPerPhase-1)...)
	s.at = s.start
	s.samplesIn = 0
	s.samplesOut = 0
}

// Delay returns the outputs still owed for input already received.
func (s *PolyphaseStage[F]) Delay() float64 {
	return max(0, float64(s.samplesIn)*s.ratio-float64(s.samplesOut))
}

// Name identifies the stage and its precision.
func (s *PolyphaseStage[F]) Name() string {
	return fmt.Sprintf("polyphase-f%d", simdops.Bits[F]())
}

// Clone implements Stage. The coefficient tables are shared.
func (s *PolyphaseStage[F]) Clone() Stage {
	c := *s
	c.history = make([]F, 0, 2*s.tapsPerPhase)
	c.out = nil
	c.Reset()
	return &c
}

// findRationalApprox picks the number of phases L and the integer step so
// that step/L ≈ 1/ratio. An exact fraction with the fewest phases wins;
// otherwise the closest fraction with 64..256 phases is used and the clock's
// fractional bits absorb the remainder.
func findRationalApprox(ratio float64) (numPhases, step int) {
	inv := 1 / ratio
	for L := 1; L <= maxPhases; L++ {
		st := math.Round(inv * float64(L))
		if st >= 1 && math.Abs(st/float64(L)-inv) < rationalTolerance*inv {
			return L, int(st)
		}
	}

	bestL := defaultPhases
	bestStep := max(1, int(math.Round(inv*defaultPhases)))
	bestErr := math.Abs(float64(bestStep)/defaultPhases - inv)
	for L := defaultPhases; L <= maxPhases; L++ {
		st := int(math.Round(inv * float64(L)))
		if st < 1 {
			continue
		}
		if e := math.Abs(float64(st)/float64(L) - inv); e < bestErr {
			bestL, bestStep, bestErr = L, st, e
		}
	}
	return bestL, bestStep
}
