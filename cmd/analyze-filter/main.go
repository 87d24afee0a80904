// Command analyze-filter prints the polyphase filter a quality recipe designs
// for a rate pair, with its per-phase DC gain and measured response.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"slices"

	soxr "github.com/tphakala/go-soxr"
	"github.com/tphakala/go-soxr/internal/engine"
	"github.com/tphakala/go-soxr/internal/filter"
)

const (
	defaultInputRate  = 44100.0
	defaultOutputRate = 48000.0
	defaultPoints     = 2048

	nyquist = 0.5
)

// analysis is the measured result for one design.
type analysis struct {
	Design engine.PolyphaseDesign

	MinPhaseGain float64
	MaxPhaseGain float64

	PassbandRippleDB float64 // largest deviation from unity below the passband edge
	PassbandEdgeDB   float64 // response at the requested passband edge
	StopbandDB       float64 // highest response above the stopband edge
}

func main() {
	fs := flag.NewFlagSet("analyze-filter", flag.ExitOnError)
	inRate := fs.Float64("in", defaultInputRate, "input sample rate in Hz")
	outRate := fs.Float64("out", defaultOutputRate, "output sample rate in Hz")
	quality := fs.String("quality", "high", "quality recipe: low, medium, high, very-high")
	rolloff := fs.String("rolloff", "small", "passband rolloff: small, medium, none")
	points := fs.Int("points", defaultPoints, "frequency grid size")
	_ = fs.Parse(os.Args[1:])

	cfg, err := stageConfig(*quality, *rolloff, *outRate / *inRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a, err := analyze(cfg, *points)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	report(cfg, a)
}

// stageConfig maps a recipe and rolloff name onto a stage configuration.
func stageConfig(recipe, rolloff string, ratio float64) (engine.Config, error) {
	r, err := soxr.ParseQualityRecipe(recipe)
	if err != nil {
		return engine.Config{}, err
	}
	if r == soxr.QualityQuick {
		return engine.Config{}, fmt.Errorf("recipe %q has no filter to analyze", recipe)
	}

	var flags soxr.QualityFlags
	stageRolloff := engine.RolloffSmall
	switch rolloff {
	case "small":
	case "medium":
		flags, stageRolloff = soxr.RolloffMedium, engine.RolloffMedium
	case "none":
		flags, stageRolloff = soxr.RolloffNone, engine.RolloffNone
	default:
		return engine.Config{}, fmt.Errorf("unknown rolloff %q", rolloff)
	}

	q, err := soxr.NewQualitySpec(r, flags)
	if err != nil {
		return engine.Config{}, err
	}
	cfg := engine.Config{
		Ratio:         ratio,
		Bits:          q.Precision(),
		PassbandEnd:   q.PassbandEnd(),
		StopbandBegin: q.StopbandBegin(),
		Rolloff:       stageRolloff,
	}
	return cfg, cfg.Validate()
}

// analyze designs the prototype for cfg and measures it on a grid of points
// frequencies between DC and the prototype's Nyquist.
func analyze(cfg engine.Config, points int) (analysis, error) {
	d := engine.DesignPolyphase(cfg)
	proto, err := filter.DesignLowPass(filter.Params{
		NumTaps:     d.TotalTaps,
		Cutoff:      d.Cutoff,
		Attenuation: d.Attenuation,
		Gain:        float64(d.NumPhases),
	})
	if err != nil {
		return analysis{}, err
	}

	a := analysis{Design: d}
	gains := phaseGains(proto, d.NumPhases)
	a.MinPhaseGain = slices.Min(gains)
	a.MaxPhaseGain = slices.Max(gains)

	// The band edges are in input-Nyquist units; the prototype runs
	// NumPhases times faster than the input.
	scale := float64(d.NumPhases)
	passEdge := cfg.PassbandEnd * min(1, cfg.Ratio) * nyquist / scale
	stopEdge := d.Stopband * nyquist / scale

	a.StopbandDB = math.Inf(-1)
	for k := range points {
		f := nyquist * float64(k) / float64(points)
		db := responseDB(proto, f, scale)
		switch {
		case f <= passEdge:
			a.PassbandRippleDB = max(a.PassbandRippleDB, math.Abs(db))
		case f >= stopEdge:
			a.StopbandDB = max(a.StopbandDB, db)
		}
	}
	a.PassbandEdgeDB = responseDB(proto, passEdge, scale)
	return a, nil
}

// phaseGains returns the DC gain of each phase of a bank decomposed from
// proto.
func phaseGains(proto []float64, numPhases int) []float64 {
	gains := make([]float64, numPhases)
	for i, h := range proto {
		gains[i%numPhases] += h
	}
	return gains
}

func responseDB(proto []float64, freq, gain float64) float64 {
	re, im := filter.Evaluate(proto, freq)
	return filter.MagnitudeDB(math.Hypot(re, im) / gain)
}

func report(cfg engine.Config, a analysis) {
	d := a.Design
	fmt.Println("=== Polyphase Filter Analysis ===")
	fmt.Printf("Ratio:            %.6f\n", cfg.Ratio)
	fmt.Printf("Precision:        %d bits (%.1f dB)\n", cfg.Bits, d.Attenuation)
	fmt.Printf("Phases:           %d\n", d.NumPhases)
	fmt.Printf("Taps per phase:   %d\n", d.TapsPerPhase)
	fmt.Printf("Prototype taps:   %d\n", d.TotalTaps)
	fmt.Printf("Passband:         %.5f (designed %.5f)\n", cfg.PassbandEnd*min(1, cfg.Ratio), d.Passband)
	fmt.Printf("Stopband:         %.5f\n", d.Stopband)

	fmt.Println("\nDC gain per phase:")
	fmt.Printf("  min %.10f  max %.10f\n", a.MinPhaseGain, a.MaxPhaseGain)

	fmt.Println("\nMeasured response:")
	fmt.Printf("  Passband ripple:  %.4f dB\n", a.PassbandRippleDB)
	fmt.Printf("  At passband edge: %.4f dB\n", a.PassbandEdgeDB)
	fmt.Printf("  Stopband peak:    %.1f dB\n", a.StopbandDB)
}
