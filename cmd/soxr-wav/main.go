// Command soxr-wav converts the sample rate of WAV files.
//
// Usage:
//
//	soxr-wav -rate 48 input.wav output.wav
//	soxr-wav -rate 16 -quality very-high -bits 24 input.wav output.wav
//	soxr-wav -threads 2 -rolloff medium input.wav output.wav
//	soxr-wav -config job.yaml input.wav output.wav
//
// The engine's data types are picked at run time from the WAV headers: 16-bit
// files are converted as int16, 24- and 32-bit files as int32.
//
// A job file sets the same options as the flags; flags given on the command
// line override it:
//
//	rate: 48000
//	quality: high
//	rolloff: small
//	variable_rate: true
//	drift_ppm: -40
//	slew: 4800
//	threads: 2
//	bits: 24
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	soxr "github.com/tphakala/go-soxr"
	"github.com/tphakala/go-soxr/internal/simdops"
)

const (
	// Input frames per Process call
	defaultChunkFrames = 65536

	// Extra output room so a chunk never stalls on rounding
	outputMarginFrames = 1024

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	bitShift24      = 8

	// WAV encodings
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// Conversion constants
	kHzToHz          = 1000
	ppmScale         = 1e-6
	percentScale     = 100
	progressInterval = 10 // Log progress every N%

	// CLI defaults
	defaultRateKHz  = 48.0
	minRequiredArgs = 2
)

func main() {
	log := logrus.New()
	if err := run(log, os.Args[1:]); err != nil {
		log.WithError(err).Fatal("conversion failed")
	}
}

func run(log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("soxr-wav", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML job file")
	rateKHz := fs.Float64("rate", defaultRateKHz, "Target sample rate in kHz (e.g., 16, 44.1, 48, 96)")
	quality := fs.String("quality", "high", "Quality recipe: quick, low, medium, high, very-high")
	rolloff := fs.String("rolloff", "small", "Passband rolloff: small, medium, none")
	vr := fs.Bool("vr", false, "Variable-rate engine")
	hiPrec := fs.Bool("hiprec", false, "High-precision phase clock")
	double := fs.Bool("double", false, "Run the filter in float64")
	threads := fs.Uint("threads", 0, "Channels converted concurrently (0 = sequential)")
	bits := fs.Int("bits", 0, "Output bit depth: 16, 24 or 32 (0 = same as input)")
	gain := fs.Float64("gain", 1, "Linear output gain")
	drift := fs.Float64("drift", 0, "Clock drift to correct in ppm (needs -vr)")
	slew := fs.Int("slew", 0, "Output frames over which drift is applied")
	chunk := fs.Int("chunk", defaultChunkFrames, "Input frames per engine call")
	verbose := fs.Bool("v", false, "Verbose output")
	cpuprofile := fs.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: soxr-wav [options] input.wav output.wav\n\nOptions:\n")
		fs.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	job, err := NewJob("")
	if *configPath != "" {
		job, err = LoadJob(*configPath)
	}
	if err != nil {
		return err
	}

	// Flags given explicitly win over the job file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rate":
			job.Rate = *rateKHz * kHzToHz
		case "quality":
			job.Quality = *quality
		case "rolloff":
			job.Rolloff = *rolloff
		case "vr":
			job.Variable = *vr
		case "hiprec":
			job.HiPrec = *hiPrec
		case "double":
			job.Double = *double
		case "threads":
			job.Threads = uint32(*threads)
		case "bits":
			job.Bits = *bits
		case "gain":
			job.Gain = *gain
		case "drift":
			job.DriftPPM = *drift
		case "slew":
			job.SlewLen = *slew
		case "chunk":
			job.ChunkSize = *chunk
		}
	})
	if err := job.Validate(); err != nil {
		return err
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath, outputPath := paths[0], paths[1]
	entry := log.WithFields(job.LoggerFields()).WithFields(logrus.Fields{
		"input":   inputPath,
		"output":  outputPath,
		"version": soxr.Version(),
		"cpu":     simdops.CPU(),
	})
	entry.Debug("starting conversion")

	start := time.Now()
	stats, err := convertWAV(inputPath, outputPath, job, entry)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Resampled %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz -> %d Hz (%d channels, %d-bit -> %d-bit, %s)\n",
		stats.inputRate, stats.outputRate, stats.channels, stats.inputBits, stats.outputBits, stats.engine)
	fmt.Printf("  %d frames -> %d frames, %d clipped samples\n",
		stats.inputFrames, stats.outputFrames, stats.clips)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputFrames)/float64(stats.inputRate)/elapsed.Seconds())

	if stats.clips > 0 {
		entry.WithField("clips", stats.clips).Warn("output was clipped, consider -gain")
	}
	return nil
}
