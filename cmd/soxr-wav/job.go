package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	soxr "github.com/tphakala/go-soxr"
)

// Job describes one conversion. It is read from a YAML file and then
// overridden by any flags given on the command line.
type Job struct {
	Rate      float64 `yaml:"rate"`    // target rate in Hz
	Quality   string  `yaml:"quality"` // quick, low, medium, high, very-high
	Rolloff   string  `yaml:"rolloff"` // small, medium, none
	Variable  bool    `yaml:"variable_rate"`
	HiPrec    bool    `yaml:"hi_prec_clock"`
	Double    bool    `yaml:"double_precision"`
	Threads   uint32  `yaml:"threads"`
	Bits      int     `yaml:"bits"`      // output bit depth, 0 keeps the input's
	Gain      float64 `yaml:"gain"`      // linear output gain
	DriftPPM  float64 `yaml:"drift_ppm"` // clock drift to correct, needs variable_rate
	SlewLen   int     `yaml:"slew"`      // output frames over which drift is applied
	ChunkSize int     `yaml:"chunk"`     // input frames per Process call
}

var errInvalidJob = errors.New("invalid job")

// NewJob parses a YAML job over the defaults.
func NewJob(confString string) (*Job, error) {
	job := &Job{
		Rate:      defaultRateKHz * kHzToHz,
		Quality:   soxr.QualityHigh.String(),
		Rolloff:   "small",
		Gain:      1,
		ChunkSize: defaultChunkFrames,
	}
	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), job); err != nil {
			return nil, fmt.Errorf("could not parse job: %w", err)
		}
	}
	return job, nil
}

// LoadJob reads a YAML job file.
func LoadJob(path string) (*Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return NewJob(string(b))
}

// Validate checks the fields that the engine does not check itself.
func (j *Job) Validate() error {
	switch {
	case !(j.Rate > 0):
		return fmt.Errorf("%w: rate %v", errInvalidJob, j.Rate)
	case j.Bits != 0 && j.Bits != bitsPerSample16 && j.Bits != bitsPerSample24 && j.Bits != bitsPerSample32:
		return fmt.Errorf("%w: bits %d, want 16, 24 or 32", errInvalidJob, j.Bits)
	case !(j.Gain > 0):
		return fmt.Errorf("%w: gain %v", errInvalidJob, j.Gain)
	case j.ChunkSize < 1:
		return fmt.Errorf("%w: chunk %d", errInvalidJob, j.ChunkSize)
	case j.SlewLen < 0:
		return fmt.Errorf("%w: slew %d", errInvalidJob, j.SlewLen)
	case j.DriftPPM != 0 && !j.Variable && !strings.EqualFold(j.Quality, soxr.QualityQuick.String()):
		return fmt.Errorf("%w: drift correction needs variable_rate", errInvalidJob)
	}
	_, err := j.QualitySpec()
	return err
}

// QualitySpec maps the quality fields onto the engine's spec.
func (j *Job) QualitySpec() (soxr.QualitySpec, error) {
	recipe, err := soxr.ParseQualityRecipe(strings.ToLower(j.Quality))
	if err != nil {
		return soxr.QualitySpec{}, err
	}

	var flags soxr.QualityFlags
	switch strings.ToLower(j.Rolloff) {
	case "", "small":
		flags |= soxr.RolloffSmall
	case "medium":
		flags |= soxr.RolloffMedium
	case "none":
		flags |= soxr.RolloffNone
	default:
		return soxr.QualitySpec{}, fmt.Errorf("%w: rolloff %q", errInvalidJob, j.Rolloff)
	}
	if j.Variable {
		flags |= soxr.VariableRate
	}
	if j.HiPrec {
		flags |= soxr.HiPrecClock
	}
	if j.Double {
		flags |= soxr.DoublePrecision
	}
	return soxr.NewQualitySpec(recipe, flags)
}

// RuntimeSpec returns the thread hint.
func (j *Job) RuntimeSpec() soxr.RuntimeSpec {
	return soxr.NewRuntimeSpec(j.Threads)
}

// LoggerFields describes the job for logrus.
func (j *Job) LoggerFields() logrus.Fields {
	return logrus.Fields{
		"rate":    j.Rate,
		"quality": j.Quality,
		"rolloff": j.Rolloff,
		"vr":      j.Variable,
		"threads": j.Threads,
		"bits":    j.Bits,
	}
}
