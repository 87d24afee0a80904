package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	soxr "github.com/tphakala/go-soxr"
)

func TestNewJob_Defaults(t *testing.T) {
	job, err := NewJob("")
	require.NoError(t, err)
	require.NoError(t, job.Validate())

	assert.InDelta(t, 48000.0, job.Rate, 0)
	assert.Equal(t, "high", job.Quality)
	assert.Equal(t, defaultChunkFrames, job.ChunkSize)

	q, err := job.QualitySpec()
	require.NoError(t, err)
	assert.Equal(t, soxr.QualityHigh, q.Recipe())
	assert.Equal(t, soxr.RolloffSmall, q.Flags())
}

func TestNewJob_YAML(t *testing.T) {
	job, err := NewJob(`
rate: 16000
quality: very-high
rolloff: medium
variable_rate: true
hi_prec_clock: true
double_precision: true
threads: 4
bits: 24
gain: 0.5
drift_ppm: -40
slew: 4800
chunk: 1024
`)
	require.NoError(t, err)
	require.NoError(t, job.Validate())

	assert.InDelta(t, 16000.0, job.Rate, 0)
	assert.Equal(t, uint32(4), job.RuntimeSpec().NumThreads())
	assert.Equal(t, 24, job.Bits)
	assert.Equal(t, 1024, job.ChunkSize)

	q, err := job.QualitySpec()
	require.NoError(t, err)
	assert.Equal(t, soxr.QualityVeryHigh, q.Recipe())
	assert.True(t, q.Flags().Has(soxr.RolloffMedium|soxr.VariableRate|soxr.HiPrecClock|soxr.DoublePrecision))

	fields := job.LoggerFields()
	assert.Equal(t, "very-high", fields["quality"])
	assert.Equal(t, true, fields["vr"])
}

func TestNewJob_BadYAML(t *testing.T) {
	_, err := NewJob("rate: [1, 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse job")
}

func TestLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: 22050\nquality: low\n"), 0o644))

	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.InDelta(t, 22050.0, job.Rate, 0)
	assert.Equal(t, "low", job.Quality)

	_, err = LoadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestJob_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Job)
	}{
		{"zero rate", func(j *Job) { j.Rate = 0 }},
		{"bad bits", func(j *Job) { j.Bits = 12 }},
		{"zero gain", func(j *Job) { j.Gain = 0 }},
		{"zero chunk", func(j *Job) { j.ChunkSize = 0 }},
		{"negative slew", func(j *Job) { j.SlewLen = -1 }},
		{"drift without vr", func(j *Job) { j.DriftPPM = 10 }},
		{"unknown quality", func(j *Job) { j.Quality = "ultra" }},
		{"unknown rolloff", func(j *Job) { j.Rolloff = "steep" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := NewJob("")
			require.NoError(t, err)
			tt.mutate(job)
			assert.Error(t, job.Validate())
		})
	}

	quick, err := NewJob("quality: quick\ndrift_ppm: 10\n")
	require.NoError(t, err)
	assert.NoError(t, quick.Validate())
}
