package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStage_Selection(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		want        string
		ratioSetter bool
	}{
		{"quick", Config{Ratio: 1.5, Bits: 8, Quick: true}, "cubic-f32", true},
		{"quick_double", Config{Ratio: 1.5, Bits: 8, Quick: true, DoublePrecision: true}, "cubic-f64", true},
		{"low", testConfig(1.5, 16), "polyphase-f32", false},
		{"high", testConfig(1.5, 20), "polyphase-f64", false},
		{"low_double", func() Config { c := testConfig(1.5, 16); c.DoublePrecision = true; return c }(), "polyphase-f64", false},
		{"vr_low", func() Config { c := testConfig(1.5, 16); c.VariableRate = true; return c }(), "vr-sinc-f32", true},
		{"vr_very_high", func() Config { c := testConfig(1.5, 28); c.VariableRate = true; return c }(), "vr-sinc-f64", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStage(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())

			_, ok := s.(RatioSetter)
			assert.Equal(t, tt.ratioSetter, ok)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"zero_ratio", func(c *Config) { c.Ratio = 0 }, ErrInvalidRatio},
		{"nan_ratio", func(c *Config) { c.Ratio = math.NaN() }, ErrInvalidRatio},
		{"inf_ratio", func(c *Config) { c.Ratio = math.Inf(1) }, ErrInvalidRatio},
		{"no_bits", func(c *Config) { c.Bits = 0 }, ErrInvalidConfig},
		{"inverted_band", func(c *Config) { c.PassbandEnd = 1 }, ErrInvalidConfig},
		{"stopband_past_nyquist", func(c *Config) { c.StopbandBegin = 1.2 }, ErrInvalidConfig},
		{"bad_rolloff", func(c *Config) { c.Rolloff = 7 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(2, 20)
			tt.mutate(&cfg)
			_, err := NewStage(cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDesignBand_Rolloff(t *testing.T) {
	cfg := testConfig(1, 20)

	small := designBand(cfg, 1)
	cfg.Rolloff = RolloffMedium
	medium := designBand(cfg, 1)
	cfg.Rolloff = RolloffNone
	none := designBand(cfg, 1)

	assert.InDelta(t, 0.913, none.passband, 1e-12)
	assert.Less(t, small.passband, none.passband)
	assert.Less(t, medium.passband, small.passband)
	assert.InDelta(t, 21*6.0206, small.attenuation, 1e-9)
}
