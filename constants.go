package soxr

// Channel limits
const (
	MaxChannels    = 256 // Maximum supported channel count
	stereoChannels = 2
)

// Resampling ratio limits (output rate / input rate)
const (
	minRatio = 1.0 / 256.0
	maxRatio = 256.0
)

// Recipe precision in bits
const (
	precisionQuick    = 8
	precisionLow      = 16
	precisionMedium   = 16
	precisionHigh     = 20
	precisionVeryHigh = 28
)

// Recipe band edges, as fractions of the narrower Nyquist
const (
	// Low keeps soxr's wide transition band (1385/2048).
	lowPassbandEnd = 0.67625

	// Medium and above
	standardPassbandEnd = 0.913

	stopbandBegin = 1.0
)

// Integer sample scaling
const (
	int16Scale = 32768.0
	int32Scale = 2147483648.0
)

const version = "go-soxr 0.1.0"
