package engine

// Phase clock.
const (
	phaseFracBits       = 16 // sub-phase resolution of the fixed-point clock
	phaseFracBitsHiPrec = 28

	// Inputs longer than this are fed to the polyphase loop in pieces so the
	// fixed-point limit stays far from overflow.
	maxChunk = 1 << 16
)

// Polyphase bank sizing.
const (
	defaultPhases = 64
	maxPhases     = 256
	minPhases     = 16

	minTapsPerPhase = 8
	maxTapsPerPhase = 1 << 16

	// Coefficient budget for one bank, per interpolation term.
	maxBankCoeffs = 1 << 20

	rationalTolerance = 1e-10
)

// Catmull-Rom style interpolation between neighbouring prototype taps.
const (
	cubicCenterCoeff = 0.5
	cubicDivisor     = 6.0
	cubicCMultiplier = 4.0
)

// Hermite interpolation used by the quick kernel.
const (
	hermite05 = 0.5
	hermite15 = 1.5
	hermite25 = 2.5
)

// Variable-rate sinc kernel.
const (
	minHalfTaps = 4
	maxHalfTaps = 256

	oversampleLow      = 128
	oversampleHigh     = 256
	oversampleVeryHigh = 512

	bitsHigh     = 20
	bitsVeryHigh = 28
)

// Passband droop targets for rolloff compensation, in dB.
const (
	dropSmall  = -0.01
	dropMedium = -0.35

	maxInvFResp = 0.999
)
