package soxr

import (
	"errors"
	"fmt"
)

// Error classes. Construction errors also match the class of their cause, so
// an invalid channel count at New matches both ErrConstruction and
// ErrValidation.
var (
	// ErrConfiguration reports an invalid spec combination.
	ErrConfiguration = errors.New("soxr: configuration error")

	// ErrConstruction reports an engine that could not be built.
	ErrConstruction = errors.New("soxr: construction error")

	// ErrValidation reports buffers rejected before any data was touched. The
	// engine is unchanged and the call may be retried with corrected buffers.
	ErrValidation = errors.New("soxr: validation error")

	// ErrProcessing reports a failure during conversion. The engine should be
	// discarded.
	ErrProcessing = errors.New("soxr: processing error")

	// ErrReconfiguration reports a rejected Clear, SetIORatio or
	// SetNumChannels. The prior configuration is kept.
	ErrReconfiguration = errors.New("soxr: reconfiguration error")
)

// Specific errors, each wrapping its class.
var (
	ErrUnsupportedFormat     = fmt.Errorf("%w: unsupported data type", ErrConfiguration)
	ErrInvalidQualityConfig  = fmt.Errorf("%w: invalid quality spec", ErrConfiguration)
	ErrConstructionFailed    = fmt.Errorf("%w: construction failed", ErrConstruction)
	ErrInvalidChannelCount   = fmt.Errorf("%w: invalid number of channels", ErrValidation)
	ErrDataTypeMismatch      = fmt.Errorf("%w: data type mismatch", ErrValidation)
	ErrBufferMisaligned      = fmt.Errorf("%w: buffer length not a whole number of frames", ErrValidation)
	ErrProcessingFailed      = fmt.Errorf("%w: processing failed", ErrProcessing)
	ErrClosed                = fmt.Errorf("%w: engine closed", ErrProcessing)
	ErrResetFailed           = fmt.Errorf("%w: reset failed", ErrReconfiguration)
	ErrInvalidRatio          = fmt.Errorf("%w: invalid ratio", ErrReconfiguration)
	ErrReconfigurationFailed = fmt.Errorf("%w: reconfiguration failed", ErrReconfiguration)
)

// Origin tells where an error was detected.
type Origin int

const (
	// OriginValidation marks errors detected by argument checks in this
	// package.
	OriginValidation Origin = iota
	// OriginEngine marks errors reported by the conversion stages.
	OriginEngine
)

func (o Origin) String() string {
	if o == OriginEngine {
		return "engine"
	}
	return "validation"
}

// Error is the concrete error type returned by the engine.
type Error struct {
	Op     string // operation, e.g. "process"
	Origin Origin
	Kind   error // one of the specific sentinels above
	Msg    string
	Err    error // underlying cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Describe returns the human-readable message, whatever the origin.
func (e *Error) Describe() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func validationError(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Origin: OriginValidation, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func engineError(op string, kind, cause error) *Error {
	return &Error{Op: op, Origin: OriginEngine, Kind: kind, Msg: cause.Error(), Err: cause}
}
