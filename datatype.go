package soxr

// DataType identifies a sample format and its channel layout.
//
// The _I formats (Float32I, ...) are packed: one interleaved slice holding
// every channel. The _S formats are planar: one slice per channel.
type DataType int

const (
	Float32I DataType = iota
	Float64I
	Int32I
	Int16I
	Float32S
	Float64S
	Int32S
	Int16S

	// Dynamic stands for a type that is only known at run time. It is never
	// a valid engine format.
	Dynamic DataType = -1
)

var dataTypeNames = [...]string{
	Float32I: "float32-interleaved",
	Float64I: "float64-interleaved",
	Int32I:   "int32-interleaved",
	Int16I:   "int16-interleaved",
	Float32S: "float32-split",
	Float64S: "float64-split",
	Int32S:   "int32-split",
	Int16S:   "int16-split",
}

func (d DataType) known() bool {
	return d >= Float32I && d <= Int16S
}

// IsPacked reports whether d is an interleaved format.
func (d DataType) IsPacked() bool {
	return d >= Float32I && d <= Int16I
}

// IsPlanar reports whether d is a per-channel format.
func (d DataType) IsPlanar() bool {
	return d >= Float32S && d <= Int16S
}

// IsInteger reports whether d holds integer samples that are clipped on
// output.
func (d DataType) IsInteger() bool {
	switch d {
	case Int32I, Int16I, Int32S, Int16S:
		return true
	default:
		return false
	}
}

// BytesPerSample returns the size of one sample, or 0 for Dynamic.
func (d DataType) BytesPerSample() int {
	switch d {
	case Int16I, Int16S:
		return 2
	case Float32I, Int32I, Float32S, Int32S:
		return 4
	case Float64I, Float64S:
		return 8
	default:
		return 0
	}
}

func (d DataType) String() string {
	if d.known() {
		return dataTypeNames[d]
	}
	if d == Dynamic {
		return "dynamic"
	}
	return "unknown"
}
