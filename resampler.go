package soxr

// Resampler is an engine whose data types are fixed by its type arguments,
// for example Resampler[Planar[float32], Packed[int16]].
//
// It embeds *Soxr for control and diagnostics; Process is narrowed to the
// static buffer types.
type Resampler[I, O Buffer] struct {
	*Soxr
}

// NewResampler builds an engine converting I buffers into O buffers.
// Interface type arguments have no data type and fail with
// ErrUnsupportedFormat.
func NewResampler[I, O Buffer](inputRate, outputRate float64, channels int,
	quality *QualitySpec, runtime *RuntimeSpec,
) (*Resampler[I, O], error) {
	s, err := New(dataTypeOf[I](), dataTypeOf[O](), inputRate, outputRate, channels, quality, runtime)
	if err != nil {
		return nil, err
	}
	return &Resampler[I, O]{Soxr: s}, nil
}

// Process converts in into out. Pass a nil in to flush.
func (r *Resampler[I, O]) Process(in I, out O) (consumed, produced int, err error) {
	return r.Soxr.Process(in, out)
}

// ProcessDynamic accepts buffers whose type is only known at run time. Their
// data types are checked against the engine's on every call.
func (r *Resampler[I, O]) ProcessDynamic(in, out Buffer) (consumed, produced int, err error) {
	return r.Soxr.Process(in, out)
}
