package soxr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_DataType(t *testing.T) {
	assert.Equal(t, Float32I, Packed[float32]{}.DataType())
	assert.Equal(t, Float64I, Packed[float64]{}.DataType())
	assert.Equal(t, Int32I, Packed[int32]{}.DataType())
	assert.Equal(t, Int16I, Packed[int16]{}.DataType())
	assert.Equal(t, Float32S, Planar[float32]{}.DataType())
	assert.Equal(t, Float64S, Planar[float64]{}.DataType())
	assert.Equal(t, Int32S, Planar[int32]{}.DataType())
	assert.Equal(t, Int16S, Planar[int16]{}.DataType())

	assert.Equal(t, Int16S, dataTypeOf[Planar[int16]]())
	assert.Equal(t, Dynamic, dataTypeOf[Buffer]())
}

func TestBuffer_Frames(t *testing.T) {
	n, err := Packed[int16](make([]int16, 12)).frames(3, false)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Packed[int16](make([]int16, 7)).frames(2, false)
	assert.ErrorIs(t, err, ErrBufferMisaligned)

	n, err = NewPlanar[float32](2, 5).frames(2, false)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = NewPlanar[float32](3, 5).frames(2, false)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Planar[float32]{make([]float32, 5), make([]float32, 4)}.frames(2, false)
	assert.ErrorIs(t, err, ErrBufferMisaligned)

	n, err = Planar[float32](nil).frames(2, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = Planar[float32]{}.frames(2, false)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)

	_, err = Planar[float32](nil).frames(2, true)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)
}

func TestBuffer_LoadScalesIntegers(t *testing.T) {
	dst := make([][]float64, 2)

	Packed[int16]{16384, -32768, 0, 8192}.load(dst, 2)
	assert.Equal(t, []float64{0.5, 0}, dst[0])
	assert.Equal(t, []float64{-1, 0.25}, dst[1])

	Planar[int32]{{1 << 30}, {-1 << 31}}.load(dst, 1)
	assert.Equal(t, []float64{0.5}, dst[0])
	assert.Equal(t, []float64{-1}, dst[1])

	Planar[float32]{{1.5, 2}, {-3, 4}}.load(dst, 2)
	assert.Equal(t, []float64{1.5, 2}, dst[0])
	assert.Equal(t, []float64{-3, 4}, dst[1])
}

func TestBuffer_StoreClampsIntegers(t *testing.T) {
	src := [][]float64{{0.5, 1.0, -1.0}, {-2.0, math.NaN(), 0.25}}

	packed := make(Packed[int16], 6)
	clips := packed.store(src, 3, 1)
	assert.Equal(t, Packed[int16]{16384, -32768, 32767, 0, -32768, 8192}, packed)
	assert.Equal(t, uint64(3), clips)

	planar := NewPlanar[int32](2, 3)
	clips = planar.store(src, 2, 0.5)
	assert.Equal(t, []int32{1 << 29, 1 << 30, 0}, planar[0])
	assert.Equal(t, []int32{math.MinInt32, 0, 0}, planar[1])
	assert.Equal(t, uint64(1), clips)

	floats := make(Packed[float64], 6)
	clips = floats.store([][]float64{{2, -3, 4}, {1, 1, 1}}, 3, 1)
	assert.Zero(t, clips)
	assert.Equal(t, Packed[float64]{2, 1, -3, 1, 4, 1}, floats)
}
