package pipeline

import "sync"

const (
	defaultCapacity = 4096
	growthFactor    = 2
)

// RingBuffer is a growable FIFO of samples. A channel's worker writes
// converted samples into it while the caller's goroutine reads them out.
type RingBuffer struct {
	data     []float64
	size     int
	readPos  int
	writePos int
	mu       sync.Mutex
}

// NewRingBuffer creates a buffer with room for capacity samples before it
// has to grow.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &RingBuffer{data: make([]float64, capacity)}
}

// Write appends samples, growing the buffer when full.
func (b *RingBuffer) Write(samples []float64) {
	if len(samples) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size+len(samples) > len(b.data) {
		b.grow(b.size + len(samples))
	}

	// At most two copies: up to the end of data, then from the start.
	n := copy(b.data[b.writePos:], samples)
	copy(b.data, samples[n:])
	b.writePos = (b.writePos + len(samples)) % len(b.data)
	b.size += len(samples)
}

// ReadInto moves up to len(dst) samples into dst and returns how many it
// moved.
func (b *RingBuffer) ReadInto(dst []float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(len(dst), b.size)
	if n == 0 {
		return 0
	}
	first := copy(dst[:n], b.data[b.readPos:])
	copy(dst[first:n], b.data)
	b.readPos = (b.readPos + n) % len(b.data)
	b.size -= n
	return n
}

// Available returns the number of buffered samples.
func (b *RingBuffer) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Capacity returns the current allocation in samples.
func (b *RingBuffer) Capacity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Clear discards all buffered samples and keeps the allocation.
func (b *RingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.size, b.readPos, b.writePos = 0, 0, 0
}

func (b *RingBuffer) grow(minCapacity int) {
	capacity := len(b.data)
	for capacity < minCapacity {
		capacity *= growthFactor
	}
	data := make([]float64, capacity)
	if b.size > 0 {
		n := copy(data, b.data[b.readPos:min(len(b.data), b.readPos+b.size)])
		copy(data[n:b.size], b.data)
	}
	b.data = data
	b.readPos = 0
	b.writePos = b.size % capacity
}
