package dsp

import "sync/atomic"

// RingBuffer is a fixed capacity single-producer/single-consumer sample buffer.
//
// The producer only calls Push. The consumer only calls Drain and Reset. Len,
// Cap and IsFull may be called from either side. Nothing blocks and nothing
// allocates after construction, so Push is safe to call from an audio
// callback.
//
// The buffer never overwrites: once full, Push accepts nothing until the
// consumer drains it.
type RingBuffer struct {
	buf []float64

	// write and read are monotonic sample counters. Only the producer stores
	// write and only the consumer stores read.
	write atomic.Uint64
	read  atomic.Uint64
}

// NewRingBuffer returns an empty buffer holding up to size samples.
func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}

	return &RingBuffer{
		buf: make([]float64, size),
	}
}

// Cap returns the capacity of the buffer.
func (rb *RingBuffer) Cap() int {
	return len(rb.buf)
}

// Len returns how many samples are buffered.
func (rb *RingBuffer) Len() int {
	return int(rb.write.Load() - rb.read.Load())
}

// IsFull reports whether the buffer holds Cap samples.
func (rb *RingBuffer) IsFull() bool {
	return rb.Len() >= len(rb.buf)
}

// Push appends as many samples as fit and returns that count.
func (rb *RingBuffer) Push(samples []float64) int {
	w := rb.write.Load()
	free := len(rb.buf) - int(w-rb.read.Load())

	if free <= 0 {
		return 0
	}

	if len(samples) > free {
		samples = samples[:free]
	}

	size := uint64(len(rb.buf))
	start := int(w % size)

	n := copy(rb.buf[start:], samples)
	copy(rb.buf, samples[n:])

	rb.write.Store(w + uint64(len(samples)))

	return len(samples)
}

// Drain copies the buffered samples, oldest first, into dst and empties the
// buffer. dst is grown if it is too small. The returned slice has exactly Len
// samples, which is Cap when the buffer was full.
func (rb *RingBuffer) Drain(dst []float64) []float64 {
	r := rb.read.Load()
	w := rb.write.Load()
	count := int(w - r)

	if cap(dst) < count {
		dst = make([]float64, count)
	}
	dst = dst[:count]

	size := uint64(len(rb.buf))
	start := int(r % size)

	n := copy(dst, rb.buf[start:])
	if n < count {
		copy(dst[n:], rb.buf[:count-n])
	}

	rb.read.Store(w)

	return dst
}

// Reset discards everything buffered.
func (rb *RingBuffer) Reset() {
	rb.read.Store(rb.write.Load())
}
