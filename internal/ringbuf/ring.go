// Package ringbuf provides a fixed-capacity circular buffer of audio samples.
//
// Unlike a growable FIFO, a Ring never reallocates after construction, so it
// is safe to use on a real-time audio path. Reads come in two flavours:
//
//   - Peek copies the oldest samples out and leaves the buffer unchanged.
//   - Pop copies the oldest samples out and removes them.
//
// Writes are either bounded (Push, TryPush), which stop when the buffer is
// full, or overwriting (PushOverwrite), which evict the oldest samples.
//
// A Ring is not safe for concurrent use.
package ringbuf

import "errors"

// ErrFull is returned by TryPush when no free slot remains.
var ErrFull = errors.New("ring buffer full")

// Ring is a fixed-capacity circular buffer of float32 samples.
type Ring struct {
	data    []float32
	readPos int // index of the oldest sample
	size    int // number of stored samples
}

// New creates an empty ring with the given capacity.
// A negative capacity is treated as zero.
func New(capacity int) *Ring {
	return &Ring{data: make([]float32, max(capacity, 0))}
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Len returns the number of stored samples.
func (r *Ring) Len() int {
	return r.size
}

// Free returns the number of samples that can be pushed without overwriting.
func (r *Ring) Free() int {
	return len(r.data) - r.size
}

// writePos is the slot after the newest sample.
func (r *Ring) writePos() int {
	if len(r.data) == 0 {
		return 0
	}
	return (r.readPos + r.size) % len(r.data)
}

// TryPush appends one sample, or returns ErrFull.
func (r *Ring) TryPush(v float32) error {
	if r.size == len(r.data) {
		return ErrFull
	}
	r.data[r.writePos()] = v
	r.size++
	return nil
}

// Push appends as many samples from src as fit and returns the count written.
func (r *Ring) Push(src []float32) int {
	n := min(len(src), r.Free())
	if n == 0 {
		return 0
	}

	w := r.writePos()
	first := copy(r.data[w:], src[:n])
	copy(r.data, src[first:n])
	r.size += n

	return n
}

// PushOverwrite appends src, evicting the oldest samples when full.
// If src is at least Cap samples long only its last Cap samples are kept.
func (r *Ring) PushOverwrite(src []float32) {
	capacity := len(r.data)
	if capacity == 0 || len(src) == 0 {
		return
	}

	if len(src) >= capacity {
		copy(r.data, src[len(src)-capacity:])
		r.readPos = 0
		r.size = capacity
		return
	}

	if overflow := r.size + len(src) - capacity; overflow > 0 {
		r.readPos = (r.readPos + overflow) % capacity
		r.size -= overflow
	}

	r.Push(src)
}

// Peek copies up to len(dst) of the oldest samples into dst without
// consuming them and returns the count copied.
func (r *Ring) Peek(dst []float32) int {
	n := min(len(dst), r.size)
	if n == 0 {
		return 0
	}

	end := min(r.readPos+n, len(r.data))
	first := copy(dst, r.data[r.readPos:end])
	copy(dst[first:n], r.data)

	return n
}

// Pop copies up to len(dst) of the oldest samples into dst, removes them,
// and returns the count copied. dst[n:] is left untouched.
func (r *Ring) Pop(dst []float32) int {
	n := r.Peek(dst)
	if n == 0 {
		return 0
	}

	r.readPos = (r.readPos + n) % len(r.data)
	r.size -= n

	return n
}

// Fill pushes v until the ring is full.
func (r *Ring) Fill(v float32) {
	for r.size < len(r.data) {
		r.data[r.writePos()] = v
		r.size++
	}
}

// Clear removes all samples.
func (r *Ring) Clear() {
	r.readPos = 0
	r.size = 0
}
