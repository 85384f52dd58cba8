package object

import "sync/atomic"

// ArrayBuffer owns a raw byte region. Detaching (via structured-clone
// transfer, spec.md §4.3) zeroes ByteLength and flips detached so every
// live TypedArray view observes the transfer atomically without needing
// its own copy of the flag.
type ArrayBuffer struct {
	data     []byte
	detached atomic.Bool
}

// NewArrayBuffer allocates a zero-filled buffer of n bytes.
func NewArrayBuffer(n int) *ArrayBuffer {
	return &ArrayBuffer{data: make([]byte, n)}
}

// NewArrayBufferFromBytes wraps an existing byte slice without copying,
// for structuredClone's transfer path: the detached source's bytes become
// the new buffer's storage directly (spec.md §4.3 "transfer... move
// ownership").
func NewArrayBufferFromBytes(data []byte) *ArrayBuffer {
	return &ArrayBuffer{data: data}
}

// ByteLength returns 0 once Detach has been called, per spec.md's
// "transferable semantics let structuredClone move ownership so the
// source buffer's byteLength becomes 0".
func (b *ArrayBuffer) ByteLength() int {
	if b.detached.Load() {
		return 0
	}
	return len(b.data)
}

func (b *ArrayBuffer) IsDetached() bool { return b.detached.Load() }

// Detach transfers ownership out, returning the raw bytes to the new
// owner (structuredClone's transfer path) and leaving b permanently
// zero-length; any view on it must trap per spec.md §4.3.
func (b *ArrayBuffer) Detach() []byte {
	if b.detached.Swap(true) {
		return nil // already detached
	}
	data := b.data
	b.data = nil
	return data
}

// Bytes returns the live backing slice, or nil if detached. Callers must
// not retain it across a point where the buffer could be detached
// concurrently; this engine runs single-threaded per spec.md §5, so the
// atomic is purely for SharedArrayBuffer cross-agent visibility, not
// intra-agent locking.
func (b *ArrayBuffer) Bytes() []byte {
	if b.detached.Load() {
		return nil
	}
	return b.data
}
