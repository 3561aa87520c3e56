package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// Buffer is a per-instance vertex buffer with tracked byte capacity.
type Buffer struct {
	noCopy noCopy

	label    string
	usage    gpu.Usage
	dev      gpu.Device
	handle   gpu.Handle
	capacity int
}

// NewBuffer returns an unallocated buffer.
func NewBuffer(label string, usage gpu.Usage) *Buffer {
	return &Buffer{label: label, usage: usage}
}

// Allocate replaces the buffer with a new one of len(data) bytes holding data.
// Any previous allocation is released.
func (b *Buffer) Allocate(dev gpu.Device, data []byte) {
	b.Reserve(dev, len(data))
	if len(data) > 0 {
		dev.WriteBuffer(b.handle, 0, data)
	}
}

// Reserve replaces the buffer with an empty one of size bytes.
func (b *Buffer) Reserve(dev gpu.Device, size int) {
	b.Release()
	h, err := dev.CreateBuffer(gpu.BufferDescriptor{Label: b.label, Size: max(size, 4), Usage: b.usage})
	if err != nil {
		buildFailed("buffer", b.label, err)
	}
	b.dev = dev
	b.handle = h
	b.capacity = max(size, 4)
}

// Write copies data into the existing allocation at offset. Writing past the capacity is
// a programming error and panics.
func (b *Buffer) Write(dev gpu.Device, offset int, data []byte) {
	if offset < 0 || offset+len(data) > b.capacity {
		panic(fmt.Sprintf("resource: write %d bytes at %d overflows buffer %q of %d bytes", len(data), offset, b.label, b.capacity))
	}
	dev.WriteBuffer(b.handle, offset, data)
}

// Release frees the buffer and resets its capacity.
func (b *Buffer) Release() {
	if b.handle == 0 {
		return
	}
	b.dev.ReleaseBuffer(b.handle)
	b.handle = 0
	b.capacity = 0
}

// Built reports whether the buffer is allocated.
func (b *Buffer) Built() bool { return b.handle != 0 }

// Handle returns the buffer handle, zero if unallocated.
func (b *Buffer) Handle() gpu.Handle { return b.handle }

// Capacity returns the allocated size in bytes.
func (b *Buffer) Capacity() int { return b.capacity }
