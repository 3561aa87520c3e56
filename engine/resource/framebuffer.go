package resource

import (
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// Framebuffer is an off-screen render target with optional automatic resizing.
type Framebuffer struct {
	noCopy noCopy

	desc       gpu.FramebufferDescriptor
	autoResize bool
	factor     float32
	depthFrom  *Framebuffer

	dev    gpu.Device
	handle gpu.FramebufferHandle
}

// NewFramebuffer describes a framebuffer of the given base size. Nothing is allocated
// until Build.
//
// Parameters:
//   - label: debug name
//   - width: base width in pixels
//   - height: base height in pixels
//   - options: functional options applied over the defaults
//
// Returns:
//   - *Framebuffer: the unbuilt framebuffer
func NewFramebuffer(label string, width, height int, options ...FramebufferBuilderOption) *Framebuffer {
	f := &Framebuffer{
		desc:       gpu.FramebufferDescriptor{Label: label, Width: width, Height: height, Wrap: gpu.WrapClamp},
		autoResize: true,
		factor:     1,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Build allocates the framebuffer and its attachments if not already built. A shared
// depth source is built first.
func (f *Framebuffer) Build(dev gpu.Device) {
	if f.handle.Built() {
		return
	}
	desc := f.desc
	if f.depthFrom != nil {
		f.depthFrom.Build(dev)
		desc.SharedDepth = f.depthFrom.handle.Depth
		desc.Depth = false
	}
	h, err := dev.CreateFramebuffer(desc)
	if err != nil {
		buildFailed("framebuffer", f.desc.Label, err)
	}
	f.dev = dev
	f.handle = h
}

// Bind builds the framebuffer if needed, makes it the render target and sets the viewport
// to its size.
func (f *Framebuffer) Bind(dev gpu.Device) {
	f.Build(dev)
	dev.BindFramebuffer(f.handle.Framebuffer)
	dev.SetViewport(f.desc.Width, f.desc.Height)
}

// Resize rebuilds the framebuffer at max(1, floor(size * factor)) when auto-resize is on
// and the scaled size differs from the current one.
//
// Parameters:
//   - dev: the device that owns the framebuffer
//   - width: the new window width
//   - height: the new window height
//
// Returns:
//   - bool: true if the framebuffer was rebuilt
func (f *Framebuffer) Resize(dev gpu.Device, width, height int) bool {
	if !f.autoResize {
		return false
	}
	w := max(1, int(math.Floor(float64(float32(width)*f.factor))))
	h := max(1, int(math.Floor(float64(float32(height)*f.factor))))
	sourceMoved := f.depthFrom != nil && f.handle.Built() && f.depthFrom.handle.Depth != f.handle.Depth
	if w == f.desc.Width && h == f.desc.Height && !sourceMoved {
		return false
	}
	f.Release()
	f.desc.Width, f.desc.Height = w, h
	f.Build(dev)
	return true
}

// Release frees the framebuffer. Attachments shared from another framebuffer stay alive.
func (f *Framebuffer) Release() {
	if !f.handle.Built() {
		return
	}
	f.dev.ReleaseFramebuffer(f.handle)
	f.handle = gpu.FramebufferHandle{}
}

// Built reports whether the framebuffer is allocated.
func (f *Framebuffer) Built() bool { return f.handle.Built() }

// Handle returns the framebuffer handle bundle.
func (f *Framebuffer) Handle() gpu.FramebufferHandle { return f.handle }

// Color returns the i-th color attachment texture, or zero if unbuilt or out of range.
func (f *Framebuffer) Color(i int) gpu.Handle {
	if i < 0 || i >= len(f.handle.Color) {
		return 0
	}
	return f.handle.Color[i]
}

// Depth returns the depth attachment texture, shared or owned.
func (f *Framebuffer) Depth() gpu.Handle { return f.handle.Depth }

func (f *Framebuffer) Label() string { return f.desc.Label }
func (f *Framebuffer) Width() int { return f.desc.Width }
func (f *Framebuffer) Height() int { return f.desc.Height }
func (f *Framebuffer) AutoResize() bool { return f.autoResize }
func (f *Framebuffer) ResizeFactor() float32 { return f.factor }

// DepthFrom returns the framebuffer whose depth attachment this one shares, or nil.
func (f *Framebuffer) DepthFrom() *Framebuffer { return f.depthFrom }
