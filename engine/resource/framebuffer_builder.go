package resource

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// FramebufferBuilderOption is a functional option for configuring a Framebuffer via NewFramebuffer.
type FramebufferBuilderOption func(*Framebuffer)

// WithColor appends color attachments in order.
//
// Parameters:
//   - formats: one format per attachment
//
// Returns:
//   - FramebufferBuilderOption: a function that applies the color option to a framebuffer
func WithColor(formats ...gpu.TextureFormat) FramebufferBuilderOption {
	return func(f *Framebuffer) {
		f.desc.Color = append(f.desc.Color, formats...)
	}
}

// WithDepth adds an owned Depth32F attachment.
func WithDepth() FramebufferBuilderOption {
	return func(f *Framebuffer) {
		f.desc.Depth = true
	}
}

// WithDepthFrom shares the depth attachment of source instead of allocating one.
// The source must be resized before this framebuffer.
//
// Parameters:
//   - source: the framebuffer that owns the depth attachment
//
// Returns:
//   - FramebufferBuilderOption: a function that applies the shared depth option to a framebuffer
func WithDepthFrom(source *Framebuffer) FramebufferBuilderOption {
	return func(f *Framebuffer) {
		f.depthFrom = source
	}
}

// WithAutoResize sets whether the framebuffer follows window resizes. Default true.
func WithAutoResize(auto bool) FramebufferBuilderOption {
	return func(f *Framebuffer) {
		f.autoResize = auto
	}
}

// WithResizeFactor scales the framebuffer relative to the window on resize. Default 1.
// Non-positive factors are ignored.
func WithResizeFactor(factor float32) FramebufferBuilderOption {
	return func(f *Framebuffer) {
		if factor > 0 {
			f.factor = factor
		}
	}
}

// WithSampling sets the filter and wrap mode used when the attachments are sampled.
func WithSampling(filter gpu.FilterMode, wrap gpu.WrapMode) FramebufferBuilderOption {
	return func(f *Framebuffer) {
		f.desc.Filter = filter
		f.desc.Wrap = wrap
	}
}
