package renderer

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPasses replaces the default pipeline with the given passes, run in the given order.
//
// Parameters:
//   - passes: the passes to run each frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the passes option to a renderer
func WithPasses(passes ...Pass) RendererBuilderOption {
	return func(r *renderer) {
		r.passes = append([]Pass{}, passes...)
	}
}

// WithConfig replaces the embedded pipeline configuration.
//
// Parameters:
//   - cfg: the framebuffers, shaders and parameters of the pipeline
//
// Returns:
//   - RendererBuilderOption: a function that applies the config option to a renderer
func WithConfig(cfg render_data.Config) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg = &cfg
	}
}

// WithShaderFS sets the filesystem shader paths in the configuration resolve against.
// The default is the embedded WGSL set.
func WithShaderFS(fsys fs.FS) RendererBuilderOption {
	return func(r *renderer) {
		r.shaders = fsys
	}
}

// WithMesh registers an additional mesh under tag, or replaces a default one.
func WithMesh(tag string, m mesh.Mesh) RendererBuilderOption {
	return func(r *renderer) {
		r.meshes[tag] = m
	}
}

// WithDevice injects an already created device. Initialize then skips device creation.
// Tests pass a gputest.Device here.
//
// Parameters:
//   - dev: the device to render with
//
// Returns:
//   - RendererBuilderOption: a function that applies the device option to a renderer
func WithDevice(dev gpu.Device) RendererBuilderOption {
	return func(r *renderer) {
		r.dev = dev
	}
}

// WithDeviceFactory replaces how Initialize creates the device from the window surface.
func WithDeviceFactory(factory DeviceFactory) RendererBuilderOption {
	return func(r *renderer) {
		r.factory = factory
	}
}

// WithContext uses an existing scene context instead of a new one.
//
// Parameters:
//   - ctx: the context to render
//
// Returns:
//   - RendererBuilderOption: a function that applies the context option to a renderer
func WithContext(ctx *render_context.RenderContext) RendererBuilderOption {
	return func(r *renderer) {
		r.ctx = ctx
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// It only affects the default device factory.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode gpu.PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}
