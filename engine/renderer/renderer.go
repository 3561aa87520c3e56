package renderer

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

// DeviceFactory creates the graphics device for a window surface.
type DeviceFactory func(surface gpu.Surface) (gpu.Device, error)

// ErrNotInitialized is returned by operations that need a device before Initialize ran.
var ErrNotInitialized = errors.New("renderer: not initialized")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	ctx    *render_context.RenderContext
	data   *render_data.RenderData
	passes []Pass

	dev         gpu.Device
	factory     DeviceFactory
	presentMode gpu.PresentMode

	// Pre-creation config collected from builder options
	cfg     *render_data.Config
	shaders fs.FS
	meshes  map[string]mesh.Mesh

	frame  uint64
	camera *render_context.CameraItem
}

// Renderer owns the scene context, the pipeline resources and the ordered pass list, and
// drives lazy GPU preparation and pass execution each frame.
//
// A Renderer is used from the render thread only.
type Renderer interface {
	// Initialize creates the device for the surface unless one was injected, builds every
	// configured framebuffer, shader and mesh, and runs Load. Calling it again is a no-op.
	//
	// Parameters:
	//   - surface: the window the final pass presents to
	//
	// Returns:
	//   - error: if the device could not be created
	Initialize(surface gpu.Surface) error

	// Load builds mesh render arrays that are not yet built, re-syncs stale entity records
	// and changed instance groups, and uploads material textures without a GPU handle.
	// It is safe to call every frame; with no scene changes it issues no GPU work.
	Load()

	// Render runs Load, every pass in construction order, and presents the frame.
	Render()

	// Resize propagates the new window size to the device, the auto-resizing framebuffers
	// and the submitted camera's aspect ratio.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Context returns the scene context applications submit to.
	Context() *render_context.RenderContext

	// Data returns the shared pipeline resources and parameters.
	Data() *render_data.RenderData

	// Passes returns the pass list in execution order.
	Passes() []Pass

	// Frame returns the number of frames rendered.
	Frame() uint64

	// Release frees every GPU resource owned by the renderer, its passes and its context,
	// then the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer over the embedded default pipeline unless overridden by
// options. No GPU work happens until Initialize.
//
// Parameters:
//   - options: functional options applied over the defaults
//
// Returns:
//   - Renderer: the renderer
//   - error: if the pipeline configuration is invalid
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		presentMode: gpu.PresentModeVSync,
		meshes:      map[string]mesh.Mesh{},
	}
	for _, option := range options {
		option(r)
	}

	if r.passes == nil {
		r.passes = DefaultPasses()
	}
	if r.ctx == nil {
		r.ctx = render_context.NewRenderContext()
	}
	if r.shaders == nil {
		r.shaders = ShaderFS()
	}
	cfg := DefaultConfig()
	if r.cfg != nil {
		cfg = *r.cfg
	}
	if r.factory == nil {
		mode := r.presentMode
		r.factory = func(surface gpu.Surface) (gpu.Device, error) {
			return gpu.NewWGPUDevice(surface, gpu.WithPresentMode(mode))
		}
	}

	dataOptions := []render_data.RenderDataBuilderOption{render_data.WithShaderFS(r.shaders)}
	for tag, m := range defaultMeshes() {
		if _, ok := r.meshes[tag]; !ok {
			r.meshes[tag] = m
		}
	}
	for tag, m := range r.meshes {
		dataOptions = append(dataOptions, render_data.WithMesh(tag, m))
	}
	data, err := render_data.NewRenderData(cfg, dataOptions...)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	r.data = data
	return r, nil
}

// defaultMeshes are the meshes every pipeline can look up by tag. The sphere is the
// point-light volume and carries the light instance layout.
func defaultMeshes() map[string]mesh.Mesh {
	s := mesh.Sphere(16, 24)
	return map[string]mesh.Mesh{
		"quad": mesh.Quad(),
		"cube": mesh.Cube(),
		"sphere": mesh.NewMesh(s.Vertices(), s.Indices(),
			mesh.WithName("sphere"),
			mesh.WithInstanceLayout(PointLightInstanceLayout),
			mesh.WithBoundingRadius(1),
		),
	}
}

func (r *renderer) Initialize(surface gpu.Surface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data.Device() != nil {
		return nil
	}
	if r.dev == nil {
		dev, err := r.factory(surface)
		if err != nil {
			return fmt.Errorf("renderer: create device: %w", err)
		}
		r.dev = dev
	}

	w, h := surface.Width(), surface.Height()
	r.data.Build(r.dev, w, h)
	r.setWindowSize(w, h)
	common.Logger().Info("renderer: initialized", "width", w, "height", h, "passes", len(r.passes), "framebuffers", len(r.data.Framebuffers()))

	r.load()
	return nil
}

func (r *renderer) Load() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load()
}

func (r *renderer) load() {
	dev := r.data.Device()
	if dev == nil {
		return
	}
	if c := r.ctx.Camera(); c != nil && c != r.camera {
		r.fitCamera(c)
	}
	for _, e := range r.ctx.Entities() {
		if !e.Mesh.RenderArray().Built() {
			e.Mesh.RenderArray().Build(dev)
		}
		if e.Changed() {
			e.Sync(dev)
		}
		for _, t := range e.Material.Textures() {
			t.Build(dev)
		}
	}
	for _, g := range r.ctx.InstanceGroups() {
		if !g.Mesh().RenderArray().Built() {
			g.Mesh().RenderArray().Build(dev)
		}
		if g.Changed() {
			g.ResetInstanceBuffer(dev)
		}
		for _, t := range g.Material().Textures() {
			t.Build(dev)
		}
	}
}

func (r *renderer) Render() {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev := r.data.Device()
	if dev == nil {
		panic(ErrNotInitialized.Error())
	}
	r.load()
	for _, p := range r.passes {
		p.Render(r.ctx, r.data)
	}
	dev.Present()
	r.frame++
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	if dev := r.data.Device(); dev != nil {
		dev.Resize(width, height)
	}
	n := r.data.Resize(width, height)
	r.setWindowSize(width, height)
	common.Logger().Info("renderer: resized", "width", width, "height", height, "rebuilt", n)
}

// setWindowSize records the window size for the draw pass and fits the camera aspect.
func (r *renderer) setWindowSize(width, height int) {
	r.data.SetParam("window_width", gpu.IntValue(width))
	r.data.SetParam("window_height", gpu.IntValue(height))
	if c := r.ctx.Camera(); c != nil {
		r.fitCamera(c)
	}
}

// fitCamera sets the camera aspect from the recorded window size.
func (r *renderer) fitCamera(c *render_context.CameraItem) {
	r.camera = c
	h := r.data.Int("window_height")
	if h > 0 {
		c.Camera.SetAspect(float32(r.data.Int("window_width")) / float32(h))
	}
}

func (r *renderer) Context() *render_context.RenderContext { return r.ctx }

func (r *renderer) Data() *render_data.RenderData { return r.data }

func (r *renderer) Passes() []Pass { return r.passes }

func (r *renderer) Frame() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.passes {
		if rel, ok := p.(interface{ Release() }); ok {
			rel.Release()
		}
	}
	r.ctx.Clear()
	r.camera = nil
	r.data.Release()
	if r.dev != nil {
		r.dev.Release()
		r.dev = nil
	}
	r.data.SetDevice(nil)
}
