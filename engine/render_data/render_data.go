// Package render_data holds the renderer's resource pools: framebuffers, shaders, meshes
// and textures keyed by tag, plus the typed parameters passes read and write each frame.
package render_data

import (
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderData owns every pipeline resource. Lookups of unknown tags and typed parameter
// reads of the wrong kind are configuration bugs and panic.
type RenderData struct {
	dev      gpu.Device
	shaderFS fs.FS

	framebuffers     map[string]*resource.Framebuffer
	framebufferOrder []string
	shaders          map[string]*resource.Shader
	meshes           map[string]mesh.Mesh
	textures         map[string]*resource.Texture
	params           map[string]gpu.Value
}

// NewRenderData creates the resource wrappers described by cfg. Nothing is allocated on
// the GPU until Build.
//
// Parameters:
//   - cfg: the pipeline description
//   - options: functional options applied over the defaults
//
// Returns:
//   - *RenderData: the unbuilt pools
//   - error: if cfg fails validation
func NewRenderData(cfg Config, options ...RenderDataBuilderOption) (*RenderData, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("render_data: %w", err)
	}
	d := &RenderData{
		framebuffers: make(map[string]*resource.Framebuffer),
		shaders:      make(map[string]*resource.Shader),
		meshes:       make(map[string]mesh.Mesh),
		textures:     make(map[string]*resource.Texture),
		params:       make(map[string]gpu.Value),
	}
	for _, option := range options {
		option(d)
	}

	for _, fc := range cfg.Framebuffers {
		opts := []resource.FramebufferBuilderOption{resource.WithAutoResize(fc.autoResize())}
		if fc.ResizeFactor > 0 {
			opts = append(opts, resource.WithResizeFactor(fc.ResizeFactor))
		}
		formats := make([]gpu.TextureFormat, len(fc.Color))
		for i, name := range fc.Color {
			formats[i], _ = gpu.ParseTextureFormat(name)
		}
		if len(formats) > 0 {
			opts = append(opts, resource.WithColor(formats...))
		}
		switch {
		case fc.DepthFrom != "":
			opts = append(opts, resource.WithDepthFrom(d.framebuffers[fc.DepthFrom]))
		case fc.Depth:
			opts = append(opts, resource.WithDepth())
		}
		filter, _ := parseFilter(fc.Filter)
		wrap, _ := parseWrap(fc.Wrap)
		opts = append(opts, resource.WithSampling(filter, wrap))
		d.SetFramebuffer(fc.Tag, resource.NewFramebuffer(fc.Tag, fc.Width, fc.Height, opts...))
	}

	for _, sc := range cfg.Shaders {
		d.shaders[sc.Tag] = resource.NewShader(gpu.ShaderDescriptor{
			Label:    sc.Tag,
			Vertex:   sc.Vertex,
			Fragment: common.Coalesce(sc.Fragment, sc.Vertex),
			Geometry: sc.Geometry,
			FS:       d.shaderFS,
		})
	}

	for tag, p := range cfg.Params {
		d.params[tag] = p.Value
	}
	return d, nil
}

// Build allocates every framebuffer at the given window size, compiles every shader and
// uploads every registered mesh and texture. Failures panic.
//
// Parameters:
//   - dev: the device that will own the resources
//   - width: the window width
//   - height: the window height
func (d *RenderData) Build(dev gpu.Device, width, height int) {
	d.dev = dev
	for _, tag := range d.framebufferOrder {
		fb := d.framebuffers[tag]
		if !fb.Resize(dev, width, height) {
			fb.Build(dev)
		}
	}
	for _, tag := range slices.Sorted(maps.Keys(d.shaders)) {
		d.shaders[tag].Build(dev)
	}
	for _, m := range d.meshes {
		m.RenderArray().Build(dev)
	}
	for _, t := range d.textures {
		t.Build(dev)
	}
}

// Resize resizes auto-resizing framebuffers in declaration order, so framebuffers sharing
// another's depth rebuild after their source.
//
// Returns:
//   - int: the number of framebuffers rebuilt
func (d *RenderData) Resize(width, height int) int {
	if d.dev == nil {
		return 0
	}
	n := 0
	for _, tag := range d.framebufferOrder {
		if d.framebuffers[tag].Resize(d.dev, width, height) {
			n++
		}
	}
	return n
}

// Release frees every GPU resource in the pools. Dependent framebuffers go first.
func (d *RenderData) Release() {
	for _, tag := range slices.Backward(d.framebufferOrder) {
		d.framebuffers[tag].Release()
	}
	for _, s := range d.shaders {
		s.Release()
	}
	for _, m := range d.meshes {
		m.RenderArray().Release()
	}
	for _, t := range d.textures {
		t.Release()
	}
}

// Device returns the device set by Build, or nil before it.
func (d *RenderData) Device() gpu.Device { return d.dev }

// SetDevice sets the device without building anything.
func (d *RenderData) SetDevice(dev gpu.Device) { d.dev = dev }

// Framebuffer returns the framebuffer for tag.
func (d *RenderData) Framebuffer(tag string) *resource.Framebuffer {
	fb, ok := d.framebuffers[tag]
	if !ok {
		panic(fmt.Sprintf("render_data: unknown framebuffer %q", tag))
	}
	return fb
}

// HasFramebuffer reports whether tag is registered.
func (d *RenderData) HasFramebuffer(tag string) bool {
	_, ok := d.framebuffers[tag]
	return ok
}

// SetFramebuffer registers or replaces a framebuffer. New tags are appended to the resize order.
func (d *RenderData) SetFramebuffer(tag string, fb *resource.Framebuffer) {
	if _, ok := d.framebuffers[tag]; !ok {
		d.framebufferOrder = append(d.framebufferOrder, tag)
	}
	d.framebuffers[tag] = fb
}

// Framebuffers returns the framebuffer tags in declaration order.
func (d *RenderData) Framebuffers() []string {
	return slices.Clone(d.framebufferOrder)
}

// Shader returns the shader for tag.
func (d *RenderData) Shader(tag string) *resource.Shader {
	s, ok := d.shaders[tag]
	if !ok {
		panic(fmt.Sprintf("render_data: unknown shader %q", tag))
	}
	return s
}

// HasShader reports whether tag is registered, for passes with optional shaders.
func (d *RenderData) HasShader(tag string) bool {
	_, ok := d.shaders[tag]
	return ok
}

// SetShader registers or replaces a shader.
func (d *RenderData) SetShader(tag string, s *resource.Shader) {
	d.shaders[tag] = s
}

// Mesh returns the mesh for tag.
func (d *RenderData) Mesh(tag string) mesh.Mesh {
	m, ok := d.meshes[tag]
	if !ok {
		panic(fmt.Sprintf("render_data: unknown mesh %q", tag))
	}
	return m
}

// SetMesh registers or replaces a mesh.
func (d *RenderData) SetMesh(tag string, m mesh.Mesh) {
	d.meshes[tag] = m
}

// Texture returns the texture for tag.
func (d *RenderData) Texture(tag string) *resource.Texture {
	t, ok := d.textures[tag]
	if !ok {
		panic(fmt.Sprintf("render_data: unknown texture %q", tag))
	}
	return t
}

// HasTexture reports whether tag is registered.
func (d *RenderData) HasTexture(tag string) bool {
	_, ok := d.textures[tag]
	return ok
}

// SetTexture registers a pass-owned texture. A replaced texture is released.
func (d *RenderData) SetTexture(tag string, t *resource.Texture) {
	if old, ok := d.textures[tag]; ok && old != t {
		old.Release()
	}
	d.textures[tag] = t
}

// Param returns the parameter for tag.
func (d *RenderData) Param(tag string) gpu.Value {
	v, ok := d.params[tag]
	if !ok {
		panic(fmt.Sprintf("render_data: unknown param %q", tag))
	}
	return v
}

// HasParam reports whether tag is set.
func (d *RenderData) HasParam(tag string) bool {
	_, ok := d.params[tag]
	return ok
}

// SetParam sets or replaces a parameter. The kind may change.
func (d *RenderData) SetParam(tag string, v gpu.Value) {
	d.params[tag] = v
}

// typed returns the parameter for tag after checking its kind.
func (d *RenderData) typed(tag string, want gpu.Kind) gpu.Value {
	v := d.Param(tag)
	if v.Kind() != want {
		panic(fmt.Sprintf("render_data: param %q is %s, not %s", tag, v.Kind(), want))
	}
	return v
}

func (d *RenderData) Bool(tag string) bool { return d.typed(tag, gpu.KindBool).Bool() }
func (d *RenderData) Int(tag string) int { return d.typed(tag, gpu.KindInt).Int() }
func (d *RenderData) Uint32(tag string) uint32 { return d.typed(tag, gpu.KindUint32).Uint32() }
func (d *RenderData) Float(tag string) float32 { return d.typed(tag, gpu.KindFloat).Float() }
func (d *RenderData) Vec3(tag string) mgl32.Vec3 { return d.typed(tag, gpu.KindVec3).Vec3() }
func (d *RenderData) Vec4(tag string) mgl32.Vec4 { return d.typed(tag, gpu.KindVec4).Vec4() }
func (d *RenderData) Mat4(tag string) mgl32.Mat4 { return d.typed(tag, gpu.KindMat4).Mat4() }

// BoolOr returns the bool parameter for tag, or fallback when it is unset.
func (d *RenderData) BoolOr(tag string, fallback bool) bool {
	if !d.HasParam(tag) {
		return fallback
	}
	return d.Bool(tag)
}

// IntOr returns the int parameter for tag, or fallback when it is unset.
func (d *RenderData) IntOr(tag string, fallback int) int {
	if !d.HasParam(tag) {
		return fallback
	}
	return d.Int(tag)
}

// FloatOr returns the float parameter for tag, or fallback when it is unset.
func (d *RenderData) FloatOr(tag string, fallback float32) float32 {
	if !d.HasParam(tag) {
		return fallback
	}
	return d.Float(tag)
}
