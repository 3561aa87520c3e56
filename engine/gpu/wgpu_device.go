package gpu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/wgsl"
	"github.com/cogentcore/webgpu/wgpu"
)

// quadVertices is the full-screen triangle strip in clip space.
var quadVertices = []float32{-1, -1, 1, -1, -1, 1, 1, 1}

var quadLayout = VertexLayout{{Name: "corner", Components: 2}}

type meshEntry struct {
	vertex   *wgpu.Buffer
	index    *wgpu.Buffer
	layout   VertexLayout
	instance VertexLayout
	count    uint32
}

type textureEntry struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	format  TextureFormat
	width   int
	height  int
}

func (t *textureEntry) release() {
	if t.sampler != nil {
		t.sampler.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type framebufferEntry struct {
	width     int
	height    int
	color     []Handle
	depth     Handle
	ownsDepth bool
}

type shaderEntry struct {
	label      string
	vertex     *wgpu.ShaderModule
	fragment   *wgpu.ShaderModule
	reflection *wgsl.Reflection

	groupLayouts   []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout

	// uniform block at @group(0) @binding(0), nil when the shader declares none
	uniforms     *wgpu.Buffer
	uniformGroup *wgpu.BindGroup
	staging      []byte
	dirty        bool

	// textureBindings are the @group(1) entries filled from the bound texture units.
	textureBindings []wgsl.Binding
}

func (s *shaderEntry) release() {
	if s.uniformGroup != nil {
		s.uniformGroup.Release()
	}
	if s.uniforms != nil {
		s.uniforms.Release()
	}
	if s.pipelineLayout != nil {
		s.pipelineLayout.Release()
	}
	for _, l := range s.groupLayouts {
		l.Release()
	}
	if s.fragment != nil && s.fragment != s.vertex {
		s.fragment.Release()
	}
	if s.vertex != nil {
		s.vertex.Release()
	}
}

// wgpuDevice implements Device on WebGPU as an immediate-submit facade: every Clear and
// draw encodes and submits its own render pass against the bound framebuffer.
type wgpuDevice struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	alphaMode            wgpu.CompositeAlphaMode
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool
	width                int
	height               int

	next         Handle
	buffers      map[Handle]*wgpu.Buffer
	meshes       map[Handle]*meshEntry
	textures     map[Handle]*textureEntry
	shaders      map[Handle]*shaderEntry
	framebuffers map[Handle]*framebufferEntry
	pipelines    map[pipelineKey]*wgpu.RenderPipeline

	quad       *wgpu.Buffer
	white      *textureEntry
	whiteDepth *textureEntry

	framebuffer Handle
	shader      Handle
	units       [MaxTextureUnits]Handle
	depthTest   bool
	depthWrite  bool
	blend       BlendState
	cull        CullMode
	viewport    [2]int

	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	warnedNoSurf bool
}

var _ Device = &wgpuDevice{}

// NewWGPUDevice creates the WebGPU device, configures the window surface and allocates
// the shared quad and fallback textures.
//
// Parameters:
//   - surface: the window to present to; a nil SurfaceDescriptor gives a headless device
//   - options: functional options applied over the defaults
//
// Returns:
//   - Device: the ready device
//   - error: if no adapter or device could be acquired
func NewWGPUDevice(surface Surface, options ...WGPUDeviceOption) (Device, error) {
	d := &wgpuDevice{
		mu:           &sync.Mutex{},
		presentMode:  wgpu.PresentModeImmediate,
		buffers:      map[Handle]*wgpu.Buffer{},
		meshes:       map[Handle]*meshEntry{},
		textures:     map[Handle]*textureEntry{},
		shaders:      map[Handle]*shaderEntry{},
		framebuffers: map[Handle]*framebufferEntry{},
		pipelines:    map[pipelineKey]*wgpu.RenderPipeline{},
		depthTest:    true,
		depthWrite:   true,
		cull:         CullBack,
	}
	for _, option := range options {
		option(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	if desc := surface.SurfaceDescriptor(); desc != nil {
		d.surface = d.instance.CreateSurface(desc)
	}

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	d.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Main Device"})
	if err != nil {
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	d.device = device
	d.queue = device.GetQueue()

	if d.surface != nil {
		caps := d.surface.GetCapabilities(d.adapter)
		if len(caps.Formats) == 0 {
			return nil, errors.New("gpu: surface reports no formats")
		}
		d.surfaceFormat = caps.Formats[0]
		d.alphaMode = caps.AlphaModes[0]
	}
	d.configureSurface(surface.Width(), surface.Height())

	if d.quad, err = d.newBuffer("Quad Vertex Buffer", wgpu.BufferUsageVertex, common.Float32Bytes(quadVertices)); err != nil {
		return nil, err
	}
	if d.white, err = d.newTexture(TextureDescriptor{
		Label: "White", Width: 1, Height: 1, Format: FormatRGBA8, Pixels: []byte{255, 255, 255, 255},
	}, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst); err != nil {
		return nil, err
	}
	if d.whiteDepth, err = d.newTexture(TextureDescriptor{
		Label: "Depth Fallback", Width: 1, Height: 1, Format: FormatDepth32F,
	}, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageRenderAttachment); err != nil {
		return nil, err
	}

	common.Logger().Info("gpu: device ready", "width", d.width, "height", d.height, "headless", d.surface == nil)
	return d, nil
}

func (d *wgpuDevice) configureSurface(width, height int) {
	d.width, d.height = max(width, 1), max(height, 1)
	if d.surface == nil {
		return
	}
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(d.width),
		Height:      uint32(d.height),
		PresentMode: d.presentMode,
		AlphaMode:   d.alphaMode,
	})
}

func (d *wgpuDevice) handle() Handle {
	d.next++
	return d.next
}

func (d *wgpuDevice) newBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (d *wgpuDevice) CreateMesh(desc MeshDescriptor) (MeshHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return MeshHandle{}, fmt.Errorf("gpu: mesh %q has no vertex or index data", desc.Label)
	}
	if stride := desc.Layout.Stride(); stride == 0 || len(desc.Vertices)%stride != 0 {
		return MeshHandle{}, fmt.Errorf("gpu: mesh %q: %d floats do not fit layout %s", desc.Label, len(desc.Vertices), desc.Layout.Key())
	}

	vb, err := d.newBuffer(desc.Label+" Vertex Buffer", wgpu.BufferUsageVertex, common.Float32Bytes(desc.Vertices))
	if err != nil {
		return MeshHandle{}, err
	}
	ib, err := d.newBuffer(desc.Label+" Index Buffer", wgpu.BufferUsageIndex, common.Uint32Bytes(desc.Indices))
	if err != nil {
		vb.Release()
		return MeshHandle{}, err
	}

	h := MeshHandle{
		VertexArray:  d.handle(),
		VertexBuffer: d.handle(),
		IndexBuffer:  d.handle(),
		ElementCount: len(desc.Indices),
	}
	d.buffers[h.VertexBuffer] = vb
	d.buffers[h.IndexBuffer] = ib
	d.meshes[h.VertexArray] = &meshEntry{
		vertex:   vb,
		index:    ib,
		layout:   desc.Layout,
		instance: desc.InstanceLayout,
		count:    uint32(len(desc.Indices)),
	}
	return h, nil
}

func (d *wgpuDevice) ReleaseMesh(h MeshHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.meshes[h.VertexArray]; !ok {
		return
	}
	delete(d.meshes, h.VertexArray)
	d.releaseBuffer(h.VertexBuffer)
	d.releaseBuffer(h.IndexBuffer)
}

func (d *wgpuDevice) CreateBuffer(desc BufferDescriptor) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Size <= 0 {
		return 0, fmt.Errorf("gpu: buffer %q size %d", desc.Label, desc.Size)
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(alignTo(desc.Size, 4)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("gpu: create buffer %q: %w", desc.Label, err)
	}
	h := d.handle()
	d.buffers[h] = buf
	return h, nil
}

func (d *wgpuDevice) WriteBuffer(h Handle, offset int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, ok := d.buffers[h]
	if !ok || len(data) == 0 {
		return
	}
	d.queue.WriteBuffer(buf, uint64(offset), data)
}

func (d *wgpuDevice) ReleaseBuffer(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseBuffer(h)
}

func (d *wgpuDevice) releaseBuffer(h Handle) {
	if buf, ok := d.buffers[h]; ok {
		buf.Release()
		delete(d.buffers, h)
	}
}

func (d *wgpuDevice) CreateTexture(desc TextureDescriptor) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Format.IsDepth() {
		return 0, fmt.Errorf("gpu: texture %q: depth textures are framebuffer attachments", desc.Label)
	}
	if want := desc.Width * desc.Height * desc.Format.BytesPerPixel(); desc.Pixels != nil && len(desc.Pixels) < want {
		return 0, fmt.Errorf("gpu: texture %q: %d bytes of pixel data, want %d", desc.Label, len(desc.Pixels), want)
	}
	t, err := d.newTexture(desc, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return 0, err
	}
	h := d.handle()
	d.textures[h] = t
	return h, nil
}

// newTexture creates a texture with its default view and sampler, uploading desc.Pixels if set.
func (d *wgpuDevice) newTexture(desc TextureDescriptor, usage wgpu.TextureUsage) (*textureEntry, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("gpu: texture %q size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	size := wgpu.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Usage:         usage,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpuFormat(desc.Format),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}

	if len(desc.Pixels) > 0 {
		d.queue.WriteTexture(
			&wgpu.ImageCopyTexture{Texture: tex, Aspect: wgpu.TextureAspectAll},
			desc.Pixels,
			&wgpu.TextureDataLayout{
				BytesPerRow:  uint32(desc.Width * desc.Format.BytesPerPixel()),
				RowsPerImage: uint32(desc.Height),
			},
			&size,
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: texture %q view: %w", desc.Label, err)
	}

	filter, address := wgpuSampling(desc.Filter, desc.Wrap)
	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label + " Sampler",
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("gpu: texture %q sampler: %w", desc.Label, err)
	}

	return &textureEntry{
		texture: tex,
		view:    view,
		sampler: samp,
		format:  desc.Format,
		width:   desc.Width,
		height:  desc.Height,
	}, nil
}

func (d *wgpuDevice) ReleaseTexture(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseTexture(h)
}

func (d *wgpuDevice) releaseTexture(h Handle) {
	if t, ok := d.textures[h]; ok {
		t.release()
		delete(d.textures, h)
	}
	for i, u := range d.units {
		if u == h {
			d.units[i] = 0
		}
	}
}

func (d *wgpuDevice) CreateShader(desc ShaderDescriptor) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Geometry != "" {
		return 0, fmt.Errorf("gpu: shader %q: geometry stages are not supported by WebGPU", desc.Label)
	}
	root := desc.FS
	if root == nil {
		root = os.DirFS(".")
	}

	s := &shaderEntry{label: desc.Label}
	vs, vr, err := d.compileStage(root, desc.Label, desc.Vertex)
	if err != nil {
		return 0, err
	}
	s.vertex, s.fragment, s.reflection = vs, vs, vr
	if desc.Fragment != "" && desc.Fragment != desc.Vertex {
		fsm, fr, err := d.compileStage(root, desc.Label, desc.Fragment)
		if err != nil {
			vs.Release()
			return 0, err
		}
		s.fragment = fsm
		s.reflection = wgsl.Merge(vr, fr)
	}
	if s.reflection.VertexEntry == "" {
		s.release()
		return 0, fmt.Errorf("gpu: shader %q has no @vertex entry point", desc.Label)
	}

	if err := d.buildShaderLayout(s); err != nil {
		s.release()
		return 0, err
	}

	h := d.handle()
	d.shaders[h] = s
	return h, nil
}

// compileStage reads, pre-processes, validates and reflects one WGSL file.
func (d *wgpuDevice) compileStage(root fs.FS, label, path string) (*wgpu.ShaderModule, *wgsl.Reflection, error) {
	raw, err := fs.ReadFile(root, path)
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: shader %q: %w", label, err)
	}
	source, err := wgsl.PreProcess(string(raw), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: shader %q (%s): %w", label, path, err)
	}
	if err := wgsl.Validate(path, source); err != nil {
		return nil, nil, fmt.Errorf("gpu: shader %q: %w", label, err)
	}
	refl, err := wgsl.Reflect(source)
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: shader %q (%s): %w", label, path, err)
	}
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          path,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: shader %q module: %w", label, err)
	}
	return module, refl, nil
}

// buildShaderLayout creates the bind group layouts, the pipeline layout and the
// uniform block of a compiled shader.
func (d *wgpuDevice) buildShaderLayout(s *shaderEntry) error {
	groups := s.reflection.MaxGroup() + 1
	if groups > 2 {
		return fmt.Errorf("gpu: shader %q uses bind group %d; only groups 0 and 1 are supported", s.label, groups-1)
	}

	entries := make([][]wgpu.BindGroupLayoutEntry, groups)
	for _, b := range s.reflection.Bindings {
		entry, err := layoutEntry(b)
		if err != nil {
			return fmt.Errorf("gpu: shader %q: %w", s.label, err)
		}
		switch {
		case b.Group == 0 && (b.Binding != 0 || b.Kind != wgsl.BindingUniformBuffer):
			return fmt.Errorf("gpu: shader %q: group 0 only holds the uniform block at binding 0, found %s", s.label, b.Name)
		case b.Group == 1 && b.Binding >= 2*MaxTextureUnits:
			return fmt.Errorf("gpu: shader %q: binding %d exceeds %d texture units", s.label, b.Binding, MaxTextureUnits)
		case b.Group == 1:
			s.textureBindings = append(s.textureBindings, b)
		}
		entries[b.Group] = append(entries[b.Group], entry)
	}

	for g := range groups {
		layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", s.label, g),
			Entries: entries[g],
		})
		if err != nil {
			return fmt.Errorf("gpu: shader %q group %d layout: %w", s.label, g, err)
		}
		s.groupLayouts = append(s.groupLayouts, layout)
	}

	pl, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.label,
		BindGroupLayouts: s.groupLayouts,
	})
	if err != nil {
		return fmt.Errorf("gpu: shader %q pipeline layout: %w", s.label, err)
	}
	s.pipelineLayout = pl

	if s.reflection.UniformSize == 0 {
		return nil
	}
	s.staging = make([]byte, alignTo(int(s.reflection.UniformSize), 16))
	s.uniforms, err = d.newBuffer(s.label+" Uniforms", wgpu.BufferUsageUniform, s.staging)
	if err != nil {
		return err
	}
	s.uniformGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   s.label + " Uniform Group",
		Layout:  s.groupLayouts[0],
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: s.uniforms, Size: wgpu.WholeSize}},
	})
	if err != nil {
		return fmt.Errorf("gpu: shader %q uniform group: %w", s.label, err)
	}
	return nil
}

func (d *wgpuDevice) ReleaseShader(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.shaders[h]
	if !ok {
		return
	}
	for key, p := range d.pipelines {
		if key.shader == h {
			p.Release()
			delete(d.pipelines, key)
		}
	}
	s.release()
	delete(d.shaders, h)
	if d.shader == h {
		d.shader = 0
	}
}

func (d *wgpuDevice) CreateFramebuffer(desc FramebufferDescriptor) (FramebufferHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Width <= 0 || desc.Height <= 0 {
		return FramebufferHandle{}, fmt.Errorf("gpu: framebuffer %q incomplete: size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if len(desc.Color) == 0 && !desc.Depth && desc.SharedDepth == 0 {
		return FramebufferHandle{}, fmt.Errorf("gpu: framebuffer %q incomplete: no attachments", desc.Label)
	}

	fb := &framebufferEntry{width: desc.Width, height: desc.Height}
	out := FramebufferHandle{}
	fail := func(err error) (FramebufferHandle, error) {
		d.releaseFramebufferEntry(fb)
		return FramebufferHandle{}, err
	}

	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	for i, format := range desc.Color {
		if format.IsDepth() {
			return fail(fmt.Errorf("gpu: framebuffer %q incomplete: color attachment %d has depth format", desc.Label, i))
		}
		t, err := d.newTexture(TextureDescriptor{
			Label:  fmt.Sprintf("%s color %d", desc.Label, i),
			Width:  desc.Width,
			Height: desc.Height,
			Format: format,
			Filter: desc.Filter,
			Wrap:   desc.Wrap,
		}, usage)
		if err != nil {
			return fail(err)
		}
		h := d.handle()
		d.textures[h] = t
		fb.color = append(fb.color, h)
	}

	switch {
	case desc.SharedDepth != 0:
		shared, ok := d.textures[desc.SharedDepth]
		if !ok || !shared.format.IsDepth() {
			return fail(fmt.Errorf("gpu: framebuffer %q incomplete: shared depth %d is not a depth attachment", desc.Label, desc.SharedDepth))
		}
		if shared.width != desc.Width || shared.height != desc.Height {
			return fail(fmt.Errorf("gpu: framebuffer %q incomplete: shared depth is %dx%d", desc.Label, shared.width, shared.height))
		}
		fb.depth = desc.SharedDepth
	case desc.Depth:
		t, err := d.newTexture(TextureDescriptor{
			Label:  desc.Label + " depth",
			Width:  desc.Width,
			Height: desc.Height,
			Format: FormatDepth32F,
			Filter: FilterNearest,
			Wrap:   WrapClamp,
		}, usage)
		if err != nil {
			return fail(err)
		}
		fb.depth = d.handle()
		fb.ownsDepth = true
		d.textures[fb.depth] = t
	}

	out.Framebuffer = d.handle()
	out.Color = append([]Handle(nil), fb.color...)
	out.Depth = fb.depth
	d.framebuffers[out.Framebuffer] = fb
	return out, nil
}

func (d *wgpuDevice) ReleaseFramebuffer(h FramebufferHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fb, ok := d.framebuffers[h.Framebuffer]
	if !ok {
		return
	}
	d.releaseFramebufferEntry(fb)
	delete(d.framebuffers, h.Framebuffer)
	if d.framebuffer == h.Framebuffer {
		d.framebuffer = 0
	}
}

func (d *wgpuDevice) releaseFramebufferEntry(fb *framebufferEntry) {
	for _, c := range fb.color {
		d.releaseTexture(c)
	}
	if fb.ownsDepth {
		d.releaseTexture(fb.depth)
	}
}

func (d *wgpuDevice) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.releaseFrame()
	d.configureSurface(width, height)
}

func (d *wgpuDevice) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameSurface == nil {
		return
	}
	d.surface.Present()
	d.releaseFrame()
}

func (d *wgpuDevice) releaseFrame() {
	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.frameSurface != nil {
		d.frameSurface.Release()
		d.frameSurface = nil
	}
}

func (d *wgpuDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.releaseFrame()
	for k, p := range d.pipelines {
		p.Release()
		delete(d.pipelines, k)
	}
	for h, s := range d.shaders {
		s.release()
		delete(d.shaders, h)
	}
	for h, t := range d.textures {
		t.release()
		delete(d.textures, h)
	}
	for h, b := range d.buffers {
		b.Release()
		delete(d.buffers, h)
	}
	clear(d.meshes)
	clear(d.framebuffers)
	for _, t := range []*textureEntry{d.white, d.whiteDepth} {
		if t != nil {
			t.release()
		}
	}
	if d.quad != nil {
		d.quad.Release()
	}
	if d.queue != nil {
		d.queue.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}

func alignTo(n, alignment int) int {
	return (n + alignment - 1) / alignment * alignment
}
