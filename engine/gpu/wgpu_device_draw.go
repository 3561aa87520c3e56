package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/wgsl"
	"github.com/cogentcore/webgpu/wgpu"
)

func (d *wgpuDevice) BindFramebuffer(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.framebuffer = h
}

func (d *wgpuDevice) BindShader(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shader = h
}

func (d *wgpuDevice) BindTexture(unit int, h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if unit < 0 || unit >= MaxTextureUnits {
		panic(fmt.Sprintf("gpu: texture unit %d out of range", unit))
	}
	d.units[unit] = h
}

func (d *wgpuDevice) SetDepthTest(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depthTest = enabled
}

func (d *wgpuDevice) SetDepthWrite(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depthWrite = enabled
}

func (d *wgpuDevice) SetBlend(state BlendState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blend = state
}

func (d *wgpuDevice) SetCullFace(mode CullMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cull = mode
}

func (d *wgpuDevice) SetViewport(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = [2]int{width, height}
}

func (d *wgpuDevice) SetUniform(shader Handle, name string, value Value) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.shaders[shader]
	if !ok || s.staging == nil {
		return
	}
	offset, size, ok := s.reflection.Locate(name)
	if !ok {
		return
	}
	b := value.Bytes()
	copy(s.staging[offset:offset+min(size, uint64(len(b)))], b)
	s.dirty = true
}

func (d *wgpuDevice) Clear(opts ClearOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.resolveTarget(opts.Depth)
	if !ok {
		return
	}
	c := opts.ClearColor
	d.submitPass(t, &opts, wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}, nil)
}

func (d *wgpuDevice) DrawIndexed(mesh MeshHandle, instances Handle, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.meshes[mesh.VertexArray]
	if !ok {
		return
	}
	var instanceBuf *wgpu.Buffer
	instanceLayout := VertexLayout(nil)
	if instances != 0 {
		if instanceBuf, ok = d.buffers[instances]; !ok || count <= 0 {
			return
		}
		instanceLayout = m.instance
		if len(instanceLayout) == 0 {
			instanceLayout = TransformInstanceLayout
		}
	}
	if count <= 0 {
		count = 1
	}

	d.draw(false, m.layout, instanceLayout, func(pass *wgpu.RenderPassEncoder) {
		pass.SetVertexBuffer(0, m.vertex, 0, wgpu.WholeSize)
		if instanceBuf != nil {
			pass.SetVertexBuffer(1, instanceBuf, 0, wgpu.WholeSize)
		}
		pass.SetIndexBuffer(m.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(m.count, uint32(count), 0, 0, 0)
	})
}

func (d *wgpuDevice) DrawQuad() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.draw(true, quadLayout, nil, func(pass *wgpu.RenderPassEncoder) {
		pass.SetVertexBuffer(0, d.quad, 0, wgpu.WholeSize)
		pass.Draw(4, 1, 0, 0)
	})
}

// draw resolves the pipeline for the current state and submits one pass running encode.
func (d *wgpuDevice) draw(strip bool, vertex, instance VertexLayout, encode func(*wgpu.RenderPassEncoder)) {
	s, ok := d.shaders[d.shader]
	if !ok {
		common.Logger().Warn("gpu: draw without a bound shader", "shader", d.shader)
		return
	}
	t, ok := d.resolveTarget(d.depthTest)
	if !ok {
		return
	}

	key := pipelineKey{
		shader:     d.shader,
		colors:     t.formatKey(),
		depth:      t.depth != nil,
		depthWrite: d.depthWrite,
		blend:      d.blend.Enabled,
		src:        d.blend.Src,
		dst:        d.blend.Dst,
		cull:       d.cull,
		vertex:     vertex.Key(),
		instance:   instance.Key(),
		strip:      strip,
	}
	p, err := d.pipeline(key, s, t, vertex, instance)
	if err != nil {
		panic(err.Error())
	}

	textureGroup, err := d.textureGroup(s)
	if err != nil {
		panic(err.Error())
	}
	if textureGroup != nil {
		defer textureGroup.Release()
	}

	if s.dirty {
		d.queue.WriteBuffer(s.uniforms, 0, s.staging)
		s.dirty = false
	}

	d.submitPass(t, nil, wgpu.Color{}, func(pass *wgpu.RenderPassEncoder) {
		pass.SetPipeline(p)
		if s.uniformGroup != nil {
			pass.SetBindGroup(0, s.uniformGroup, nil)
		}
		if textureGroup != nil {
			pass.SetBindGroup(1, textureGroup, nil)
		}
		if d.blend.Enabled {
			c := d.blend.Constant
			pass.SetBlendConstant(&wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])})
		}
		encode(pass)
	})
}

// textureGroup builds the @group(1) bind group from the bound texture units. Units with
// nothing bound sample the white fallback.
func (d *wgpuDevice) textureGroup(s *shaderEntry) (*wgpu.BindGroup, error) {
	if len(s.textureBindings) == 0 {
		return nil, nil
	}
	entries := make([]wgpu.BindGroupEntry, len(s.textureBindings))
	for i, b := range s.textureBindings {
		unit := b.Binding / 2
		t, ok := d.textures[d.units[unit]]
		if !ok {
			t = d.white
			if b.Kind == wgsl.BindingDepthTexture {
				t = d.whiteDepth
			}
		}
		entries[i] = wgpu.BindGroupEntry{Binding: uint32(b.Binding)}
		if b.Binding%2 == 0 {
			entries[i].TextureView = t.view
		} else {
			entries[i].Sampler = t.sampler
		}
	}
	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   s.label + " Texture Group",
		Layout:  s.groupLayouts[1],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: shader %q texture group: %w", s.label, err)
	}
	return g, nil
}

// resolveTarget returns the attachments of the bound framebuffer, acquiring the surface
// texture when the window is bound. The depth view is included only when withDepth is set.
func (d *wgpuDevice) resolveTarget(withDepth bool) (target, bool) {
	if d.framebuffer == 0 {
		if d.surface == nil {
			if !d.warnedNoSurf {
				common.Logger().Warn("gpu: window framebuffer bound on a headless device; draws are dropped")
				d.warnedNoSurf = true
			}
			return target{}, false
		}
		if d.frameSurface == nil {
			tex, err := d.surface.GetCurrentTexture()
			if err != nil {
				common.Logger().Warn("gpu: acquire surface texture", "error", err)
				return target{}, false
			}
			view, err := tex.CreateView(nil)
			if err != nil {
				tex.Release()
				common.Logger().Warn("gpu: surface texture view", "error", err)
				return target{}, false
			}
			d.frameSurface, d.frameView = tex, view
		}
		return target{
			colors:  []*wgpu.TextureView{d.frameView},
			formats: []wgpu.TextureFormat{d.surfaceFormat},
			width:   d.width,
			height:  d.height,
		}, true
	}

	fb, ok := d.framebuffers[d.framebuffer]
	if !ok {
		common.Logger().Warn("gpu: bound framebuffer is not live", "framebuffer", d.framebuffer)
		return target{}, false
	}
	t := target{width: fb.width, height: fb.height}
	for _, c := range fb.color {
		tex := d.textures[c]
		t.colors = append(t.colors, tex.view)
		t.formats = append(t.formats, wgpuFormat(tex.format))
	}
	if withDepth && fb.depth != 0 {
		t.depth = d.textures[fb.depth].view
	}
	return t, true
}

// submitPass encodes and submits one render pass over t. A non-nil clearOpts selects which
// attachments are cleared; otherwise existing contents are loaded.
func (d *wgpuDevice) submitPass(t target, clearOpts *ClearOptions, color wgpu.Color, encode func(*wgpu.RenderPassEncoder)) {
	colorLoad, depthLoad := wgpu.LoadOpLoad, wgpu.LoadOpLoad
	if clearOpts != nil && clearOpts.Color {
		colorLoad = wgpu.LoadOpClear
	}
	if clearOpts != nil && clearOpts.Depth {
		depthLoad = wgpu.LoadOpClear
	}

	desc := &wgpu.RenderPassDescriptor{}
	for _, v := range t.colors {
		desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:       v,
			LoadOp:     colorLoad,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: color,
		})
	}
	if t.depth != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depth,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}
	if len(desc.ColorAttachments) == 0 && desc.DepthStencilAttachment == nil {
		return
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		common.Logger().Error("gpu: create command encoder", "error", err)
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(desc)
	if encode != nil {
		w, h := t.width, t.height
		if d.viewport[0] > 0 && d.viewport[1] > 0 {
			w, h = min(w, d.viewport[0]), min(h, d.viewport[1])
		}
		pass.SetViewport(0, 0, float32(w), float32(h), 0, 1)
		encode(pass)
	}
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		common.Logger().Error("gpu: finish command encoder", "error", err)
		return
	}
	d.queue.Submit(commands)
	commands.Release()
}
