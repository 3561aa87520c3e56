// Package gputest provides a recording gpu.Device for tests that exercise the render
// core without a GPU.
package gputest

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// Call is one recorded capability invocation.
type Call struct {
	Method string
	Handle gpu.Handle
	Label  string
	Detail string
}

// Device records every call and hands out sequential handles. It never fails unless a
// shader label is listed in FailShaders.
type Device struct {
	Calls []Call

	// FailShaders makes CreateShader return an error for the listed labels.
	FailShaders map[string]bool

	// Uniforms holds the last value uploaded per shader and uniform name.
	Uniforms map[gpu.Handle]map[string]gpu.Value

	// Buffers holds the current contents of every live buffer.
	Buffers map[gpu.Handle][]byte

	next       gpu.Handle
	live       map[gpu.Handle]string
	ownedDepth map[gpu.Handle]bool

	BoundFramebuffer gpu.Handle
	BoundShader      gpu.Handle
	DepthTest        bool
	Blend            gpu.BlendState
	Cull             gpu.CullMode
	Viewport         [2]int
	Width, Height    int
	Textures         [gpu.MaxTextureUnits]gpu.Handle
}

var _ gpu.Device = &Device{}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		Uniforms:    map[gpu.Handle]map[string]gpu.Value{},
		Buffers:     map[gpu.Handle][]byte{},
		FailShaders: map[string]bool{},
		live:        map[gpu.Handle]string{},
		ownedDepth:  map[gpu.Handle]bool{},
	}
}

func (d *Device) handle(kind string) gpu.Handle {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *Device) record(method string, h gpu.Handle, label, detail string) {
	d.Calls = append(d.Calls, Call{Method: method, Handle: h, Label: label, Detail: detail})
}

// Count returns how many times method was called.
func (d *Device) Count(method string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// CallsTo returns the recorded calls to method in order.
func (d *Device) CallsTo(method string) []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Live returns how many handles are allocated and not yet released.
func (d *Device) Live() int { return len(d.live) }

// Reset forgets recorded calls but keeps live resources.
func (d *Device) Reset() { d.Calls = nil }

func (d *Device) CreateMesh(desc gpu.MeshDescriptor) (gpu.MeshHandle, error) {
	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return gpu.MeshHandle{}, errors.New("gputest: empty mesh")
	}
	h := gpu.MeshHandle{
		VertexArray:  d.handle("mesh"),
		VertexBuffer: d.handle("buffer"),
		IndexBuffer:  d.handle("buffer"),
		ElementCount: len(desc.Indices),
	}
	d.record("CreateMesh", h.VertexArray, desc.Label, desc.InstanceLayout.Key())
	return h, nil
}

func (d *Device) ReleaseMesh(h gpu.MeshHandle) {
	if !h.Built() {
		return
	}
	delete(d.live, h.VertexArray)
	delete(d.live, h.VertexBuffer)
	delete(d.live, h.IndexBuffer)
	d.record("ReleaseMesh", h.VertexArray, "", "")
}

func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Handle, error) {
	if desc.Size <= 0 {
		return 0, fmt.Errorf("gputest: buffer size %d", desc.Size)
	}
	h := d.handle("buffer")
	d.Buffers[h] = make([]byte, desc.Size)
	d.record("CreateBuffer", h, desc.Label, fmt.Sprint(desc.Size))
	return h, nil
}

func (d *Device) WriteBuffer(h gpu.Handle, offset int, data []byte) {
	if buf, ok := d.Buffers[h]; ok && offset+len(data) <= len(buf) {
		copy(buf[offset:], data)
	}
	d.record("WriteBuffer", h, "", fmt.Sprintf("%d+%d", offset, len(data)))
}

func (d *Device) ReleaseBuffer(h gpu.Handle) {
	if h == 0 {
		return
	}
	delete(d.live, h)
	delete(d.Buffers, h)
	d.record("ReleaseBuffer", h, "", "")
}

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Handle, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("gputest: texture size %dx%d", desc.Width, desc.Height)
	}
	h := d.handle("texture")
	d.record("CreateTexture", h, desc.Label, fmt.Sprintf("%dx%d", desc.Width, desc.Height))
	return h, nil
}

func (d *Device) ReleaseTexture(h gpu.Handle) {
	if h == 0 {
		return
	}
	delete(d.live, h)
	d.record("ReleaseTexture", h, "", "")
}

func (d *Device) CreateShader(desc gpu.ShaderDescriptor) (gpu.Handle, error) {
	if d.FailShaders[desc.Label] {
		return 0, fmt.Errorf("gputest: compile %s: forced failure", desc.Label)
	}
	h := d.handle("shader")
	d.record("CreateShader", h, desc.Label, desc.Vertex)
	return h, nil
}

func (d *Device) ReleaseShader(h gpu.Handle) {
	if h == 0 {
		return
	}
	delete(d.live, h)
	d.record("ReleaseShader", h, "", "")
}

func (d *Device) CreateFramebuffer(desc gpu.FramebufferDescriptor) (gpu.FramebufferHandle, error) {
	if desc.Width <= 0 || desc.Height <= 0 || (len(desc.Color) == 0 && !desc.Depth && desc.SharedDepth == 0) {
		return gpu.FramebufferHandle{}, fmt.Errorf("gputest: framebuffer %q incomplete", desc.Label)
	}
	if desc.SharedDepth != 0 && d.live[desc.SharedDepth] != "depth" {
		return gpu.FramebufferHandle{}, fmt.Errorf("gputest: framebuffer %q incomplete: shared depth %d not live", desc.Label, desc.SharedDepth)
	}
	fb := gpu.FramebufferHandle{Framebuffer: d.handle("framebuffer")}
	for range desc.Color {
		fb.Color = append(fb.Color, d.handle("texture"))
	}
	switch {
	case desc.SharedDepth != 0:
		fb.Depth = desc.SharedDepth
	case desc.Depth:
		fb.Depth = d.handle("depth")
		d.ownedDepth[fb.Framebuffer] = true
	}
	d.record("CreateFramebuffer", fb.Framebuffer, desc.Label, fmt.Sprintf("%dx%d", desc.Width, desc.Height))
	return fb, nil
}

func (d *Device) ReleaseFramebuffer(h gpu.FramebufferHandle) {
	if !h.Built() {
		return
	}
	delete(d.live, h.Framebuffer)
	for _, c := range h.Color {
		delete(d.live, c)
	}
	if d.ownedDepth[h.Framebuffer] {
		delete(d.live, h.Depth)
		delete(d.ownedDepth, h.Framebuffer)
	}
	d.record("ReleaseFramebuffer", h.Framebuffer, "", "")
}

func (d *Device) BindFramebuffer(h gpu.Handle) {
	d.BoundFramebuffer = h
	d.record("BindFramebuffer", h, "", "")
}

func (d *Device) BindShader(h gpu.Handle) {
	d.BoundShader = h
	d.record("BindShader", h, "", "")
}

func (d *Device) BindTexture(unit int, h gpu.Handle) {
	if unit >= 0 && unit < gpu.MaxTextureUnits {
		d.Textures[unit] = h
	}
	d.record("BindTexture", h, "", fmt.Sprint(unit))
}

func (d *Device) Clear(opts gpu.ClearOptions) {
	d.record("Clear", d.BoundFramebuffer, "", fmt.Sprintf("color=%t depth=%t", opts.Color, opts.Depth))
}

func (d *Device) SetDepthTest(enabled bool) {
	d.DepthTest = enabled
	d.record("SetDepthTest", 0, "", fmt.Sprint(enabled))
}

func (d *Device) SetDepthWrite(enabled bool) {
	d.record("SetDepthWrite", 0, "", fmt.Sprint(enabled))
}

func (d *Device) SetBlend(state gpu.BlendState) {
	d.Blend = state
	d.record("SetBlend", 0, "", fmt.Sprint(state.Enabled))
}

func (d *Device) SetCullFace(mode gpu.CullMode) {
	d.Cull = mode
	d.record("SetCullFace", 0, "", fmt.Sprint(int(mode)))
}

func (d *Device) SetViewport(width, height int) {
	d.Viewport = [2]int{width, height}
	d.record("SetViewport", 0, "", fmt.Sprintf("%dx%d", width, height))
}

func (d *Device) SetUniform(shader gpu.Handle, name string, value gpu.Value) {
	if d.Uniforms[shader] == nil {
		d.Uniforms[shader] = map[string]gpu.Value{}
	}
	d.Uniforms[shader][name] = value
	d.record("SetUniform", shader, name, value.String())
}

func (d *Device) DrawIndexed(mesh gpu.MeshHandle, instances gpu.Handle, count int) {
	d.record("DrawIndexed", mesh.VertexArray, "", fmt.Sprintf("fb=%d shader=%d instances=%d", d.BoundFramebuffer, d.BoundShader, count))
}

func (d *Device) DrawQuad() {
	d.record("DrawQuad", d.BoundFramebuffer, "", fmt.Sprintf("shader=%d", d.BoundShader))
}

func (d *Device) Resize(width, height int) {
	d.Width, d.Height = width, height
	d.record("Resize", 0, "", fmt.Sprintf("%dx%d", width, height))
}

func (d *Device) Present() {
	d.record("Present", 0, "", "")
}

func (d *Device) Release() {
	d.live = map[gpu.Handle]string{}
	d.ownedDepth = map[gpu.Handle]bool{}
	d.record("Release", 0, "", "")
}
