package resource

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// RenderArray is the GPU copy of a mesh's vertex and index data.
type RenderArray struct {
	noCopy noCopy

	desc   gpu.MeshDescriptor
	dev    gpu.Device
	handle gpu.MeshHandle
}

// NewRenderArray keeps desc for a later Build. The slices are retained, not copied.
func NewRenderArray(desc gpu.MeshDescriptor) *RenderArray {
	return &RenderArray{desc: desc}
}

// Build uploads the mesh if not already built. Meshes without geometry are never built.
func (r *RenderArray) Build(dev gpu.Device) {
	if r.handle.Built() || r.Empty() {
		return
	}
	h, err := dev.CreateMesh(r.desc)
	if err != nil {
		buildFailed("mesh", r.desc.Label, err)
	}
	r.dev = dev
	r.handle = h
}

// Draw builds the mesh if needed and issues an indexed draw with the given instance buffer.
// An empty mesh draws nothing.
//
// Parameters:
//   - dev: the device to draw with
//   - instances: per-instance attribute buffer, or zero for a single non-instanced draw
//   - count: number of instances
func (r *RenderArray) Draw(dev gpu.Device, instances gpu.Handle, count int) {
	r.Build(dev)
	if !r.handle.Built() {
		return
	}
	dev.DrawIndexed(r.handle, instances, count)
}

// Release frees the GPU mesh. The CPU-side descriptor is kept so the mesh can be rebuilt.
func (r *RenderArray) Release() {
	if !r.handle.Built() {
		return
	}
	r.dev.ReleaseMesh(r.handle)
	r.handle = gpu.MeshHandle{}
}

// Empty reports whether the mesh has no vertices or no indices.
func (r *RenderArray) Empty() bool {
	return len(r.desc.Vertices) == 0 || len(r.desc.Indices) == 0
}

// Built reports whether the mesh is on the GPU.
func (r *RenderArray) Built() bool { return r.handle.Built() }

// Handle returns the mesh handle bundle.
func (r *RenderArray) Handle() gpu.MeshHandle { return r.handle }
