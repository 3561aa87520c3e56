// Package instancing buffers per-instance attributes for meshes drawn many times with
// one draw call.
package instancing

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderID identifies one submission in a render context. Zero is never issued.
type RenderID uint64

// AttributeLayout lists the per-instance attributes of a group in record order.
type AttributeLayout = gpu.VertexLayout

// GrowthFactor is the multiple of the instance count allocated when the GPU buffer
// has to grow.
const GrowthFactor = 2

// InstanceGroup holds a flat buffer of per-instance floats for one mesh and material
// pair. Records are appended in submission order; the id list is parallel to them.
//
// The GPU buffer is only touched by ResetInstanceBuffer. Callers check Changed first.
type InstanceGroup struct {
	mesh     mesh.Mesh
	material material.Material
	layout   AttributeLayout
	stride   int

	data     []float32
	ids      []RenderID
	count    int
	changed  bool
	capacity int

	buffer *resource.Buffer
}

// NewInstanceGroup creates an empty group. The layout defaults to the mesh's instance
// layout.
//
// Parameters:
//   - m: the shared mesh
//   - mat: the shared material
//   - options: functional options applied over the defaults
//
// Returns:
//   - *InstanceGroup: the empty group
func NewInstanceGroup(m mesh.Mesh, mat material.Material, options ...InstanceGroupBuilderOption) *InstanceGroup {
	g := &InstanceGroup{
		mesh:     m,
		material: mat,
		layout:   m.InstanceLayout(),
	}
	for _, option := range options {
		option(g)
	}
	if len(g.layout) == 0 {
		g.layout = gpu.TransformInstanceLayout
	}
	g.stride = g.layout.Stride()
	g.buffer = resource.NewBuffer(m.Name()+" instances", gpu.UsageDynamic)
	return g
}

// Add appends a record built from the transform's globals. Attributes named position,
// scale and rotation are filled; any other attribute is zero.
//
// Parameters:
//   - t: the instance transform
//   - id: the id recorded for later erasure
func (g *InstanceGroup) Add(t *transform.Transform, id RenderID) {
	g.data = AppendRecord(g.data, g.layout, t)
	g.ids = append(g.ids, id)
	g.count++
	g.changed = true
}

// AddRecord appends a caller-built record. A record whose length differs from the stride
// is a programming error and panics.
//
// Parameters:
//   - record: exactly Stride() floats
//   - id: the id recorded for later erasure
func (g *InstanceGroup) AddRecord(record []float32, id RenderID) {
	if len(record) != g.stride {
		panic(fmt.Sprintf("instancing: record of %d floats, want %d", len(record), g.stride))
	}
	g.data = append(g.data, record...)
	g.ids = append(g.ids, id)
	g.count++
	g.changed = true
}

// Update rewrites the record of id from the transform's globals.
//
// Returns:
//   - bool: false when id is not in the group
func (g *InstanceGroup) Update(id RenderID, t *transform.Transform) bool {
	i := slices.Index(g.ids, id)
	if i < 0 {
		return false
	}
	// The zero-length slice shares the backing array, so the record is rewritten in place.
	AppendRecord(g.data[i*g.stride:i*g.stride], g.layout, t)
	g.changed = true
	return true
}

// Erase removes the record of id, keeping the order of the remaining records.
//
// Returns:
//   - bool: false when id is not in the group, in which case nothing changes
func (g *InstanceGroup) Erase(id RenderID) bool {
	i := slices.Index(g.ids, id)
	if i < 0 {
		return false
	}
	g.data = slices.Delete(g.data, i*g.stride, (i+1)*g.stride)
	g.ids = slices.Delete(g.ids, i, i+1)
	g.count--
	g.changed = true
	return true
}

// ClearInstances drops every record and releases the CPU storage. The GPU buffer and its
// capacity are kept so a group refilled every frame does not reallocate.
func (g *InstanceGroup) ClearInstances() {
	g.data = nil
	g.ids = nil
	g.count = 0
	g.changed = true
}

// SortByDistance reorders the records back to front as seen from eye, using the position
// attribute of each record. Groups without a position attribute are left unchanged.
//
// Parameters:
//   - eye: the camera position
func (g *InstanceGroup) SortByDistance(eye mgl32.Vec3) {
	offset := -1
	at := 0
	for _, a := range g.layout {
		if a.Name == "position" && a.Components >= 3 {
			offset = at
			break
		}
		at += a.Components
	}
	if offset < 0 || g.count < 2 {
		return
	}

	order := make([]int, g.count)
	dist := make([]float32, g.count)
	for i := range order {
		r := g.data[i*g.stride+offset:]
		order[i] = i
		dist[i] = mgl32.Vec3{r[0], r[1], r[2]}.Sub(eye).LenSqr()
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(dist[b], dist[a])
	})

	data := make([]float32, 0, len(g.data))
	ids := make([]RenderID, 0, len(g.ids))
	for _, i := range order {
		data = append(data, g.data[i*g.stride:(i+1)*g.stride]...)
		ids = append(ids, g.ids[i])
	}
	if slices.Equal(ids, g.ids) {
		return
	}
	g.data, g.ids = data, ids
	g.changed = true
}

// ResetInstanceBuffer writes the records to the GPU. When the count exceeds the allocated
// capacity the buffer is reallocated for GrowthFactor times the count; otherwise only the
// used range is rewritten. Afterwards Changed reports false.
//
// Parameters:
//   - dev: the device owning the buffer
func (g *InstanceGroup) ResetInstanceBuffer(dev gpu.Device) {
	defer func() { g.changed = false }()

	if g.count > g.capacity || (g.count > 0 && !g.buffer.Built()) {
		g.capacity = g.count * GrowthFactor
		g.buffer.Reserve(dev, g.capacity*g.stride*4)
	}
	if g.count == 0 {
		return
	}
	g.buffer.Write(dev, 0, common.Float32Bytes(g.data))
}

// Draw issues one instanced draw of the mesh for every record. Empty groups draw nothing.
func (g *InstanceGroup) Draw(dev gpu.Device) {
	if g.count == 0 || !g.buffer.Built() {
		return
	}
	g.mesh.RenderArray().Draw(dev, g.buffer.Handle(), g.count)
}

// Release frees the GPU buffer and forgets its capacity.
func (g *InstanceGroup) Release() {
	g.buffer.Release()
	g.capacity = 0
	g.changed = true
}

func (g *InstanceGroup) Mesh() mesh.Mesh { return g.mesh }
func (g *InstanceGroup) Material() material.Material { return g.material }
func (g *InstanceGroup) Layout() AttributeLayout { return g.layout }

// Changed reports whether records were added, erased or cleared since the last sync.
func (g *InstanceGroup) Changed() bool { return g.changed }

// Count returns the number of instances.
func (g *InstanceGroup) Count() int { return g.count }

// Stride returns the floats per record.
func (g *InstanceGroup) Stride() int { return g.stride }

// Data returns the flat record buffer. It must not be modified.
func (g *InstanceGroup) Data() []float32 { return g.data }

// IDs returns the ids in record order. It must not be modified.
func (g *InstanceGroup) IDs() []RenderID { return g.ids }

// Capacity returns the number of instances the GPU buffer can hold.
func (g *InstanceGroup) Capacity() int { return g.capacity }

// Buffer returns the GPU instance buffer.
func (g *InstanceGroup) Buffer() *resource.Buffer { return g.buffer }

// AppendRecord appends one record for t following layout. Attributes named position,
// scale and rotation take the transform's globals; others are zero-filled.
//
// Parameters:
//   - dst: the slice to append to
//   - layout: the record layout
//   - t: the source transform
//
// Returns:
//   - []float32: dst extended by layout.Stride() floats
func AppendRecord(dst []float32, layout AttributeLayout, t *transform.Transform) []float32 {
	if slices.Equal(layout, gpu.TransformInstanceLayout) {
		return t.AppendRecord(dst)
	}
	p, s, r := t.GlobalPosition(), t.GlobalScale(), t.GlobalRotation()
	rotation := [4]float32{r.V[0], r.V[1], r.V[2], r.W}
	for _, a := range layout {
		var src []float32
		switch a.Name {
		case "position":
			src = p[:]
		case "scale":
			src = s[:]
		case "rotation":
			src = rotation[:]
		}
		for k := range a.Components {
			if k < len(src) {
				dst = append(dst, src[k])
			} else {
				dst = append(dst, 0)
			}
		}
	}
	return dst
}
