package render_context

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/instancing"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderMode controls which passes draw an entity.
type RenderMode int

const (
	// ModeDefault entities are drawn and cast shadows when their material does.
	ModeDefault RenderMode = iota
	// ModeHidden entities are skipped by every pass.
	ModeHidden
	// ModeShadowOnly entities only appear in the shadow maps.
	ModeShadowOnly
)

// Entity is one non-instanced drawable. Mesh, material and transform are borrowed from
// the application, which must keep them alive until the entity is erased.
//
// The entity is drawn through a one-record instance buffer laid out per the mesh's
// instance layout, so it shares shaders with instance groups. The record is rewritten
// when the transform version changes.
type Entity struct {
	ID        RenderID
	Mesh      mesh.Mesh
	Material  material.Material
	Transform *transform.Transform
	Mode      RenderMode

	culled  bool
	buffer  *resource.Buffer
	version uint64
	record  []float32
}

func newEntity(id RenderID, m mesh.Mesh, mat material.Material, t *transform.Transform) *Entity {
	return &Entity{
		ID:        id,
		Mesh:      m,
		Material:  mat,
		Transform: t,
		buffer:    resource.NewBuffer(m.Name()+" entity", gpu.UsageDynamic),
	}
}

// Culled reports whether frustum culling rejected the entity this frame.
func (e *Entity) Culled() bool { return e.culled }

// SetCulled is called by the culling pass.
func (e *Entity) SetCulled(culled bool) { e.culled = culled }

// Visible reports whether the camera passes should draw the entity.
func (e *Entity) Visible() bool {
	return e.Mode == ModeDefault && !e.culled
}

// CastsShadow reports whether the shadow pass should draw the entity. Culling is ignored
// because casters outside the view still shadow visible geometry.
func (e *Entity) CastsShadow() bool {
	return e.Mode != ModeHidden && e.Material.ShadowMode() == material.ShadowFull
}

// Changed reports whether the instance record is missing or stale.
func (e *Entity) Changed() bool {
	return !e.buffer.Built() || e.version != e.Transform.Version()
}

// Sync writes the transform record to the GPU, allocating the buffer on first use.
func (e *Entity) Sync(dev gpu.Device) {
	e.record = instancing.AppendRecord(e.record[:0], e.Mesh.InstanceLayout(), e.Transform)
	data := common.Float32Bytes(e.record)
	if !e.buffer.Built() {
		e.buffer.Allocate(dev, data)
	} else {
		e.buffer.Write(dev, 0, data)
	}
	e.version = e.Transform.Version()
}

// Draw issues one draw of the mesh with the entity's record, syncing it first if stale.
func (e *Entity) Draw(dev gpu.Device) {
	if e.Changed() {
		e.Sync(dev)
	}
	e.Mesh.RenderArray().Draw(dev, e.buffer.Handle(), 1)
}

// Release frees the instance buffer.
func (e *Entity) Release() {
	e.buffer.Release()
}

// CameraItem is the submitted camera with its transform.
type CameraItem struct {
	ID        RenderID
	Camera    camera.Camera
	Transform *transform.Transform
}

// View returns the camera view matrix for its transform.
func (c *CameraItem) View() mgl32.Mat4 {
	return c.Camera.View(c.Transform)
}

// DirectionalLightItem is the submitted directional light with its transform.
type DirectionalLightItem struct {
	ID        RenderID
	Light     light.DirectionalLight
	Transform *transform.Transform
}

// PointLightItem is a submitted point light with its transform.
type PointLightItem struct {
	ID        RenderID
	Light     light.PointLight
	Transform *transform.Transform
}
