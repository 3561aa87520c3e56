// Package render_context holds the per-frame scene database the renderer draws from:
// entities, instance groups, the camera, lights and shader inputs.
package render_context

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/instancing"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
)

// RenderID identifies one submission. Zero is never issued.
type RenderID = instancing.RenderID

// ErrNoInstanceGroup is returned when adding an instance to a tag that has no group.
var ErrNoInstanceGroup = errors.New("render_context: no instance group")

// RenderContext is the scene database for one renderer. All submitted meshes, materials,
// cameras, lights and transforms are borrowed: the application owns them and must keep
// them alive until they are erased or the context is cleared.
//
// A RenderContext is used from the render thread only.
type RenderContext struct {
	ids *IDSource

	entities         map[RenderID]*Entity
	instanceGroups   map[string]*instancing.InstanceGroup
	instanceTags     map[RenderID]string
	pointLights      map[RenderID]*PointLightItem
	camera           *CameraItem
	directionalLight *DirectionalLightItem
	shaderInputs     map[string]gpu.Value
}

// NewRenderContext creates an empty context drawing ids from DefaultIDSource unless
// WithIDSource is given.
//
// Parameters:
//   - options: functional options applied over the defaults
//
// Returns:
//   - *RenderContext: the empty context
func NewRenderContext(options ...RenderContextBuilderOption) *RenderContext {
	rc := &RenderContext{
		entities:       make(map[RenderID]*Entity),
		instanceGroups: make(map[string]*instancing.InstanceGroup),
		instanceTags:   make(map[RenderID]string),
		pointLights:    make(map[RenderID]*PointLightItem),
		shaderInputs:   make(map[string]gpu.Value),
	}
	for _, option := range options {
		option(rc)
	}
	if rc.ids == nil {
		rc.ids = DefaultIDSource()
	}
	return rc
}

// nextID returns an id not used by any submission in the context.
func (rc *RenderContext) nextID() RenderID {
	for {
		id := rc.ids.Next()
		if !rc.inUse(id) {
			return id
		}
	}
}

func (rc *RenderContext) inUse(id RenderID) bool {
	if _, ok := rc.entities[id]; ok {
		return true
	}
	if _, ok := rc.pointLights[id]; ok {
		return true
	}
	if _, ok := rc.instanceTags[id]; ok {
		return true
	}
	return (rc.camera != nil && rc.camera.ID == id) || (rc.directionalLight != nil && rc.directionalLight.ID == id)
}

// Submit registers a non-instanced entity.
//
// Parameters:
//   - m: the mesh
//   - mat: the material
//   - t: the entity transform
//
// Returns:
//   - RenderID: the entity id
func (rc *RenderContext) Submit(m mesh.Mesh, mat material.Material, t *transform.Transform) RenderID {
	id := rc.nextID()
	rc.entities[id] = newEntity(id, m, mat, t)
	return id
}

// SubmitInstanced adds an instance to the group for tag, creating the group from m and
// mat first if it does not exist. An existing group keeps its own mesh and material.
//
// Parameters:
//   - tag: the instance group key
//   - m: the mesh of a new group
//   - mat: the material of a new group
//   - t: the instance transform
//
// Returns:
//   - RenderID: the instance id
func (rc *RenderContext) SubmitInstanced(tag string, m mesh.Mesh, mat material.Material, t *transform.Transform) RenderID {
	g, ok := rc.instanceGroups[tag]
	if !ok {
		g = instancing.NewInstanceGroup(m, mat)
		rc.instanceGroups[tag] = g
		common.Logger().Debug("render_context: new instance group", "tag", tag, "mesh", m.Name(), "material", mat.Name())
	}
	id := rc.nextID()
	g.Add(t, id)
	rc.instanceTags[id] = tag
	return id
}

// AddInstanceGroup registers a group built by the caller, for example one with a custom
// attribute layout. An existing group under tag is released and replaced.
func (rc *RenderContext) AddInstanceGroup(tag string, g *instancing.InstanceGroup) {
	if old, ok := rc.instanceGroups[tag]; ok && old != g {
		rc.EraseInstanceGroup(tag)
	}
	rc.instanceGroups[tag] = g
	for _, id := range g.IDs() {
		rc.instanceTags[id] = tag
	}
}

// SubmitInstance adds an instance to the existing group for tag.
//
// Parameters:
//   - tag: the instance group key
//   - t: the instance transform
//
// Returns:
//   - RenderID: the instance id
//   - error: wrapping ErrNoInstanceGroup when tag has no group
func (rc *RenderContext) SubmitInstance(tag string, t *transform.Transform) (RenderID, error) {
	g, ok := rc.instanceGroups[tag]
	if !ok {
		return 0, fmt.Errorf("submit instance %q: %w", tag, ErrNoInstanceGroup)
	}
	id := rc.nextID()
	g.Add(t, id)
	rc.instanceTags[id] = tag
	return id, nil
}

// SubmitCamera sets the camera, replacing any previous one.
func (rc *RenderContext) SubmitCamera(c camera.Camera, t *transform.Transform) RenderID {
	id := rc.nextID()
	rc.camera = &CameraItem{ID: id, Camera: c, Transform: t}
	return id
}

// SubmitDirectionalLight sets the directional light, replacing any previous one.
func (rc *RenderContext) SubmitDirectionalLight(l light.DirectionalLight, t *transform.Transform) RenderID {
	id := rc.nextID()
	rc.directionalLight = &DirectionalLightItem{ID: id, Light: l, Transform: t}
	return id
}

// SubmitPointLight registers a point light.
func (rc *RenderContext) SubmitPointLight(l light.PointLight, t *transform.Transform) RenderID {
	id := rc.nextID()
	rc.pointLights[id] = &PointLightItem{ID: id, Light: l, Transform: t}
	return id
}

// EraseEntity removes an entity and frees its instance buffer. Unknown ids are ignored.
func (rc *RenderContext) EraseEntity(id RenderID) {
	if e, ok := rc.entities[id]; ok {
		e.Release()
		delete(rc.entities, id)
	}
}

// EraseInstance removes one instance from the group for tag.
//
// Returns:
//   - bool: false when the group or the id within it does not exist
func (rc *RenderContext) EraseInstance(tag string, id RenderID) bool {
	g, ok := rc.instanceGroups[tag]
	if !ok || !g.Erase(id) {
		return false
	}
	delete(rc.instanceTags, id)
	return true
}

// EraseInstanceGroup removes a whole group and frees its buffer. Unknown tags are ignored.
func (rc *RenderContext) EraseInstanceGroup(tag string) {
	if g, ok := rc.instanceGroups[tag]; ok {
		for _, id := range g.IDs() {
			delete(rc.instanceTags, id)
		}
		g.Release()
		delete(rc.instanceGroups, tag)
	}
}

// ClearInstances empties the group for tag but keeps it and its GPU buffer, for groups
// rebuilt every frame. Unknown tags are ignored.
func (rc *RenderContext) ClearInstances(tag string) {
	g, ok := rc.instanceGroups[tag]
	if !ok {
		return
	}
	for _, id := range g.IDs() {
		delete(rc.instanceTags, id)
	}
	g.ClearInstances()
}

// EraseItem removes a point light, or unsets the camera or directional light when id
// matches them. Unknown ids are ignored.
func (rc *RenderContext) EraseItem(id RenderID) {
	delete(rc.pointLights, id)
	if rc.camera != nil && rc.camera.ID == id {
		rc.camera = nil
	}
	if rc.directionalLight != nil && rc.directionalLight.ID == id {
		rc.directionalLight = nil
	}
}

// Clear removes every submission and shader input and frees the GPU buffers the context
// allocated. Used when swapping scenes.
func (rc *RenderContext) Clear() {
	for _, e := range rc.entities {
		e.Release()
	}
	for _, g := range rc.instanceGroups {
		g.Release()
	}
	clear(rc.entities)
	clear(rc.instanceGroups)
	clear(rc.instanceTags)
	clear(rc.pointLights)
	clear(rc.shaderInputs)
	rc.camera = nil
	rc.directionalLight = nil
}

// SetEntityMode changes how passes treat an entity.
//
// Returns:
//   - bool: false when id is not an entity
func (rc *RenderContext) SetEntityMode(id RenderID, mode RenderMode) bool {
	e, ok := rc.entities[id]
	if !ok {
		return false
	}
	e.Mode = mode
	return true
}

// Entities returns the entity map. Iteration order is unspecified.
func (rc *RenderContext) Entities() map[RenderID]*Entity { return rc.entities }

// Entity returns the entity for id, or nil.
func (rc *RenderContext) Entity(id RenderID) *Entity { return rc.entities[id] }

// InstanceGroups returns the group map. Iteration order is unspecified.
func (rc *RenderContext) InstanceGroups() map[string]*instancing.InstanceGroup {
	return rc.instanceGroups
}

// InstanceGroup returns the group for tag, or nil.
func (rc *RenderContext) InstanceGroup(tag string) *instancing.InstanceGroup {
	return rc.instanceGroups[tag]
}

// InstanceTag returns the tag of the group holding instance id.
func (rc *RenderContext) InstanceTag(id RenderID) (string, bool) {
	tag, ok := rc.instanceTags[id]
	return tag, ok
}

// PointLights returns the point light map. Iteration order is unspecified.
func (rc *RenderContext) PointLights() map[RenderID]*PointLightItem { return rc.pointLights }

// Camera returns the submitted camera, or nil.
func (rc *RenderContext) Camera() *CameraItem { return rc.camera }

// DirectionalLight returns the submitted directional light, or nil.
func (rc *RenderContext) DirectionalLight() *DirectionalLightItem { return rc.directionalLight }

// SetShaderInput sets a named uniform uploaded to every geometry shader.
func (rc *RenderContext) SetShaderInput(tag string, value gpu.Value) {
	rc.shaderInputs[tag] = value
}

// ShaderInput returns the value for tag and whether it is set.
func (rc *RenderContext) ShaderInput(tag string) (gpu.Value, bool) {
	v, ok := rc.shaderInputs[tag]
	return v, ok
}

// ShaderInputs returns the shader input map.
func (rc *RenderContext) ShaderInputs() map[string]gpu.Value { return rc.shaderInputs }

// EraseShaderInput removes a shader input.
func (rc *RenderContext) EraseShaderInput(tag string) {
	delete(rc.shaderInputs, tag)
}
