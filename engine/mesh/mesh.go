package mesh

import (
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultLayout is the interleaved vertex format of the built-in primitives and shaders:
// position, normal and texture coordinate.
var DefaultLayout = gpu.VertexLayout{
	{Name: "position", Components: 3},
	{Name: "normal", Components: 3},
	{Name: "uv", Components: 2},
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name           string
	vertices       []float32
	indices        []uint32
	layout         gpu.VertexLayout
	instanceLayout gpu.VertexLayout
	usage          gpu.Usage
	boundingRadius float32
	renderArray    *resource.RenderArray
}

// Mesh is indexed triangle geometry with its lazily uploaded GPU copy.
type Mesh interface {
	// Name returns the mesh identifier.
	Name() string

	// Vertices returns the interleaved vertex floats laid out per Layout.
	Vertices() []float32

	// Indices returns the triangle list indices.
	Indices() []uint32

	// Layout returns the vertex attribute layout.
	Layout() gpu.VertexLayout

	// InstanceLayout returns the per-instance attribute layout the mesh is drawn with.
	InstanceLayout() gpu.VertexLayout

	// BoundingRadius returns the radius of a sphere around the local origin enclosing
	// every vertex position, before any transform scale.
	BoundingRadius() float32

	// RenderArray returns the GPU wrapper, built on first draw.
	RenderArray() *resource.RenderArray
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from interleaved vertex data and triangle indices. The bounding
// radius is computed from the position attribute unless set with WithBoundingRadius.
//
// Parameters:
//   - vertices: interleaved floats, one record per vertex
//   - indices: triangle list indices
//   - options: functional options applied over the defaults
//
// Returns:
//   - Mesh: the mesh, not yet uploaded
func NewMesh(vertices []float32, indices []uint32, options ...MeshBuilderOption) Mesh {
	m := &mesh{
		name:           "mesh",
		vertices:       vertices,
		indices:        indices,
		layout:         DefaultLayout,
		instanceLayout: gpu.TransformInstanceLayout,
		boundingRadius: -1,
	}
	for _, option := range options {
		option(m)
	}
	if m.boundingRadius < 0 {
		m.boundingRadius = boundingRadius(m.vertices, m.layout)
	}
	m.renderArray = resource.NewRenderArray(gpu.MeshDescriptor{
		Label:          m.name,
		Vertices:       m.vertices,
		Indices:        m.indices,
		Layout:         m.layout,
		InstanceLayout: m.instanceLayout,
		Usage:          m.usage,
	})
	return m
}

func (m *mesh) Name() string { return m.name }
func (m *mesh) Vertices() []float32 { return m.vertices }
func (m *mesh) Indices() []uint32 { return m.indices }
func (m *mesh) Layout() gpu.VertexLayout { return m.layout }
func (m *mesh) InstanceLayout() gpu.VertexLayout { return m.instanceLayout }
func (m *mesh) BoundingRadius() float32 { return m.boundingRadius }
func (m *mesh) RenderArray() *resource.RenderArray { return m.renderArray }

// boundingRadius returns the largest distance from the origin of any vertex position.
// The position attribute is the one named "position", or the first attribute.
func boundingRadius(vertices []float32, layout gpu.VertexLayout) float32 {
	stride := layout.Stride()
	if stride == 0 || len(layout) == 0 {
		return 0
	}
	offset, components := 0, layout[0].Components
	for i, at := 0, 0; i < len(layout); i++ {
		if layout[i].Name == "position" {
			offset, components = at, layout[i].Components
			break
		}
		at += layout[i].Components
	}
	components = min(components, 3)

	var r2 float32
	for base := 0; base+stride <= len(vertices); base += stride {
		var p mgl32.Vec3
		copy(p[:components], vertices[base+offset:base+offset+components])
		r2 = max(r2, p.Dot(p))
	}
	return float32(math.Sqrt(float64(r2)))
}
