package mesh

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName sets the mesh identifier, also used as the GPU debug label.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithLayout sets the vertex attribute layout. Default is DefaultLayout.
//
// Parameters:
//   - layout: the interleaved attribute list
//
// Returns:
//   - MeshBuilderOption: a function that applies the layout option to a mesh
func WithLayout(layout gpu.VertexLayout) MeshBuilderOption {
	return func(m *mesh) {
		m.layout = layout
	}
}

// WithInstanceLayout sets the per-instance layout the mesh is drawn with.
// Default is gpu.TransformInstanceLayout.
func WithInstanceLayout(layout gpu.VertexLayout) MeshBuilderOption {
	return func(m *mesh) {
		m.instanceLayout = layout
	}
}

// WithBoundingRadius overrides the computed bounding radius.
func WithBoundingRadius(radius float32) MeshBuilderOption {
	return func(m *mesh) {
		m.boundingRadius = radius
	}
}

// WithUsage sets the buffer update hint.
func WithUsage(usage gpu.Usage) MeshBuilderOption {
	return func(m *mesh) {
		m.usage = usage
	}
}
