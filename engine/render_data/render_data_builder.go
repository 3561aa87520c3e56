package render_data

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
)

// RenderDataBuilderOption is a functional option for configuring RenderData via NewRenderData.
type RenderDataBuilderOption func(*RenderData)

// WithShaderFS sets the filesystem shader paths resolve against.
//
// Parameters:
//   - fsys: the shader source tree
//
// Returns:
//   - RenderDataBuilderOption: a function that applies the filesystem option
func WithShaderFS(fsys fs.FS) RenderDataBuilderOption {
	return func(d *RenderData) {
		d.shaderFS = fsys
	}
}

// WithMesh registers a mesh under tag.
//
// Parameters:
//   - tag: the mesh key
//   - m: the mesh
//
// Returns:
//   - RenderDataBuilderOption: a function that applies the mesh option
func WithMesh(tag string, m mesh.Mesh) RenderDataBuilderOption {
	return func(d *RenderData) {
		d.meshes[tag] = m
	}
}
