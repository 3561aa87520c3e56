package gpu

// MaxTextureUnits is the number of texture units a shader can sample from.
const MaxTextureUnits = 12

// Device is the graphics API the render core drives. It follows a bind-then-draw model:
// framebuffer, shader, textures and fixed-function state are bound first and every
// DrawIndexed/DrawQuad/Clear call acts on the current bindings.
//
// Build functions return errors; the resource layer decides whether they are fatal.
// A Device is used from the render thread only.
type Device interface {
	// CreateMesh uploads vertex and index data and returns the handle bundle.
	//
	// Parameters:
	//   - desc: vertices, indices and layouts of the mesh
	//
	// Returns:
	//   - MeshHandle: the built vertex array with its buffers and element count
	//   - error: if the data is empty or the backend rejects it
	CreateMesh(desc MeshDescriptor) (MeshHandle, error)

	// ReleaseMesh frees a mesh built by CreateMesh. Releasing an unbuilt handle is a no-op.
	ReleaseMesh(h MeshHandle)

	// CreateBuffer allocates a per-instance vertex buffer of desc.Size bytes.
	//
	// Parameters:
	//   - desc: label, size and usage hint
	//
	// Returns:
	//   - Handle: the buffer handle
	//   - error: if the size is not positive or allocation fails
	CreateBuffer(desc BufferDescriptor) (Handle, error)

	// WriteBuffer copies data into the buffer starting at the given byte offset.
	WriteBuffer(h Handle, offset int, data []byte)

	// ReleaseBuffer frees a buffer. Releasing zero is a no-op.
	ReleaseBuffer(h Handle)

	// CreateTexture uploads a 2D texture with its sampler state.
	//
	// Parameters:
	//   - desc: size, format, pixels and sampling state
	//
	// Returns:
	//   - Handle: the texture handle
	//   - error: if the size is invalid or the pixel data is short
	CreateTexture(desc TextureDescriptor) (Handle, error)

	// ReleaseTexture frees a texture. Releasing zero is a no-op.
	ReleaseTexture(h Handle)

	// CreateShader loads, compiles and links the shader stages.
	//
	// Parameters:
	//   - desc: stage source paths and the filesystem they resolve against
	//
	// Returns:
	//   - Handle: the program handle
	//   - error: carrying the compiler log on failure
	CreateShader(desc ShaderDescriptor) (Handle, error)

	// ReleaseShader frees a shader program. Releasing zero is a no-op.
	ReleaseShader(h Handle)

	// CreateFramebuffer allocates a render target with its attachments.
	//
	// Parameters:
	//   - desc: size, color formats and depth configuration
	//
	// Returns:
	//   - FramebufferHandle: the framebuffer and its attachment textures
	//   - error: if the framebuffer would be incomplete
	CreateFramebuffer(desc FramebufferDescriptor) (FramebufferHandle, error)

	// ReleaseFramebuffer frees a framebuffer and the attachments it owns.
	ReleaseFramebuffer(h FramebufferHandle)

	// BindFramebuffer selects the render target for later draws; zero selects the window.
	BindFramebuffer(h Handle)

	// BindShader selects the program for later draws and uniform uploads.
	BindShader(h Handle)

	// BindTexture binds a texture to a sampling unit; zero unbinds the unit.
	BindTexture(unit int, h Handle)

	// Clear resets attachments of the bound framebuffer.
	Clear(opts ClearOptions)

	// SetDepthTest enables or disables depth testing.
	SetDepthTest(enabled bool)

	// SetDepthWrite enables or disables depth writes while depth testing is on.
	SetDepthWrite(enabled bool)

	// SetBlend configures color blending.
	SetBlend(state BlendState)

	// SetCullFace selects the culled face, or CullNone to disable culling.
	SetCullFace(mode CullMode)

	// SetViewport sets the drawable region of the bound framebuffer.
	SetViewport(width, height int)

	// SetUniform uploads a named uniform of the given shader. Array elements are
	// addressed with an index suffix, "name[i]". Names the shader does not declare are ignored.
	SetUniform(shader Handle, name string, value Value)

	// DrawIndexed draws indexed triangles. When instances is non-zero the buffer
	// supplies per-instance attributes and count instances are drawn.
	DrawIndexed(mesh MeshHandle, instances Handle, count int)

	// DrawQuad draws the 4-vertex triangle-strip quad that covers the viewport.
	DrawQuad()

	// Resize reconfigures the window surface.
	Resize(width, height int)

	// Present shows the window framebuffer. Called once per frame.
	Present()

	// Release frees every resource the device still owns.
	Release()
}
