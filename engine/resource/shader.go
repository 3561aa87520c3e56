package resource

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// Shader is a compiled and linked shader program.
type Shader struct {
	noCopy noCopy

	desc   gpu.ShaderDescriptor
	dev    gpu.Device
	handle gpu.Handle
}

// NewShader keeps desc for a later Build.
func NewShader(desc gpu.ShaderDescriptor) *Shader {
	return &Shader{desc: desc}
}

// Build compiles the program if not already built. A compile error is fatal.
func (s *Shader) Build(dev gpu.Device) {
	if s.handle != 0 {
		return
	}
	h, err := dev.CreateShader(s.desc)
	if err != nil {
		buildFailed("shader", s.desc.Label, err)
	}
	s.dev = dev
	s.handle = h
}

// Use builds the program if needed and binds it for later draws.
func (s *Shader) Use(dev gpu.Device) {
	s.Build(dev)
	dev.BindShader(s.handle)
}

// Set uploads a named uniform. The shader must have been used or built.
func (s *Shader) Set(dev gpu.Device, name string, value gpu.Value) {
	dev.SetUniform(s.handle, name, value)
}

// Release frees the program.
func (s *Shader) Release() {
	if s.handle == 0 {
		return
	}
	s.dev.ReleaseShader(s.handle)
	s.handle = 0
}

// Built reports whether the program is compiled.
func (s *Shader) Built() bool { return s.handle != 0 }

// Handle returns the program handle.
func (s *Shader) Handle() gpu.Handle { return s.handle }

// Label returns the debug name.
func (s *Shader) Label() string { return s.desc.Label }
