package wgsl

// BindingKind classifies a resource declared with @group/@binding.
type BindingKind int

const (
	BindingUnknown BindingKind = iota
	BindingUniformBuffer
	BindingStorageBuffer
	BindingReadOnlyStorageBuffer
	BindingTexture
	BindingDepthTexture
	BindingSampler
	BindingComparisonSampler
)

// SampleType is the scalar type a sampled texture returns.
type SampleType int

const (
	SampleFloat SampleType = iota
	SampleSint
	SampleUint
	SampleDepth
)

// Binding is one resource declaration such as
// `@group(1) @binding(0) var albedo_tex: texture_2d<f32>;`.
type Binding struct {
	Group   int
	Binding int
	Name    string
	Type    string
	Kind    BindingKind

	// Sample is set for texture bindings.
	Sample SampleType

	// Size is the resolved byte size for buffer bindings, zero when unknown.
	Size uint64
}

// UniformMember locates one member of the uniform block.
type UniformMember struct {
	Name   string
	Type   string
	Offset uint64

	// Size is the byte size of one element.
	Size uint64

	// Count and Stride describe fixed-size arrays; Count is 0 for non-array members.
	Count  int
	Stride uint64
}

// Reflection is what the backend needs to know about a shader to build its
// pipeline layout and route named uniform writes.
type Reflection struct {
	VertexEntry   string
	FragmentEntry string

	// UniformType is the struct bound at @group(0) @binding(0), empty if none.
	UniformType string
	UniformSize uint64
	Uniforms    map[string]UniformMember

	Bindings []Binding
}

// typeLayout is the size and alignment of a WGSL type in the uniform address space.
type typeLayout struct {
	size  uint64
	align uint64
}

type structField struct {
	name     string
	typeName string
	builtin  bool
}

type structDecl struct {
	name   string
	fields []structField
}
