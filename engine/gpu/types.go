package gpu

import (
	"io/fs"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is an opaque backend resource identifier. The zero Handle means "not built";
// as a framebuffer binding it selects the window.
type Handle uint64

// MeshHandle bundles the handles that make up one built vertex array.
type MeshHandle struct {
	VertexArray  Handle
	VertexBuffer Handle
	IndexBuffer  Handle
	ElementCount int
}

// Built reports whether the mesh has been uploaded.
func (h MeshHandle) Built() bool { return h.VertexArray != 0 }

// FramebufferHandle bundles a framebuffer with its attachments.
// Depth is zero for color-only framebuffers.
type FramebufferHandle struct {
	Framebuffer Handle
	Color       []Handle
	Depth       Handle
}

// Built reports whether the framebuffer has been created.
func (h FramebufferHandle) Built() bool { return h.Framebuffer != 0 }

// Usage is a static/dynamic update hint for buffers.
type Usage int

const (
	UsageStatic Usage = iota
	UsageDynamic
)

// VertexAttribute is one float attribute in an interleaved vertex or instance record.
type VertexAttribute struct {
	Name       string
	Components int
}

// VertexLayout is an ordered list of attributes sharing one buffer.
type VertexLayout []VertexAttribute

// Stride returns the number of floats per record.
func (l VertexLayout) Stride() int {
	n := 0
	for _, a := range l {
		n += a.Components
	}
	return n
}

// Key returns a compact signature ("3,3,2") identifying the layout shape.
func (l VertexLayout) Key() string {
	parts := make([]string, len(l))
	for i, a := range l {
		parts[i] = strconv.Itoa(a.Components)
	}
	return strings.Join(parts, ",")
}

// MeshDescriptor describes an indexed triangle mesh to upload.
type MeshDescriptor struct {
	Label    string
	Vertices []float32
	Indices  []uint32
	Layout   VertexLayout

	// InstanceLayout describes the per-instance buffer this mesh will be drawn with.
	// Attribute locations continue after Layout's.
	InstanceLayout VertexLayout
	Usage          Usage
}

// BufferDescriptor describes a per-instance vertex buffer.
type BufferDescriptor struct {
	Label string
	Size  int
	Usage Usage
}

// TextureFormat enumerates the pixel formats the engine uses.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA8Srgb
	FormatRGBA16F
	FormatR8
	FormatR16F
	FormatDepth32F
)

var textureFormatNames = map[string]TextureFormat{
	"rgba8":      FormatRGBA8,
	"rgba8_srgb": FormatRGBA8Srgb,
	"rgba16f":    FormatRGBA16F,
	"r8":         FormatR8,
	"r16f":       FormatR16F,
	"depth32f":   FormatDepth32F,
}

// ParseTextureFormat maps a config name such as "rgba16f" to a TextureFormat.
//
// Parameters:
//   - name: the lowercase format name
//
// Returns:
//   - TextureFormat: the matching format
//   - bool: false if the name is unknown
func ParseTextureFormat(name string) (TextureFormat, bool) {
	f, ok := textureFormatNames[strings.ToLower(name)]
	return f, ok
}

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool { return f == FormatDepth32F }

// BytesPerPixel returns the size of one texel.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatR8:
		return 1
	case FormatR16F:
		return 2
	case FormatRGBA16F:
		return 8
	default:
		return 4
	}
}

// FilterMode selects texture minification/magnification filtering.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// WrapMode selects texture addressing outside [0, 1].
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// TextureDescriptor describes a 2D texture and its sampling state.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
	Format TextureFormat
	Pixels []byte
	Filter FilterMode
	Wrap   WrapMode
}

// FramebufferDescriptor describes a render target.
type FramebufferDescriptor struct {
	Label  string
	Width  int
	Height int
	Color  []TextureFormat
	Depth  bool

	// SharedDepth reuses another framebuffer's depth texture instead of allocating one.
	SharedDepth Handle
	Filter      FilterMode
	Wrap        WrapMode
}

// ShaderDescriptor names the shader stage sources. Paths resolve against FS.
// Vertex and Fragment may name the same file.
type ShaderDescriptor struct {
	Label    string
	Vertex   string
	Fragment string
	Geometry string
	FS       fs.FS
}

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// BlendFactor is a source or destination blend weight.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendConstant
	BlendOneMinusConstant
)

// BlendState configures color blending. Constant feeds the BlendConstant factors.
type BlendState struct {
	Enabled  bool
	Src      BlendFactor
	Dst      BlendFactor
	Constant [4]float32
}

var (
	// BlendOff disables blending.
	BlendOff = BlendState{}

	// BlendAdditive adds the source onto the destination.
	BlendAdditive = BlendState{Enabled: true, Src: BlendOne, Dst: BlendOne}

	// BlendAlpha is standard non-premultiplied alpha blending.
	BlendAlpha = BlendState{Enabled: true, Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha}
)

// BlendWeighted returns a blend that mixes source and destination as
// src*weight + dst*(1-weight) through the blend constant.
func BlendWeighted(weight float32) BlendState {
	return BlendState{
		Enabled:  true,
		Src:      BlendConstant,
		Dst:      BlendOneMinusConstant,
		Constant: [4]float32{weight, weight, weight, weight},
	}
}

// ClearOptions selects which attachments of the bound framebuffer Clear resets.
// Depth is always cleared to 1.
type ClearOptions struct {
	Color      bool
	Depth      bool
	ClearColor [4]float32
}

// Surface is the window collaborator the device presents to.
type Surface interface {
	// Width returns the drawable width in pixels.
	Width() int

	// Height returns the drawable height in pixels.
	Height() int

	// SurfaceDescriptor returns the platform surface for the wgpu backend, or nil for headless use.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// TransformInstanceLayout is the per-instance record of position, scale and rotation
// used by the built-in geometry and shadow shaders.
var TransformInstanceLayout = VertexLayout{
	{Name: "position", Components: 3},
	{Name: "scale", Components: 3},
	{Name: "rotation", Components: 4},
}

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeUncapped presents immediately, possibly tearing.
	PresentModeUncapped PresentMode = iota

	// PresentModeVSync waits for vertical blank.
	PresentModeVSync
)
