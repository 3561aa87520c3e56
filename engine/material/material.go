package material

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader slots a material can override with a custom program.
const (
	SlotGeometry    = "geometry"
	SlotShadow      = "shadow"
	SlotTransparent = "transparent"
)

// ShadowMode selects whether a material casts shadows.
type ShadowMode int

const (
	ShadowNone ShadowMode = iota
	ShadowFull
)

// Transparency selects how a material is composited.
type Transparency int

const (
	// Opaque materials are drawn into the geometry buffer and lit deferred.
	Opaque Transparency = iota
	// Binary materials are alpha tested: a fragment is either kept or discarded.
	Binary
	// Unsorted materials are alpha blended in map iteration order.
	Unsorted
	// Sorted materials are alpha blended back to front by distance to the camera.
	Sorted
	// OrderIndependent is accepted but composited as Unsorted.
	OrderIndependent
)

func (t Transparency) String() string {
	switch t {
	case Opaque:
		return "opaque"
	case Binary:
		return "binary"
	case Unsorted:
		return "unsorted"
	case Sorted:
		return "sorted"
	case OrderIndependent:
		return "order_independent"
	default:
		return "unknown"
	}
}

// Data modes passed to the geometry shaders so they know which textures are bound.
const (
	DataNone     = 0
	DataAlbedo   = 1
	DataMaterial = 2
	DataBoth     = 3
)

// material is the implementation of the Material interface.
type material struct {
	name            string
	baseColor       mgl32.Vec4
	metallic        float32
	roughness       float32
	emissive        float32
	albedoTexture   *resource.Texture
	materialTexture *resource.Texture
	shadowMode      ShadowMode
	transparency    Transparency
	shaders         map[string]*resource.Shader
}

// Material describes the surface of a drawable: constant factors, optional textures and
// how the renderer treats it in the shadow and transparency passes.
//
// A material references its textures and shaders but does not own them. The renderer
// uploads unbuilt textures during load.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo RGBA color, multiplied with the albedo texture when one is bound.
	//
	// Returns:
	//   - mgl32.Vec4: the base color
	BaseColor() mgl32.Vec4

	// Metallic retrieves the metallic factor in [0, 1].
	Metallic() float32

	// Roughness retrieves the roughness factor in [0, 1].
	Roughness() float32

	// Emissive retrieves the self-illumination strength added to the lit color.
	Emissive() float32

	// AlbedoTexture retrieves the color texture, or nil.
	AlbedoTexture() *resource.Texture

	// MaterialTexture retrieves the material-parameter texture (roughness in r, metallic in g,
	// emissive in b), or nil.
	MaterialTexture() *resource.Texture

	// Textures returns the non-nil textures of the material.
	Textures() []*resource.Texture

	// DataMode encodes which textures are present: DataNone, DataAlbedo, DataMaterial or DataBoth.
	DataMode() int

	// ShadowMode reports whether the material casts shadows.
	ShadowMode() ShadowMode

	// Transparency reports how the material is composited.
	Transparency() Transparency

	// IsTransparent reports whether the material is drawn by the transparent pass instead of
	// the geometry pass.
	IsTransparent() bool

	// Shader returns the custom shader bound under slot, or nil when the renderer default applies.
	//
	// Parameters:
	//   - slot: one of SlotGeometry, SlotShadow, SlotTransparent
	//
	// Returns:
	//   - *resource.Shader: the custom shader, or nil
	Shader(slot string) *resource.Shader

	// SetShader binds a custom shader to slot. A nil shader removes the override.
	//
	// Parameters:
	//   - slot: the pass slot
	//   - shader: the custom shader
	SetShader(slot string, shader *resource.Shader)

	// SetBaseColor replaces the base color.
	SetBaseColor(color mgl32.Vec4)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// The defaults are an opaque white dielectric with roughness 1 that casts shadows.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		name:       "material",
		baseColor:  mgl32.Vec4{1, 1, 1, 1},
		metallic:   0.0,
		roughness:  1.0,
		shadowMode: ShadowFull,
		shaders:    make(map[string]*resource.Shader),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() mgl32.Vec4 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Emissive() float32 {
	return m.emissive
}

func (m *material) AlbedoTexture() *resource.Texture {
	return m.albedoTexture
}

func (m *material) MaterialTexture() *resource.Texture {
	return m.materialTexture
}

func (m *material) Textures() []*resource.Texture {
	var out []*resource.Texture
	if m.albedoTexture != nil {
		out = append(out, m.albedoTexture)
	}
	if m.materialTexture != nil {
		out = append(out, m.materialTexture)
	}
	return out
}

func (m *material) DataMode() int {
	mode := DataNone
	if m.albedoTexture != nil {
		mode |= DataAlbedo
	}
	if m.materialTexture != nil {
		mode |= DataMaterial
	}
	return mode
}

func (m *material) ShadowMode() ShadowMode {
	return m.shadowMode
}

func (m *material) Transparency() Transparency {
	return m.transparency
}

func (m *material) IsTransparent() bool {
	return m.transparency != Opaque
}

func (m *material) Shader(slot string) *resource.Shader {
	return m.shaders[slot]
}

func (m *material) SetShader(slot string, shader *resource.Shader) {
	if shader == nil {
		delete(m.shaders, slot)
		return
	}
	m.shaders[slot] = shader
}

func (m *material) SetBaseColor(color mgl32.Vec4) {
	m.baseColor = color
}
