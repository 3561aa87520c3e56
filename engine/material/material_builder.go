package material

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the name to assign to the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the albedo RGBA color. The alpha channel drives transparency.
//
// Parameters:
//   - color: the base color as RGBA values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithMetallic sets the metallic factor, clamped to [0, 1].
//
// Parameters:
//   - metallic: the metallic factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = common.Clamp(metallic, 0, 1)
	}
}

// WithRoughness sets the roughness factor, clamped to [0, 1].
//
// Parameters:
//   - roughness: the roughness factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = common.Clamp(roughness, 0, 1)
	}
}

// WithEmissive sets the self-illumination strength. Negative values are treated as zero.
func WithEmissive(emissive float32) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = max(emissive, 0)
	}
}

// WithAlbedoTexture sets the color texture.
//
// Parameters:
//   - texture: the albedo texture, sampled on unit 0
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo texture option to a material
func WithAlbedoTexture(texture *resource.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.albedoTexture = texture
	}
}

// WithMaterialTexture sets the material-parameter texture.
//
// Parameters:
//   - texture: the roughness/metallic/emissive texture, sampled on unit 1
//
// Returns:
//   - MaterialBuilderOption: a function that applies the material texture option to a material
func WithMaterialTexture(texture *resource.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.materialTexture = texture
	}
}

// WithShadowMode sets whether the material casts shadows. Default is ShadowFull.
func WithShadowMode(mode ShadowMode) MaterialBuilderOption {
	return func(m *material) {
		m.shadowMode = mode
	}
}

// WithTransparency sets the compositing mode. Default is Opaque.
func WithTransparency(t Transparency) MaterialBuilderOption {
	return func(m *material) {
		m.transparency = t
	}
}

// WithShader binds a custom shader to a pass slot.
//
// Parameters:
//   - slot: SlotGeometry, SlotShadow or SlotTransparent
//   - shader: the program used instead of the renderer default
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shader option to a material
func WithShader(slot string, shader *resource.Shader) MaterialBuilderOption {
	return func(m *material) {
		if shader != nil {
			m.shaders[slot] = shader
		}
	}
}
