package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	if m.BaseColor() != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("BaseColor() = %v, want white", m.BaseColor())
	}
	if m.Roughness() != 1 || m.Metallic() != 0 {
		t.Errorf("Roughness(), Metallic() = %v, %v, want 1, 0", m.Roughness(), m.Metallic())
	}
	if m.ShadowMode() != ShadowFull {
		t.Errorf("ShadowMode() = %v, want %v", m.ShadowMode(), ShadowFull)
	}
	if m.IsTransparent() {
		t.Error("IsTransparent() = true, want false")
	}
	if m.Shader(SlotGeometry) != nil {
		t.Error("Shader(geometry) should be nil by default")
	}
}

func TestDataMode(t *testing.T) {
	albedo := resource.NewTexture(gpu.TextureDescriptor{Label: "albedo"})
	params := resource.NewTexture(gpu.TextureDescriptor{Label: "params"})

	tests := []struct {
		name     string
		options  []MaterialBuilderOption
		want     int
		textures int
	}{
		{"none", nil, DataNone, 0},
		{"albedo", []MaterialBuilderOption{WithAlbedoTexture(albedo)}, DataAlbedo, 1},
		{"material", []MaterialBuilderOption{WithMaterialTexture(params)}, DataMaterial, 1},
		{"both", []MaterialBuilderOption{WithAlbedoTexture(albedo), WithMaterialTexture(params)}, DataBoth, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial(tt.options...)
			if got := m.DataMode(); got != tt.want {
				t.Errorf("DataMode() = %v, want %v", got, tt.want)
			}
			if got := len(m.Textures()); got != tt.textures {
				t.Errorf("len(Textures()) = %v, want %v", got, tt.textures)
			}
		})
	}
}

func TestFactorsAreClamped(t *testing.T) {
	m := NewMaterial(WithMetallic(2), WithRoughness(-1), WithEmissive(-3))
	if m.Metallic() != 1 {
		t.Errorf("Metallic() = %v, want 1", m.Metallic())
	}
	if m.Roughness() != 0 {
		t.Errorf("Roughness() = %v, want 0", m.Roughness())
	}
	if m.Emissive() != 0 {
		t.Errorf("Emissive() = %v, want 0", m.Emissive())
	}
}

func TestShaderSlots(t *testing.T) {
	custom := resource.NewShader(gpu.ShaderDescriptor{Label: "custom"})
	m := NewMaterial(WithShader(SlotShadow, custom))
	if m.Shader(SlotShadow) != custom {
		t.Error("Shader(shadow) should return the custom shader")
	}
	if m.Shader(SlotGeometry) != nil {
		t.Error("Shader(geometry) should stay unset")
	}

	m.SetShader(SlotGeometry, custom)
	if m.Shader(SlotGeometry) != custom {
		t.Error("SetShader should bind the geometry slot")
	}
	m.SetShader(SlotShadow, nil)
	if m.Shader(SlotShadow) != nil {
		t.Error("SetShader(nil) should remove the override")
	}
}

func TestTransparency(t *testing.T) {
	for _, mode := range []Transparency{Binary, Unsorted, Sorted, OrderIndependent} {
		m := NewMaterial(WithTransparency(mode))
		if !m.IsTransparent() {
			t.Errorf("%v: IsTransparent() = false, want true", mode)
		}
	}
	if got := OrderIndependent.String(); got != "order_independent" {
		t.Errorf("String() = %v, want order_independent", got)
	}
}
