package renderer

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
)

// GeometryPass rasterizes opaque entities and instance groups into the G-buffer: normal
// and emissive, albedo, metallic and roughness, and depth.
type GeometryPass struct{}

var _ Pass = &GeometryPass{}

// NewGeometryPass creates the deferred geometry stage.
func NewGeometryPass() *GeometryPass {
	return &GeometryPass{}
}

func (p *GeometryPass) pass() {}

func (p *GeometryPass) Name() string { return "geometry" }

func (p *GeometryPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	dev := data.Device()
	gbuffer := data.Framebuffer("gbuffer")
	gbuffer.Bind(dev)
	if data.BoolOr("gbuffer_cleared", false) {
		data.SetParam("gbuffer_cleared", gpu.BoolValue(false))
	} else {
		dev.Clear(gpu.ClearOptions{Color: true, Depth: true})
	}

	fv, ok := cameraView(ctx)
	if !ok {
		return
	}
	meshState(dev)
	for _, d := range visibleDrawables(ctx, func(m material.Material) bool { return !m.IsTransparent() }) {
		s := materialShader(data, d.material, material.SlotGeometry, "geometry")
		s.Use(dev)
		s.Set(dev, "view_proj", gpu.Mat4Value(fv.viewProj))
		setMaterialUniforms(dev, s, d.material)
		applyShaderInputs(dev, s, ctx)
		bindMaterialTextures(dev, d.material)
		d.draw(dev)
	}
}

// setMaterialUniforms uploads the scalar material inputs and the texture data mode.
func setMaterialUniforms(dev gpu.Device, s *resource.Shader, mat material.Material) {
	s.Set(dev, "base_color", gpu.Vec4Value(mat.BaseColor()))
	s.Set(dev, "metallic", gpu.FloatValue(mat.Metallic()))
	s.Set(dev, "roughness", gpu.FloatValue(mat.Roughness()))
	s.Set(dev, "emissive", gpu.FloatValue(mat.Emissive()))
	s.Set(dev, "data_mode", gpu.IntValue(mat.DataMode()))
}
