package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/instancing"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
	"github.com/go-gl/mathgl/mgl32"
)

// PointLightInstanceLayout is the per-instance record of the light volume mesh: the
// sphere transform, the light color premultiplied by intensity and the attenuation
// coefficients with the cutoff radius in w.
var PointLightInstanceLayout = gpu.VertexLayout{
	{Name: "position", Components: 3},
	{Name: "scale", Components: 3},
	{Name: "rotation", Components: 4},
	{Name: "color", Components: 4},
	{Name: "attenuation", Components: 4},
}

// volumeScale enlarges the tessellated sphere so its faces stay outside the cutoff radius.
const volumeScale float32 = 1.1

// LightingPass resolves the G-buffer into lit. A full-screen pass applies the directional
// light with cascaded shadows, SSAO and ambient; point lights are then accumulated as
// additive sphere volumes drawn with front faces culled and no depth test, so a light
// still contributes when the camera is inside its volume.
type LightingPass struct {
	volumes *instancing.InstanceGroup
	record  []float32
}

var _ Pass = &LightingPass{}

// NewLightingPass creates the lighting stage.
func NewLightingPass() *LightingPass {
	return &LightingPass{}
}

func (p *LightingPass) pass() {}

func (p *LightingPass) Name() string { return "lighting" }

func (p *LightingPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	dev := data.Device()
	lit := data.Framebuffer("lit")
	lit.Bind(dev)
	fullscreenState(dev)
	dev.Clear(gpu.ClearOptions{Color: true})

	fv, ok := cameraView(ctx)
	if !ok {
		return
	}
	p.directional(ctx, data, fv)
	p.pointLights(ctx, data, fv)
}

func (p *LightingPass) directional(ctx *render_context.RenderContext, data *render_data.RenderData, fv frameView) {
	dev := data.Device()
	sky := directionalLight(ctx)
	gbuffer := data.Framebuffer("gbuffer")

	shader := data.Shader("lighting")
	shader.Use(dev)
	shader.Set(dev, "inv_view_proj", gpu.Mat4Value(fv.viewProj.Inv()))
	shader.Set(dev, "view", gpu.Mat4Value(fv.view))
	shader.Set(dev, "light_direction", gpu.Vec4Value(sky.direction.Vec4(0)))
	shader.Set(dev, "light_color", gpu.Vec4Value(sky.color.Vec4(1)))
	shader.Set(dev, "camera_position", gpu.Vec4Value(fv.eye.Vec4(1)))
	shader.Set(dev, "ambient", gpu.FloatValue(sky.ambient))
	shader.Set(dev, "shadow_bias", gpu.FloatValue(data.Float("shadow_bias")))

	cascades := 0
	if data.Bool("render_shadow") && sky.enabled {
		cascades = data.IntOr("shadow_cascades", 0)
	}
	var far mgl32.Vec4
	for i := range cascades {
		shader.Set(dev, fmt.Sprintf("light_space_matrix[%d]", i), data.Param(fmt.Sprintf("light_space_matrix_%d", i)))
		far[i] = data.Float(fmt.Sprintf("cascade_far_%d", i))
	}
	shader.Set(dev, "cascade_far", gpu.Vec4Value(far))
	shader.Set(dev, "cascade_count", gpu.IntValue(cascades))
	shader.Set(dev, "shadows_enabled", gpu.IntValue(min(cascades, 1)))
	applyShaderInputs(dev, shader, ctx)

	dev.BindTexture(0, gbuffer.Color(0))
	dev.BindTexture(1, gbuffer.Color(1))
	dev.BindTexture(2, gbuffer.Color(2))
	dev.BindTexture(3, gbuffer.Depth())
	dev.BindTexture(4, data.Framebuffer("ssao_blur").Color(0))
	for i := range MaxCascades {
		var h gpu.Handle
		if tag := fmt.Sprintf("shadow_%d", i); data.HasFramebuffer(tag) {
			h = data.Framebuffer(tag).Depth()
		}
		dev.BindTexture(5+i, h)
	}
	dev.DrawQuad()
}

func (p *LightingPass) pointLights(ctx *render_context.RenderContext, data *render_data.RenderData, fv frameView) {
	dev := data.Device()
	if p.volumes == nil {
		p.volumes = instancing.NewInstanceGroup(data.Mesh("sphere"), material.NewMaterial(material.WithName("point_light")),
			instancing.WithLayout(PointLightInstanceLayout))
	}
	p.volumes.ClearInstances()
	far := fv.camera.Far()
	for id, pl := range ctx.PointLights() {
		if !pl.Light.Enabled() {
			continue
		}
		radius := pl.Light.Radius(far)
		if radius <= 0 {
			continue
		}
		pos := pl.Transform.GlobalPosition()
		color := pl.Light.Color().Mul(pl.Light.Intensity())
		c, l, q := pl.Light.Attenuation()
		s := radius * volumeScale
		p.record = append(p.record[:0],
			pos[0], pos[1], pos[2],
			s, s, s,
			0, 0, 0, 1,
			color[0], color[1], color[2], 1,
			c, l, q, radius,
		)
		p.volumes.AddRecord(p.record, id)
	}
	if p.volumes.Count() == 0 {
		return
	}
	p.volumes.ResetInstanceBuffer(dev)

	gbuffer := data.Framebuffer("gbuffer")
	lit := data.Framebuffer("lit")
	dev.SetBlend(gpu.BlendAdditive)
	dev.SetCullFace(gpu.CullFront)

	shader := data.Shader("point_light")
	shader.Use(dev)
	shader.Set(dev, "view_proj", gpu.Mat4Value(fv.viewProj))
	shader.Set(dev, "inv_view_proj", gpu.Mat4Value(fv.viewProj.Inv()))
	shader.Set(dev, "camera_position", gpu.Vec4Value(fv.eye.Vec4(1)))
	shader.Set(dev, "screen_size", gpu.Vec2Value(mgl32.Vec2{float32(lit.Width()), float32(lit.Height())}))
	dev.BindTexture(0, gbuffer.Color(0))
	dev.BindTexture(1, gbuffer.Color(1))
	dev.BindTexture(2, gbuffer.Color(2))
	dev.BindTexture(3, gbuffer.Depth())
	p.volumes.Draw(dev)

	dev.SetBlend(gpu.BlendOff)
	dev.SetCullFace(gpu.CullNone)
}

// Release frees the light volume instance buffer.
func (p *LightingPass) Release() {
	if p.volumes != nil {
		p.volumes.Release()
	}
}
