package renderer

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

// SkyboxPass clears the G-buffer and fills it with a procedural sky gradient. It sets
// gbuffer_cleared so the geometry pass does not clear the sky away.
type SkyboxPass struct{}

var _ Pass = &SkyboxPass{}

// NewSkyboxPass creates the sky stage. It is gated by the render_skybox param.
func NewSkyboxPass() *SkyboxPass {
	return &SkyboxPass{}
}

func (p *SkyboxPass) pass() {}

func (p *SkyboxPass) Name() string { return "skybox" }

func (p *SkyboxPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	fv, ok := cameraView(ctx)
	if !ok || !data.Bool("render_skybox") {
		return
	}
	dev := data.Device()
	sky := directionalLight(ctx)

	gbuffer := data.Framebuffer("gbuffer")
	gbuffer.Bind(dev)
	dev.Clear(gpu.ClearOptions{Color: true, Depth: true})
	data.SetParam("gbuffer_cleared", gpu.BoolValue(true))

	fullscreenState(dev)
	shader := data.Shader("skybox")
	shader.Use(dev)
	shader.Set(dev, "inv_view_rotation_proj", gpu.Mat4Value(fv.projection.Mul4(common.RotationOnly(fv.view)).Inv()))
	shader.Set(dev, "light_direction", gpu.Vec4Value(sky.direction.Vec4(0)))
	shader.Set(dev, "light_color", gpu.Vec4Value(sky.color.Vec4(1)))
	dev.DrawQuad()
	dev.SetDepthTest(true)
}
