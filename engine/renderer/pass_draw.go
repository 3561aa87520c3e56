package renderer

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

// DrawPass tone maps lit with exposure, applies gamma and draws it to the window.
type DrawPass struct{}

var _ Pass = &DrawPass{}

// NewDrawPass creates the final present stage.
func NewDrawPass() *DrawPass {
	return &DrawPass{}
}

func (p *DrawPass) pass() {}

func (p *DrawPass) Name() string { return "draw" }

func (p *DrawPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	dev := data.Device()
	dev.BindFramebuffer(0)
	dev.SetViewport(data.Int("window_width"), data.Int("window_height"))
	fullscreenState(dev)

	shader := data.Shader("draw")
	shader.Use(dev)
	shader.Set(dev, "gamma", gpu.FloatValue(data.Float("gamma")))
	shader.Set(dev, "exposure", gpu.FloatValue(data.Float("exposure")))
	applyShaderInputs(dev, shader, ctx)
	dev.BindTexture(0, data.Framebuffer("lit").Color(0))
	dev.DrawQuad()
}
