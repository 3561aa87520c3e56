package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

// MaxCascades is the number of shadow_i framebuffers the lighting shader samples.
const MaxCascades = 4

// ShadowPass renders the directional light's cascaded shadow maps. Each cascade is fitted
// to a slice of the camera frustum, its light-space matrix is published as
// light_space_matrix_i and its far distance as cascade_far_i, and shadow casters are drawn
// depth-only into shadow_i with front faces culled.
//
// Shadows are redrawn once every shadow_draw_frame frames; shadow_frame counts frames.
type ShadowPass struct{}

var _ Pass = &ShadowPass{}

// NewShadowPass creates the shadow stage. It is gated by the render_shadow param.
func NewShadowPass() *ShadowPass {
	return &ShadowPass{}
}

func (p *ShadowPass) pass() {}

func (p *ShadowPass) Name() string { return "shadow" }

func (p *ShadowPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	fv, ok := cameraView(ctx)
	sky := directionalLight(ctx)
	if !ok || !sky.enabled || !data.Bool("render_shadow") {
		data.SetParam("shadow_cascades", gpu.IntValue(0))
		return
	}

	frame := data.IntOr("shadow_frame", 0)
	data.SetParam("shadow_frame", gpu.IntValue(frame+1))
	if frame%max(data.Int("shadow_draw_frame"), 1) != 0 {
		return
	}

	count := cascadeCount(data)
	divisors := light.DefaultCascadeDivisors[len(light.DefaultCascadeDivisors)-count:]
	c := fv.camera
	cascades := light.ComputeCascades(fv.view, c.Fov(), c.Aspect(), c.Near(), c.Far(), sky.direction, sky.up, divisors)

	dev := data.Device()
	dev.SetDepthTest(true)
	dev.SetDepthWrite(true)
	dev.SetCullFace(gpu.CullFront)
	dev.SetBlend(gpu.BlendOff)

	for i, cascade := range cascades {
		data.SetParam(fmt.Sprintf("light_space_matrix_%d", i), gpu.Mat4Value(cascade.ViewProjection))
		data.SetParam(fmt.Sprintf("cascade_far_%d", i), gpu.FloatValue(cascade.Far))

		fb := data.Framebuffer(fmt.Sprintf("shadow_%d", i))
		fb.Bind(dev)
		dev.Clear(gpu.ClearOptions{Depth: true})
		drawCasters(ctx, data, cascade)
	}
	data.SetParam("shadow_cascades", gpu.IntValue(len(cascades)))
	dev.SetCullFace(gpu.CullBack)
}

// cascadeCount clamps cascade_count to the shadow framebuffers that exist.
func cascadeCount(data *render_data.RenderData) int {
	n := min(max(data.Int("cascade_count"), 1), MaxCascades)
	for i := range n {
		if !data.HasFramebuffer(fmt.Sprintf("shadow_%d", i)) {
			return max(i, 1)
		}
	}
	return n
}

// drawCasters draws every shadow-casting entity and instance group with the light-space
// matrix of one cascade.
func drawCasters(ctx *render_context.RenderContext, data *render_data.RenderData, cascade light.Cascade) {
	dev := data.Device()
	lightSpace := gpu.Mat4Value(cascade.ViewProjection)
	use := func(mat material.Material) {
		s := materialShader(data, mat, material.SlotShadow, "shadow")
		s.Use(dev)
		s.Set(dev, "light_space", lightSpace)
	}
	for _, e := range ctx.Entities() {
		if !e.CastsShadow() {
			continue
		}
		use(e.Material)
		e.Draw(dev)
	}
	for _, g := range ctx.InstanceGroups() {
		if g.Count() == 0 || g.Material().ShadowMode() != material.ShadowFull {
			continue
		}
		use(g.Material())
		g.Draw(dev)
	}
}
