package renderer

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

// FrustumCullingPass marks entities whose bounding sphere lies outside the camera frustum.
// The culled flag lasts one frame: every entity is reset before it is tested. Instance
// groups are never culled.
type FrustumCullingPass struct{}

var _ Pass = &FrustumCullingPass{}

// NewFrustumCullingPass creates the culling stage. It is gated by the frustum_culling param.
func NewFrustumCullingPass() *FrustumCullingPass {
	return &FrustumCullingPass{}
}

func (p *FrustumCullingPass) pass() {}

func (p *FrustumCullingPass) Name() string { return "frustum_culling" }

func (p *FrustumCullingPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	for _, e := range ctx.Entities() {
		e.SetCulled(false)
	}
	fv, ok := cameraView(ctx)
	if !ok || !data.Bool("frustum_culling") {
		return
	}

	frustum := common.ExtractFrustum(fv.viewProj)
	for _, e := range ctx.Entities() {
		radius := e.Mesh.BoundingRadius() * common.MaxComponent(e.Transform.GlobalScale())
		e.SetCulled(!frustum.IntersectsSphere(e.Transform.GlobalPosition(), radius))
	}
}
