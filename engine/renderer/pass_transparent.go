package renderer

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

// TransparentPass forward-shades transparent materials over lit, depth-tested against the
// G-buffer depth that lit shares.
//
// Binary materials are alpha tested and write depth; they are drawn first. Unsorted
// materials blend in submission order. Sorted materials blend back to front, entities by
// distance and instance groups per instance. OrderIndependent is drawn as Unsorted.
type TransparentPass struct {
	warnedOIT bool
}

var _ Pass = &TransparentPass{}

// NewTransparentPass creates the transparency stage.
func NewTransparentPass() *TransparentPass {
	return &TransparentPass{}
}

func (p *TransparentPass) pass() {}

func (p *TransparentPass) Name() string { return "transparent" }

func (p *TransparentPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	fv, ok := cameraView(ctx)
	if !ok {
		return
	}
	items := visibleDrawables(ctx, material.Material.IsTransparent)
	if len(items) == 0 {
		return
	}

	var binary, blended []drawable
	for _, d := range items {
		switch d.material.Transparency() {
		case material.Binary:
			binary = append(binary, d)
		case material.OrderIndependent:
			if !p.warnedOIT {
				common.Logger().Warn("renderer: order-independent transparency is drawn unsorted", "material", d.material.Name())
				p.warnedOIT = true
			}
			blended = append(blended, d)
		default:
			blended = append(blended, d)
		}
	}
	blended = sortBlended(blended, fv)

	dev := data.Device()
	for _, d := range blended {
		if d.group != nil && d.material.Transparency() == material.Sorted {
			d.group.SortByDistance(fv.eye)
			if d.group.Changed() {
				d.group.ResetInstanceBuffer(dev)
			}
		}
	}
	data.Framebuffer("lit").Bind(dev)
	sky := directionalLight(ctx)
	dev.SetDepthTest(true)
	dev.SetCullFace(gpu.CullNone)

	dev.SetDepthWrite(true)
	dev.SetBlend(gpu.BlendOff)
	for _, d := range binary {
		p.draw(ctx, data, d, fv, sky, true)
	}

	dev.SetDepthWrite(false)
	dev.SetBlend(gpu.BlendAlpha)
	for _, d := range blended {
		p.draw(ctx, data, d, fv, sky, false)
	}

	dev.SetBlend(gpu.BlendOff)
	dev.SetDepthWrite(true)
	dev.SetCullFace(gpu.CullBack)
}

func (p *TransparentPass) draw(ctx *render_context.RenderContext, data *render_data.RenderData, d drawable, fv frameView, sky sun, binary bool) {
	dev := data.Device()
	s := materialShader(data, d.material, material.SlotTransparent, "transparent")
	s.Use(dev)
	s.Set(dev, "view_proj", gpu.Mat4Value(fv.viewProj))
	s.Set(dev, "light_direction", gpu.Vec4Value(sky.direction.Vec4(0)))
	s.Set(dev, "light_color", gpu.Vec4Value(sky.color.Vec4(1)))
	s.Set(dev, "camera_position", gpu.Vec4Value(fv.eye.Vec4(1)))
	s.Set(dev, "ambient", gpu.FloatValue(sky.ambient))
	s.Set(dev, "alpha_cutoff", gpu.FloatValue(data.Float("alpha_cutoff")))
	s.Set(dev, "binary", gpu.BoolValue(binary))
	setMaterialUniforms(dev, s, d.material)
	applyShaderInputs(dev, s, ctx)
	bindMaterialTextures(dev, d.material)
	d.draw(dev)
}

// sortBlended orders Sorted entities back to front and keeps everything else in place
// ahead of them. Instance groups sort their own records instead.
func sortBlended(items []drawable, fv frameView) []drawable {
	var rest, sorted []drawable
	for _, d := range items {
		if d.material.Transparency() == material.Sorted && d.group == nil {
			sorted = append(sorted, d)
		} else {
			rest = append(rest, d)
		}
	}
	slices.SortStableFunc(sorted, func(a, b drawable) int {
		return cmp.Compare(b.position.Sub(fv.eye).LenSqr(), a.position.Sub(fv.eye).LenSqr())
	})
	return append(rest, sorted...)
}
