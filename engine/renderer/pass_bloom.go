package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// BloomPass blurs bright areas of lit through a mip chain and mixes the result back.
//
// lit is downsampled into bloom_0 … bloom_{n-1}, with a Karis average on the first step.
// The chain is then upsampled with a tent filter, each level added onto the next larger
// one, and bloom_0 is blended over lit as lit*(1-s) + bloom*s through the blend constant,
// where s is bloom_strength.
type BloomPass struct{}

var _ Pass = &BloomPass{}

// NewBloomPass creates the bloom stage. It is gated by the bloom_enabled param and uses
// bloom_mip_count levels.
func NewBloomPass() *BloomPass {
	return &BloomPass{}
}

func (p *BloomPass) pass() {}

func (p *BloomPass) Name() string { return "bloom" }

func (p *BloomPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	if !data.Bool("bloom_enabled") {
		return
	}
	mips := bloomMips(data)
	if len(mips) == 0 {
		return
	}
	dev := data.Device()
	fullscreenState(dev)

	down := data.Shader("bloom_down")
	src := data.Framebuffer("lit")
	for i, dst := range mips {
		dst.Bind(dev)
		down.Use(dev)
		down.Set(dev, "src_resolution", gpu.Vec2Value(mgl32.Vec2{float32(src.Width()), float32(src.Height())}))
		down.Set(dev, "karis", gpu.BoolValue(i == 0))
		dev.BindTexture(0, src.Color(0))
		dev.DrawQuad()
		src = dst
	}

	up := data.Shader("bloom_up")
	radius := gpu.FloatValue(data.Float("bloom_filter_radius"))
	dev.SetBlend(gpu.BlendAdditive)
	for i := len(mips) - 1; i > 0; i-- {
		mips[i-1].Bind(dev)
		up.Use(dev)
		up.Set(dev, "filter_radius", radius)
		dev.BindTexture(0, mips[i].Color(0))
		dev.DrawQuad()
	}

	data.Framebuffer("lit").Bind(dev)
	dev.SetBlend(gpu.BlendWeighted(data.Float("bloom_strength")))
	up.Use(dev)
	up.Set(dev, "filter_radius", radius)
	dev.BindTexture(0, mips[0].Color(0))
	dev.DrawQuad()
	dev.SetBlend(gpu.BlendOff)
}

// bloomMips returns the first bloom_mip_count bloom_i framebuffers that exist.
func bloomMips(data *render_data.RenderData) []*resource.Framebuffer {
	n := max(data.Int("bloom_mip_count"), 0)
	mips := make([]*resource.Framebuffer, 0, n)
	for i := range n {
		tag := fmt.Sprintf("bloom_%d", i)
		if !data.HasFramebuffer(tag) {
			break
		}
		mips = append(mips, data.Framebuffer(tag))
	}
	return mips
}
