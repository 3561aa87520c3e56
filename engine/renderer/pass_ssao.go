package renderer

import (
	"fmt"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxSSAOKernelSize is the length of the sample array in the SSAO shader.
	MaxSSAOKernelSize = 64

	// SSAONoiseSize is the edge length of the tiled rotation noise texture.
	SSAONoiseSize = 4

	ssaoSeed = 0x55a0
)

// SSAOPass estimates ambient occlusion from the G-buffer into ssao and blurs it into
// ssao_blur. When disabled, ssao_blur is cleared to white so lighting sees no occlusion.
//
// The hemisphere kernel and the rotation noise are generated once at construction.
type SSAOPass struct {
	kernel []mgl32.Vec3
	noise  []byte
}

var _ Pass = &SSAOPass{}

// NewSSAOPass creates the SSAO stage with a deterministic kernel. It is gated by the
// ssao_enabled param and samples ssao_kernel_size kernel points.
func NewSSAOPass() *SSAOPass {
	rng := rand.New(rand.NewPCG(ssaoSeed, ssaoSeed))
	return &SSAOPass{
		kernel: SSAOKernel(rng, MaxSSAOKernelSize),
		noise:  ssaoNoise(rng),
	}
}

func (p *SSAOPass) pass() {}

func (p *SSAOPass) Name() string { return "ssao" }

// Kernel returns the hemisphere samples.
func (p *SSAOPass) Kernel() []mgl32.Vec3 { return p.kernel }

func (p *SSAOPass) Render(ctx *render_context.RenderContext, data *render_data.RenderData) {
	dev := data.Device()
	fullscreenState(dev)

	blur := data.Framebuffer("ssao_blur")
	fv, ok := cameraView(ctx)
	if !ok || !data.Bool("ssao_enabled") {
		blur.Bind(dev)
		dev.Clear(gpu.ClearOptions{Color: true, ClearColor: [4]float32{1, 1, 1, 1}})
		return
	}

	if !data.HasTexture("ssao_noise") {
		data.SetTexture("ssao_noise", resource.NewTexture(gpu.TextureDescriptor{
			Label:  "ssao_noise",
			Width:  SSAONoiseSize,
			Height: SSAONoiseSize,
			Format: gpu.FormatRGBA8,
			Pixels: p.noise,
			Filter: gpu.FilterNearest,
			Wrap:   gpu.WrapRepeat,
		}))
	}

	gbuffer := data.Framebuffer("gbuffer")
	target := data.Framebuffer("ssao")
	target.Bind(dev)

	shader := data.Shader("ssao")
	shader.Use(dev)
	shader.Set(dev, "view", gpu.Mat4Value(fv.view))
	shader.Set(dev, "projection", gpu.Mat4Value(fv.projection))
	shader.Set(dev, "inv_view_proj", gpu.Mat4Value(fv.viewProj.Inv()))
	size := min(max(data.Int("ssao_kernel_size"), 0), len(p.kernel))
	for i, s := range p.kernel[:size] {
		shader.Set(dev, fmt.Sprintf("samples[%d]", i), gpu.Vec4Value(s.Vec4(0)))
	}
	shader.Set(dev, "kernel_size", gpu.IntValue(size))
	shader.Set(dev, "radius", gpu.FloatValue(data.Float("ssao_radius")))
	shader.Set(dev, "bias", gpu.FloatValue(data.Float("ssao_bias")))
	shader.Set(dev, "noise_scale", gpu.Vec2Value(mgl32.Vec2{
		float32(target.Width()) / SSAONoiseSize,
		float32(target.Height()) / SSAONoiseSize,
	}))
	dev.BindTexture(0, gbuffer.Color(0))
	dev.BindTexture(1, gbuffer.Depth())
	data.Texture("ssao_noise").Bind(dev, 2)
	dev.DrawQuad()

	blur.Bind(dev)
	blurShader := data.Shader("ssao_blur")
	blurShader.Use(dev)
	dev.BindTexture(0, target.Color(0))
	dev.DrawQuad()
}

// SSAOKernel generates n hemisphere samples around +z, denser near the origin: sample i
// is scaled by lerp(0.1, 1, (i/n)²).
//
// Parameters:
//   - rng: the random source
//   - n: the number of samples
//
// Returns:
//   - []mgl32.Vec3: samples with z >= 0 and length <= 1
func SSAOKernel(rng *rand.Rand, n int) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, n)
	for i := range out {
		s := mgl32.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32(),
		}
		if s.Len() < 1e-6 {
			s = mgl32.Vec3{0, 0, 1}
		}
		s = s.Normalize().Mul(rng.Float32())
		scale := float32(i) / float32(n)
		out[i] = s.Mul(0.1 + 0.9*scale*scale)
	}
	return out
}

// ssaoNoise returns RGBA8 pixels of random rotation vectors in the xy plane.
func ssaoNoise(rng *rand.Rand) []byte {
	px := make([]byte, 0, SSAONoiseSize*SSAONoiseSize*4)
	for range SSAONoiseSize * SSAONoiseSize {
		px = append(px, byte(rng.IntN(256)), byte(rng.IntN(256)), 128, 255)
	}
	return px
}
