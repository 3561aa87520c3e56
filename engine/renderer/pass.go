package renderer

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/instancing"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Pass is one stage of the frame pipeline. Passes share state only through the render
// context and the render data; the set of pass types is closed to this package.
type Pass interface {
	// Name returns the stage name used in logs.
	Name() string

	// Render runs the stage for the current frame.
	//
	// Parameters:
	//   - ctx: the submitted scene
	//   - data: the shared framebuffers, shaders, meshes and parameters
	Render(ctx *render_context.RenderContext, data *render_data.RenderData)

	pass()
}

// DefaultPasses returns a fresh copy of the canonical deferred pipeline in execution order.
//
// Returns:
//   - []Pass: culling, skybox, shadow, geometry, SSAO, lighting, transparency, bloom and draw
func DefaultPasses() []Pass {
	return []Pass{
		NewFrustumCullingPass(),
		NewSkyboxPass(),
		NewShadowPass(),
		NewGeometryPass(),
		NewSSAOPass(),
		NewLightingPass(),
		NewTransparentPass(),
		NewBloomPass(),
		NewDrawPass(),
	}
}

// frameView is the camera state the camera-relative passes share for one frame.
type frameView struct {
	camera     camera.Camera
	view       mgl32.Mat4
	projection mgl32.Mat4
	viewProj   mgl32.Mat4
	eye        mgl32.Vec3
}

// cameraView returns the submitted camera's matrices, or false when no camera is submitted.
func cameraView(ctx *render_context.RenderContext) (frameView, bool) {
	c := ctx.Camera()
	if c == nil {
		return frameView{}, false
	}
	f := frameView{
		camera:     c.Camera,
		view:       c.View(),
		projection: c.Camera.Projection(),
		eye:        c.Transform.GlobalPosition(),
	}
	f.viewProj = f.projection.Mul4(f.view)
	return f, true
}

// sun is the directional light as the shaders consume it.
type sun struct {
	direction mgl32.Vec3
	up        mgl32.Vec3
	color     mgl32.Vec3
	ambient   float32
	enabled   bool
}

// defaultAmbient lights the scene when no directional light is submitted.
const defaultAmbient float32 = 0.05

func directionalLight(ctx *render_context.RenderContext) sun {
	dl := ctx.DirectionalLight()
	if dl == nil || !dl.Light.Enabled() {
		return sun{direction: mgl32.Vec3{0, -1, 0}, up: mgl32.Vec3{0, 0, -1}, ambient: defaultAmbient}
	}
	return sun{
		direction: dl.Transform.Front(),
		up:        dl.Transform.Up(),
		color:     dl.Light.Color().Mul(dl.Light.Intensity()),
		ambient:   dl.Light.Ambient(),
		enabled:   true,
	}
}

// drawable is an entity or instance group as seen by the mesh passes.
type drawable struct {
	material material.Material
	position mgl32.Vec3
	group    *instancing.InstanceGroup
	draw     func(dev gpu.Device)
}

// visibleDrawables collects camera-visible entities and non-empty instance groups whose
// material passes keep.
func visibleDrawables(ctx *render_context.RenderContext, keep func(material.Material) bool) []drawable {
	var out []drawable
	for _, e := range ctx.Entities() {
		if !e.Visible() || !keep(e.Material) {
			continue
		}
		out = append(out, drawable{material: e.Material, position: e.Transform.GlobalPosition(), draw: e.Draw})
	}
	for _, g := range ctx.InstanceGroups() {
		if g.Count() == 0 || !keep(g.Material()) {
			continue
		}
		out = append(out, drawable{material: g.Material(), group: g, draw: g.Draw})
	}
	return out
}

// materialShader returns the material's shader for slot, or the data's fallback tag.
func materialShader(data *render_data.RenderData, mat material.Material, slot, fallback string) *resource.Shader {
	if s := mat.Shader(slot); s != nil {
		return s
	}
	return data.Shader(fallback)
}

// applyShaderInputs uploads every context-wide shader input. Names the shader does not
// declare are ignored by the device.
func applyShaderInputs(dev gpu.Device, s *resource.Shader, ctx *render_context.RenderContext) {
	for name, v := range ctx.ShaderInputs() {
		s.Set(dev, name, v)
	}
}

// bindMaterialTextures binds the albedo texture to unit 0 and the material texture to unit 1.
func bindMaterialTextures(dev gpu.Device, mat material.Material) {
	if t := mat.AlbedoTexture(); t != nil {
		t.Bind(dev, 0)
	}
	if t := mat.MaterialTexture(); t != nil {
		t.Bind(dev, 1)
	}
}

// fullscreenState disables depth testing, culling and blending for screen-space passes.
func fullscreenState(dev gpu.Device) {
	dev.SetDepthTest(false)
	dev.SetCullFace(gpu.CullNone)
	dev.SetBlend(gpu.BlendOff)
}

// meshState restores the default state for opaque mesh drawing.
func meshState(dev gpu.Device) {
	dev.SetDepthTest(true)
	dev.SetDepthWrite(true)
	dev.SetCullFace(gpu.CullBack)
	dev.SetBlend(gpu.BlendOff)
}
