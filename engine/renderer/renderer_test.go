package renderer

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/wgsl"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
	"github.com/cogentcore/webgpu/wgpu"
)

type testSurface struct{ w, h int }

func (s testSurface) Width() int                                 { return s.w }
func (s testSurface) Height() int                                { return s.h }
func (s testSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

// recordingPass appends its name to log on every Render.
type recordingPass struct {
	name string
	log  *[]string
}

func (p *recordingPass) pass()        {}
func (p *recordingPass) Name() string { return p.name }
func (p *recordingPass) Render(*render_context.RenderContext, *render_data.RenderData) {
	*p.log = append(*p.log, p.name)
}

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *gputest.Device) {
	t.Helper()
	dev := gputest.NewDevice()
	ctx := render_context.NewRenderContext(render_context.WithIDSource(render_context.NewIDSource(1)))
	r, err := NewRenderer(append([]RendererBuilderOption{WithDevice(dev), WithContext(ctx)}, options...)...)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r.(*renderer), dev
}

func initialize(t *testing.T, r Renderer) {
	t.Helper()
	if err := r.Initialize(testSurface{800, 600}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
}

// submitScene adds a camera, a sun, one point light, an opaque cube and a blended sphere.
func submitScene(ctx *render_context.RenderContext) {
	ctx.SubmitCamera(camera.NewCamera(camera.WithFar(100)), transform.NewTransform(transform.WithPosition(0, 2, 10)))
	ctx.SubmitDirectionalLight(light.NewDirectionalLight(), transform.NewTransform())
	ctx.SubmitPointLight(light.NewPointLight(), transform.NewTransform(transform.WithPosition(1, 1, 0)))
	ctx.Submit(mesh.Cube(), material.NewMaterial(), transform.NewTransform())
	ctx.Submit(mesh.Sphere(8, 8), material.NewMaterial(material.WithTransparency(material.Unsorted)),
		transform.NewTransform(transform.WithPosition(2, 0, 0)))
}

// framebufferTags maps framebuffer handles back to their tags, with 0 as "window".
func framebufferTags(data *render_data.RenderData) map[gpu.Handle]string {
	out := map[gpu.Handle]string{0: "window"}
	for _, tag := range data.Framebuffers() {
		out[data.Framebuffer(tag).Handle().Framebuffer] = tag
	}
	return out
}

// bindSequence returns the tags of every framebuffer bind, collapsing repeats.
func bindSequence(dev *gputest.Device, data *render_data.RenderData) []string {
	tags := framebufferTags(data)
	var out []string
	for _, c := range dev.CallsTo("BindFramebuffer") {
		tag := tags[c.Handle]
		if len(out) == 0 || out[len(out)-1] != tag {
			out = append(out, tag)
		}
	}
	return out
}

func TestRenderRunsPassesInOrder(t *testing.T) {
	var log []string
	passes := []Pass{
		&recordingPass{name: "A", log: &log},
		&recordingPass{name: "B", log: &log},
		&recordingPass{name: "C", log: &log},
	}
	r, dev := newTestRenderer(t, WithPasses(passes...))
	initialize(t, r)

	r.Render()
	if want := []string{"A", "B", "C"}; !slices.Equal(log, want) {
		t.Errorf("pass log = %v, want %v", log, want)
	}
	if got := dev.Count("Present"); got != 1 {
		t.Errorf("Present calls = %v, want 1", got)
	}
	if got := r.Frame(); got != 1 {
		t.Errorf("Frame() = %v, want 1", got)
	}

	r.Render()
	if len(log) != 6 {
		t.Errorf("pass log after two frames = %v, want 6 entries", log)
	}
}

func TestRenderBeforeInitializePanics(t *testing.T) {
	r, _ := newTestRenderer(t, WithPasses())
	defer func() {
		if recover() == nil {
			t.Error("Render() before Initialize did not panic")
		}
	}()
	r.Render()
}

func TestLoadIsIdempotent(t *testing.T) {
	r, dev := newTestRenderer(t, WithPasses())
	ctx := r.Context()

	cube := mesh.Cube()
	crate := mesh.NewMesh(cube.Vertices(), cube.Indices(), mesh.WithName("crate"))
	albedo := resource.NewTexture(gpu.TextureDescriptor{
		Label: "crate_albedo", Width: 1, Height: 1, Format: gpu.FormatRGBA8, Pixels: []byte{255, 0, 0, 255},
	})
	entityTransform := transform.NewTransform()
	ctx.Submit(crate, material.NewMaterial(material.WithAlbedoTexture(albedo)), entityTransform)
	ctx.SubmitInstanced("field", mesh.Plane(2), material.NewMaterial(), transform.NewTransform())

	initialize(t, r)

	creates := func(method, label string) int {
		n := 0
		for _, c := range dev.CallsTo(method) {
			if c.Label == label {
				n++
			}
		}
		return n
	}
	tests := []struct {
		method string
		label  string
	}{
		{"CreateMesh", "crate"},
		{"CreateMesh", "plane"},
		{"CreateTexture", "crate_albedo"},
		{"CreateBuffer", "crate entity"},
		{"CreateBuffer", "plane instances"},
	}
	for _, tt := range tests {
		if got := creates(tt.method, tt.label); got != 1 {
			t.Errorf("%s(%q) after Initialize = %v, want 1", tt.method, tt.label, got)
		}
	}

	dev.Reset()
	for range 5 {
		r.Load()
	}
	for _, method := range []string{"CreateMesh", "CreateTexture", "CreateBuffer", "WriteBuffer"} {
		if got := dev.Count(method); got != 0 {
			t.Errorf("%s calls after repeated Load = %v, want 0", method, got)
		}
	}

	entityTransform.SetPosition(entityTransform.Position().Add(entityTransform.Front()))
	r.Load()
	r.Load()
	if got := dev.Count("WriteBuffer"); got != 1 {
		t.Errorf("WriteBuffer after moving the entity = %v, want 1", got)
	}

	dev.Reset()
	if _, err := ctx.SubmitInstance("field", transform.NewTransform()); err != nil {
		t.Fatalf("SubmitInstance() error = %v", err)
	}
	r.Load()
	if got := dev.Count("CreateBuffer"); got != 0 {
		t.Errorf("CreateBuffer after growing within capacity = %v, want 0", got)
	}
	if got := dev.Count("WriteBuffer"); got != 1 {
		t.Errorf("WriteBuffer after adding an instance = %v, want 1", got)
	}
}

func TestInitializeBuildsPipeline(t *testing.T) {
	r, dev := newTestRenderer(t)
	cam := camera.NewCamera()
	r.Context().SubmitCamera(cam, transform.NewTransform())
	initialize(t, r)

	cfg := DefaultConfig()
	if got, want := dev.Count("CreateFramebuffer"), len(cfg.Framebuffers); got != want {
		t.Errorf("CreateFramebuffer calls = %v, want %v", got, want)
	}
	if got, want := dev.Count("CreateShader"), len(cfg.Shaders); got != want {
		t.Errorf("CreateShader calls = %v, want %v", got, want)
	}
	for _, tag := range []string{"quad", "cube", "sphere"} {
		if !r.Data().Mesh(tag).RenderArray().Built() {
			t.Errorf("mesh %q not built", tag)
		}
	}
	if got := r.Data().Mesh("sphere").InstanceLayout().Key(); got != PointLightInstanceLayout.Key() {
		t.Errorf("sphere instance layout = %v, want %v", got, PointLightInstanceLayout.Key())
	}
	if got := cam.Aspect(); got != float32(800)/600 {
		t.Errorf("camera aspect = %v, want %v", got, float32(800)/600)
	}

	dev.Reset()
	initialize(t, r)
	if len(dev.Calls) != 0 {
		t.Errorf("second Initialize issued %v calls, want 0", len(dev.Calls))
	}
}

func TestRenderDefaultPipeline(t *testing.T) {
	r, dev := newTestRenderer(t)
	submitScene(r.Context())
	initialize(t, r)
	dev.Reset()

	r.Render()

	want := []string{
		"gbuffer",
		"shadow_0", "shadow_1", "shadow_2", "shadow_3",
		"gbuffer",
		"ssao", "ssao_blur",
		"lit",
		"bloom_0", "bloom_1", "bloom_2", "bloom_3", "bloom_4",
		"bloom_3", "bloom_2", "bloom_1", "bloom_0",
		"lit",
		"window",
	}
	if got := bindSequence(dev, r.Data()); !slices.Equal(got, want) {
		t.Errorf("framebuffer binds =\n%v\nwant\n%v", got, want)
	}

	quads := dev.CallsTo("DrawQuad")
	if len(quads) == 0 || quads[len(quads)-1].Handle != 0 {
		t.Error("last full-screen draw did not target the window")
	}
	if dev.Viewport != [2]int{800, 600} {
		t.Errorf("final viewport = %v, want [800 600]", dev.Viewport)
	}
	if got := r.Data().Int("shadow_cascades"); got != MaxCascades {
		t.Errorf("shadow_cascades = %v, want %v", got, MaxCascades)
	}
	for i := range MaxCascades {
		for _, tag := range []string{"light_space_matrix_", "cascade_far_"} {
			if !r.Data().HasParam(fmt.Sprintf("%s%d", tag, i)) {
				t.Errorf("param %s%d not published", tag, i)
			}
		}
	}
	if got := dev.Count("Present"); got != 1 {
		t.Errorf("Present calls = %v, want 1", got)
	}
}

func TestResize(t *testing.T) {
	r, dev := newTestRenderer(t, WithPasses())
	cam := camera.NewCamera()
	r.Context().SubmitCamera(cam, transform.NewTransform())
	initialize(t, r)
	dev.Reset()

	r.Resize(1024, 512)
	if dev.Width != 1024 || dev.Height != 512 {
		t.Errorf("device size = %vx%v, want 1024x512", dev.Width, dev.Height)
	}
	if got := r.Data().Framebuffer("gbuffer").Width(); got != 1024 {
		t.Errorf("gbuffer width = %v, want 1024", got)
	}
	if got := r.Data().Framebuffer("bloom_0").Width(); got != 512 {
		t.Errorf("bloom_0 width = %v, want 512", got)
	}
	if got := r.Data().Framebuffer("shadow_0").Width(); got != 2048 {
		t.Errorf("shadow_0 width = %v, want fixed 2048", got)
	}
	if got := r.Data().Int("window_width"); got != 1024 {
		t.Errorf("window_width = %v, want 1024", got)
	}
	if got := cam.Aspect(); got != 2 {
		t.Errorf("camera aspect = %v, want 2", got)
	}
	lit, gbuffer := r.Data().Framebuffer("lit"), r.Data().Framebuffer("gbuffer")
	if lit.Depth() != gbuffer.Depth() {
		t.Error("lit lost the shared G-buffer depth after resize")
	}

	dev.Reset()
	r.Resize(0, 0)
	if len(dev.Calls) != 0 {
		t.Errorf("Resize(0, 0) issued %v calls, want 0", len(dev.Calls))
	}
}

func TestReleaseFreesEverything(t *testing.T) {
	r, dev := newTestRenderer(t)
	submitScene(r.Context())
	initialize(t, r)
	r.Render()

	cfg := DefaultConfig()
	r.Release()
	tests := []struct {
		method string
		want   int
	}{
		{"ReleaseFramebuffer", len(cfg.Framebuffers)},
		{"ReleaseShader", len(cfg.Shaders)},
		{"ReleaseMesh", 3},    // quad, cube and sphere pools
		{"ReleaseBuffer", 3},  // two entities and the light volumes
		{"ReleaseTexture", 1}, // ssao_noise
		{"Release", 1},
	}
	for _, tt := range tests {
		if got := dev.Count(tt.method); got != tt.want {
			t.Errorf("%s calls = %v, want %v", tt.method, got, tt.want)
		}
	}
	if r.Data().Device() != nil {
		t.Error("Data().Device() still set after Release")
	}
	if n := len(r.Context().Entities()); n != 0 {
		t.Errorf("entities after Release = %v, want 0", n)
	}
}

func TestDefaultPassesAreFresh(t *testing.T) {
	a, b := DefaultPasses(), DefaultPasses()
	names := make([]string, len(a))
	for i, p := range a {
		names[i] = p.Name()
		if p == b[i] {
			t.Errorf("pass %s shared between DefaultPasses calls", p.Name())
		}
	}
	want := []string{"frustum_culling", "skybox", "shadow", "geometry", "ssao", "lighting", "transparent", "bloom", "draw"}
	if !slices.Equal(names, want) {
		t.Errorf("DefaultPasses() = %v, want %v", names, want)
	}
}

func TestEmbeddedShadersDeclareUniforms(t *testing.T) {
	uniforms := map[string][]string{
		"skybox":      {"inv_view_rotation_proj", "light_direction", "light_color"},
		"shadow":      {"light_space"},
		"geometry":    {"view_proj", "base_color", "metallic", "roughness", "emissive", "data_mode"},
		"ssao":        {"view", "projection", "inv_view_proj", "samples[63]", "noise_scale", "kernel_size", "radius", "bias"},
		"ssao_blur":   nil,
		"lighting":    {"inv_view_proj", "view", "light_space_matrix[3]", "cascade_far", "light_direction", "light_color", "camera_position", "ambient", "shadow_bias", "cascade_count", "shadows_enabled"},
		"point_light": {"view_proj", "inv_view_proj", "camera_position", "screen_size"},
		"transparent": {"view_proj", "base_color", "light_direction", "light_color", "camera_position", "ambient", "alpha_cutoff", "data_mode", "binary"},
		"bloom_down":  {"src_resolution", "karis"},
		"bloom_up":    {"filter_radius"},
		"draw":        {"gamma", "exposure"},
	}

	shaders := ShaderFS()
	cfg := DefaultConfig()
	if len(cfg.Shaders) != len(uniforms) {
		t.Errorf("default config has %v shaders, want %v", len(cfg.Shaders), len(uniforms))
	}
	for _, sc := range cfg.Shaders {
		names, ok := uniforms[sc.Tag]
		if !ok {
			t.Errorf("unexpected shader %q in default config", sc.Tag)
			continue
		}
		src, err := fs.ReadFile(shaders, sc.Vertex)
		if err != nil {
			t.Errorf("shader %q: %v", sc.Tag, err)
			continue
		}
		processed, err := wgsl.PreProcess(string(src), wgsl.DefaultIncludes())
		if err != nil {
			t.Errorf("shader %q: PreProcess() error = %v", sc.Tag, err)
			continue
		}
		refl, err := wgsl.Reflect(processed)
		if err != nil {
			t.Errorf("shader %q: Reflect() error = %v", sc.Tag, err)
			continue
		}
		if refl.VertexEntry == "" {
			t.Errorf("shader %q has no vertex entry point", sc.Tag)
		}
		for _, name := range names {
			if _, _, ok := refl.Locate(name); !ok {
				t.Errorf("shader %q does not declare uniform %q", sc.Tag, name)
			}
		}
	}
}

func TestDefaultConfigFramebuffers(t *testing.T) {
	data, err := render_data.NewRenderData(DefaultConfig())
	if err != nil {
		t.Fatalf("NewRenderData(DefaultConfig()) error = %v", err)
	}
	for _, tag := range []string{
		"gbuffer", "shadow_0", "shadow_1", "shadow_2", "shadow_3",
		"ssao", "ssao_blur", "lit", "bloom_0", "bloom_1", "bloom_2", "bloom_3", "bloom_4",
	} {
		if !data.HasFramebuffer(tag) {
			t.Errorf("default config is missing framebuffer %q", tag)
		}
	}
	if data.Framebuffer("lit").DepthFrom() != data.Framebuffer("gbuffer") {
		t.Error("lit does not share the G-buffer depth")
	}
	if got := data.Int("bloom_mip_count"); got != 5 {
		t.Errorf("bloom_mip_count = %v, want 5", got)
	}
}

func TestRenderSkipsEmptyMeshes(t *testing.T) {
	r, dev := newTestRenderer(t)
	ctx := r.Context()
	submitScene(ctx)
	ctx.Submit(mesh.NewMesh(nil, nil, mesh.WithName("empty")), material.NewMaterial(), transform.NewTransform())
	ctx.SubmitInstanced("nothing", mesh.NewMesh(nil, nil, mesh.WithName("hollow")), material.NewMaterial(), transform.NewTransform())
	initialize(t, r)

	r.Render()
	r.Render()
	for _, c := range dev.CallsTo("CreateMesh") {
		if c.Label == "empty" || c.Label == "hollow" {
			t.Errorf("CreateMesh(%q) called for a mesh without geometry", c.Label)
		}
	}
	if got := dev.Count("Present"); got != 2 {
		t.Errorf("Present calls = %v, want 2", got)
	}
}

func TestRenderMissingParamPanics(t *testing.T) {
	for _, tag := range []string{"render_shadow", "bloom_strength", "ssao_radius", "gamma"} {
		t.Run(tag, func(t *testing.T) {
			cfg := DefaultConfig()
			delete(cfg.Params, tag)
			r, _ := newTestRenderer(t, WithConfig(cfg))
			submitScene(r.Context())
			initialize(t, r)
			defer func() {
				rec := recover()
				if rec == nil {
					t.Fatal("Render() with a missing param did not panic")
				}
				if msg := fmt.Sprint(rec); !strings.Contains(msg, tag) {
					t.Errorf("panic = %q, want it to name %q", msg, tag)
				}
			}()
			r.Render()
		})
	}
}

func TestDefaultConfigParams(t *testing.T) {
	data, err := render_data.NewRenderData(DefaultConfig())
	if err != nil {
		t.Fatalf("NewRenderData(DefaultConfig()) error = %v", err)
	}
	bools := []string{"frustum_culling", "render_skybox", "render_shadow", "ssao_enabled", "bloom_enabled"}
	ints := []string{"cascade_count", "shadow_draw_frame", "ssao_kernel_size", "bloom_mip_count"}
	floats := []string{"shadow_bias", "ssao_radius", "ssao_bias", "alpha_cutoff", "bloom_filter_radius", "bloom_strength", "gamma", "exposure"}
	for _, tag := range bools {
		data.Bool(tag)
	}
	for _, tag := range ints {
		data.Int(tag)
	}
	for _, tag := range floats {
		data.Float(tag)
	}
	if got := data.Float("shadow_bias"); got != 0.001 {
		t.Errorf("shadow_bias = %v, want 0.001", got)
	}
	for i := range MaxCascades {
		fb := data.Framebuffer(fmt.Sprintf("shadow_%d", i))
		if fb.Width() != 2048 || fb.Height() != 2048 {
			t.Errorf("shadow_%d = %vx%v, want 2048x2048", i, fb.Width(), fb.Height())
		}
	}
}

func TestCameraSubmittedAfterInitializeFitsWindow(t *testing.T) {
	r, _ := newTestRenderer(t, WithPasses())
	initialize(t, r)

	cam := camera.NewCamera()
	r.Context().SubmitCamera(cam, transform.NewTransform())
	r.Render()
	if got, want := cam.Aspect(), float32(800)/600; got != want {
		t.Errorf("camera aspect = %v, want %v", got, want)
	}

	cam.SetAspect(1)
	r.Render()
	if got := cam.Aspect(); got != 1 {
		t.Errorf("camera aspect after a later frame = %v, want the camera's own 1", got)
	}
}
