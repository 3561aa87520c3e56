package render_data

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

const testConfig = `
framebuffers:
  - tag: gbuffer
    color: [rgba16f, rgba8, rgba8]
    depth: true
  - tag: shadow_0
    width: 2048
    height: 2048
    auto_resize: false
    depth: true
  - tag: ssao
    color: [r8]
    resize_factor: 0.5
    filter: nearest
  - tag: lit
    color: [rgba16f]
    depth_from: gbuffer
shaders:
  - tag: geometry
    vertex: geometry.wgsl
  - tag: lighting
    vertex: quad.wgsl
    fragment: lighting.wgsl
params:
  render_shadow: true
  cascade_count: 4
  gamma: 2.2
  ambient: [0.1, 0.1, 0.1]
  clear_color: [0, 0, 0, 1]
  mask: {uint: 7}
  seed: {uint64: 12345678901}
`

func mustParse(t *testing.T, doc string) Config {
	t.Helper()
	cfg, err := ParseConfig([]byte(doc))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	return cfg
}

func expectPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("no panic, want %q", want)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, want) {
			t.Errorf("panic = %q, want it to contain %q", msg, want)
		}
	}()
	fn()
}

func TestParseConfigParams(t *testing.T) {
	cfg := mustParse(t, testConfig)

	tests := []struct {
		tag  string
		want gpu.Value
	}{
		{"render_shadow", gpu.BoolValue(true)},
		{"cascade_count", gpu.IntValue(4)},
		{"gamma", gpu.FloatValue(2.2)},
		{"ambient", gpu.Vec3Value(mgl32.Vec3{0.1, 0.1, 0.1})},
		{"clear_color", gpu.Vec4Value(mgl32.Vec4{0, 0, 0, 1})},
		{"mask", gpu.Uint32Value(7)},
		{"seed", gpu.Uint64Value(12345678901)},
	}
	for _, tt := range tests {
		got, ok := cfg.Params[tt.tag]
		if !ok {
			t.Errorf("param %q missing", tt.tag)
			continue
		}
		if got.Value != tt.want {
			t.Errorf("param %q = %v, want %v", tt.tag, got.Value, tt.want)
		}
	}
	if len(cfg.Framebuffers) != 4 || len(cfg.Shaders) != 2 {
		t.Errorf("framebuffers = %d, shaders = %d, want 4 and 2", len(cfg.Framebuffers), len(cfg.Shaders))
	}
}

func TestParseConfigMat4(t *testing.T) {
	cfg := mustParse(t, "params:\n  m: [1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1]\n")
	if got := cfg.Params["m"].Value.Mat4(); got != mgl32.Ident4() {
		t.Errorf("m = %v, want identity", got)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"duplicate framebuffer", "framebuffers:\n  - {tag: a, color: [rgba8]}\n  - {tag: a, color: [rgba8]}\n", "declared twice"},
		{"bad format", "framebuffers:\n  - {tag: a, color: [rgb9]}\n", "unknown color format"},
		{"depth as color", "framebuffers:\n  - {tag: a, color: [depth32f]}\n", "unknown color format"},
		{"fixed without size", "framebuffers:\n  - {tag: a, color: [rgba8], auto_resize: false}\n", "fixed size"},
		{"depth_from later", "framebuffers:\n  - {tag: a, color: [rgba8], depth_from: b}\n  - {tag: b, depth: true}\n", "not declared before"},
		{"depth_from no depth", "framebuffers:\n  - {tag: b, color: [rgba8]}\n  - {tag: a, color: [rgba8], depth_from: b}\n", "has no depth"},
		{"no attachments", "framebuffers:\n  - {tag: a}\n", "no attachments"},
		{"bad filter", "framebuffers:\n  - {tag: a, color: [rgba8], filter: cubic}\n", "unknown filter"},
		{"shader without vertex", "shaders:\n  - {tag: s}\n", "vertex source"},
		{"bad vector", "params:\n  v: [1, 2, 3, 4, 5]\n", "5 elements"},
		{"bad mapping", "params:\n  v: {int: 3}\n", "{uint: n}"},
		{"uint overflow", "params:\n  v: {uint: 4294967296}\n", "overflows uint32"},
		{"string param", "params:\n  v: hello\n", "unsupported parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			if err == nil {
				t.Fatal("ParseConfig() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseConfig() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := mustParse(t, testConfig)
	merged := cfg.Merge(map[string]gpu.Value{"gamma": gpu.FloatValue(1.8), "exposure": gpu.FloatValue(2)})

	if got := merged.Params["gamma"].Value.Float(); got != 1.8 {
		t.Errorf("merged gamma = %v, want 1.8", got)
	}
	if _, ok := merged.Params["exposure"]; !ok {
		t.Error("merged exposure missing")
	}
	if got := cfg.Params["gamma"].Value.Float(); got != 2.2 {
		t.Errorf("original gamma = %v after Merge, want 2.2", got)
	}
}

func TestRenderDataBuild(t *testing.T) {
	dev := gputest.NewDevice()
	d, err := NewRenderData(mustParse(t, testConfig), WithMesh("quad", mesh.Quad()))
	if err != nil {
		t.Fatalf("NewRenderData() error = %v", err)
	}
	d.Build(dev, 800, 600)

	if got := d.Framebuffers(); strings.Join(got, ",") != "gbuffer,shadow_0,ssao,lit" {
		t.Errorf("Framebuffers() = %v, want declaration order", got)
	}
	sizes := map[string][2]int{"gbuffer": {800, 600}, "shadow_0": {2048, 2048}, "ssao": {400, 300}, "lit": {800, 600}}
	for tag, want := range sizes {
		fb := d.Framebuffer(tag)
		if got := [2]int{fb.Width(), fb.Height()}; got != want {
			t.Errorf("%s size = %v, want %v", tag, got, want)
		}
		if !fb.Built() {
			t.Errorf("%s not built", tag)
		}
	}
	if d.Framebuffer("lit").Depth() != d.Framebuffer("gbuffer").Depth() {
		t.Error("lit does not share the gbuffer depth attachment")
	}
	if got := dev.Count("CreateShader"); got != 2 {
		t.Errorf("CreateShader calls = %d, want 2", got)
	}
	if !d.Mesh("quad").RenderArray().Built() {
		t.Error("registered mesh not built")
	}
	if d.Device() != dev {
		t.Error("Device() is not the build device")
	}

	d.Release()
	if dev.Live() != 0 {
		t.Errorf("Live() = %d after Release, want 0", dev.Live())
	}
}

func TestRenderDataResizeOrder(t *testing.T) {
	dev := gputest.NewDevice()
	d, err := NewRenderData(mustParse(t, testConfig))
	if err != nil {
		t.Fatalf("NewRenderData() error = %v", err)
	}
	if got := d.Resize(100, 100); got != 0 {
		t.Errorf("Resize() before Build = %d, want 0", got)
	}
	d.Build(dev, 800, 600)
	dev.Reset()

	if got := d.Resize(1024, 768); got != 3 {
		t.Errorf("Resize() rebuilt = %d, want 3", got)
	}
	var order []string
	for _, c := range dev.CallsTo("CreateFramebuffer") {
		order = append(order, c.Label)
	}
	if got := strings.Join(order, ","); got != "gbuffer,ssao,lit" {
		t.Errorf("rebuild order = %s, want gbuffer,ssao,lit", got)
	}
	if d.Framebuffer("lit").Depth() != d.Framebuffer("gbuffer").Depth() {
		t.Error("lit lost the gbuffer depth attachment after resize")
	}
	if got := d.Resize(1024, 768); got != 0 {
		t.Errorf("Resize() to the same size rebuilt %d, want 0", got)
	}
}

func TestRenderDataParams(t *testing.T) {
	d, err := NewRenderData(mustParse(t, testConfig))
	if err != nil {
		t.Fatalf("NewRenderData() error = %v", err)
	}

	if !d.Bool("render_shadow") {
		t.Error("Bool(render_shadow) = false")
	}
	if got := d.Int("cascade_count"); got != 4 {
		t.Errorf("Int(cascade_count) = %d, want 4", got)
	}
	if got := d.Uint32("mask"); got != 7 {
		t.Errorf("Uint32(mask) = %d, want 7", got)
	}
	if got := d.Vec3("ambient"); got != (mgl32.Vec3{0.1, 0.1, 0.1}) {
		t.Errorf("Vec3(ambient) = %v", got)
	}
	if got := d.FloatOr("missing", 3); got != 3 {
		t.Errorf("FloatOr(missing) = %v, want 3", got)
	}
	if got := d.IntOr("cascade_count", 1); got != 4 {
		t.Errorf("IntOr(cascade_count) = %d, want 4", got)
	}

	d.SetParam("light_space_matrix_0", gpu.Mat4Value(mgl32.Ident4()))
	if got := d.Mat4("light_space_matrix_0"); got != mgl32.Ident4() {
		t.Errorf("Mat4() = %v, want identity", got)
	}
	d.SetParam("gamma", gpu.IntValue(2))
	if got := d.Int("gamma"); got != 2 {
		t.Errorf("Int(gamma) after SetParam = %d, want 2", got)
	}
}

func TestRenderDataFatalLookups(t *testing.T) {
	d, err := NewRenderData(mustParse(t, testConfig))
	if err != nil {
		t.Fatalf("NewRenderData() error = %v", err)
	}

	expectPanic(t, `unknown framebuffer "bloom_0"`, func() { d.Framebuffer("bloom_0") })
	expectPanic(t, `unknown shader "skybox"`, func() { d.Shader("skybox") })
	expectPanic(t, `unknown mesh "cube"`, func() { d.Mesh("cube") })
	expectPanic(t, `unknown texture "ssao_noise"`, func() { d.Texture("ssao_noise") })
	expectPanic(t, `unknown param "exposure"`, func() { d.Float("exposure") })
	expectPanic(t, `param "gamma" is float, not int`, func() { d.Int("gamma") })
	expectPanic(t, `param "render_shadow" is bool, not vec4`, func() { d.Vec4("render_shadow") })

	if d.HasShader("skybox") || !d.HasShader("lighting") {
		t.Error("HasShader() mismatch")
	}
	if d.HasFramebuffer("bloom_0") || !d.HasFramebuffer("gbuffer") {
		t.Error("HasFramebuffer() mismatch")
	}
}

func TestNewRenderDataInvalid(t *testing.T) {
	cfg := Config{Framebuffers: []FramebufferConfig{{Tag: "a"}}}
	if _, err := NewRenderData(cfg); err == nil {
		t.Error("NewRenderData() error = nil for a framebuffer without attachments")
	}
}
