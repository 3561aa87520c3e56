package wgsl

import (
	"strings"
	"testing"
)

const lightingSource = `
struct Uniforms {
    inv_view_proj: mat4x4<f32>,
    camera_position: vec3<f32>,
    cascade_count: i32,
    light_space_matrix: array<mat4x4<f32>, 4>,
    cascade_far: array<vec4<f32>, 4>, // packed
    gamma: f32,
    /* block /* nested */ comment */
    render_shadow: u32,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(1) @binding(0) var albedo_tex: texture_2d<f32>;
@group(1) @binding(1) var albedo_sampler: sampler;
@group(1) @binding(2) var depth_tex: texture_depth_2d;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(uv, 0.0, 1.0);
}
`

func TestReflectUniformOffsets(t *testing.T) {
	r, err := Reflect(lightingSource)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}

	tests := []struct {
		name   string
		offset uint64
		size   uint64
	}{
		{"inv_view_proj", 0, 64},
		{"camera_position", 64, 12},
		{"cascade_count", 76, 4},
		{"light_space_matrix", 80, 64},
		{"light_space_matrix[2]", 80 + 2*64, 64},
		{"cascade_far[3]", 336 + 3*16, 16},
		{"gamma", 400, 4},
		{"render_shadow", 404, 4},
	}
	for _, tt := range tests {
		offset, size, ok := r.Locate(tt.name)
		if !ok {
			t.Errorf("Locate(%q) not found", tt.name)
			continue
		}
		if offset != tt.offset || size != tt.size {
			t.Errorf("Locate(%q) = (%d, %d), want (%d, %d)", tt.name, offset, size, tt.offset, tt.size)
		}
	}

	if r.UniformSize != 416 {
		t.Errorf("UniformSize = %d, want 416", r.UniformSize)
	}
	if r.FragmentEntry != "fs_main" {
		t.Errorf("FragmentEntry = %q, want fs_main", r.FragmentEntry)
	}
	if r.VertexEntry != "" {
		t.Errorf("VertexEntry = %q, want empty", r.VertexEntry)
	}
}

func TestReflectLocateOutOfRange(t *testing.T) {
	r, err := Reflect(lightingSource)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	for _, name := range []string{"light_space_matrix[4]", "gamma[1]", "missing", "cascade_far[x]"} {
		if _, _, ok := r.Locate(name); ok {
			t.Errorf("Locate(%q) ok = true, want false", name)
		}
	}
}

func TestReflectBindings(t *testing.T) {
	r, err := Reflect(lightingSource)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	want := []struct {
		group, binding int
		kind           BindingKind
	}{
		{0, 0, BindingUniformBuffer},
		{1, 0, BindingTexture},
		{1, 1, BindingSampler},
		{1, 2, BindingDepthTexture},
	}
	if len(r.Bindings) != len(want) {
		t.Fatalf("len(Bindings) = %d, want %d", len(r.Bindings), len(want))
	}
	for i, w := range want {
		b := r.Bindings[i]
		if b.Group != w.group || b.Binding != w.binding || b.Kind != w.kind {
			t.Errorf("Bindings[%d] = {%d %d %v}, want {%d %d %v}", i, b.Group, b.Binding, b.Kind, w.group, w.binding, w.kind)
		}
	}
	if r.MaxGroup() != 1 {
		t.Errorf("MaxGroup() = %d, want 1", r.MaxGroup())
	}
	if r.Bindings[0].Size != 416 {
		t.Errorf("uniform binding Size = %d, want 416", r.Bindings[0].Size)
	}
}

func TestReflectNestedStruct(t *testing.T) {
	src := `
struct Outer {
    inner: Inner,
    tail: f32,
}
struct Inner {
    a: vec3<f32>,
}
@group(0) @binding(0) var<uniform> u: Outer;
`
	r, err := Reflect(src)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	offset, _, ok := r.Locate("tail")
	if !ok || offset != 16 {
		t.Errorf("Locate(tail) = (%d, %v), want (16, true)", offset, ok)
	}
	if r.UniformSize != 32 {
		t.Errorf("UniformSize = %d, want 32", r.UniformSize)
	}
}

func TestReflectUnresolvableUniform(t *testing.T) {
	src := `@group(0) @binding(0) var<uniform> u: Missing;`
	if _, err := Reflect(src); err == nil {
		t.Error("Reflect() error = nil, want error for unknown struct")
	}
}

func TestMerge(t *testing.T) {
	vs, err := Reflect(`
struct Uniforms { view_proj: mat4x4<f32>, }
@group(0) @binding(0) var<uniform> u: Uniforms;
@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
`)
	if err != nil {
		t.Fatalf("Reflect(vs) error = %v", err)
	}
	fs, err := Reflect(`
struct Uniforms { view_proj: mat4x4<f32>, tint: vec4<f32>, }
@group(0) @binding(0) var<uniform> u: Uniforms;
@group(1) @binding(0) var tex: texture_2d<f32>;
@fragment fn fs_main() -> @location(0) vec4<f32> { return u.tint; }
`)
	if err != nil {
		t.Fatalf("Reflect(fs) error = %v", err)
	}
	m := Merge(vs, fs)
	if m.VertexEntry != "vs_main" || m.FragmentEntry != "fs_main" {
		t.Errorf("entries = (%q, %q), want (vs_main, fs_main)", m.VertexEntry, m.FragmentEntry)
	}
	if m.UniformSize != 80 {
		t.Errorf("UniformSize = %d, want 80", m.UniformSize)
	}
	if _, ok := m.Uniforms["tint"]; !ok {
		t.Error("merged uniforms missing tint")
	}
	if len(m.Bindings) != 2 {
		t.Errorf("len(Bindings) = %d, want 2", len(m.Bindings))
	}
}

func TestStripComments(t *testing.T) {
	got := stripComments("a // x\nb /* c /* d */ e */ f")
	if strings.Contains(got, "x") || strings.Contains(got, "c") || strings.Contains(got, "e") {
		t.Errorf("stripComments() = %q, comments survived", got)
	}
	if !strings.Contains(got, "a") || !strings.Contains(got, "b") || !strings.Contains(got, "f") {
		t.Errorf("stripComments() = %q, code removed", got)
	}
}
