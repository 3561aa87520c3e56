package render_context

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

func newContext() *RenderContext {
	return NewRenderContext(WithIDSource(NewIDSource(42)))
}

func TestIDSourceUnique(t *testing.T) {
	src := NewIDSource(1)
	const n = 10000
	seen := make(map[RenderID]struct{}, n)
	for range n {
		id := src.Next()
		if id == 0 {
			t.Fatal("Next() returned 0")
		}
		seen[id] = struct{}{}
	}
	if len(seen) != n {
		t.Errorf("unique ids = %v, want %v", len(seen), n)
	}
}

func TestIDSourceDeterministic(t *testing.T) {
	a, b := NewIDSource(7), NewIDSource(7)
	for i := range 100 {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("id %d: %v != %v", i, x, y)
		}
	}
	if DefaultIDSource() != DefaultIDSource() {
		t.Error("DefaultIDSource() should return the same source")
	}
}

func TestSubmitAndEraseEntity(t *testing.T) {
	rc := newContext()
	m, mat := mesh.Cube(), material.NewMaterial()
	id := rc.Submit(m, mat, transform.NewTransform())

	e := rc.Entity(id)
	if e == nil || e.Mesh != m || e.Material != mat {
		t.Fatalf("Entity(%v) = %v, want the submitted entity", id, e)
	}
	if !e.Visible() {
		t.Error("Visible() = false for a new entity")
	}

	rc.EraseEntity(id)
	if rc.Entity(id) != nil {
		t.Error("entity still present after EraseEntity")
	}
	rc.EraseEntity(id)
}

func TestSubmitInstanced(t *testing.T) {
	rc := newContext()
	m, mat := mesh.Cube(), material.NewMaterial()

	a := rc.SubmitInstanced("cubes", m, mat, transform.NewTransform())
	b := rc.SubmitInstanced("cubes", mesh.Sphere(4, 4), material.NewMaterial(), transform.NewTransform())
	g := rc.InstanceGroup("cubes")
	if g == nil || g.Count() != 2 {
		t.Fatalf("group count = %v, want 2", g.Count())
	}
	if g.Mesh() != m {
		t.Error("second SubmitInstanced replaced the group mesh")
	}

	c, err := rc.SubmitInstance("cubes", transform.NewTransform())
	if err != nil {
		t.Fatalf("SubmitInstance() error = %v", err)
	}
	if a == b || b == c || a == c {
		t.Errorf("ids %v %v %v are not unique", a, b, c)
	}
	if tag, ok := rc.InstanceTag(c); !ok || tag != "cubes" {
		t.Errorf("InstanceTag(%v) = %v, %v, want cubes, true", c, tag, ok)
	}

	if _, err := rc.SubmitInstance("missing", transform.NewTransform()); !errors.Is(err, ErrNoInstanceGroup) {
		t.Errorf("SubmitInstance(missing) error = %v, want ErrNoInstanceGroup", err)
	}
}

func TestEraseInstance(t *testing.T) {
	rc := newContext()
	id := rc.SubmitInstanced("g", mesh.Cube(), material.NewMaterial(), transform.NewTransform())

	if rc.EraseInstance("other", id) {
		t.Error("EraseInstance on a missing group = true")
	}
	if !rc.EraseInstance("g", id) {
		t.Error("EraseInstance = false, want true")
	}
	if rc.EraseInstance("g", id) {
		t.Error("second EraseInstance = true, want false")
	}
	if _, ok := rc.InstanceTag(id); ok {
		t.Error("InstanceTag still set after erase")
	}

	rc.EraseInstanceGroup("g")
	if rc.InstanceGroup("g") != nil {
		t.Error("group still present after EraseInstanceGroup")
	}
	rc.EraseInstanceGroup("g")
}

func TestItemsAndClear(t *testing.T) {
	dev := gputest.NewDevice()
	rc := newContext()
	camID := rc.SubmitCamera(camera.NewCamera(), transform.NewTransform())
	sunID := rc.SubmitDirectionalLight(light.NewDirectionalLight(), transform.NewTransform())
	lampID := rc.SubmitPointLight(light.NewPointLight(), transform.NewTransform())
	entID := rc.Submit(mesh.Cube(), material.NewMaterial(), transform.NewTransform())
	rc.SubmitInstanced("g", mesh.Cube(), material.NewMaterial(), transform.NewTransform())
	rc.SetShaderInput("time", gpu.FloatValue(1))

	rc.Entity(entID).Sync(dev)
	rc.InstanceGroup("g").ResetInstanceBuffer(dev)

	if _, ok := rc.PointLights()[lampID]; !ok {
		t.Fatal("point light missing")
	}
	rc.EraseItem(lampID)
	if len(rc.PointLights()) != 0 {
		t.Error("point light still present after EraseItem")
	}
	rc.EraseItem(sunID)
	if rc.DirectionalLight() != nil {
		t.Error("directional light still set after EraseItem")
	}
	if rc.Camera() == nil || rc.Camera().ID != camID {
		t.Error("camera changed by unrelated EraseItem")
	}

	rc.Clear()
	if len(rc.Entities()) != 0 || len(rc.InstanceGroups()) != 0 || rc.Camera() != nil || len(rc.ShaderInputs()) != 0 {
		t.Error("Clear() left submissions behind")
	}
	if got := dev.Count("ReleaseBuffer"); got != 2 {
		t.Errorf("ReleaseBuffer calls = %v, want 2", got)
	}
}

func TestShaderInputs(t *testing.T) {
	rc := newContext()
	rc.SetShaderInput("tint", gpu.Vec3Value(mgl32.Vec3{1, 0, 0}))
	v, ok := rc.ShaderInput("tint")
	if !ok || v.Vec3() != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("ShaderInput(tint) = %v, %v", v, ok)
	}
	rc.EraseShaderInput("tint")
	if _, ok := rc.ShaderInput("tint"); ok {
		t.Error("ShaderInput(tint) still set after erase")
	}
}

func TestEntityModesAndSync(t *testing.T) {
	dev := gputest.NewDevice()
	rc := newContext()
	tr := transform.NewTransform()
	id := rc.Submit(mesh.Cube(), material.NewMaterial(material.WithShadowMode(material.ShadowNone)), tr)
	e := rc.Entity(id)

	if e.CastsShadow() {
		t.Error("CastsShadow() = true for a material without shadows")
	}
	if !rc.SetEntityMode(id, ModeShadowOnly) || e.Visible() {
		t.Error("ModeShadowOnly entity should not be visible")
	}
	if rc.SetEntityMode(1, ModeHidden) {
		t.Error("SetEntityMode on a missing id = true")
	}

	e.Draw(dev)
	e.Draw(dev)
	if got := dev.Count("CreateBuffer"); got != 1 {
		t.Errorf("CreateBuffer calls = %v, want 1", got)
	}
	if got := dev.Count("WriteBuffer"); got != 1 {
		t.Errorf("WriteBuffer calls = %v, want 1", got)
	}
	tr.Translate(mgl32.Vec3{1, 0, 0})
	if !e.Changed() {
		t.Error("Changed() = false after the transform moved")
	}
	e.Draw(dev)
	if got := dev.Count("WriteBuffer"); got != 2 {
		t.Errorf("WriteBuffer calls after move = %v, want 2", got)
	}
}
