package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-4

func TestProjectionDepthRange(t *testing.T) {
	c := NewCamera(WithNear(0.5), WithFar(50))
	proj := c.Projection()

	tests := []struct {
		name  string
		z     float32
		depth float32
	}{
		{"near", -0.5, 0},
		{"far", -50, 1},
	}
	for _, tt := range tests {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, tt.z, 1})
		if got := clip[2] / clip[3]; math.Abs(float64(got-tt.depth)) > epsilon {
			t.Errorf("%s: depth = %v, want %v", tt.name, got, tt.depth)
		}
	}
}

func TestSetAspect(t *testing.T) {
	c := NewCamera()
	before := c.Projection()
	c.SetAspect(2)
	if c.Aspect() != 2 {
		t.Errorf("Aspect() = %v, want 2", c.Aspect())
	}
	after := c.Projection()
	if math.Abs(float64(after[0]-before[0]/2)) > epsilon {
		t.Errorf("x scale = %v, want %v", after[0], before[0]/2)
	}

	c.SetAspect(0)
	if c.Aspect() != 2 {
		t.Errorf("SetAspect(0) changed Aspect() to %v", c.Aspect())
	}
}

func TestViewFollowsTransform(t *testing.T) {
	c := NewCamera()
	tr := transform.NewTransform(transform.WithPosition(0, 0, 5))
	got := c.View(tr).Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{0, 0, -5}
	if !got.ApproxEqualThreshold(want, epsilon) {
		t.Errorf("view * origin = %v, want %v", got, want)
	}
}

func TestControllerApplyFacesTarget(t *testing.T) {
	target := mgl32.Vec3{1, 2, 3}
	cc := NewController(WithTarget(target), WithRadius(10), WithAzimuth(0.7), WithElevation(0.3))
	tr := transform.NewTransform()
	cc.Apply(tr)

	if !tr.GlobalPosition().ApproxEqualThreshold(cc.Position(), epsilon) {
		t.Errorf("position = %v, want %v", tr.GlobalPosition(), cc.Position())
	}
	if d := cc.Position().Sub(target).Len(); math.Abs(float64(d-10)) > epsilon {
		t.Errorf("distance = %v, want 10", d)
	}
	want := target.Sub(cc.Position()).Normalize()
	if !tr.Front().ApproxEqualThreshold(want, epsilon) {
		t.Errorf("Front() = %v, want %v", tr.Front(), want)
	}
	if tr.Up()[1] <= 0 {
		t.Errorf("Up() = %v, want positive y", tr.Up())
	}
}

func TestControllerClamps(t *testing.T) {
	cc := NewController(WithRadiusBounds(2, 8), WithRadius(5), WithElevationBounds(-0.5, 0.5), WithZoomSpeed(1))
	cc.Zoom(100)
	if cc.Radius() != 2 {
		t.Errorf("Radius() = %v, want 2", cc.Radius())
	}
	cc.Zoom(-100)
	if cc.Radius() != 8 {
		t.Errorf("Radius() = %v, want 8", cc.Radius())
	}
	for range 100 {
		cc.OrbitUp()
	}
	if cc.Elevation() != 0.5 {
		t.Errorf("Elevation() = %v, want 0.5", cc.Elevation())
	}
}

func TestControllerPanKeepsOffset(t *testing.T) {
	cc := NewController(WithRadius(10))
	offset := cc.Position().Sub(cc.Target())
	cc.PanRight(3)
	cc.PanUp(-2)
	cc.PanForward(1)
	if got := cc.Position().Sub(cc.Target()); !got.ApproxEqualThreshold(offset, epsilon) {
		t.Errorf("eye offset = %v, want %v", got, offset)
	}
	if cc.Target().Len() < 1 {
		t.Errorf("Target() = %v, want moved pivot", cc.Target())
	}
}
