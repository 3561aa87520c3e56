package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFrustumIntersectsSphere(t *testing.T) {
	proj := PerspectiveZO(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustum(proj.Mul4(view))

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"in front", mgl32.Vec3{0, 0, -10}, 1, true},
		{"behind", mgl32.Vec3{0, 0, 10}, 1, false},
		{"beyond far", mgl32.Vec3{0, 0, -120}, 1, false},
		{"straddling far", mgl32.Vec3{0, 0, -100.5}, 1, true},
		{"far left", mgl32.Vec3{-50, 0, -10}, 1, false},
		{"touching left", mgl32.Vec3{-6.5, 0, -10}, 1, true},
	}
	for _, tt := range tests {
		if got := f.IntersectsSphere(tt.center, tt.radius); got != tt.want {
			t.Errorf("%s: IntersectsSphere(%v, %v) = %v, want %v", tt.name, tt.center, tt.radius, got, tt.want)
		}
	}
}

func TestExtractFrustumNormalizesPlanes(t *testing.T) {
	proj := PerspectiveZO(mgl32.DegToRad(70), 1.5, 1, 50)
	f := ExtractFrustum(proj)
	for i, p := range f.Planes {
		if l := p.Normal.Len(); !approx(l, 1) {
			t.Errorf("plane %d normal length = %v, want 1", i, l)
		}
	}
	if !approx(f.Planes[FrustumNear].Distance, -1) {
		t.Errorf("near plane distance = %v, want -1", f.Planes[FrustumNear].Distance)
	}
}
