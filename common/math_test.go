package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestPerspectiveZODepthRange(t *testing.T) {
	proj := PerspectiveZO(mgl32.DegToRad(60), 16.0/9.0, 0.5, 200)

	near := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, -0.5}, proj)
	if !approx(near.Z(), 0) {
		t.Errorf("near depth = %v, want 0", near.Z())
	}
	far := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, -200}, proj)
	if !approx(far.Z(), 1) {
		t.Errorf("far depth = %v, want 1", far.Z())
	}
}

func TestOrthoZOMapsBox(t *testing.T) {
	proj := OrthoZO(-4, 6, -2, 8, -10, 30)

	tests := []struct {
		in   mgl32.Vec3
		want mgl32.Vec3
	}{
		{mgl32.Vec3{-4, -2, 10}, mgl32.Vec3{-1, -1, 0}},
		{mgl32.Vec3{6, 8, -30}, mgl32.Vec3{1, 1, 1}},
		{mgl32.Vec3{1, 3, -10}, mgl32.Vec3{0, 0, 0.5}},
	}
	for _, tt := range tests {
		got := mgl32.TransformCoordinate(tt.in, proj)
		if !got.ApproxEqualThreshold(tt.want, 1e-4) {
			t.Errorf("OrthoZO(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFrustumCornersRoundTrip(t *testing.T) {
	proj := PerspectiveZO(mgl32.DegToRad(45), 1, 1, 10)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	corners := FrustumCorners(proj, view)
	vp := proj.Mul4(view)
	for i, c := range corners {
		back := mgl32.TransformCoordinate(c, vp)
		if !back.ApproxEqualThreshold(NDCCorners[i], 1e-3) {
			t.Errorf("corner %d reprojects to %v, want %v", i, back, NDCCorners[i])
		}
	}
	// Near corners sit one unit in front of the eye along -z.
	if !approx(corners[0].Z(), 4) {
		t.Errorf("near corner z = %v, want 4", corners[0].Z())
	}
}

func TestClampAndMaxComponent(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %v, want 3", got)
	}
	if got := Clamp(float32(-1), 0, 1); got != 0 {
		t.Errorf("Clamp(-1, 0, 1) = %v, want 0", got)
	}
	if got := MaxComponent(mgl32.Vec3{0.2, 0.9, 0.4}); got != 0.9 {
		t.Errorf("MaxComponent = %v, want 0.9", got)
	}
}

func TestFloat32BytesLittleEndian(t *testing.T) {
	b := Float32Bytes([]float32{1})
	want := []byte{0x00, 0x00, 0x80, 0x3f}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("Float32Bytes(1) = %x, want %x", b, want)
		}
	}
	if Float32Bytes(nil) != nil {
		t.Errorf("Float32Bytes(nil) should be nil")
	}
}
