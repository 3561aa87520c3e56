package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewTransformDefaults(t *testing.T) {
	tr := NewTransform()
	if got := tr.GlobalScale(); got != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("GlobalScale() = %v, want [1 1 1]", got)
	}
	if got := tr.GlobalRotation(); !got.ApproxEqual(mgl32.QuatIdent()) {
		t.Errorf("GlobalRotation() = %v, want identity", got)
	}
	if got := tr.Front(); !got.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Front() = %v, want [0 0 -1]", got)
	}
}

func TestMutationRecomputesGlobals(t *testing.T) {
	tr := NewTransform(WithPosition(1, 2, 3))
	v := tr.Version()

	tr.Translate(mgl32.Vec3{1, 0, 0})
	if got := tr.GlobalPosition(); got != (mgl32.Vec3{2, 2, 3}) {
		t.Errorf("GlobalPosition() = %v, want [2 2 3]", got)
	}
	if tr.Version() == v {
		t.Errorf("Version() did not change after Translate")
	}

	tr.SetScale(mgl32.Vec3{2, 2, 2})
	if got := tr.GlobalScale(); got != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("GlobalScale() = %v, want [2 2 2]", got)
	}
}

func TestParentCorrection(t *testing.T) {
	tr := NewTransform(WithPosition(1, 0, 0), WithScale(1, 2, 1))
	quarter := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})
	tr.SetParentCorrection(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{3, 3, 3}, quarter)

	// (1,0,0) scaled by 3 then rotated 90 degrees about +Y lands on (0,0,-3).
	want := mgl32.Vec3{10, 0, -3}
	if got := tr.GlobalPosition(); !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("GlobalPosition() = %v, want %v", got, want)
	}
	if got := tr.GlobalScale(); got != (mgl32.Vec3{3, 6, 3}) {
		t.Errorf("GlobalScale() = %v, want [3 6 3]", got)
	}
	if got := tr.GlobalRotation(); !got.ApproxEqualThreshold(quarter, 1e-5) {
		t.Errorf("GlobalRotation() = %v, want %v", got, quarter)
	}
}

func TestAppendRecordLayout(t *testing.T) {
	tr := NewTransform(WithPosition(1, 2, 3), WithScale(4, 5, 6))
	rec := tr.AppendRecord(nil)
	want := []float32{1, 2, 3, 4, 5, 6, 0, 0, 0, 1}
	if len(rec) != len(want) {
		t.Fatalf("len(record) = %d, want %d", len(rec), len(want))
	}
	for i := range want {
		if rec[i] != want[i] {
			t.Errorf("record[%d] = %v, want %v", i, rec[i], want[i])
		}
	}
}

func TestMatrixMatchesGlobals(t *testing.T) {
	tr := NewTransform(WithPosition(0, 5, 0), WithUniformScale(2), WithEuler(math.Pi/2, 0, 0))
	got := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, tr.Matrix())
	want := mgl32.Vec3{0, 5, -2}
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Matrix() * [1 0 0] = %v, want %v", got, want)
	}
}
