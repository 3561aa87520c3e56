package mesh

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func TestPrimitiveBoundingRadius(t *testing.T) {
	tests := []struct {
		name string
		m    Mesh
		want float32
	}{
		{"quad", Quad(), float32(math.Sqrt(0.5))},
		{"plane", Plane(10), float32(5 * math.Sqrt2)},
		{"cube", Cube(), float32(math.Sqrt(0.75))},
		{"sphere", Sphere(8, 12), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.BoundingRadius(); !approx(got, tt.want) {
				t.Errorf("BoundingRadius() = %v, want %v", got, tt.want)
			}
			if len(tt.m.Indices())%3 != 0 {
				t.Errorf("len(Indices()) = %d, not a triangle list", len(tt.m.Indices()))
			}
		})
	}
}

func TestBoundingRadiusCustomLayout(t *testing.T) {
	layout := gpu.VertexLayout{{Name: "uv", Components: 2}, {Name: "position", Components: 3}}
	m := NewMesh([]float32{9, 9, 0, 3, 4}, []uint32{0, 0, 0}, WithLayout(layout))
	if got := m.BoundingRadius(); !approx(got, 5) {
		t.Errorf("BoundingRadius() = %v, want 5", got)
	}
}

// Every triangle of a closed convex primitive must wind counter-clockwise seen from outside.
func TestPrimitiveWindingOutward(t *testing.T) {
	for _, m := range []Mesh{Cube(), Sphere(6, 8)} {
		v, stride := m.Vertices(), m.Layout().Stride()
		pos := func(i uint32) mgl32.Vec3 {
			b := int(i) * stride
			return mgl32.Vec3{v[b], v[b+1], v[b+2]}
		}
		idx := m.Indices()
		for i := 0; i < len(idx); i += 3 {
			a, b, c := pos(idx[i]), pos(idx[i+1]), pos(idx[i+2])
			n := b.Sub(a).Cross(c.Sub(a))
			centroid := a.Add(b).Add(c).Mul(1.0 / 3)
			if n.Dot(centroid) <= 0 {
				t.Fatalf("%s triangle %d winds inward", m.Name(), i/3)
			}
		}
	}
}

func TestRenderArrayUsesInstanceLayout(t *testing.T) {
	dev := gputest.NewDevice()
	m := Cube()
	m.RenderArray().Build(dev)
	calls := dev.CallsTo("CreateMesh")
	if len(calls) != 1 || calls[0].Detail != "3,3,4" {
		t.Errorf("CreateMesh calls = %+v, want one with instance layout 3,3,4", calls)
	}
}
