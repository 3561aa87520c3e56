package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// builder accumulates DefaultLayout vertices and triangle indices.
type builder struct {
	vertices []float32
	indices  []uint32
}

func (b *builder) vertex(p, n mgl32.Vec3, uv mgl32.Vec2) uint32 {
	i := uint32(len(b.vertices) / DefaultLayout.Stride())
	b.vertices = append(b.vertices, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	return i
}

// face appends a quad centred at c spanning ±u and ±v. With u × v along the outward
// normal the triangles are counter-clockwise from outside.
func (b *builder) face(c, u, v mgl32.Vec3, uvScale float32) {
	n := u.Cross(v).Normalize()
	i0 := b.vertex(c.Sub(u).Sub(v), n, mgl32.Vec2{0, uvScale})
	i1 := b.vertex(c.Add(u).Sub(v), n, mgl32.Vec2{uvScale, uvScale})
	i2 := b.vertex(c.Add(u).Add(v), n, mgl32.Vec2{uvScale, 0})
	i3 := b.vertex(c.Sub(u).Add(v), n, mgl32.Vec2{0, 0})
	b.indices = append(b.indices, i0, i1, i2, i0, i2, i3)
}

// Quad returns a unit square in the XY plane facing +Z.
func Quad() Mesh {
	var b builder
	b.face(mgl32.Vec3{}, mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0.5, 0}, 1)
	return NewMesh(b.vertices, b.indices, WithName("quad"))
}

// Plane returns a size × size square in the XZ plane facing +Y. Texture coordinates
// repeat once per world unit.
func Plane(size float32) Mesh {
	var b builder
	h := size / 2
	b.face(mgl32.Vec3{}, mgl32.Vec3{h, 0, 0}, mgl32.Vec3{0, 0, -h}, size)
	return NewMesh(b.vertices, b.indices, WithName("plane"))
}

// Cube returns a unit cube centred on the origin with per-face normals.
func Cube() Mesh {
	var b builder
	x, y, z := mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0, 0, 0.5}
	b.face(z, x, y, 1)                 // +Z
	b.face(z.Mul(-1), x.Mul(-1), y, 1) // -Z
	b.face(x, z.Mul(-1), y, 1)         // +X
	b.face(x.Mul(-1), z, y, 1)         // -X
	b.face(y, x, z.Mul(-1), 1)         // +Y
	b.face(y.Mul(-1), x, z, 1)         // -Y
	return NewMesh(b.vertices, b.indices, WithName("cube"))
}

// Sphere returns a unit UV sphere. Triangles collapsing at the poles are skipped.
//
// Parameters:
//   - rings: latitude subdivisions, at least 2
//   - sectors: longitude subdivisions, at least 3
//
// Returns:
//   - Mesh: the sphere mesh
func Sphere(rings, sectors int) Mesh {
	rings, sectors = max(rings, 2), max(sectors, 3)
	var b builder
	for i := 0; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= sectors; j++ {
			theta := 2 * math.Pi * float64(j) / float64(sectors)
			p := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			b.vertex(p, p, mgl32.Vec2{float32(j) / float32(sectors), float32(i) / float32(rings)})
		}
	}

	row := uint32(sectors + 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < sectors; j++ {
			a := uint32(i)*row + uint32(j)
			c := a + row
			if i != 0 {
				b.indices = append(b.indices, a, a+1, c)
			}
			if i != rings-1 {
				b.indices = append(b.indices, a+1, c+1, c)
			}
		}
	}
	return NewMesh(b.vertices, b.indices, WithName("sphere"), WithBoundingRadius(1))
}
