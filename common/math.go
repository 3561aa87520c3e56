package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveZO builds a right-handed perspective projection that maps view-space depth
// [-near, -far] onto clip depth [0, 1], the WebGPU convention. mgl32.Perspective targets
// OpenGL's [-1, 1] range and must not be used with the wgpu backend.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport width / height
//   - near: near plane distance (> 0)
//   - far: far plane distance (> near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = (near * far) / (near - far)
	return m
}

// OrthoZO builds an orthographic projection mapping the box [left,right]x[bottom,top]x[-near,-far]
// onto clip space with depth in [0, 1].
//
// Parameters:
//   - left, right, bottom, top: the box extents on the view-space x and y axes
//   - near, far: distances along -z for depth 0 and depth 1
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func OrthoZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	m := mgl32.Ident4()
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = -1 / (far - near)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[14] = -near / (far - near)
	return m
}

// NDCCorners are the eight corners of the WebGPU clip cube, near face first.
var NDCCorners = [8]mgl32.Vec3{
	{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// FrustumCorners returns the world-space corners of the volume seen through proj*view
// by pushing the clip cube corners through the inverse matrix.
//
// Parameters:
//   - proj: the projection matrix
//   - view: the view matrix
//
// Returns:
//   - [8]mgl32.Vec3: corners in the same order as NDCCorners
func FrustumCorners(proj, view mgl32.Mat4) [8]mgl32.Vec3 {
	inv := proj.Mul4(view).Inv()
	var out [8]mgl32.Vec3
	for i, c := range NDCCorners {
		out[i] = mgl32.TransformCoordinate(c, inv)
	}
	return out
}

// MaxComponent returns the largest of the three components.
func MaxComponent(v mgl32.Vec3) float32 {
	return max(v[0], v[1], v[2])
}

// RotationOnly strips the translation column from a view matrix.
func RotationOnly(m mgl32.Mat4) mgl32.Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}
