package light

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCascadeDivisors split the camera range into four cascades ending at far/50,
// far/25, far/10 and far/2.
var DefaultCascadeDivisors = []float32{50, 25, 10, 2}

// Cascade is one fitted shadow frustum.
type Cascade struct {
	// Near and Far bound the slice of the camera frustum this cascade covers.
	Near, Far float32
	// Corners are the world-space corners of the slice, near face first.
	Corners  [8]mgl32.Vec3
	Centroid mgl32.Vec3

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4

	// Min and Max are the light-space bounds after the depth extension.
	Min, Max mgl32.Vec3
}

// CascadeSplits returns the [near, far] range of each cascade. Cascade i ends at
// far/divisors[i] and starts where the previous one ended, the first at near.
//
// Parameters:
//   - near: the camera near plane
//   - far: the camera far plane
//   - divisors: one divisor per cascade, decreasing
//
// Returns:
//   - [][2]float32: one range per divisor
func CascadeSplits(near, far float32, divisors []float32) [][2]float32 {
	out := make([][2]float32, len(divisors))
	prev := near
	for i, d := range divisors {
		end := far / d
		if end < prev {
			end = prev
		}
		out[i] = [2]float32{prev, end}
		prev = end
	}
	return out
}

// FitCascade fits an orthographic light frustum around the slice [near, far] of the
// camera frustum. The depth bounds are extended to [-cameraFar, cameraFar] in light
// space so casters outside the slice still land in the map.
//
// Parameters:
//   - view: the camera view matrix
//   - fov, aspect: the camera projection parameters
//   - near, far: the slice range
//   - lightFront: the light direction
//   - lightUp: an up vector not parallel to lightFront
//   - cameraFar: the full camera far plane
//
// Returns:
//   - Cascade: the fitted cascade
func FitCascade(view mgl32.Mat4, fov, aspect, near, far float32, lightFront, lightUp mgl32.Vec3, cameraFar float32) Cascade {
	c := Cascade{Near: near, Far: far}
	c.Corners = common.FrustumCorners(common.PerspectiveZO(fov, aspect, near, far), view)

	for _, p := range c.Corners {
		c.Centroid = c.Centroid.Add(p)
	}
	c.Centroid = c.Centroid.Mul(1.0 / float32(len(c.Corners)))

	c.View = mgl32.LookAtV(c.Centroid.Sub(lightFront), c.Centroid, lightUp)

	c.Min = mgl32.Vec3{inf, inf, inf}
	c.Max = mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range c.Corners {
		q := mgl32.TransformCoordinate(p, c.View)
		for k := range 3 {
			c.Min[k] = min(c.Min[k], q[k])
			c.Max[k] = max(c.Max[k], q[k])
		}
	}
	c.Min[2] = min(c.Min[2], -cameraFar)
	c.Max[2] = max(c.Max[2], cameraFar)

	// The light looks down -z: the largest z is nearest.
	c.Projection = common.OrthoZO(c.Min[0], c.Max[0], c.Min[1], c.Max[1], -c.Max[2], -c.Min[2])
	c.ViewProjection = c.Projection.Mul4(c.View)
	return c
}

// ComputeCascades fits one cascade per divisor.
//
// Parameters:
//   - view: the camera view matrix
//   - fov, aspect, near, far: the camera projection parameters
//   - lightFront, lightUp: the directional light basis
//   - divisors: the split divisors, DefaultCascadeDivisors when empty
//
// Returns:
//   - []Cascade: the fitted cascades, nearest first
func ComputeCascades(view mgl32.Mat4, fov, aspect, near, far float32, lightFront, lightUp mgl32.Vec3, divisors []float32) []Cascade {
	if len(divisors) == 0 {
		divisors = DefaultCascadeDivisors
	}
	splits := CascadeSplits(near, far, divisors)
	out := make([]Cascade, len(splits))
	for i, s := range splits {
		out[i] = FitCascade(view, fov, aspect, s[0], s[1], lightFront, lightUp, far)
	}
	return out
}

const inf = float32(1e30)
