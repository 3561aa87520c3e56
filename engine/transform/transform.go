package transform

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a flat position/scale/rotation triple with cached global values.
//
// There is no parent graph. A Transform can instead carry an "old parent" correction
// (the global state of whatever it was last attached to), and the cached globals are
// the composition of that correction with the local values. Every mutation recomputes
// the globals immediately and bumps the version counter.
//
// Transforms are owned by the application; the renderer only borrows them.
type Transform struct {
	position mgl32.Vec3
	scale    mgl32.Vec3
	rotation mgl32.Quat

	parentPosition mgl32.Vec3
	parentScale    mgl32.Vec3
	parentRotation mgl32.Quat

	globalPosition mgl32.Vec3
	globalScale    mgl32.Vec3
	globalRotation mgl32.Quat

	version uint64
}

// NewTransform creates a Transform at the origin with unit scale and identity rotation,
// then applies the given options.
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - *Transform: the new transform with its globals computed
func NewTransform(options ...TransformBuilderOption) *Transform {
	t := &Transform{
		scale:          mgl32.Vec3{1, 1, 1},
		rotation:       mgl32.QuatIdent(),
		parentScale:    mgl32.Vec3{1, 1, 1},
		parentRotation: mgl32.QuatIdent(),
	}
	for _, option := range options {
		option(t)
	}
	t.update()
	return t
}

// Position returns the local position.
func (t *Transform) Position() mgl32.Vec3 { return t.position }

// Scale returns the local scale.
func (t *Transform) Scale() mgl32.Vec3 { return t.scale }

// Rotation returns the local rotation.
func (t *Transform) Rotation() mgl32.Quat { return t.rotation }

// GlobalPosition returns the cached global position.
func (t *Transform) GlobalPosition() mgl32.Vec3 { return t.globalPosition }

// GlobalScale returns the cached global scale.
func (t *Transform) GlobalScale() mgl32.Vec3 { return t.globalScale }

// GlobalRotation returns the cached global rotation.
func (t *Transform) GlobalRotation() mgl32.Quat { return t.globalRotation }

// Version returns a counter that changes on every mutation. Consumers caching
// data derived from the transform compare versions instead of values.
func (t *Transform) Version() uint64 { return t.version }

// SetPosition replaces the local position.
func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.update()
}

// SetScale replaces the local scale.
func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.update()
}

// SetRotation replaces the local rotation. The quaternion is normalized first.
func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.update()
}

// Translate offsets the local position by delta.
func (t *Transform) Translate(delta mgl32.Vec3) {
	t.position = t.position.Add(delta)
	t.update()
}

// Rotate applies q after the current local rotation.
func (t *Transform) Rotate(q mgl32.Quat) {
	t.rotation = q.Mul(t.rotation).Normalize()
	t.update()
}

// SetParentCorrection records the global state of a former parent so the cached
// globals stay where they were after detaching.
//
// Parameters:
//   - position: the parent's global position
//   - scale: the parent's global scale
//   - rotation: the parent's global rotation
func (t *Transform) SetParentCorrection(position, scale mgl32.Vec3, rotation mgl32.Quat) {
	t.parentPosition = position
	t.parentScale = scale
	t.parentRotation = rotation.Normalize()
	t.update()
}

// Matrix returns the global model matrix, translation * rotation * scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	s := t.globalScale
	return mgl32.Translate3D(t.globalPosition.Elem()).
		Mul4(t.globalRotation.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// Front returns the global forward direction (-Z rotated by the global rotation).
func (t *Transform) Front() mgl32.Vec3 {
	return t.globalRotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// Up returns the global up direction (+Y rotated by the global rotation).
func (t *Transform) Up() mgl32.Vec3 {
	return t.globalRotation.Rotate(mgl32.Vec3{0, 1, 0})
}

// Right returns the global right direction (+X rotated by the global rotation).
func (t *Transform) Right() mgl32.Vec3 {
	return t.globalRotation.Rotate(mgl32.Vec3{1, 0, 0})
}

// AppendRecord appends the global position, scale and rotation (x, y, z, w) to dst,
// the default per-instance record layout.
//
// Parameters:
//   - dst: the slice to append to
//
// Returns:
//   - []float32: dst extended by 10 floats
func (t *Transform) AppendRecord(dst []float32) []float32 {
	p, s, r := t.globalPosition, t.globalScale, t.globalRotation
	return append(dst,
		p[0], p[1], p[2],
		s[0], s[1], s[2],
		r.V[0], r.V[1], r.V[2], r.W,
	)
}

func (t *Transform) update() {
	t.globalScale = mgl32.Vec3{
		t.parentScale[0] * t.scale[0],
		t.parentScale[1] * t.scale[1],
		t.parentScale[2] * t.scale[2],
	}
	t.globalRotation = t.parentRotation.Mul(t.rotation).Normalize()
	scaled := mgl32.Vec3{
		t.parentScale[0] * t.position[0],
		t.parentScale[1] * t.position[1],
		t.parentScale[2] * t.position[2],
	}
	t.globalPosition = t.parentPosition.Add(t.parentRotation.Rotate(scaled))
	t.version++
}
