package transform

import "github.com/go-gl/mathgl/mgl32"

// TransformBuilderOption is a functional option for configuring a Transform.
type TransformBuilderOption func(*Transform)

// WithPosition sets the initial local position.
func WithPosition(x, y, z float32) TransformBuilderOption {
	return func(t *Transform) {
		t.position = mgl32.Vec3{x, y, z}
	}
}

// WithScale sets the initial local scale.
func WithScale(x, y, z float32) TransformBuilderOption {
	return func(t *Transform) {
		t.scale = mgl32.Vec3{x, y, z}
	}
}

// WithUniformScale sets the same initial scale on all three axes.
func WithUniformScale(s float32) TransformBuilderOption {
	return WithScale(s, s, s)
}

// WithRotation sets the initial local rotation.
func WithRotation(q mgl32.Quat) TransformBuilderOption {
	return func(t *Transform) {
		t.rotation = q.Normalize()
	}
}

// WithEuler sets the initial local rotation from yaw (Y), pitch (X) and roll (Z) in radians.
func WithEuler(yaw, pitch, roll float32) TransformBuilderOption {
	return func(t *Transform) {
		t.rotation = mgl32.AnglesToQuat(yaw, pitch, roll, mgl32.YXZ).Normalize()
	}
}
