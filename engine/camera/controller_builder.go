package camera

import "github.com/go-gl/mathgl/mgl32"

// ControllerBuilderOption is a functional option for configuring a Controller via NewController.
type ControllerBuilderOption func(*controllerImpl)

// WithRadius sets the initial distance from the pivot.
//
// Parameters:
//   - radius: distance from the pivot
//
// Returns:
//   - ControllerBuilderOption: a function that sets the radius
func WithRadius(radius float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle in radians.
func WithAzimuth(azimuth float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle in radians.
func WithElevation(elevation float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.elevation = elevation
	}
}

// WithTarget sets the pivot point.
//
// Parameters:
//   - target: world-space pivot
//
// Returns:
//   - ControllerBuilderOption: a function that sets the pivot
func WithTarget(target mgl32.Vec3) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.target = target
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - lo: minimum radius
//   - hi: maximum radius
//
// Returns:
//   - ControllerBuilderOption: a function that sets the radius bounds
func WithRadiusBounds(lo, hi float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.minRadius, cc.maxRadius = lo, hi
	}
}

// WithElevationBounds sets the tilt limits in radians.
func WithElevationBounds(lo, hi float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.minElevation, cc.maxElevation = lo, hi
	}
}

// WithOrbitSpeed sets the keyboard orbit step in radians.
func WithOrbitSpeed(speed float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.orbitSpeed = speed
	}
}

// WithMouseSensitivity sets the radians per dragged pixel.
func WithMouseSensitivity(sensitivity float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the radius change per zoom unit.
func WithZoomSpeed(speed float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the distance moved per pan unit.
func WithPanSpeed(speed float32) ControllerBuilderOption {
	return func(cc *controllerImpl) {
		cc.panSpeed = speed
	}
}
