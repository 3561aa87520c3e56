package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// controllerImpl is the implementation of Controller. Position is derived from the
// target and the spherical coordinates (radius, azimuth, elevation) around it.
type controllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32 // around +Y
	elevation float32 // above the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

// Controller is an orbit camera controller. It keeps a pivot point and spherical
// coordinates around it and writes the resulting pose into a Transform with Apply.
// Panning moves the pivot and the eye together.
type Controller interface {
	// Position returns the eye position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Position() mgl32.Vec3

	// Target returns the pivot point the eye looks at.
	//
	// Returns:
	//   - mgl32.Vec3: world-space pivot
	Target() mgl32.Vec3

	// SetTarget moves the pivot and recomputes the eye position.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Radius returns the distance between eye and pivot.
	Radius() float32

	// Azimuth returns the horizontal angle around +Y in radians.
	Azimuth() float32

	// Elevation returns the vertical angle in radians.
	Elevation() float32

	// OrbitLeft rotates the eye left around the pivot by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the eye right around the pivot by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the eye upward by one step, clamped to the maximum elevation.
	OrbitUp()

	// OrbitDown tilts the eye downward by one step, clamped to the minimum elevation.
	OrbitDown()

	// Drag orbits by a mouse movement in pixels scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx, dy: cursor delta since the last event
	Drag(dx, dy float32)

	// Zoom changes the radius. Positive delta moves the eye closer.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// PanRight moves pivot and eye along the horizontal right axis.
	PanRight(delta float32)

	// PanUp moves pivot and eye along the camera up axis.
	PanUp(delta float32)

	// PanForward moves pivot and eye along the view direction.
	PanForward(delta float32)

	// Apply writes the eye position and a rotation facing the pivot into t.
	//
	// Parameters:
	//   - t: the camera transform
	Apply(t *transform.Transform)
}

var _ Controller = &controllerImpl{}

// NewController creates an orbit controller around the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerBuilderOption) Controller {
	cc := &controllerImpl{
		mu: &sync.Mutex{},

		radius:    20.0,
		elevation: float32(math.Pi / 6),

		minRadius:    1.0,
		maxRadius:    500.0,
		minElevation: -float32(math.Pi/2 - 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        1.0,
		panSpeed:         1.0,
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the eye from the spherical coordinates. Caller must hold the mutex.
func (cc *controllerImpl) updatePosition() {
	sinE, cosE := math.Sincos(float64(cc.elevation))
	sinA, cosA := math.Sincos(float64(cc.azimuth))
	cc.position = cc.target.Add(mgl32.Vec3{
		float32(cosE * sinA),
		float32(sinE),
		float32(cosE * cosA),
	}.Mul(cc.radius))
}

// axes returns the right, up and forward vectors of the current view. Caller must hold the mutex.
func (cc *controllerImpl) axes() (right, up, forward mgl32.Vec3) {
	forward = cc.target.Sub(cc.position)
	if forward.Len() < 1e-8 {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}
	}
	forward = forward.Normalize()
	right = forward.Cross(mgl32.Vec3{0, 1, 0})
	if right.Len() < 1e-8 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

// pan shifts pivot and eye by offset. Caller must hold the mutex.
func (cc *controllerImpl) pan(offset mgl32.Vec3) {
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *controllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *controllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *controllerImpl) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *controllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *controllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *controllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *controllerImpl) OrbitLeft() {
	cc.orbit(-cc.orbitSpeed, 0)
}

func (cc *controllerImpl) OrbitRight() {
	cc.orbit(cc.orbitSpeed, 0)
}

func (cc *controllerImpl) OrbitUp() {
	cc.orbit(0, cc.orbitSpeed)
}

func (cc *controllerImpl) OrbitDown() {
	cc.orbit(0, -cc.orbitSpeed)
}

func (cc *controllerImpl) Drag(dx, dy float32) {
	cc.orbit(-dx*cc.mouseSensitivity, dy*cc.mouseSensitivity)
}

func (cc *controllerImpl) orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += dAzimuth
	cc.elevation = common.Clamp(cc.elevation+dElevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *controllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = common.Clamp(cc.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *controllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _, _ := cc.axes()
	cc.pan(right.Mul(delta * cc.panSpeed))
}

func (cc *controllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up, _ := cc.axes()
	cc.pan(up.Mul(delta * cc.panSpeed))
}

func (cc *controllerImpl) PanForward(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, _, forward := cc.axes()
	cc.pan(forward.Mul(delta * cc.panSpeed))
}

func (cc *controllerImpl) Apply(t *transform.Transform) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, up, forward := cc.axes()
	// Columns map local X, Y, Z; local -Z faces the pivot.
	rotation := mgl32.Mat4ToQuat(mgl32.Mat3FromCols(right, up, forward.Mul(-1)).Mat4()).Normalize()
	t.SetPosition(cc.position)
	t.SetRotation(rotation)
}
