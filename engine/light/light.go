package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MinimumIntensityScale is the inverse of the smallest light contribution still considered
// visible (5/256 of an 8-bit channel). It sets where a point light's influence is cut off.
const MinimumIntensityScale float32 = 256.0 / 5.0

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance following constant, linear and quadratic terms.
	LightTypePoint
)

// lightImpl is the implementation of both light interfaces. Position and direction are
// not stored here; they come from the transform the light is submitted with.
type lightImpl struct {
	lightType LightType
	color     mgl32.Vec3
	intensity float32
	enabled   bool

	ambient float32

	constant  float32
	linear    float32
	quadratic float32
}

// Light holds the properties every light source shares.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: directional or point
	Type() LightType

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped by the lighting pass.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - color: color as (r, g, b)
	SetColor(color mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

// DirectionalLight is the single sun-like light of a scene. Its direction is the front
// vector of its transform. It also drives the cascaded shadow maps.
type DirectionalLight interface {
	Light

	// Ambient returns the fraction of the light color applied to every surface regardless
	// of orientation or shadowing.
	//
	// Returns:
	//   - float32: the ambient factor
	Ambient() float32

	// SetAmbient sets the ambient factor.
	//
	// Parameters:
	//   - ambient: the ambient factor
	SetAmbient(ambient float32)
}

// PointLight emits in all directions from its transform position and fades by
// 1 / (constant + linear*d + quadratic*d^2).
type PointLight interface {
	Light

	// Attenuation returns the constant, linear and quadratic falloff terms.
	//
	// Returns:
	//   - constant, linear, quadratic: the attenuation coefficients
	Attenuation() (constant, linear, quadratic float32)

	// SetAttenuation replaces the falloff terms.
	//
	// Parameters:
	//   - constant, linear, quadratic: the attenuation coefficients
	SetAttenuation(constant, linear, quadratic float32)

	// Radius returns the distance at which the light's contribution drops below the visible
	// threshold, clamped to far/2.
	//
	// Parameters:
	//   - far: the camera far plane distance
	//
	// Returns:
	//   - float32: the influence radius, zero when the light never reaches the threshold
	Radius(far float32) float32
}

var (
	_ DirectionalLight = &lightImpl{}
	_ PointLight       = &lightImpl{}
)

// NewDirectionalLight creates a white directional light with intensity 1 and ambient 0.1.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - DirectionalLight: a new directional light
func NewDirectionalLight(opts ...LightBuilderOption) DirectionalLight {
	return newLight(LightTypeDirectional, opts)
}

// NewPointLight creates a white point light with intensity 1 and attenuation
// (1, 0.09, 0.032).
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - PointLight: a new point light
func NewPointLight(opts ...LightBuilderOption) PointLight {
	return newLight(LightTypePoint, opts)
}

func newLight(lightType LightType, opts []LightBuilderOption) *lightImpl {
	l := &lightImpl{
		lightType: lightType,
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1.0,
		enabled:   true,
		ambient:   0.1,
		constant:  1.0,
		linear:    0.09,
		quadratic: 0.032,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Ambient() float32 {
	return l.ambient
}

func (l *lightImpl) Attenuation() (constant, linear, quadratic float32) {
	return l.constant, l.linear, l.quadratic
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetAmbient(ambient float32) {
	l.ambient = ambient
}

func (l *lightImpl) SetAttenuation(constant, linear, quadratic float32) {
	l.constant, l.linear, l.quadratic = constant, linear, quadratic
}

func (l *lightImpl) Radius(far float32) float32 {
	return attenuationRadius(l.constant, l.linear, l.quadratic, max(l.color[0], l.color[1], l.color[2])*l.intensity, far)
}

// attenuationRadius solves constant + linear*d + quadratic*d^2 = MinimumIntensityScale*brightness
// for d and clamps the result to [0, far/2].
func attenuationRadius(constant, linear, quadratic, brightness, far float32) float32 {
	limit := far / 2
	if brightness <= 0 {
		return 0
	}
	target := float64(MinimumIntensityScale * brightness)
	c, l, q := float64(constant), float64(linear), float64(quadratic)

	var d float64
	switch {
	case q > 0:
		disc := l*l - 4*q*(c-target)
		if disc < 0 {
			return 0
		}
		d = (-l + math.Sqrt(disc)) / (2 * q)
	case l > 0:
		d = (target - c) / l
	default:
		// Without distance terms the light never fades.
		return limit
	}
	if d <= 0 || math.IsNaN(d) {
		return 0
	}
	return min(float32(d), limit)
}
