package scene

import (
	"math"

	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

type LightType uint8

const (
	DirectionalLight LightType = iota
	PointLight
)

func (lt LightType) String() string {
	switch lt {
	case DirectionalLight:
		return "directional"
	case PointLight:
		return "point"
	}
	return "unknown"
}

// Golden angle in radians; successive shadow samples are rotated by this
// amount to spread them evenly over the light disk.
var goldenAngle = float32(math.Pi * (3 - math.Sqrt(5)))

// Point light attenuation coefficients. The intensity at distance d is
// scaled by 1 / (Constant + Linear*d + Quadratic*d^2).
type Falloff struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

func (f Falloff) invalid() bool {
	for _, c := range []float32{f.Constant, f.Linear, f.Quadratic} {
		if !(c >= 0) || !types.IsFinite(c) {
			return true
		}
	}
	return false
}

// Falloff without any distance attenuation.
var NoFalloff = Falloff{Constant: 1}

// Defines a scene light.
type Light struct {
	// The light type.
	Type LightType

	// Light color (intensity).
	Color types.Vec3

	// Direction the light travels in (directional lights).
	Direction types.Vec3

	// Light position (point lights).
	Position types.Vec3
	Falloff  Falloff

	// Radius of the disk shadow samples are spread over (point lights).
	// A zero radius produces hard shadows.
	Radius float32
}

// A shadow ray and the maximum distance an occluder may be at.
type ShadowSample struct {
	Ray  types.Ray
	MaxT float32
}

// Create a directional light.
func NewDirectionalLight(color, direction types.Vec3) *Light {
	return &Light{
		Type:      DirectionalLight,
		Color:     color,
		Direction: direction.Normalize(),
		Falloff:   NoFalloff,
	}
}

// Create a point light.
func NewPointLight(color, position types.Vec3, falloff Falloff, radius float32) *Light {
	return &Light{
		Type:     PointLight,
		Color:    color,
		Position: position,
		Falloff:  falloff,
		Radius:   math32.Abs(radius),
	}
}

// Get the light intensity arriving at point.
func (l *Light) IntensityAt(point types.Vec3) types.Vec3 {
	if l.Type == DirectionalLight {
		return l.Color
	}

	d := l.Position.Sub(point).Len()
	att := l.Falloff.Constant + l.Falloff.Linear*d + l.Falloff.Quadratic*d*d
	if att < 1e-6 {
		return l.Color
	}
	return l.Color.Mul(1 / att)
}

// Get the unit direction from point towards the light.
func (l *Light) DirectionFrom(point types.Vec3) types.Vec3 {
	if l.Type == DirectionalLight {
		return l.Direction.Neg()
	}
	return l.Position.Sub(point).Normalize()
}

// Get a ray from point towards the light and the distance to the light.
func (l *Light) RayToLight(point types.Vec3) (types.Ray, float32) {
	if l.Type == DirectionalLight {
		return types.Ray{Origin: point, Direction: l.Direction.Neg()}, math.MaxFloat32
	}
	toLight := l.Position.Sub(point)
	return types.Ray{Origin: point, Direction: toLight.Normalize()}, toLight.Len()
}

// Get the number of shadow rays the light casts when count samples are
// requested. Directional lights and point lights without a radius always
// cast a single ray.
func (l *Light) SampleCount(count int) int {
	if l.Type == DirectionalLight || l.Radius == 0 || count < 1 {
		return 1
	}
	return count
}

// Get the index-th of count shadow rays from point towards the light. Point
// light samples target a Vogel disk of the light radius, perpendicular to
// the direction to the light; the pattern is deterministic.
func (l *Light) ShadowRay(point types.Vec3, index, count int) ShadowSample {
	ray, dist := l.RayToLight(point)
	if l.SampleCount(count) == 1 {
		return ShadowSample{Ray: ray, MaxT: dist}
	}

	u, v := types.OrthonormalBasis(ray.Direction)
	r := l.Radius * math32.Sqrt((float32(index)+0.5)/float32(count))
	sin, cos := math32.Sincos(float32(index) * goldenAngle)
	target := l.Position.Add(u.Mul(r * cos)).Add(v.Mul(r * sin))

	toTarget := target.Sub(point)
	return ShadowSample{
		Ray:  types.Ray{Origin: point, Direction: toTarget.Normalize()},
		MaxT: toTarget.Len(),
	}
}

// Get all shadow rays from point towards the light.
func (l *Light) ShadowRays(point types.Vec3, count int) []ShadowSample {
	n := l.SampleCount(count)
	samples := make([]ShadowSample, n)
	for i := 0; i < n; i++ {
		samples[i] = l.ShadowRay(point, i, n)
	}
	return samples
}
