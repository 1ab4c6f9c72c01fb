package scene

import (
	"fmt"

	"github.com/achilleasa/whitted/types"
)

// A TextureSampler returns the linear color stored at texture coordinates
// (u, v). Coordinates outside [0, 1] wrap around.
type TextureSampler interface {
	Sample(u, v float32) types.Vec3
}

// Defines a surface material.
type Material struct {
	Specular types.Vec3
	Diffuse  types.Vec3
	Ambient  types.Vec3

	// Specular exponent.
	Glossiness float32

	// Fraction of mirror-reflected light in [0, 1].
	Reflectivity float32

	// Optional diffuse texture. When set, the sampled texel replaces the
	// diffuse color on primitives that support texture mapping.
	Texture TextureSampler

	// Texture coordinate scale along the U and V axis.
	UScale float32
	VScale float32
}

// Create a material with the default properties: no specular term, a light
// grey diffuse color and a dim ambient color.
func NewMaterial() *Material {
	return &Material{
		Diffuse: types.Vec3{0.7, 0.7, 0.7},
		Ambient: types.Vec3{0.1, 0.1, 0.1},
		UScale:  1,
		VScale:  1,
	}
}

// Validate material properties.
func (m *Material) Validate() error {
	if !(m.Glossiness >= 0) || !types.IsFinite(m.Glossiness) {
		return fmt.Errorf("scene: material glossiness must be >= 0; got %f", m.Glossiness)
	}
	if !(m.Reflectivity >= 0 && m.Reflectivity <= 1) {
		return fmt.Errorf("scene: material reflectivity must be in [0, 1]; got %f", m.Reflectivity)
	}
	for _, c := range []types.Vec3{m.Specular, m.Diffuse, m.Ambient} {
		if c.IsInvalid() {
			return fmt.Errorf("scene: material color contains invalid components: %v", c)
		}
	}
	if !types.IsFinite(m.UScale) || !types.IsFinite(m.VScale) {
		return fmt.Errorf("scene: material texture scale must be finite; got %f, %f", m.UScale, m.VScale)
	}
	return nil
}
