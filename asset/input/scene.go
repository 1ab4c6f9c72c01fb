package input

import (
	"fmt"
	"strings"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/types"
)

type LightType string

const (
	DirectionalLight LightType = "directional"
	PointLight       LightType = "point"
)

type PrimitiveType string

const (
	Plane    PrimitiveType = "plane"
	Sphere   PrimitiveType = "sphere"
	Cube     PrimitiveType = "cube"
	Triangle PrimitiveType = "triangle"
)

// Surface material description.
type Material struct {
	Specular     types.Vec3 `yaml:"specular,flow"`
	Diffuse      types.Vec3 `yaml:"diffuse,flow"`
	Ambient      types.Vec3 `yaml:"ambient,flow"`
	Glossiness   float32    `yaml:"specular_exponent"`
	Reflectivity float32    `yaml:"reflectivity"`

	// Optional diffuse texture and its U/V axis scales.
	Texture string  `yaml:"texture,omitempty"`
	UScale  float32 `yaml:"u_scale,omitempty"`
	VScale  float32 `yaml:"v_scale,omitempty"`
}

// Camera settings. LookAt and Up are optional.
type Camera struct {
	Position types.Vec3  `yaml:"position,flow"`
	FOV      float32     `yaml:"fov"`
	LookAt   *types.Vec3 `yaml:"look_at,flow,omitempty"`
	Up       *types.Vec3 `yaml:"up,flow,omitempty"`
}

// Light description. Falloff holds the constant, linear and quadratic
// attenuation coefficients of point lights.
type Light struct {
	Type      LightType   `yaml:"type"`
	Color     types.Vec3  `yaml:"color,flow"`
	Direction types.Vec3  `yaml:"direction,flow,omitempty"`
	Position  types.Vec3  `yaml:"position,flow,omitempty"`
	Falloff   *types.Vec3 `yaml:"falloff,flow,omitempty"`
	Radius    float32     `yaml:"radius,omitempty"`
}

// Primitive description. The populated fields depend on Type:
//   - plane:    Normal, Point
//   - sphere:   Center, Radius
//   - cube:     Center, Scale, Rotation (yaw, pitch, roll in degrees)
//   - triangle: Vertices
type Primitive struct {
	Type     PrimitiveType `yaml:"type"`
	Normal   types.Vec3    `yaml:"normal,flow,omitempty"`
	Point    types.Vec3    `yaml:"point,flow,omitempty"`
	Center   types.Vec3    `yaml:"center,flow,omitempty"`
	Radius   float32       `yaml:"radius,omitempty"`
	Scale    types.Vec3    `yaml:"scale,flow,omitempty"`
	Rotation types.Vec3    `yaml:"rotation,flow,omitempty"`
	Vertices []types.Vec3  `yaml:"vertices,flow,omitempty"`
	Material Material      `yaml:"material"`
}

// A triangle mesh loaded from a model file.
type Mesh struct {
	Name      string
	Triangles [][3]types.Vec3
}

// Get the mesh AABB.
func (m *Mesh) BBox() types.AABB {
	bbox := types.EmptyAABB()
	for _, tri := range m.Triangles {
		for _, v := range tri {
			bbox = bbox.Extend(v)
		}
	}
	return bbox
}

// A model instance. Model vertices are scaled by Scale and then translated
// by Translation. A zero Scale is treated as 2 for .mdl models and 1 for
// everything else.
type Model struct {
	File        string     `yaml:"file"`
	Translation types.Vec3 `yaml:"translation,flow"`
	Scale       float32    `yaml:"scale,omitempty"`
	Material    Material   `yaml:"material"`

	// Populated by the scene reader.
	Mesh *Mesh `yaml:"-"`
}

// The scene contains all elements that are processed by the scene compiler.
type Scene struct {
	Background types.Vec3   `yaml:"background,flow"`
	Ambient    types.Vec3   `yaml:"ambient,flow"`
	Camera     *Camera      `yaml:"camera,omitempty"`
	Lights     []*Light     `yaml:"lights,omitempty"`
	Primitives []*Primitive `yaml:"primitives,omitempty"`
	Models     []*Model     `yaml:"models,omitempty"`

	// Resource used for resolving relative texture paths.
	AssetRelPath *asset.Resource `yaml:"-"`
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Lights:     make([]*Light, 0),
		Primitives: make([]*Primitive, 0),
		Models:     make([]*Model, 0),
	}
}

// Parse a light type name.
func ParseLightType(name string) (LightType, error) {
	switch lt := LightType(strings.ToLower(name)); lt {
	case DirectionalLight, PointLight:
		return lt, nil
	}
	return "", fmt.Errorf("unknown light type %q", name)
}

// Parse a primitive type name.
func ParsePrimitiveType(name string) (PrimitiveType, error) {
	switch pt := PrimitiveType(strings.ToLower(name)); pt {
	case Plane, Sphere, Cube, Triangle:
		return pt, nil
	}
	return "", fmt.Errorf("unknown primitive type %q", name)
}
