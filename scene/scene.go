package scene

import (
	"errors"
	"fmt"

	"github.com/achilleasa/whitted/types"
)

var (
	ErrSceneNotBuilt = errors.New("scene: acceleration structure has not been built")
)

// A scene owns primitives, lights and the camera together with the derived
// KD-tree. Once built it must be treated as read-only.
type Scene struct {
	Camera *Camera

	Primitives []*Primitive
	Lights     []*Light

	BgColor      types.Vec3
	AmbientColor types.Vec3

	tree *KDTree
}

// Create an empty scene.
func NewScene() *Scene {
	return &Scene{
		Primitives: make([]*Primitive, 0),
		Lights:     make([]*Light, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a primitive to the scene. Adding a primitive invalidates the KD-tree.
func (s *Scene) AddPrimitive(primitive *Primitive) error {
	if primitive == nil {
		return fmt.Errorf("scene: nil primitive")
	}
	if primitive.Material == nil {
		return fmt.Errorf("scene: no material assigned to %s primitive", primitive.Type)
	}
	for _, prim := range s.Primitives {
		if prim == primitive {
			return fmt.Errorf("scene: primitive already added")
		}
	}
	if err := primitive.Material.Validate(); err != nil {
		return err
	}

	s.Primitives = append(s.Primitives, primitive)
	s.tree = nil
	return nil
}

// Add a light to the scene.
func (s *Scene) AddLight(light *Light) error {
	if light == nil {
		return fmt.Errorf("scene: nil light")
	}
	for _, l := range s.Lights {
		if l == light {
			return fmt.Errorf("scene: light already added")
		}
	}
	if light.Color.IsInvalid() {
		return fmt.Errorf("scene: light color contains invalid components: %v", light.Color)
	}
	switch light.Type {
	case DirectionalLight:
		if light.Direction.IsInvalid() || light.Direction.IsZero() {
			return fmt.Errorf("scene: directional light requires a non-zero direction")
		}
	case PointLight:
		if light.Position.IsInvalid() {
			return fmt.Errorf("scene: light position contains invalid components: %v", light.Position)
		}
		if !(light.Radius >= 0) || !types.IsFinite(light.Radius) {
			return fmt.Errorf("scene: light radius must be >= 0; got %f", light.Radius)
		}
		if light.Falloff.invalid() {
			return fmt.Errorf("scene: light falloff coefficients must be finite and >= 0; got %v", light.Falloff)
		}
	}

	s.Lights = append(s.Lights, light)
	return nil
}

// Build the KD-tree over the scene primitives.
func (s *Scene) Build(opts KDTreeOptions) {
	volumes := make([]BoundedVolume, len(s.Primitives))
	for i, prim := range s.Primitives {
		volumes[i] = prim
	}
	s.tree = BuildKDTree(volumes, opts)
}

// Returns true if the KD-tree has been built.
func (s *Scene) Built() bool {
	return s.tree != nil
}

// Get the scene KD-tree.
func (s *Scene) KDTree() (*KDTree, error) {
	if s.tree == nil {
		return nil, ErrSceneNotBuilt
	}
	return s.tree, nil
}

// Find the nearest primitive hit by ray using the KD-tree. It falls back
// to a linear scan if the tree has not been built.
func (s *Scene) Intersect(ray types.Ray, hit *Intersection) bool {
	if s.tree == nil {
		return s.IntersectLinear(ray, hit)
	}
	return s.tree.Intersect(s.Primitives, ray, hit)
}

// Find the nearest primitive hit by ray by testing every primitive.
func (s *Scene) IntersectLinear(ray types.Ray, hit *Intersection) bool {
	found := false
	for index, prim := range s.Primitives {
		if prim.Intersect(ray, hit) {
			hit.Primitive = index
			found = true
		}
	}
	return found
}

// Returns true if any primitive is hit by ray closer than maxT.
func (s *Scene) Occluded(ray types.Ray, maxT float32) bool {
	if s.tree == nil {
		return s.OccludedLinear(ray, maxT)
	}
	return s.tree.Occluded(s.Primitives, ray, maxT)
}

// Returns true if any primitive is hit by ray closer than maxT by testing
// every primitive.
func (s *Scene) OccludedLinear(ray types.Ray, maxT float32) bool {
	for _, prim := range s.Primitives {
		hit := Intersection{T: maxT, Primitive: -1}
		if prim.Intersect(ray, &hit) {
			return true
		}
	}
	return false
}

// Get the material at an intersection. If the material has a texture and
// the primitive supports texture mapping, the returned copy carries the
// sampled texel as its diffuse color.
func (s *Scene) SurfaceMaterial(hit *Intersection) Material {
	prim := s.Primitives[hit.Primitive]
	mat := *prim.Material
	if mat.Texture == nil {
		return mat
	}

	if u, v, ok := prim.SurfaceUV(hit.Point); ok {
		mat.Diffuse = mat.Texture.Sample(u*mat.UScale, v*mat.VScale)
	}
	return mat
}
