package tracer

import (
	"fmt"

	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

// Distance secondary ray origins are pushed along the surface normal to
// avoid re-hitting the surface they start on.
const SurfaceEpsilon float32 = 1e-3

// A recursive Whitted ray tracer with Blinn-Phong shading, soft shadows and
// mirror reflections.
//
// Trace is a pure function of the scene, ray and depth; the scene must not
// be modified while tracing.
type Whitted struct {
	logger   log.Logger
	scene    *scene.Scene
	opts     Options
	counters rayCounters
}

// Create a tracer for a scene. Unless brute force intersection is requested
// the scene KD-tree must have been built.
func NewWhitted(sc *scene.Scene, opts Options) (*Whitted, error) {
	if sc == nil {
		return nil, fmt.Errorf("tracer: no scene specified")
	}
	if !opts.BruteForce && !sc.Built() {
		return nil, scene.ErrSceneNotBuilt
	}
	if opts.ShadowSamples < 1 {
		return nil, fmt.Errorf("tracer: shadow sample count must be >= 1; got %d", opts.ShadowSamples)
	}

	t := &Whitted{
		logger: log.New("whitted tracer"),
		scene:  sc,
		opts:   opts,
	}
	t.logger.Infof("using %s; shadow samples: %d, reflection mode: %s", t.Id(), opts.ShadowSamples, opts.Reflection)
	return t, nil
}

// Get tracer id.
func (t *Whitted) Id() string {
	if t.opts.BruteForce {
		return "whitted (brute force)"
	}
	return "whitted (kd-tree)"
}

// Retrieve ray statistics.
func (t *Whitted) Stats() Stats {
	return t.counters.snapshot()
}

// Trace a primary ray.
func (t *Whitted) Trace(ray types.Ray, depth int) types.Vec3 {
	t.counters.primary.Add(1)
	return t.trace(ray, depth)
}

func (t *Whitted) trace(ray types.Ray, depth int) types.Vec3 {
	if depth < 1 {
		return t.scene.BgColor
	}

	hit := scene.NewIntersection()
	if !t.intersect(ray, &hit) {
		return t.scene.BgColor
	}

	mat := t.scene.SurfaceMaterial(&hit)
	normal := hit.Normal
	viewDir := ray.Direction.Neg()
	origin := hit.Point.Add(normal.Mul(SurfaceEpsilon))

	reflect := mat.Reflectivity > 0
	var reflectDir types.Vec3
	if reflect {
		reflectDir = viewDir.Neg().Reflect(normal)
	}

	var color types.Vec3
	for _, light := range t.scene.Lights {
		intensity := light.IntensityAt(hit.Point)
		if intensity == (types.Vec3{}) {
			continue
		}

		shade := t.ShadeFactor(light, origin)
		if shade <= 0 {
			continue
		}

		lightDir := light.DirectionFrom(hit.Point)
		half := lightDir.Add(viewDir).Normalize()
		specFactor := math32.Pow(math32.Max(0, normal.Dot(half)), mat.Glossiness)
		diffFactor := math32.Max(0, normal.Dot(lightDir))

		direct := intensity.MulVec(mat.Specular).Mul(specFactor).
			Add(intensity.MulVec(mat.Diffuse).Mul(diffFactor))
		color = color.Add(direct.Mul(shade))

		if reflect && t.opts.Reflection == ReflectPerLight {
			color = color.Add(t.reflection(origin, reflectDir, depth).MulVec(color).Mul(mat.Reflectivity))
		}
	}

	if reflect && t.opts.Reflection == ReflectOnce {
		color = color.Add(t.reflection(origin, reflectDir, depth).MulVec(color).Mul(mat.Reflectivity))
	}

	return color.Add(t.scene.AmbientColor.MulVec(mat.Ambient))
}

func (t *Whitted) reflection(origin, dir types.Vec3, depth int) types.Vec3 {
	t.counters.reflection.Add(1)
	return t.trace(types.Ray{Origin: origin, Direction: dir}, depth-1)
}

// Get the unoccluded fraction of the shadow rays cast from point towards
// light. A value of 1 means the point is fully lit and 0 means it is fully
// in shadow.
func (t *Whitted) ShadeFactor(light *scene.Light, point types.Vec3) float32 {
	count := light.SampleCount(t.opts.ShadowSamples)
	occluded := 0
	for i := 0; i < count; i++ {
		sample := light.ShadowRay(point, i, count)
		if t.occluded(sample.Ray, sample.MaxT) {
			occluded++
		}
	}
	t.counters.shadow.Add(uint64(count))

	return 1 - float32(occluded)/float32(count)
}

func (t *Whitted) intersect(ray types.Ray, hit *scene.Intersection) bool {
	if t.opts.BruteForce {
		return t.scene.IntersectLinear(ray, hit)
	}
	return t.scene.Intersect(ray, hit)
}

func (t *Whitted) occluded(ray types.Ray, maxT float32) bool {
	if t.opts.BruteForce {
		return t.scene.OccludedLinear(ray, maxT)
	}
	return t.scene.Occluded(ray, maxT)
}
