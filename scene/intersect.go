package scene

import (
	"math"

	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

const (
	// Hits closer than this distance to the ray origin are discarded.
	minHitDistance float32 = 1e-5

	// Denominators below this value are treated as parallel rays.
	parallelEpsilon float32 = 1e-7

	// Distance a cube hit point is pushed along the surface normal so that
	// secondary rays do not immediately hit the same face.
	CubeSurfaceOffset float32 = 1e-4

	// Slack for the triangle edge plane tests.
	edgeEpsilon float32 = 1e-6
)

// Intersection describes the nearest hit found so far.
type Intersection struct {
	// Distance along the ray. Before a query it holds the upper bound for
	// accepted hits.
	T float32

	Point  types.Vec3
	Normal types.Vec3

	// Index of the hit primitive in the scene primitive list or -1.
	Primitive int
}

// Create an empty intersection that accepts hits at any distance.
func NewIntersection() Intersection {
	return Intersection{T: math.MaxFloat32, Primitive: -1}
}

// Returns true if a primitive was hit.
func (in *Intersection) Hit() bool {
	return in.Primitive >= 0
}

// Intersect ray with the primitive. Candidate hits at or beyond hit.T are
// rejected. On success hit.T, hit.Point and hit.Normal are updated; the
// caller is responsible for recording the primitive index. The reported
// normal is unit length and faces the ray origin.
func (p *Primitive) Intersect(ray types.Ray, hit *Intersection) bool {
	if p.degenerate {
		return false
	}

	switch p.Type {
	case SpherePrimitive:
		return p.intersectSphere(ray, hit)
	case PlanePrimitive:
		return p.intersectPlane(ray, hit)
	case CubePrimitive:
		return p.intersectCube(ray, hit)
	case TrianglePrimitive:
		return p.intersectTriangle(ray, hit)
	}
	return false
}

func (p *Primitive) intersectSphere(ray types.Ray, hit *Intersection) bool {
	l := ray.Origin.Sub(p.Center)
	a := ray.Direction.Dot(ray.Direction)
	if a < parallelEpsilon {
		return false
	}
	b := ray.Direction.Dot(l)
	c := l.Dot(l) - p.Radius*p.Radius

	disc := b*b - a*c
	if disc < 0 {
		return false
	}

	sq := math32.Sqrt(disc)
	t := (-b - sq) / a
	if t <= minHitDistance {
		t = (-b + sq) / a
	}
	if t <= minHitDistance || t >= hit.T {
		return false
	}

	point := ray.At(t)
	hit.T = t
	hit.Point = point
	hit.Normal = faceForward(point.Sub(p.Center).Mul(1/p.Radius).Normalize(), ray.Direction)
	return true
}

func (p *Primitive) intersectPlane(ray types.Ray, hit *Intersection) bool {
	denom := p.Normal.Dot(ray.Direction)
	if math32.Abs(denom) < parallelEpsilon {
		return false
	}

	t := (p.Dist - p.Normal.Dot(ray.Origin)) / denom
	if t <= minHitDistance || t >= hit.T {
		return false
	}

	hit.T = t
	hit.Point = ray.At(t)
	hit.Normal = faceForward(p.Normal, ray.Direction)
	return true
}

// The cube is tested as the box [-1, 1]^3 in object space. The ray
// direction is transformed but not renormalized so that t values are shared
// between object and world space.
func (p *Primitive) intersectCube(ray types.Ray, hit *Intersection) bool {
	o := p.InvTransform.TransformPosition(ray.Origin)
	d := p.InvTransform.TransformDirection(ray.Direction)

	var tMin, tMax float32 = -math.MaxFloat32, math.MaxFloat32
	for axis := 0; axis < 3; axis++ {
		if math32.Abs(d[axis]) < parallelEpsilon {
			if o[axis] < -1 || o[axis] > 1 {
				return false
			}
			continue
		}

		invD := 1.0 / d[axis]
		t1 := (-1 - o[axis]) * invD
		t2 := (1 - o[axis]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	// When the origin is inside the box the exit point is the hit
	t := tMin
	if t <= minHitDistance {
		t = tMax
	}
	if t <= minHitDistance || t >= hit.T {
		return false
	}

	// Select the face from the object-space axis with the largest magnitude
	local := o.Add(d.Mul(t))
	faceAxis := 0
	largest := math32.Abs(local[0])
	for axis := 1; axis < 3; axis++ {
		if v := math32.Abs(local[axis]); v > largest {
			largest = v
			faceAxis = axis
		}
	}
	var localNormal types.Vec3
	localNormal[faceAxis] = 1
	if local[faceAxis] < 0 {
		localNormal[faceAxis] = -1
	}

	normal := p.normalMat.TransformDirection(localNormal).Normalize()
	if normal.IsZero() {
		return false
	}
	normal = faceForward(normal, ray.Direction)

	hit.T = t
	hit.Normal = normal
	hit.Point = ray.At(t).Add(normal.Mul(CubeSurfaceOffset))
	return true
}

func (p *Primitive) intersectTriangle(ray types.Ray, hit *Intersection) bool {
	denom := p.Normal.Dot(ray.Direction)
	if math32.Abs(denom) < parallelEpsilon {
		return false
	}

	t := (p.Dist - p.Normal.Dot(ray.Origin)) / denom
	if t <= minHitDistance || t >= hit.T {
		return false
	}

	point := ray.At(t)
	for _, edge := range p.TriEdge {
		if edge.Vec3().Dot(point)-edge[3] < -edgeEpsilon {
			return false
		}
	}

	hit.T = t
	hit.Point = point
	hit.Normal = faceForward(p.Normal, ray.Direction)
	return true
}

// Flip normal so that it points against the ray direction.
func faceForward(normal, dir types.Vec3) types.Vec3 {
	if normal.Dot(dir) > 0 {
		return normal.Neg()
	}
	return normal
}
