package types

import (
	"math"

	"github.com/chewxy/math32"
)

// An axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// An empty box that any Union will replace.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Get the smallest box enclosing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: MinVec3(b.Min, other.Min),
		Max: MaxVec3(b.Max, other.Max),
	}
}

// Grow box to include point.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{
		Min: MinVec3(b.Min, p),
		Max: MaxVec3(b.Max, p),
	}
}

// Get box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get box extent along each axis.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the index of the axis with the largest extent. Ties resolve to the
// lower axis.
func (b AABB) WidestAxis() int {
	ext := b.Extent()
	axis := 0
	if ext[1] > ext[axis] {
		axis = 1
	}
	if ext[2] > ext[axis] {
		axis = 2
	}
	return axis
}

// Check whether the box contains point p.
func (b AABB) Contains(p Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Intersect ray with the box using the slab method. On a hit it returns the
// entry and exit distances along the ray. The entry distance is clamped to 0
// when the ray origin is inside the box.
func (b AABB) IntersectRay(r Ray) (tNear, tFar float32, ok bool) {
	tNear = 0
	tFar = math.MaxFloat32

	for i := 0; i < 3; i++ {
		if math32.Abs(r.Direction[i]) < floatCmpEpsilon {
			// Parallel to this slab; miss unless origin lies between the planes
			if r.Origin[i] < b.Min[i] || r.Origin[i] > b.Max[i] {
				return 0, 0, false
			}
			continue
		}

		invD := 1.0 / r.Direction[i]
		t1 := (b.Min[i] - r.Origin[i]) * invD
		t2 := (b.Max[i] - r.Origin[i]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, 0, false
		}
	}

	return tNear, tFar, true
}
