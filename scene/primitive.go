package scene

import (
	"math"

	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

type PrimitiveType uint8

const (
	PlanePrimitive PrimitiveType = iota
	SpherePrimitive
	CubePrimitive
	TrianglePrimitive
)

func (pt PrimitiveType) String() string {
	switch pt {
	case PlanePrimitive:
		return "plane"
	case SpherePrimitive:
		return "sphere"
	case CubePrimitive:
		return "cube"
	case TrianglePrimitive:
		return "triangle"
	}
	return "unknown"
}

const (
	// Extent of the reported plane bounding box along every axis the plane
	// is not perpendicular to.
	planeExtent float32 = 1e5

	// Half-thickness of the bounding box of an axis-aligned plane.
	planeThickness float32 = 1e-3
)

// Defines a scene primitive. Only the fields relevant to the primitive
// Type are populated.
type Primitive struct {
	// The primitive type.
	Type PrimitiveType

	// Sphere center.
	Center types.Vec3
	Radius float32

	// Plane normal and distance from origin (Normal . p = Dist for every
	// point p on the plane). Triangles store their face plane here too.
	Normal types.Vec3
	Dist   float32

	// Plane texture mapping axes.
	UAxis types.Vec3
	VAxis types.Vec3

	// Cube local-to-world transform applied to the canonical box [-1, 1]^3,
	// its inverse and the inverse-transpose used for transforming normals.
	Transform    types.Mat4
	InvTransform types.Mat4
	normalMat    types.Mat4

	// Triangle vertices and inward facing edge planes.
	Vertices [3]types.Vec3
	TriEdge  [3]types.Vec4

	// The primitive material.
	Material *Material

	bbox types.AABB

	// Set for inputs that can never produce a valid hit (zero radius,
	// zero-area triangle, singular transform, zero-length normal).
	degenerate bool
}

// Create new sphere primitive.
func NewSphere(center types.Vec3, radius float32, material *Material) *Primitive {
	r := math32.Abs(radius)
	return &Primitive{
		Type:     SpherePrimitive,
		Center:   center,
		Radius:   radius,
		Material: material,
		bbox: types.AABB{
			Min: center.Sub(types.Vec3{r, r, r}),
			Max: center.Add(types.Vec3{r, r, r}),
		},
		degenerate: !(radius > 0) || center.IsInvalid(),
	}
}

// Create new plane primitive from its normal and a point lying on it.
func NewPlane(normal, point types.Vec3, material *Material) *Primitive {
	n := normal.Normalize()
	u, v := types.OrthonormalBasis(n)
	prim := &Primitive{
		Type:       PlanePrimitive,
		Normal:     n,
		Dist:       n.Dot(point),
		UAxis:      u,
		VAxis:      v,
		Material:   material,
		degenerate: n.IsZero() || point.IsInvalid(),
	}

	prim.bbox = types.AABB{
		Min: types.Vec3{-planeExtent, -planeExtent, -planeExtent},
		Max: types.Vec3{planeExtent, planeExtent, planeExtent},
	}
	for axis := 0; axis < 3; axis++ {
		if math32.Abs(n[axis]) > 1-1e-6 {
			c := point[axis]
			prim.bbox.Min[axis] = c - planeThickness
			prim.bbox.Max[axis] = c + planeThickness
		}
	}
	return prim
}

// Create new cube primitive by applying a local-to-world transform to the
// canonical box [-1, 1]^3.
func NewCube(transform types.Mat4, material *Material) *Primitive {
	prim := &Primitive{
		Type:      CubePrimitive,
		Transform: transform,
		Material:  material,
	}

	inv, ok := transform.Inv()
	if !ok {
		prim.degenerate = true
		inv = types.Ident4()
	}
	prim.InvTransform = inv
	prim.normalMat = inv.Transpose()

	bbox := types.EmptyAABB()
	for corner := 0; corner < 8; corner++ {
		p := types.Vec3{-1, -1, -1}
		for axis := 0; axis < 3; axis++ {
			if corner&(1<<uint(axis)) != 0 {
				p[axis] = 1
			}
		}
		bbox = bbox.Extend(transform.TransformPosition(p))
	}
	prim.bbox = bbox
	return prim
}

// Create a cube centered at center with the given half-extents along each
// axis and a rotation. The transform is composed as T * R * S.
func NewBox(center, halfExtents types.Vec3, rotation types.Quat, material *Material) *Primitive {
	transform := types.Translate4(center).
		Mul4(rotation.Mat4()).
		Mul4(types.Scale4(halfExtents))
	return NewCube(transform, material)
}

// Create new triangle primitive. The face normal follows the right-hand
// rule for the vertex order v0, v1, v2.
func NewTriangle(vertices [3]types.Vec3, material *Material) *Primitive {
	prim := &Primitive{
		Type:     TrianglePrimitive,
		Vertices: vertices,
		Material: material,
		bbox:     types.EmptyAABB().Extend(vertices[0]).Extend(vertices[1]).Extend(vertices[2]),
	}

	e1 := vertices[1].Sub(vertices[0])
	e2 := vertices[2].Sub(vertices[1])
	e3 := vertices[0].Sub(vertices[2])

	// The cross product length is twice the triangle area
	cross := e1.Cross(vertices[2].Sub(vertices[0]))
	if cross.Len() < 1e-9 || cross.IsInvalid() {
		prim.degenerate = true
		return prim
	}

	normal := cross.Normalize()
	prim.Normal = normal
	prim.Dist = normal.Dot(vertices[0])

	// Edge planes point towards the triangle interior
	e1p := normal.Cross(e1).Normalize()
	e2p := normal.Cross(e2).Normalize()
	e3p := normal.Cross(e3).Normalize()
	prim.TriEdge[0] = e1p.Vec4(e1p.Dot(vertices[0]))
	prim.TriEdge[1] = e2p.Vec4(e2p.Dot(vertices[1]))
	prim.TriEdge[2] = e3p.Vec4(e3p.Dot(vertices[2]))
	return prim
}

// Get primitive bounding box.
func (p *Primitive) BBox() types.AABB {
	return p.bbox
}

// Returns true if the primitive has a finite bounding box. Planes are
// unbounded; their BBox is clamped for reporting purposes only.
func (p *Primitive) Bounded() bool {
	return p.Type != PlanePrimitive
}

// Returns true if the primitive can never be hit.
func (p *Primitive) Degenerate() bool {
	return p.degenerate
}

// Map a surface point to texture coordinates. Only planes and spheres
// support texture mapping.
func (p *Primitive) SurfaceUV(point types.Vec3) (u, v float32, ok bool) {
	switch p.Type {
	case PlanePrimitive:
		return point.Dot(p.UAxis), point.Dot(p.VAxis), true
	case SpherePrimitive:
		d := point.Sub(p.Center).Mul(1 / p.Radius)
		y := math32.Max(-1, math32.Min(1, d[1]))
		u = 0.5 + math32.Atan2(d[2], d[0])/(2*math.Pi)
		v = 0.5 - math32.Asin(y)/math.Pi
		return u, v, true
	}
	return 0, 0, false
}
