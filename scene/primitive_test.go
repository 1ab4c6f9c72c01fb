package scene

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

const testTolerance float32 = 1e-3

func TestSphereIntersection(t *testing.T) {
	type spec struct {
		ray    types.Ray
		hit    bool
		expT   float32
		normal types.Vec3
	}

	sphere := NewSphere(types.XYZ(0, 0, -5), 1, NewMaterial())
	specs := []spec{
		{types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), true, 4, types.XYZ(0, 0, 1)},
		// origin inside the sphere; normal faces the origin
		{types.NewRay(types.XYZ(0, 0, -5), types.XYZ(0, 1, 0)), true, 1, types.XYZ(0, -1, 0)},
		{types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1)), false, 0, types.Vec3{}},
		{types.NewRay(types.XYZ(0, 2, 0), types.XYZ(0, 0, -1)), false, 0, types.Vec3{}},
	}

	for index, s := range specs {
		hit := NewIntersection()
		if got := sphere.Intersect(s.ray, &hit); got != s.hit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.hit, got)
		}
		if !s.hit {
			continue
		}
		if math32.Abs(hit.T-s.expT) > testTolerance {
			t.Fatalf("[spec %d] expected t = %f; got %f", index, s.expT, hit.T)
		}
		if hit.Normal.Sub(s.normal).Len() > testTolerance {
			t.Fatalf("[spec %d] expected normal %v; got %v", index, s.normal, hit.Normal)
		}
	}
}

func TestIntersectionRespectsMaxT(t *testing.T) {
	sphere := NewSphere(types.XYZ(0, 0, -5), 1, NewMaterial())
	ray := types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))

	hit := NewIntersection()
	hit.T = 3.5
	if sphere.Intersect(ray, &hit) {
		t.Fatal("expected hit beyond maxT to be rejected")
	}
	if hit.T != 3.5 {
		t.Fatalf("expected rejected query to leave t unchanged; got %f", hit.T)
	}

	hit.T = 10
	if !sphere.Intersect(ray, &hit) || math32.Abs(hit.T-4) > testTolerance {
		t.Fatalf("expected hit at t = 4; got %f", hit.T)
	}
}

func TestPlaneIntersection(t *testing.T) {
	plane := NewPlane(types.XYZ(0, 1, 0), types.XYZ(0, -1, 0), NewMaterial())

	hit := NewIntersection()
	ray := types.NewRay(types.XYZ(0, 1, 0), types.XYZ(0, -1, 0))
	if !plane.Intersect(ray, &hit) {
		t.Fatal("expected ray to hit the plane")
	}
	if math32.Abs(hit.T-2) > testTolerance {
		t.Fatalf("expected t = 2; got %f", hit.T)
	}

	// Parallel ray
	hit = NewIntersection()
	if plane.Intersect(types.NewRay(types.XYZ(0, 1, 0), types.XYZ(1, 0, 0)), &hit) {
		t.Fatal("expected parallel ray to miss the plane")
	}

	// Plane behind the ray
	hit = NewIntersection()
	if plane.Intersect(types.NewRay(types.XYZ(0, 1, 0), types.XYZ(0, 1, 0)), &hit) {
		t.Fatal("expected ray pointing away to miss the plane")
	}

	// Hit from below flips the normal
	hit = NewIntersection()
	if !plane.Intersect(types.NewRay(types.XYZ(0, -3, 0), types.XYZ(0, 1, 0)), &hit) {
		t.Fatal("expected ray from below to hit the plane")
	}
	if exp := types.XYZ(0, -1, 0); hit.Normal != exp {
		t.Fatalf("expected normal %v; got %v", exp, hit.Normal)
	}
}

func TestCubeIntersection(t *testing.T) {
	type spec struct {
		ray    types.Ray
		hit    bool
		expT   float32
		normal types.Vec3
	}

	unitCube := NewCube(types.Ident4(), NewMaterial())
	specs := []spec{
		{types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1)), true, 4, types.XYZ(0, 0, 1)},
		{types.NewRay(types.XYZ(5, 5, 5), types.XYZ(0, 0, -1)), false, 0, types.Vec3{}},
		{types.NewRay(types.XYZ(-3, 0.5, 0.2), types.XYZ(1, 0, 0)), true, 2, types.XYZ(-1, 0, 0)},
		// origin inside the box
		{types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, -1, 0)), true, 1, types.XYZ(0, 1, 0)},
	}

	for index, s := range specs {
		hit := NewIntersection()
		if got := unitCube.Intersect(s.ray, &hit); got != s.hit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.hit, got)
		}
		if !s.hit {
			continue
		}
		if math32.Abs(hit.T-s.expT) > testTolerance {
			t.Fatalf("[spec %d] expected t = %f; got %f", index, s.expT, hit.T)
		}
		if hit.Normal.Sub(s.normal).Len() > testTolerance {
			t.Fatalf("[spec %d] expected normal %v; got %v", index, s.normal, hit.Normal)
		}
		expPoint := s.ray.At(hit.T).Add(hit.Normal.Mul(CubeSurfaceOffset))
		if hit.Point.Sub(expPoint).Len() > 1e-5 {
			t.Fatalf("[spec %d] expected hit point to be offset along the normal; got %v", index, hit.Point)
		}
	}
}

func TestTransformedCubeIntersection(t *testing.T) {
	// Box centered at (0, 0, -10), 2 units wide along X and rotated 90
	// degrees around Y so that its long side faces the camera.
	cube := NewBox(types.XYZ(0, 0, -10), types.XYZ(2, 0.5, 0.5), types.QuatFromYawPitchRoll(90, 0, 0), NewMaterial())

	hit := NewIntersection()
	if !cube.Intersect(types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), &hit) {
		t.Fatal("expected ray to hit the rotated cube")
	}
	if math32.Abs(hit.T-8) > testTolerance {
		t.Fatalf("expected t = 8; got %f", hit.T)
	}
	if exp := types.XYZ(0, 0, 1); hit.Normal.Sub(exp).Len() > testTolerance {
		t.Fatalf("expected normal %v; got %v", exp, hit.Normal)
	}

	// After rotation the box is only 1 unit wide along X
	hit = NewIntersection()
	if cube.Intersect(types.NewRay(types.XYZ(1, 0, 0), types.XYZ(0, 0, -1)), &hit) {
		t.Fatal("expected ray to miss the rotated cube")
	}

	bbox := cube.BBox()
	if math32.Abs(bbox.Min[2]+12) > testTolerance || math32.Abs(bbox.Max[0]-0.5) > testTolerance {
		t.Fatalf("unexpected rotated cube bbox %v", bbox)
	}
}

func TestTriangleIntersection(t *testing.T) {
	tri := NewTriangle([3]types.Vec3{
		types.XYZ(-1, -1, -3),
		types.XYZ(1, -1, -3),
		types.XYZ(0, 1, -3),
	}, NewMaterial())

	hit := NewIntersection()
	if !tri.Intersect(types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), &hit) {
		t.Fatal("expected ray to hit the triangle")
	}
	if math32.Abs(hit.T-3) > testTolerance {
		t.Fatalf("expected t = 3; got %f", hit.T)
	}
	if exp := types.XYZ(0, 0, 1); hit.Normal != exp {
		t.Fatalf("expected normal %v; got %v", exp, hit.Normal)
	}

	hit = NewIntersection()
	if tri.Intersect(types.NewRay(types.XYZ(0.9, 0.9, 0), types.XYZ(0, 0, -1)), &hit) {
		t.Fatal("expected ray outside the triangle edges to miss")
	}
}

func TestDegeneratePrimitives(t *testing.T) {
	mat := NewMaterial()
	prims := []*Primitive{
		NewSphere(types.XYZ(0, 0, -5), 0, mat),
		NewPlane(types.XYZ(0, 0, 0), types.XYZ(0, 0, -5), mat),
		NewCube(types.Scale4(types.XYZ(1, 0, 1)), mat),
		NewTriangle([3]types.Vec3{types.XYZ(0, 0, -5), types.XYZ(1, 1, -5), types.XYZ(2, 2, -5)}, mat),
	}

	ray := types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	for index, prim := range prims {
		if !prim.Degenerate() {
			t.Fatalf("[prim %d] expected %s to be flagged as degenerate", index, prim.Type)
		}
		hit := NewIntersection()
		if prim.Intersect(ray, &hit) {
			t.Fatalf("[prim %d] expected degenerate %s to never report a hit", index, prim.Type)
		}
		bbox := prim.BBox()
		if bbox.Min.IsInvalid() || bbox.Max.IsInvalid() {
			t.Fatalf("[prim %d] expected a valid bbox; got %v", index, bbox)
		}
	}
}

// Every reported hit must lie on the primitive surface and carry a unit
// normal that faces the ray origin.
func TestHitsLieOnSurface(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	prims := randomPrimitives(rng, 40)

	hits := 0
	for i := 0; i < 2000; i++ {
		ray := randomRay(rng)
		for index, prim := range prims {
			hit := NewIntersection()
			if !prim.Intersect(ray, &hit) {
				continue
			}
			hits++

			if l := hit.Normal.Len(); math32.Abs(l-1) > testTolerance {
				t.Fatalf("[ray %d, prim %d] expected unit normal; got length %f", i, index, l)
			}
			point := ray.At(hit.T)
			if facing := hit.Normal.Dot(ray.Origin.Sub(point)); facing < -testTolerance {
				t.Fatalf("[ray %d, prim %d] expected normal to face the ray origin; got dot %f", i, index, facing)
			}
			if dist := surfaceDistance(prim, point); dist > 5*testTolerance {
				t.Fatalf("[ray %d, prim %d] expected %s hit point to lie on the surface; got distance %f", i, index, prim.Type, dist)
			}
		}
	}

	if hits == 0 {
		t.Fatal("expected some rays to hit the primitives")
	}
}

func TestSurfaceUV(t *testing.T) {
	plane := NewPlane(types.XYZ(0, 1, 0), types.XYZ(0, 0, 0), NewMaterial())
	p := plane.UAxis.Mul(0.25).Add(plane.VAxis.Mul(0.75))
	u, v, ok := plane.SurfaceUV(p)
	if !ok || math32.Abs(u-0.25) > testTolerance || math32.Abs(v-0.75) > testTolerance {
		t.Fatalf("expected plane uv (0.25, 0.75); got (%f, %f)", u, v)
	}

	sphere := NewSphere(types.XYZ(0, 0, 0), 2, NewMaterial())
	_, v, ok = sphere.SurfaceUV(types.XYZ(0, 2, 0))
	if !ok || math32.Abs(v) > testTolerance {
		t.Fatalf("expected north pole v = 0; got %f", v)
	}

	tri := NewTriangle([3]types.Vec3{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)}, NewMaterial())
	if _, _, ok = tri.SurfaceUV(types.XYZ(0.1, 0.1, 0)); ok {
		t.Fatal("expected triangles to not support texture mapping")
	}
}

func randomVec(rng *rand.Rand, scale float32) types.Vec3 {
	return types.XYZ(
		(rng.Float32()*2-1)*scale,
		(rng.Float32()*2-1)*scale,
		(rng.Float32()*2-1)*scale,
	)
}

func randomRay(rng *rand.Rand) types.Ray {
	for {
		dir := randomVec(rng, 1)
		if dir.Len() > 0.1 {
			return types.NewRay(randomVec(rng, 12), dir)
		}
	}
}

func randomPrimitives(rng *rand.Rand, count int) []*Primitive {
	mat := NewMaterial()
	prims := []*Primitive{
		NewPlane(types.XYZ(0, 1, 0), types.XYZ(0, -15, 0), mat),
		NewPlane(types.XYZ(1, 1, 0.5), types.XYZ(14, 14, 0), mat),
	}
	for i := 0; i < count; i++ {
		center := randomVec(rng, 10)
		switch i % 3 {
		case 0:
			prims = append(prims, NewSphere(center, 0.2+rng.Float32()*1.5, mat))
		case 1:
			rot := types.QuatFromYawPitchRoll(rng.Float32()*360, rng.Float32()*360, rng.Float32()*360)
			half := types.XYZ(0.2+rng.Float32(), 0.2+rng.Float32(), 0.2+rng.Float32())
			prims = append(prims, NewBox(center, half, rot, mat))
		case 2:
			prims = append(prims, NewTriangle([3]types.Vec3{
				center.Add(randomVec(rng, 2)),
				center.Add(randomVec(rng, 2)),
				center.Add(randomVec(rng, 2)),
			}, mat))
		}
	}
	return prims
}

// Get the distance of point from the primitive surface.
func surfaceDistance(prim *Primitive, point types.Vec3) float32 {
	switch prim.Type {
	case SpherePrimitive:
		return math32.Abs(point.Sub(prim.Center).Len() - prim.Radius)
	case PlanePrimitive, TrianglePrimitive:
		return math32.Abs(prim.Normal.Dot(point) - prim.Dist)
	case CubePrimitive:
		local := prim.InvTransform.TransformPosition(point)
		maxAbs := math32.Max(math32.Abs(local[0]), math32.Max(math32.Abs(local[1]), math32.Abs(local[2])))
		return math32.Abs(maxAbs - 1)
	}
	return 1e30
}
