package types

import "testing"

func TestAABBIntersectRay(t *testing.T) {
	type spec struct {
		ray   Ray
		hit   bool
		tNear float32
		tFar  float32
	}

	box := AABB{Min: XYZ(-1, -1, -1), Max: XYZ(1, 1, 1)}

	specs := []spec{
		{NewRay(XYZ(0, 0, 5), XYZ(0, 0, -1)), true, 4, 6},
		{NewRay(XYZ(5, 5, 5), XYZ(0, 0, -1)), false, 0, 0},
		{NewRay(XYZ(-5, 0.5, 0), XYZ(1, 0, 0)), true, 4, 6},
		// origin inside the box
		{NewRay(XYZ(0, 0, 0), XYZ(0, 1, 0)), true, 0, 1},
		// box behind the ray
		{NewRay(XYZ(0, 0, 5), XYZ(0, 0, 1)), false, 0, 0},
		// parallel to the x slab but outside of it
		{NewRay(XYZ(2, 0, 5), XYZ(0, 0, -1)), false, 0, 0},
	}

	for index, s := range specs {
		tNear, tFar, hit := box.IntersectRay(s.ray)
		if hit != s.hit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.hit, hit)
		}
		if !hit {
			continue
		}
		if !approxEq(tNear, s.tNear) || !approxEq(tFar, s.tFar) {
			t.Fatalf("[spec %d] expected interval [%f, %f]; got [%f, %f]", index, s.tNear, s.tFar, tNear, tFar)
		}
	}
}

func TestAABBWidestAxis(t *testing.T) {
	type spec struct {
		box AABB
		exp int
	}

	specs := []spec{
		{AABB{XYZ(0, 0, 0), XYZ(3, 1, 1)}, 0},
		{AABB{XYZ(0, 0, 0), XYZ(1, 3, 1)}, 1},
		{AABB{XYZ(0, 0, 0), XYZ(1, 1, 3)}, 2},
		{AABB{XYZ(0, 0, 0), XYZ(0, 0, 0)}, 0},
	}

	for index, s := range specs {
		if got := s.box.WidestAxis(); got != s.exp {
			t.Fatalf("[spec %d] expected axis %d; got %d", index, s.exp, got)
		}
	}
}

func TestAABBUnion(t *testing.T) {
	box := EmptyAABB().
		Union(AABB{XYZ(0, 0, 0), XYZ(1, 1, 1)}).
		Extend(XYZ(-2, 3, 0.5))

	if exp := XYZ(-2, 0, 0); box.Min != exp {
		t.Fatalf("expected min %v; got %v", exp, box.Min)
	}
	if exp := XYZ(1, 3, 1); box.Max != exp {
		t.Fatalf("expected max %v; got %v", exp, box.Max)
	}
	if !box.Contains(XYZ(0, 2, 0.5)) {
		t.Fatal("expected box to contain point")
	}
}
