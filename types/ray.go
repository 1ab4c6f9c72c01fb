package types

// A ray with an origin and a unit-length direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// Create a ray. The direction is normalized.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
