package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

// Stores the ray directions through the four corners of the image plane.
// Per pixel rays are generated by interpolating the corner rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A pinhole camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Horizontal field of view in degrees.
	FOV float32

	Frustrum Frustrum

	frameW, frameH int
}

// Create a camera at the origin looking down the negative Z axis.
func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Setup camera projection for a frame with the given dimensions.
func (c *Camera) SetupProjection(frameW, frameH int) error {
	if frameW <= 0 || frameH <= 0 {
		return fmt.Errorf("camera: invalid frame dimensions %dx%d", frameW, frameH)
	}
	if !(c.FOV > 0 && c.FOV < 180) {
		return fmt.Errorf("camera: field of view must be in (0, 180) degrees; got %f", c.FOV)
	}

	forward := c.LookAt.Sub(c.Position).Normalize()
	if forward.IsZero() {
		return fmt.Errorf("camera: position and look-at point must not coincide")
	}

	right := forward.Cross(c.Up).Normalize()
	if right.IsZero() {
		// Up vector is parallel to the view direction
		right, _ = types.OrthonormalBasis(forward)
	}
	up := right.Cross(forward)

	halfW := math32.Tan(c.FOV * 0.5 * math.Pi / 180)
	halfH := halfW * float32(frameH) / float32(frameW)

	c.Frustrum[0] = forward.Add(right.Mul(-halfW)).Add(up.Mul(halfH))
	c.Frustrum[1] = forward.Add(right.Mul(halfW)).Add(up.Mul(halfH))
	c.Frustrum[2] = forward.Add(right.Mul(-halfW)).Add(up.Mul(-halfH))
	c.Frustrum[3] = forward.Add(right.Mul(halfW)).Add(up.Mul(-halfH))
	c.frameW = frameW
	c.frameH = frameH
	return nil
}

// Generate a ray through the center of pixel (x, y). Row 0 is the top of
// the frame. SetupProjection must be called first.
func (c *Camera) GenerateRay(x, y int) types.Ray {
	sx := (float32(x) + 0.5) / float32(c.frameW)
	sy := (float32(y) + 0.5) / float32(c.frameH)

	top := c.Frustrum[0].Add(c.Frustrum[1].Sub(c.Frustrum[0]).Mul(sx))
	bottom := c.Frustrum[2].Add(c.Frustrum[3].Sub(c.Frustrum[2]).Mul(sx))
	dir := top.Add(bottom.Sub(top).Mul(sy))

	return types.Ray{Origin: c.Position, Direction: dir.Normalize()}
}
