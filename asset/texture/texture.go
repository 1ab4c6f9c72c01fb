package texture

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Pixel format of the source image.
type Format uint32

const (
	Luminance8 Format = iota
	Luminance16
	Rgba8
	Rgba16
)

func (f Format) String() string {
	switch f {
	case Luminance8:
		return "luminance8"
	case Luminance16:
		return "luminance16"
	case Rgba8:
		return "rgba8"
	case Rgba16:
		return "rgba16"
	}
	return "unknown"
}

// A decoded texture. Image files store sRGB encoded colors; texels are
// converted to linear colors with components in [0, 1] and stored row by row.
// Row 0 is the top of the image.
type Texture struct {
	Name   string
	Format Format

	Width  int
	Height int

	Data []types.Vec3
}

// Decode a texture from a Resource. Supported formats are png, jpeg, gif,
// bmp, tiff and webp.
func New(res *asset.Resource) (*Texture, error) {
	img, imgFmt, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("texture: image %s (%s) has no pixels", res.Path(), imgFmt)
	}

	tex := &Texture{
		Name:   res.Path(),
		Format: detectFormat(img),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Data:   make([]types.Vec3, bounds.Dx()*bounds.Dy()),
	}

	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			tex.Data[offset] = types.Vec3{
				srgbToLinear(float32(r) / 0xffff),
				srgbToLinear(float32(g) / 0xffff),
				srgbToLinear(float32(b) / 0xffff),
			}
			offset++
		}
	}

	return tex, nil
}

// Apply the sRGB transfer function inverse to an encoded component.
func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

func detectFormat(img image.Image) Format {
	switch img.(type) {
	case *image.Gray:
		return Luminance8
	case *image.Gray16:
		return Luminance16
	case *image.RGBA64, *image.NRGBA64:
		return Rgba16
	}
	return Rgba8
}

// Sample the texel at (u, v) using nearest neighbor filtering. Coordinates
// wrap around so the texture repeats in both directions.
func (t *Texture) Sample(u, v float32) types.Vec3 {
	x := int(wrap(u) * float32(t.Width))
	y := int(wrap(v) * float32(t.Height))
	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}
	return t.Data[y*t.Width+x]
}

// Map a coordinate to [0, 1).
func wrap(c float32) float32 {
	if math32.IsNaN(c) || math32.IsInf(c, 0) {
		return 0
	}
	return c - math32.Floor(c)
}
