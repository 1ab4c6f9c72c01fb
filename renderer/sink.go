package renderer

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/achilleasa/whitted/types"
	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
)

// Sink receives the traced color of each pixel.
type Sink interface {
	SetPixel(x, y int, color types.Vec3)

	// Flush is called once all pixels have been set.
	Flush() error
}

// Quality used when encoding jpeg frames.
const jpegQuality = 95

// A Framebuffer accumulates linear pixel colors and writes them to an image
// file on Flush. Colors are clamped to [0, 1] and optionally gamma corrected.
type Framebuffer struct {
	W, H   int
	Pixels []types.Vec3

	// Output file. An empty value keeps the frame in memory.
	Output string
	Gamma  float64
}

// Create a framebuffer of the given dims.
func NewFramebuffer(w, h int, output string, gamma float64) *Framebuffer {
	if gamma <= 0 {
		gamma = 1
	}
	return &Framebuffer{
		W:      w,
		H:      h,
		Pixels: make([]types.Vec3, w*h),
		Output: output,
		Gamma:  gamma,
	}
}

// Set a pixel color. Out of bounds coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c types.Vec3) {
	if x < 0 || y < 0 || x >= fb.W || y >= fb.H {
		return
	}
	fb.Pixels[y*fb.W+x] = c
}

// Get the framebuffer contents as an 8-bit image.
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.W, fb.H))
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			c := fb.Pixels[y*fb.W+x]
			img.SetRGBA(x, y, color.RGBA{toByte(c[0]), toByte(c[1]), toByte(c[2]), 255})
		}
	}

	if fb.Gamma != 1 {
		return adjust.Gamma(img, fb.Gamma)
	}
	return clone.AsRGBA(img)
}

// Write the frame to the output file. The file extension selects the
// encoder.
func (fb *Framebuffer) Flush() error {
	if fb.Output == "" {
		return nil
	}
	img := fb.Image()

	var err error
	switch ext := strings.ToLower(filepath.Ext(fb.Output)); ext {
	case ".png":
		err = imgio.Save(fb.Output, img, imgio.PNGEncoder())
	case ".jpg", ".jpeg":
		err = imgio.Save(fb.Output, img, imgio.JPEGEncoder(jpegQuality))
	case ".bmp":
		err = imgio.Save(fb.Output, img, imgio.BMPEncoder())
	case ".ppm":
		err = savePPM(fb.Output, img)
	default:
		return fmt.Errorf("renderer: unsupported output image format %q", ext)
	}

	if err != nil {
		return fmt.Errorf("renderer: could not write frame to %q: %w", fb.Output, err)
	}
	return nil
}

// Check that the output extension is supported.
func ValidateOutput(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", ".jpg", ".jpeg", ".bmp", ".ppm":
		return nil
	default:
		return fmt.Errorf("renderer: unsupported output image format %q", ext)
	}
}

func toByte(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
