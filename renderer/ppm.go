package renderer

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
)

// Encode img as a binary (P6) portable pixmap.
func encodePPM(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			off := img.PixOffset(x, y)
			if _, err := bw.Write(img.Pix[off : off+3]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func savePPM(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = encodePPM(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
