// Package shade renders a Canvas of counts as an image
package shade

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/go-sif/skyshade/accumulators"
)

// Options configure shading. The zero value shades with Fire and EqHist onto a transparent background.
type Options struct {
	Colormap   Colormap
	How        TransferFunc
	Background color.Color // color of empty cells. nil means transparent.
}

// Shade colors each cell of a Canvas. Row 0 of the image holds the largest y values, so y increases upward.
func Shade(canvas *accumulators.Canvas, opts Options) (*image.RGBA, error) {
	if canvas == nil {
		return nil, fmt.Errorf("cannot shade a nil canvas")
	}
	cmap := opts.Colormap
	if cmap == nil {
		cmap = Fire
	}
	if len(cmap) < 2 {
		return nil, fmt.Errorf("a colormap needs at least two colors")
	}
	how := opts.How
	if how == nil {
		how = EqHist
	}
	w, h := canvas.Width(), canvas.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	values := how(canvas.Counts())
	for j := 0; j < h; j++ {
		row := h - 1 - j
		for i := 0; i < w; i++ {
			v := values[j*w+i]
			if math.IsNaN(v) {
				if opts.Background != nil {
					img.Set(i, row, opts.Background)
				}
				continue
			}
			img.SetRGBA(i, row, cmap.At(v))
		}
	}
	return img, nil
}

// WritePNG encodes an image as PNG
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// SavePNG writes an image to a PNG file
func SavePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WritePNG(f, img)
}
