// Package color2mask splits an image into one binary mask per palette entry.
package color2mask

import (
	"context"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"spotsep/colorutil"
	septypes "spotsep/type"
)

const (
	// DefaultUpscale multiplies both dimensions before tracing
	DefaultUpscale = 4

	alphaCutoff = 128
	ink         = 0
	paper       = 255
)

// Upscale resizes img by factor with bilinear interpolation.
// A factor of 1 or less returns img itself.
func Upscale(img *image.NRGBA, factor int) *image.NRGBA {
	if img == nil || factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Labels classifies every pixel of img against palette in row-major order.
// Transparent pixels are labeled -1.
func Labels(ctx context.Context, img *image.NRGBA, palette septypes.Palette) ([]int, error) {
	b := img.Bounds()
	labels := make([]int, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "labeling aborted")
		}
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x, off = x+1, off+4 {
			if img.Pix[off+3] < alphaCutoff {
				labels[i] = -1
			} else {
				labels[i] = colorutil.Classify(septypes.RGB{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}, palette)
			}
			i++
		}
	}
	return labels, nil
}

// newPaper returns an all-background mask
func newPaper(w, h int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for i := range m.Pix {
		m.Pix[i] = paper
	}
	return m
}

// Masks upscales img by factor and returns one mask per palette entry in
// palette order. Each opaque pixel is ink in exactly one mask.
func Masks(ctx context.Context, img *image.NRGBA, palette septypes.Palette, factor int) ([]*image.Gray, error) {
	if len(palette) == 0 {
		return nil, nil
	}
	src := Upscale(img, factor)
	labels, err := Labels(ctx, src, palette)
	if err != nil {
		return nil, err
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	masks := make([]*image.Gray, len(palette))
	for i := range masks {
		masks[i] = newPaper(w, h)
	}
	for i, l := range labels {
		if l >= 0 {
			masks[l].Pix[i] = ink
		}
	}
	return masks, nil
}

// InkRatio returns the fraction of ink pixels in m
func InkRatio(m *image.Gray) float64 {
	if m == nil || len(m.Pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range m.Pix {
		if v < alphaCutoff {
			n++
		}
	}
	return float64(n) / float64(len(m.Pix))
}

// Preview paints every mask with its palette color on white, for debugging
func Preview(masks []*image.Gray, palette septypes.Palette) *image.NRGBA {
	if len(masks) == 0 {
		return nil
	}
	b := masks[0].Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	for i, m := range masks {
		if i >= len(palette) {
			break
		}
		c := palette[i].RGB
		src := image.NewUniform(color.NRGBA{c[0], c[1], c[2], 255})
		draw.DrawMask(out, b, src, image.Point{}, inverted{m}, b.Min, draw.Over)
	}
	return out
}

// inverted turns ink pixels into an opaque alpha mask
type inverted struct{ *image.Gray }

func (m inverted) ColorModel() color.Model { return color.AlphaModel }

func (m inverted) At(x, y int) color.Color {
	return color.Alpha{A: paper - m.GrayAt(x, y).Y}
}
