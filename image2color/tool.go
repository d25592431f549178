package image2color

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ----------------------
// Helpers
// ----------------------

// ToNRGBA returns img as a non-premultiplied RGBA buffer anchored at (0,0)
func ToNRGBA(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Preview shrinks img so its longest side is at most maxDim.
// maxDim <= 0, or an image already small enough, returns img unchanged.
func Preview(img *image.NRGBA, maxDim int) *image.NRGBA {
	if img == nil || maxDim <= 0 {
		return img
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	longest := max(w, h)
	if longest <= maxDim {
		return img
	}
	scale := float64(maxDim) / float64(longest)
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return ToNRGBA(resize.Resize(uint(nw), uint(nh), img, resize.Bilinear))
}
