package color2svg

import (
	"image"

	"github.com/disintegration/gift"
)

// smooth blurs the mask and snaps it back to pure black and white, which
// rounds off staircase edges left by upscaling
func smooth(mask *image.Gray, sigma float64) *image.Gray {
	var out *image.Gray
	if sigma > 0 {
		g := gift.New(gift.GaussianBlur(float32(sigma)))
		out = image.NewGray(g.Bounds(mask.Bounds()))
		g.Draw(out, mask)
	} else {
		out = image.NewGray(mask.Bounds())
		copy(out.Pix, mask.Pix)
	}
	for i, v := range out.Pix {
		if v < threshold {
			out.Pix[i] = 0
		} else {
			out.Pix[i] = 255
		}
	}
	return out
}
