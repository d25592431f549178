package image2color

import (
	"image"

	septypes "spotsep/type"
)

// DefaultStride samples every 4th pixel
const DefaultStride = 4

// alphaCutoff is the minimum alpha of a counted pixel
const alphaCutoff = 128

// Frequency is one quantized color and how often it was sampled
type Frequency struct {
	Color septypes.RGB
	Count int
}

// Samples is the pixel subset used for clustering
type Samples struct {
	Pixels    []septypes.RGB
	Histogram []Frequency // first-occurrence order
}

// Empty reports a fully transparent or zero-size input
func (s Samples) Empty() bool {
	return len(s.Pixels) == 0
}

// quantize keeps the top 5 bits of each channel
func quantize(c septypes.RGB) septypes.RGB {
	return septypes.RGB{c[0] & 0xF8, c[1] & 0xF8, c[2] & 0xF8}
}

// Sample walks the buffer in row-major order, keeps every stride-th pixel
// and drops pixels with alpha below 128.
func Sample(img *image.NRGBA, stride int) Samples {
	if img == nil {
		return Samples{}
	}
	if stride <= 0 {
		stride = DefaultStride
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return Samples{}
	}

	var s Samples
	index := make(map[septypes.RGB]int)
	for idx := 0; idx < w*h; idx += stride {
		x, y := idx%w, idx/w
		off := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
		if img.Pix[off+3] < alphaCutoff {
			continue
		}
		c := septypes.RGB{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}
		s.Pixels = append(s.Pixels, c)

		key := quantize(c)
		if i, ok := index[key]; ok {
			s.Histogram[i].Count++
			continue
		}
		index[key] = len(s.Histogram)
		s.Histogram = append(s.Histogram, Frequency{Color: key, Count: 1})
	}
	return s
}
