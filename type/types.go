package septypes

import (
	"fmt"
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit color triple, encoded in JSON as [r,g,b]
type RGB [3]uint8

// Hex returns the lower-case #rrggbb form
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Colorful converts to a go-colorful color in [0,1]
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255.0,
		G: float64(c[1]) / 255.0,
		B: float64(c[2]) / 255.0,
	}
}

// Cluster is one k-means group of sampled pixels
type Cluster struct {
	Centroid RGB
	Hue      float64 // degrees [0,360)
	Sat      float64
	Val      float64
	Count    int
	Members  []RGB // original centroids absorbed by merging
}

// SpotColor is one entry of the reference ink table
type SpotColor struct {
	Code string `json:"code"`
	Name string `json:"name"`
	RGB  RGB    `json:"rgb"`
	Hex  string `json:"hex"`
}

// ExtractedColor is one palette entry
type ExtractedColor struct {
	RGB             RGB       `json:"rgb"`
	Hex             string    `json:"hex"`
	Spot            SpotColor `json:"spotColor"`
	Percentage      float64   `json:"percentage"`
	Pixels          int       `json:"pixels"`
	Representatives []RGB     `json:"representativeRgbs"`
}

// Palette is the ordered result of a pipeline run
type Palette []ExtractedColor

// Sum adds up all percentages
func (p Palette) Sum() float64 {
	var s float64
	for _, c := range p {
		s += c.Percentage
	}
	return s
}

// Clone deep-copies the palette so callers can keep snapshots
func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	for i, c := range p {
		out[i] = c
		out[i].Representatives = append([]RGB(nil), c.Representatives...)
	}
	return out
}

// VectorSeparation is the traced document of one separation
type VectorSeparation struct {
	Width   int      // output width, original image pixels
	Height  int      // output height, original image pixels
	ViewBox string   // user space of the path data
	Paths   []string // d attributes, ink only
	Fill    string
	SVG     string
}

// Separation is one printable layer: mask plus its traced vector form
type Separation struct {
	Index  int
	Color  ExtractedColor
	Mask   *image.Gray // black = ink, white = background
	Vector *VectorSeparation
	Err    error
}

// PaintEstimate is derived and never persisted
type PaintEstimate struct {
	Policy          string  `json:"policy"`
	CoveragePercent float64 `json:"coveragePercent"`
	EffectiveArea   float64 `json:"effectiveArea"`
	Volume          float64 `json:"volume,omitempty"`
	Weight          float64 `json:"weight"`
	TotalWeight     float64 `json:"totalWeight"`
}
