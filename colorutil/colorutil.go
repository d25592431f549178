// Package colorutil holds the RGB helpers shared by every pipeline stage,
// including the single nearest-color classifier used by coverage, masks and
// tracing so those stages never disagree on which entry owns a pixel.
package colorutil

import (
	"math"
	"strconv"
	"strings"

	septypes "spotsep/type"
)

// Distance is the Euclidean RGB distance
func Distance(a, b septypes.RGB) float64 {
	return math.Sqrt(float64(Distance2(a, b)))
}

// Distance2 is the squared Euclidean RGB distance
func Distance2(a, b septypes.RGB) int {
	dr := int(a[0]) - int(b[0])
	dg := int(a[1]) - int(b[1])
	db := int(a[2]) - int(b[2])
	return dr*dr + dg*dg + db*db
}

// HSV returns hue in degrees and saturation/value in [0,1]
func HSV(c septypes.RGB) (h, s, v float64) {
	return c.Colorful().Hsv()
}

// HueDistance is the angular distance between two hues, wrapping at 360
func HueDistance(h1, h2 float64) float64 {
	d := math.Abs(h1 - h2)
	return math.Min(d, 360-d)
}

// NearWhite reports whether every channel is above limit
func NearWhite(c septypes.RGB, limit uint8) bool {
	return c[0] > limit && c[1] > limit && c[2] > limit
}

// NearBlack reports whether every channel is below limit
func NearBlack(c septypes.RGB, limit uint8) bool {
	return c[0] < limit && c[1] < limit && c[2] < limit
}

// Classify returns the index of the palette entry nearest to c, comparing
// against every representative of every entry. Ties go to the lowest index.
// An empty palette yields -1.
func Classify(c septypes.RGB, palette septypes.Palette) int {
	best := -1
	bestDist := math.MaxInt
	for i := range palette {
		reps := palette[i].Representatives
		if len(reps) == 0 {
			reps = []septypes.RGB{palette[i].RGB}
		}
		for _, r := range reps {
			if d := Distance2(c, r); d < bestDist {
				bestDist = d
				best = i
			}
		}
	}
	return best
}

// ParseHex accepts #rrggbb or rrggbb
func ParseHex(hex string) (septypes.RGB, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return septypes.RGB{}, false
	}
	var out septypes.RGB
	for i := range 3 {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return septypes.RGB{}, false
		}
		out[i] = uint8(v)
	}
	return out, true
}
