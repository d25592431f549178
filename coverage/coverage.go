// Package coverage measures how much of the full-resolution image each
// palette entry covers.
package coverage

import (
	"context"
	"image"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"spotsep/color2spot"
	"spotsep/colorutil"
	septypes "spotsep/type"
)

const (
	// DefaultNoiseFloor drops entries covering 2% or less
	DefaultNoiseFloor = 2.0

	alphaCutoff      = 128
	whitePresent     = 230 // an entry this bright counts as the white ink
	backgroundCutoff = 200 // pixels brighter than this are background
	blackCutoff      = 60  // pixels darker than this are black background
)

var white = septypes.RGB{255, 255, 255}

// Options controls which pixels are counted
type Options struct {
	IgnoreBackground  bool
	IgnoreBlack       bool
	NoiseFloorPercent float64
}

// DefaultOptions counts every opaque pixel with a 2% noise floor
func DefaultOptions() Options {
	return Options{NoiseFloorPercent: DefaultNoiseFloor}
}

// WithWhite appends an implicit white entry unless one is already present
// or background pixels are being ignored.
func WithWhite(palette septypes.Palette, matcher *color2spot.Matcher, opt Options) septypes.Palette {
	out := palette.Clone()
	if opt.IgnoreBackground {
		return out
	}
	for _, c := range out {
		if colorutil.NearWhite(c.RGB, whitePresent) {
			return out
		}
	}
	return append(out, septypes.ExtractedColor{
		RGB:             white,
		Hex:             white.Hex(),
		Spot:            matcher.Match(white),
		Representatives: []septypes.RGB{white},
	})
}

func excluded(c septypes.RGB, opt Options) bool {
	if opt.IgnoreBackground && colorutil.NearWhite(c, backgroundCutoff) {
		return true
	}
	return opt.IgnoreBlack && colorutil.NearBlack(c, blackCutoff)
}

// Count classifies every counted pixel of img and returns per-entry counts
// and the number of counted pixels. The context is checked once per row.
func Count(ctx context.Context, img *image.NRGBA, palette septypes.Palette, opt Options) ([]int, int, error) {
	counts := make([]int, len(palette))
	if img == nil || len(palette) == 0 {
		return counts, 0, nil
	}
	b := img.Bounds()
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, errors.Wrap(err, "coverage aborted")
		}
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x, off = x+1, off+4 {
			if img.Pix[off+3] < alphaCutoff {
				continue
			}
			c := septypes.RGB{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}
			if excluded(c, opt) {
				continue
			}
			total++
			counts[colorutil.Classify(c, palette)]++
		}
	}
	return counts, total, nil
}

// Analyze re-derives exact percentages from the full buffer: white is
// synthesized when needed, entries at or under the noise floor are dropped,
// the rest are renormalized to sum to 100 and sorted by coverage. An image
// without counted pixels yields an empty palette.
func Analyze(ctx context.Context, img *image.NRGBA, palette septypes.Palette, matcher *color2spot.Matcher, opt Options) (septypes.Palette, error) {
	if len(palette) == 0 {
		return nil, nil
	}
	entries := WithWhite(palette, matcher, opt)
	counts, total, err := Count(ctx, img, entries, opt)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	var kept septypes.Palette
	var pct []float64
	for i, c := range entries {
		p := float64(counts[i]) / float64(total) * 100
		if p <= opt.NoiseFloorPercent {
			continue
		}
		c.Percentage = p
		c.Pixels = counts[i]
		kept = append(kept, c)
		pct = append(pct, p)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	floats.Scale(100/floats.Sum(pct), pct)
	for i := range kept {
		kept[i].Percentage = pct[i]
	}
	slices.SortStableFunc(kept, func(a, b septypes.ExtractedColor) int {
		switch {
		case a.Percentage > b.Percentage:
			return -1
		case a.Percentage < b.Percentage:
			return 1
		}
		return 0
	})
	return kept, nil
}
