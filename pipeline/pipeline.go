// Package pipeline wires the separation stages together: palette
// extraction and coverage, per-color separations and paint estimates.
package pipeline

import (
	"context"
	"image"

	"spotsep/color2mask"
	"spotsep/color2spot"
	"spotsep/color2svg"
	"spotsep/coverage"
	"spotsep/image2color"
	"spotsep/paint"
	septypes "spotsep/type"
)

// Analyze extracts the palette of img, matches each color against table
// and measures exact coverage. A fully transparent or empty image yields an
// empty palette and no error.
func Analyze(ctx context.Context, img image.Image, table *color2spot.Table, cfg Config) (septypes.Palette, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	matcher, err := color2spot.NewMatcher(table)
	if err != nil {
		return nil, err
	}
	log := Logger()

	src := image2color.ToNRGBA(img)
	if src == nil || src.Bounds().Empty() {
		return nil, nil
	}
	preview := image2color.Preview(src, cfg.PreviewMaxDimension)
	samples := image2color.Sample(preview, cfg.SampleStride)
	if samples.Empty() {
		log.Debug("no opaque pixels sampled")
		return nil, nil
	}
	log.Debug("sampled", "pixels", len(samples.Pixels), "distinct", len(samples.Histogram))

	clusters := image2color.Cluster(samples, cfg.MaxClusters, cfg.MaxIterations)
	merged := image2color.Merge(clusters)
	log.Debug("clustered", "clusters", len(clusters), "merged", len(merged))

	palette, err := coverage.Analyze(ctx, src, matcher.Palette(merged), matcher, cfg.coverageOptions())
	if err != nil {
		return nil, err
	}
	for _, c := range palette {
		log.Info("color", "hex", c.Hex, "spot", c.Spot.Code, "percentage", c.Percentage)
	}
	return palette, nil
}

// Separate builds and traces one separation per palette entry, in palette
// order. Trace failures are recorded per separation; only configuration
// errors and cancellation fail the call.
func Separate(ctx context.Context, img image.Image, palette septypes.Palette, cfg Config) ([]septypes.Separation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := image2color.ToNRGBA(img)
	if src == nil || src.Bounds().Empty() || len(palette) == 0 {
		return nil, nil
	}

	masks, err := color2mask.Masks(ctx, src, palette, cfg.UpscaleFactor)
	if err != nil {
		return nil, err
	}
	opt := cfg.traceOptions(src.Bounds().Dx(), src.Bounds().Dy())
	seps, err := color2svg.TraceAll(ctx, masks, palette, opt, cfg.workers())
	if err != nil {
		return nil, err
	}
	for _, s := range seps {
		if s.Err != nil {
			Logger().Warn("separation failed", "index", s.Index, "hex", s.Color.Hex, "err", s.Err)
		} else {
			Logger().Debug("separation traced", "index", s.Index, "hex", s.Color.Hex,
				"ink", color2mask.InkRatio(s.Mask), "paths", len(s.Vector.Paths))
		}
	}
	return seps, nil
}

// Estimate applies a paint policy to every palette entry
func Estimate(policy paint.Policy, palette septypes.Palette) ([]septypes.PaintEstimate, float64, error) {
	est, total, err := paint.EstimatePalette(policy, palette)
	if err != nil {
		return nil, 0, err
	}
	Logger().Info("paint estimate", "colors", len(est), "totalWeight", total)
	return est, total, nil
}
