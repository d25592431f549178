package color2svg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	svgo "github.com/ajstarks/svgo"
	"github.com/gotranspile/gotrace"
	"github.com/pkg/errors"

	"spotsep/svg2json"
	septypes "spotsep/type"
)

const (
	DefaultPathOmit     = 4
	DefaultBlurRadius   = 0.5
	DefaultAlphaMax     = 1.0
	DefaultOptTolerance = 0.2
	DefaultFill         = "#000000"

	threshold = 128
)

// TraceOptions tunes one trace
type TraceOptions struct {
	// BlurRadius is the Gaussian sigma applied before re-thresholding. 0 disables it.
	BlurRadius float64
	// PathOmit drops ink specks of at most this many pixels and paths
	// shorter than this length, both in mask units.
	PathOmit float64
	// AlphaMax is the corner threshold: lower keeps more sharp corners.
	AlphaMax float64
	// OptTolerance bounds curve joining; 0 turns curve optimization off.
	OptTolerance float64
	// Fill is forced on every emitted path
	Fill string
	// Width and Height size the output document; zero uses the mask size
	Width, Height int
}

// DefaultTraceOptions returns the tolerances used by the pipeline
func DefaultTraceOptions() TraceOptions {
	return TraceOptions{
		BlurRadius:   DefaultBlurRadius,
		PathOmit:     DefaultPathOmit,
		AlphaMax:     DefaultAlphaMax,
		OptTolerance: DefaultOptTolerance,
		Fill:         DefaultFill,
	}
}

func (o TraceOptions) config() *gotrace.Config {
	conf := gotrace.DefaultConfig()
	conf.TurdSize = int(o.PathOmit)
	conf.AlphaMax = o.AlphaMax
	conf.OptiCurve = o.OptTolerance > 0
	conf.OptTolerance = o.OptTolerance
	return conf
}

func hasInk(mask *image.Gray) bool {
	for _, v := range mask.Pix {
		if v < threshold {
			return true
		}
	}
	return false
}

// Trace vectorizes a separation mask (black = ink) into a single-fill SVG.
// A mask that yields no ink path fails with septypes.ErrTraceFailure.
func Trace(mask *image.Gray, opt TraceOptions) (*septypes.VectorSeparation, error) {
	if mask == nil || !hasInk(mask) {
		return nil, errors.Wrap(septypes.ErrTraceFailure, "empty mask")
	}
	work := smooth(mask, opt.BlurRadius)
	size := work.Bounds().Size()

	paths, err := gotrace.Trace(gotrace.BitmapFromGray(work, nil), opt.config())
	if err != nil {
		return nil, errors.Wrap(err, "trace")
	}
	if paths == nil {
		return nil, errors.Wrap(septypes.ErrTraceFailure, "mask is only specks")
	}
	raw, err := render(paths, size)
	if err != nil {
		return nil, err
	}
	doc, err := svg2json.Parse(raw)
	if err != nil {
		return nil, err
	}
	if doc.ViewBox == "" {
		doc.ViewBox = fmt.Sprintf("0 0 %d %d", size.X, size.Y)
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		opt.Width, opt.Height = size.X, size.Y
	}
	return compose(doc, opt)
}

// the svg backend keeps its pen position in package state
var renderMu sync.Mutex

func render(paths *gotrace.Path, size image.Point) (string, error) {
	renderMu.Lock()
	defer renderMu.Unlock()

	var buf bytes.Buffer
	if err := gotrace.Render("svg", nil, &buf, paths, size.X, size.Y); err != nil {
		return "", errors.Wrap(err, "render")
	}
	return buf.String(), nil
}

// compose keeps the ink paths of doc and writes the final document
func compose(doc *svg2json.Document, opt TraceOptions) (*septypes.VectorSeparation, error) {
	fill := opt.Fill
	if fill == "" {
		fill = DefaultFill
	}
	var kept []string
	for _, el := range doc.Paths {
		if svg2json.IsPaper(el.Fill) || el.Length() < opt.PathOmit {
			continue
		}
		kept = append(kept, el.D())
	}
	if len(kept) == 0 {
		return nil, errors.Wrap(septypes.ErrTraceFailure, "no ink paths survived")
	}

	var buf bytes.Buffer
	canvas := svgo.New(&buf)
	canvas.Start(opt.Width, opt.Height, fmt.Sprintf(`viewBox="%s"`, doc.ViewBox))
	for _, d := range kept {
		canvas.Path(d, fmt.Sprintf(`fill="%s"`, fill), `stroke="none"`)
	}
	canvas.End()

	return &septypes.VectorSeparation{
		Width:   opt.Width,
		Height:  opt.Height,
		ViewBox: doc.ViewBox,
		Paths:   kept,
		Fill:    fill,
		SVG:     buf.String(),
	}, nil
}

// TraceAll traces one mask per palette entry with at most workers goroutines.
// Results keep palette order; a failed color records its error and does not
// stop the others.
func TraceAll(ctx context.Context, masks []*image.Gray, palette septypes.Palette, opt TraceOptions, workers int) ([]septypes.Separation, error) {
	if len(masks) != len(palette) {
		return nil, errors.Errorf("%d masks for %d palette entries", len(masks), len(palette))
	}
	results := make([]septypes.Separation, len(masks))
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, m := range masks {
		wg.Add(1)
		go func(idx int, mask *image.Gray) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			sep := septypes.Separation{Index: idx, Color: palette[idx], Mask: mask}
			if err := ctx.Err(); err != nil {
				sep.Err = err
			} else {
				sep.Vector, sep.Err = Trace(mask, opt)
				if sep.Err != nil {
					sep.Err = errors.Wrapf(sep.Err, "separation %d (%s)", idx, palette[idx].Hex)
				}
			}
			results[idx] = sep
		}(i, m)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, "tracing aborted")
	}
	return results, nil
}
