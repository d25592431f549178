package color2svg

import (
	"context"
	"image"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"spotsep/svg2json"
	septypes "spotsep/type"
)

func blank(w, h int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for i := range m.Pix {
		m.Pix[i] = 255
	}
	return m
}

func ink(m *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Pix[y*m.Stride+x] = 0
		}
	}
}

func count(m *image.Gray) int {
	n := 0
	for _, v := range m.Pix {
		if v == 0 {
			n++
		}
	}
	return n
}

func TestSmoothKeepsSolidShapes(t *testing.T) {
	m := blank(20, 20)
	ink(m, image.Rect(5, 5, 15, 15))
	out := smooth(m, DefaultBlurRadius)
	if out.Pix[10*out.Stride+10] != 0 || out.Pix[0] != 255 {
		t.Fatal("blur changed the interior or the background")
	}
	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("smoothed mask not binary: %d", v)
		}
	}
	if m.Pix[0] != 255 || count(m) != 100 {
		t.Fatal("input mask modified")
	}
}

func TestTraceEmptyMask(t *testing.T) {
	for _, m := range []*image.Gray{nil, blank(8, 8)} {
		if _, err := Trace(m, DefaultTraceOptions()); !errors.Is(err, septypes.ErrTraceFailure) {
			t.Fatalf("err = %v", err)
		}
	}
}

func TestTraceDropsSpecks(t *testing.T) {
	speck := blank(20, 20)
	ink(speck, image.Rect(15, 2, 18, 3)) // 3 px
	opt := DefaultTraceOptions()
	opt.BlurRadius = 0
	if _, err := Trace(speck, opt); !errors.Is(err, septypes.ErrTraceFailure) {
		t.Fatalf("speck err = %v", err)
	}

	opt.PathOmit = 0
	v, err := Trace(speck, opt)
	if err != nil {
		t.Fatalf("speck with no omit threshold: %v", err)
	}
	if len(v.Paths) != 1 || v.Width != 20 || v.Height != 20 {
		t.Fatalf("vector = %+v", v)
	}
}

func TestTraceSquare(t *testing.T) {
	m := blank(30, 30)
	ink(m, image.Rect(5, 5, 25, 25))
	v, err := Trace(m, DefaultTraceOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Paths) != 1 || v.ViewBox == "" || !strings.Contains(v.SVG, `fill="#000000"`) {
		t.Fatalf("vector = %+v", v)
	}
}

func TestTraceOptionsConfig(t *testing.T) {
	opt := DefaultTraceOptions()
	opt.PathOmit = 6.7
	opt.AlphaMax = 0.5
	conf := opt.config()
	if conf.TurdSize != 6 || conf.AlphaMax != 0.5 || !conf.OptiCurve || conf.OptTolerance != DefaultOptTolerance {
		t.Fatalf("config = %+v", conf)
	}
	opt.OptTolerance = 0
	if opt.config().OptiCurve {
		t.Fatal("curve optimization left on")
	}
}

const traced = `<svg xmlns="http://www.w3.org/2000/svg" width="40pt" height="30pt" viewBox="0 0 40 30">
<g transform="translate(0,30) scale(0.1,-0.1)" fill="#000000" stroke="none">
<path d="M0 0 L100 0 L100 100 L0 100 Z"/>
<path d="M0 0 L10 0"/>
</g>
<g fill="#ffffff"><path d="M0 0 L200 0 L200 200 Z"/></g>
</svg>`

func TestCompose(t *testing.T) {
	doc, err := svg2json.Parse(traced)
	if err != nil {
		t.Fatal(err)
	}
	opt := DefaultTraceOptions()
	opt.Width, opt.Height = 10, 8
	opt.Fill = "#123456"
	v, err := compose(doc, opt)
	if err != nil {
		t.Fatal(err)
	}
	// the white path is paper and the 1-unit stroke is below PathOmit
	if len(v.Paths) != 1 || v.Paths[0] != "M 0 30 L 10 30 L 10 20 L 0 20 Z" {
		t.Fatalf("paths = %q", v.Paths)
	}
	for _, want := range []string{`width="10"`, `height="8"`, `viewBox="0 0 40 30"`, `fill="#123456"`, `stroke="none"`} {
		if !strings.Contains(v.SVG, want) {
			t.Errorf("svg lacks %s:\n%s", want, v.SVG)
		}
	}

	doc.Paths = doc.Paths[1:]
	if _, err := compose(doc, opt); !errors.Is(err, septypes.ErrTraceFailure) {
		t.Fatalf("err = %v", err)
	}
}

func TestTraceAllKeepsOrderAndIsolatesFailures(t *testing.T) {
	palette := septypes.Palette{{Hex: "#ff0000"}, {Hex: "#00ff00"}, {Hex: "#0000ff"}}
	masks := []*image.Gray{blank(4, 4), blank(4, 4), blank(4, 4)}
	seps, err := TraceAll(context.Background(), masks, palette, DefaultTraceOptions(), 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range seps {
		if s.Index != i || s.Color.Hex != palette[i].Hex || s.Mask != masks[i] {
			t.Errorf("separation %d out of order: %+v", i, s)
		}
		if !errors.Is(s.Err, septypes.ErrTraceFailure) {
			t.Errorf("separation %d err = %v", i, s.Err)
		}
	}
	if _, err := TraceAll(context.Background(), masks[:1], palette, DefaultTraceOptions(), 1); err == nil {
		t.Fatal("length mismatch accepted")
	}
}

func TestTraceAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	seps, err := TraceAll(ctx, []*image.Gray{blank(2, 2)}, septypes.Palette{{}}, DefaultTraceOptions(), 1)
	if !errors.Is(err, context.Canceled) || !errors.Is(seps[0].Err, context.Canceled) {
		t.Fatalf("err = %v, sep err = %v", err, seps[0].Err)
	}
}
