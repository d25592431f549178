package svg2json

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	mt "github.com/rustyoz/Mtransform"
	"github.com/rustyoz/svg"

	"spotsep/colorutil"
	septypes "spotsep/type"
)

// Element is one <path> resolved to document coordinates: group transforms
// are already applied to its instructions and Fill is the inherited paint.
type Element struct {
	Fill         string
	Instructions []*svg.DrawingInstruction
}

// Document is the flattened content of a traced SVG
type Document struct {
	ViewBox string
	Width   float64
	Height  float64
	Paths   []Element
}

// Parse reads the view box and every path of an SVG document
func Parse(svgData string) (*Document, error) {
	parsed, err := svg.ParseSvg(svgData, "separation", 1.0)
	if err != nil {
		return nil, errors.Wrap(err, "parse svg")
	}
	doc := &Document{
		ViewBox: parsed.ViewBox,
		Width:   parseLength(parsed.Width),
		Height:  parseLength(parsed.Height),
	}
	if doc.ViewBox == "" && doc.Width > 0 && doc.Height > 0 {
		doc.ViewBox = "0 0 " + strconv.FormatFloat(doc.Width, 'f', -1, 64) + " " + strconv.FormatFloat(doc.Height, 'f', -1, 64)
	}

	for _, e := range parsed.Elements {
		p, ok := e.(*svg.Path)
		if !ok {
			continue
		}
		// paths outside any <g> need an owning group before they can be parsed
		root := &svg.Group{Transform: parsed.Transform, Elements: []svg.DrawingInstructionParser{p}}
		root.SetOwner(parsed)
		if err := doc.add(p, ""); err != nil {
			return nil, err
		}
	}
	for i := range parsed.Groups {
		if err := doc.walk(&parsed.Groups[i], ""); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// walk descends into nested groups, folding each parent transform into its
// children so paths come out in document coordinates
func (d *Document) walk(g *svg.Group, fill string) error {
	if g.Fill != "" {
		fill = g.Fill
	}
	for _, e := range g.Elements {
		switch el := e.(type) {
		case *svg.Group:
			*el.Transform = mt.MultiplyTransforms(*g.Transform, *el.Transform)
			if err := d.walk(el, fill); err != nil {
				return err
			}
		case *svg.Path:
			if err := d.add(el, fill); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Document) add(p *svg.Path, fill string) error {
	instrs, errs := p.ParseDrawingInstructions()
	el := Element{Fill: fill}
	for di := range instrs {
		if di.Kind == svg.PaintInstruction {
			if di.Fill != nil && *di.Fill != "" {
				el.Fill = strings.TrimSpace(*di.Fill)
			}
			continue
		}
		el.Instructions = append(el.Instructions, di)
	}
	for err := range errs {
		if err != nil {
			return errors.Wrapf(err, "path %q", p.ID)
		}
	}
	if len(el.Instructions) == 0 {
		return nil
	}
	if el.Fill == "" {
		el.Fill = "black"
	}
	d.Paths = append(d.Paths, el)
	return nil
}

func parseLength(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	s = strings.TrimSuffix(s, "pt")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// curveSteps is how finely cubic segments are flattened when measuring
const curveSteps = 8

// Length is the outline length of the path, with curves flattened
func (e Element) Length() float64 {
	var total float64
	var cur, start svg.Tuple
	for _, di := range e.Instructions {
		switch di.Kind {
		case svg.MoveInstruction:
			cur, start = *di.M, *di.M
		case svg.LineInstruction:
			total += dist(cur, *di.M)
			cur = *di.M
		case svg.CurveInstruction:
			c := di.CurvePoints
			prev := cur
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				pt := svg.Tuple{
					cubic(cur[0], c.C1[0], c.C2[0], c.T[0], t),
					cubic(cur[1], c.C1[1], c.C2[1], c.T[1], t),
				}
				total += dist(prev, pt)
				prev = pt
			}
			cur = *c.T
		case svg.CloseInstruction:
			total += dist(cur, start)
			cur = start
		}
	}
	return total
}

func dist(a, b svg.Tuple) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

func cubic(p0, p1, p2, p3, t float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

// D serializes the path with absolute commands
func (e Element) D() string {
	var b strings.Builder
	for _, di := range e.Instructions {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		switch di.Kind {
		case svg.MoveInstruction:
			b.WriteString("M ")
			writeTuples(&b, *di.M)
		case svg.LineInstruction:
			b.WriteString("L ")
			writeTuples(&b, *di.M)
		case svg.CurveInstruction:
			b.WriteString("C ")
			writeTuples(&b, *di.CurvePoints.C1, *di.CurvePoints.C2, *di.CurvePoints.T)
		case svg.CloseInstruction:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func writeTuples(b *strings.Builder, ts ...svg.Tuple) {
	for i, t := range ts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatFloat(t[0]))
		b.WriteByte(' ')
		b.WriteString(formatFloat(t[1]))
	}
}

func formatFloat(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IsPaper reports whether a fill paints nothing or paints white
func IsPaper(fill string) bool {
	f := strings.ToLower(strings.ReplaceAll(fill, " ", ""))
	switch f {
	case "none", "transparent", "white", "#fff", "rgb(255,255,255)":
		return true
	}
	if c, ok := colorutil.ParseHex(f); ok {
		return c == septypes.RGB{255, 255, 255}
	}
	return false
}

// Record is the JSON form of one separation
type Record struct {
	Index      int                `json:"index"`
	Hex        string             `json:"hex"`
	Spot       septypes.SpotColor `json:"spotColor"`
	Percentage float64            `json:"percentage"`
	ViewBox    string             `json:"viewBox,omitempty"`
	Paths      []string           `json:"paths,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Records flattens separations for serialization, in separation order
func Records(seps []septypes.Separation) []Record {
	out := make([]Record, len(seps))
	for i, s := range seps {
		r := Record{
			Index:      s.Index,
			Hex:        s.Color.Hex,
			Spot:       s.Color.Spot,
			Percentage: s.Color.Percentage,
		}
		if s.Vector != nil {
			r.ViewBox = s.Vector.ViewBox
			r.Paths = s.Vector.Paths
		}
		if s.Err != nil {
			r.Error = s.Err.Error()
		}
		out[i] = r
	}
	return out
}

// Marshal returns the indented JSON of all separations
func Marshal(seps []septypes.Separation) ([]byte, error) {
	return json.MarshalIndent(Records(seps), "", "  ")
}
