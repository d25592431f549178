package color2spot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"spotsep/colorutil"
	septypes "spotsep/type"
)

//go:embed spotcolors.json
var defaultTableJSON []byte

// Table is an immutable spot-color reference list. Order matters: it is the
// tie-break order of Nearest.
type Table struct {
	entries []septypes.SpotColor
}

// NewTable copies entries into a table and fills in missing hex codes
func NewTable(entries []septypes.SpotColor) *Table {
	t := &Table{entries: make([]septypes.SpotColor, len(entries))}
	for i, e := range entries {
		if e.Hex == "" {
			e.Hex = e.RGB.Hex()
		}
		t.entries[i] = e
	}
	return t
}

// Len returns the number of entries
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// normalizeCode strips the PANTONE/PMS prefix, the coated suffix, case and spaces
func normalizeCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = strings.TrimPrefix(s, "PANTONE")
	s = strings.TrimPrefix(strings.TrimSpace(s), "PMS")
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, " C") {
		s = strings.TrimSuffix(s, " C")
	}
	return strings.ReplaceAll(s, " ", "")
}

// ByCode finds an entry by its code, e.g. "PMS 485", "485 C" or "pantone 485c"
func (t *Table) ByCode(code string) (septypes.SpotColor, bool) {
	want := normalizeCode(code)
	for _, e := range t.entries {
		got := normalizeCode(e.Code)
		if got == want || strings.TrimSuffix(got, "C") == strings.TrimSuffix(want, "C") {
			return e, true
		}
	}
	return septypes.SpotColor{}, false
}

// Subset returns a table of only the given codes, in the order given.
// An unknown code fails with septypes.ErrInvalidConfiguration.
func (t *Table) Subset(codes []string) (*Table, error) {
	entries := make([]septypes.SpotColor, 0, len(codes))
	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		e, ok := t.ByCode(code)
		if !ok {
			return nil, septypes.InvalidConfig("unknown spot code %q", code)
		}
		entries = append(entries, e)
	}
	return NewTable(entries), nil
}

// bradfordD50toD65 adapts D50 tristimulus values to the D65 white of sRGB
var bradfordD50toD65 = mat.NewDense(3, 3, []float64{
	0.9555766, -0.0230393, 0.0631636,
	-0.0282895, 1.0099416, 0.0210077,
	0.0122982, -0.0204830, 1.3299098,
})

// labD50ToRGB converts a swatch measured as L*a*b* (L in 0..100) under D50
func labD50ToRGB(l, a, b float64) septypes.RGB {
	x, y, z := colorful.LabToXyzWhiteRef(l/100.0, a/100.0, b/100.0, colorful.D50)
	var v mat.VecDense
	v.MulVec(bradfordD50toD65, mat.NewVecDense(3, []float64{x, y, z}))
	r, g, bl := colorful.Xyz(v.AtVec(0), v.AtVec(1), v.AtVec(2)).Clamped().RGB255()
	return septypes.RGB{r, g, bl}
}

// tableEntry accepts rgb, hex or Lab (D50, L in 0..100) swatches
type tableEntry struct {
	Code string        `json:"code"`
	Name string        `json:"name"`
	RGB  *septypes.RGB `json:"rgb"`
	Hex  string        `json:"hex"`
	L    *float64      `json:"L"`
	A    *float64      `json:"a"`
	B    *float64      `json:"b"`
}

func (e tableEntry) spot() (septypes.SpotColor, error) {
	s := septypes.SpotColor{Code: e.Code, Name: e.Name}
	if s.Name == "" {
		s.Name = s.Code
	}
	switch {
	case e.RGB != nil:
		s.RGB = *e.RGB
	case e.Hex != "":
		c, ok := colorutil.ParseHex(e.Hex)
		if !ok {
			return s, errors.Errorf("spot %q: bad hex %q", e.Code, e.Hex)
		}
		s.RGB = c
	case e.L != nil && e.A != nil && e.B != nil:
		s.RGB = labD50ToRGB(*e.L, *e.A, *e.B)
	default:
		return s, errors.Errorf("spot %q: no rgb, hex or Lab value", e.Code)
	}
	s.Hex = s.RGB.Hex()
	return s, nil
}

// LoadTable reads a JSON array of swatches
func LoadTable(r io.Reader) (*Table, error) {
	var raw []tableEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode spot table")
	}
	entries := make([]septypes.SpotColor, 0, len(raw))
	for _, e := range raw {
		s, err := e.spot()
		if err != nil {
			return nil, err
		}
		entries = append(entries, s)
	}
	if len(entries) == 0 {
		return nil, septypes.InvalidConfig("spot table is empty")
	}
	return NewTable(entries), nil
}

// DefaultTable returns the embedded coated spot ink table
func DefaultTable() *Table {
	t, err := LoadTable(bytes.NewReader(defaultTableJSON))
	if err != nil {
		panic(err)
	}
	return t
}
