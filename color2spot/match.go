package color2spot

import (
	"math"
	"sync"

	"spotsep/colorutil"
	septypes "spotsep/type"
)

// Nearest returns the index of the table entry closest to c by Euclidean
// RGB distance. The first entry reaching the minimum wins; an empty table
// yields -1.
func Nearest(c septypes.RGB, table *Table) int {
	best := -1
	bestDist := math.MaxInt
	for i := 0; i < table.Len(); i++ {
		if d := colorutil.Distance2(c, table.entries[i].RGB); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Matcher memoizes Nearest over one immutable table. It is safe for
// concurrent use.
type Matcher struct {
	table *Table

	mu   sync.Mutex
	memo map[septypes.RGB]septypes.SpotColor
}

// NewMatcher wraps table, which must not be empty
func NewMatcher(table *Table) (*Matcher, error) {
	if table.Len() == 0 {
		return nil, septypes.InvalidConfig("spot table is empty")
	}
	return &Matcher{
		table: table,
		memo:  make(map[septypes.RGB]septypes.SpotColor),
	}, nil
}

// Match returns the nearest spot color
func (m *Matcher) Match(c septypes.RGB) septypes.SpotColor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.memo[c]; ok {
		return s
	}
	s := m.table.entries[Nearest(c, m.table)]
	m.memo[c] = s
	return s
}

// Palette turns merged clusters into palette entries, in cluster order.
// Percentages stay zero until coverage is measured.
func (m *Matcher) Palette(merged []septypes.Cluster) septypes.Palette {
	if len(merged) == 0 {
		return nil
	}
	out := make(septypes.Palette, len(merged))
	for i, cl := range merged {
		reps := append([]septypes.RGB(nil), cl.Members...)
		if len(reps) == 0 {
			reps = []septypes.RGB{cl.Centroid}
		}
		out[i] = septypes.ExtractedColor{
			RGB:             cl.Centroid,
			Hex:             cl.Centroid.Hex(),
			Spot:            m.Match(cl.Centroid),
			Representatives: reps,
		}
	}
	return out
}
