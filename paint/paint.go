// Package paint turns coverage percentages into paint mass estimates.
package paint

import (
	"math"

	"gonum.org/v1/gonum/floats"

	septypes "spotsep/type"
)

// Policy converts a coverage percentage into a paint estimate
type Policy interface {
	Estimate(coveragePercent float64) septypes.PaintEstimate
	Validate() error
}

// Physical models the ink film directly.
// SurfaceArea is in cm², ThicknessMicrons in µm, Density in g/cm³.
type Physical struct {
	SurfaceArea      float64
	ThicknessMicrons float64
	Density          float64
	WastePercent     float64
}

// Validate rejects negative inputs
func (p Physical) Validate() error {
	switch {
	case p.SurfaceArea < 0:
		return septypes.InvalidConfig("surface area %v is negative", p.SurfaceArea)
	case p.ThicknessMicrons < 0:
		return septypes.InvalidConfig("thickness %v is negative", p.ThicknessMicrons)
	case p.Density < 0:
		return septypes.InvalidConfig("density %v is negative", p.Density)
	case p.WastePercent < 0:
		return septypes.InvalidConfig("waste %v is negative", p.WastePercent)
	}
	return nil
}

// Estimate returns area in cm², volume in cm³ and weights in grams
func (p Physical) Estimate(coveragePercent float64) septypes.PaintEstimate {
	area := p.SurfaceArea * coveragePercent / 100
	volume := area * p.ThicknessMicrons / 10000
	weight := volume * p.Density
	return septypes.PaintEstimate{
		Policy:          "physical",
		CoveragePercent: coveragePercent,
		EffectiveArea:   area,
		Volume:          volume,
		Weight:          weight,
		TotalWeight:     weight * (1 + p.WastePercent/100),
	}
}

// Coefficient uses a calibrated grams-per-mm² constant instead of film properties
type Coefficient struct {
	WidthMm           float64
	HeightMm          float64
	WeightCoefficient float64
}

// Validate rejects negative inputs
func (c Coefficient) Validate() error {
	switch {
	case c.WidthMm < 0 || c.HeightMm < 0:
		return septypes.InvalidConfig("print size %vx%v mm is negative", c.WidthMm, c.HeightMm)
	case c.WeightCoefficient < 0:
		return septypes.InvalidConfig("weight coefficient %v is negative", c.WeightCoefficient)
	}
	return nil
}

// Estimate returns the inked area in mm² and the weight in grams
func (c Coefficient) Estimate(coveragePercent float64) septypes.PaintEstimate {
	area := c.WidthMm * c.HeightMm * coveragePercent / 100
	weight := area * c.WeightCoefficient
	return septypes.PaintEstimate{
		Policy:          "coefficient",
		CoveragePercent: coveragePercent,
		EffectiveArea:   area,
		Weight:          weight,
		TotalWeight:     weight,
	}
}

// EstimatePalette estimates every palette entry and the total mass in grams
func EstimatePalette(policy Policy, palette septypes.Palette) ([]septypes.PaintEstimate, float64, error) {
	if policy == nil {
		return nil, 0, septypes.InvalidConfig("no paint policy")
	}
	if err := policy.Validate(); err != nil {
		return nil, 0, err
	}
	out := make([]septypes.PaintEstimate, len(palette))
	weights := make([]float64, len(palette))
	for i, c := range palette {
		out[i] = policy.Estimate(c.Percentage)
		weights[i] = out[i].TotalWeight
	}
	return out, floats.Sum(weights), nil
}

// Shape of a cup body
type Shape int

const (
	Cylinder Shape = iota
	Conical
)

// Cup is a printable cup body, dimensions in cm
type Cup struct {
	Shape          Shape
	Height         float64
	TopDiameter    float64
	BottomDiameter float64 // ignored for Cylinder
}

// Validate requires positive dimensions
func (c Cup) Validate() error {
	if c.Height <= 0 || c.TopDiameter <= 0 {
		return septypes.InvalidConfig("cup height and top diameter must be positive")
	}
	if c.Shape == Conical && c.BottomDiameter <= 0 {
		return septypes.InvalidConfig("conical cup needs a positive bottom diameter")
	}
	return nil
}

// SurfaceArea is the lateral (printable) area in cm²
func (c Cup) SurfaceArea() float64 {
	r1 := c.TopDiameter / 2
	if c.Shape == Cylinder {
		return 2 * math.Pi * r1 * c.Height
	}
	r2 := c.BottomDiameter / 2
	slant := math.Hypot(r1-r2, c.Height)
	return math.Pi * (r1 + r2) * slant
}

// Options are the user-facing paint inputs. A non-zero thickness or
// coefficient selects a policy; otherwise no estimate is made.
type Options struct {
	ThicknessMicrons float64
	Density          float64
	WastePercent     float64
	SurfaceArea      float64 // cm², replaced by the cup area when CupHeight is set

	CupHeight         float64
	CupTopDiameter    float64
	CupBottomDiameter float64 // conical when set

	WidthMm           float64
	HeightMm          float64
	WeightCoefficient float64
}

// Policy builds and validates the policy the options describe. A nil policy
// with a nil error means no estimate was asked for.
func (o Options) Policy() (Policy, error) {
	var p Policy
	switch {
	case o.WeightCoefficient != 0:
		p = Coefficient{WidthMm: o.WidthMm, HeightMm: o.HeightMm, WeightCoefficient: o.WeightCoefficient}
	case o.ThicknessMicrons != 0:
		area := o.SurfaceArea
		if o.CupHeight != 0 {
			cup := Cup{Shape: Cylinder, Height: o.CupHeight, TopDiameter: o.CupTopDiameter}
			if o.CupBottomDiameter != 0 {
				cup.Shape = Conical
				cup.BottomDiameter = o.CupBottomDiameter
			}
			if err := cup.Validate(); err != nil {
				return nil, err
			}
			area = cup.SurfaceArea()
		}
		p = Physical{SurfaceArea: area, ThicknessMicrons: o.ThicknessMicrons, Density: o.Density, WastePercent: o.WastePercent}
	default:
		return nil, nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
