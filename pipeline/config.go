package pipeline

import (
	"runtime"

	"spotsep/color2mask"
	"spotsep/color2svg"
	"spotsep/colorutil"
	"spotsep/coverage"
	"spotsep/image2color"
	septypes "spotsep/type"
)

// Config holds every tunable of a pipeline run
type Config struct {
	MaxClusters   int // k, upper bound on palette size before merging
	MaxIterations int
	SampleStride  int // keep every n-th pixel when clustering
	// PreviewMaxDimension downsizes the image before clustering; 0 disables it
	PreviewMaxDimension int

	IgnoreBackground  bool
	IgnoreBlack       bool
	NoiseFloorPercent float64

	UpscaleFactor int
	PathOmit      float64
	BlurRadius    float64
	AlphaMax      float64 // potrace corner threshold, 0 (polygon) to 4/3 (no corners)
	OptTolerance  float64
	Fill          string
	Workers       int
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		MaxClusters:       image2color.DefaultMaxClusters,
		MaxIterations:     image2color.DefaultMaxIterations,
		SampleStride:      image2color.DefaultStride,
		NoiseFloorPercent: coverage.DefaultNoiseFloor,
		UpscaleFactor:     color2mask.DefaultUpscale,
		PathOmit:          color2svg.DefaultPathOmit,
		BlurRadius:        color2svg.DefaultBlurRadius,
		AlphaMax:          color2svg.DefaultAlphaMax,
		OptTolerance:      color2svg.DefaultOptTolerance,
		Fill:              color2svg.DefaultFill,
		Workers:           runtime.NumCPU(),
	}
}

// Validate fails with septypes.ErrInvalidConfiguration on the first bad field
func (c Config) Validate() error {
	switch {
	case c.MaxClusters <= 0:
		return septypes.InvalidConfig("maxClusters must be positive, got %d", c.MaxClusters)
	case c.MaxIterations <= 0:
		return septypes.InvalidConfig("maxIterations must be positive, got %d", c.MaxIterations)
	case c.SampleStride <= 0:
		return septypes.InvalidConfig("sampleStride must be positive, got %d", c.SampleStride)
	case c.PreviewMaxDimension < 0:
		return septypes.InvalidConfig("previewMaxDimension is negative")
	case c.NoiseFloorPercent < 0 || c.NoiseFloorPercent >= 100:
		return septypes.InvalidConfig("noiseFloorPercent %v out of [0,100)", c.NoiseFloorPercent)
	case c.UpscaleFactor < 1:
		return septypes.InvalidConfig("upscaleFactor must be at least 1, got %d", c.UpscaleFactor)
	case c.PathOmit < 0:
		return septypes.InvalidConfig("pathOmit is negative")
	case c.BlurRadius < 0:
		return septypes.InvalidConfig("blurRadius is negative")
	case c.AlphaMax < 0 || c.AlphaMax > 4.0/3:
		return septypes.InvalidConfig("alphaMax %v out of [0,4/3]", c.AlphaMax)
	case c.OptTolerance < 0:
		return septypes.InvalidConfig("optTolerance is negative")
	case c.Workers < 0:
		return septypes.InvalidConfig("workers is negative")
	}
	if c.Fill != "" {
		if _, ok := colorutil.ParseHex(c.Fill); !ok {
			return septypes.InvalidConfig("fill %q is not a hex color", c.Fill)
		}
	}
	return nil
}

func (c Config) coverageOptions() coverage.Options {
	return coverage.Options{
		IgnoreBackground:  c.IgnoreBackground,
		IgnoreBlack:       c.IgnoreBlack,
		NoiseFloorPercent: c.NoiseFloorPercent,
	}
}

func (c Config) traceOptions(width, height int) color2svg.TraceOptions {
	return color2svg.TraceOptions{
		BlurRadius:   c.BlurRadius,
		PathOmit:     c.PathOmit,
		AlphaMax:     c.AlphaMax,
		OptTolerance: c.OptTolerance,
		Fill:         c.Fill,
		Width:        width,
		Height:       height,
	}
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
