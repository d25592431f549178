package image2color

import (
	"math"
	"slices"

	"github.com/muesli/clusters"

	"spotsep/colorutil"
	septypes "spotsep/type"
)

const (
	// DefaultMaxClusters is the default upper bound on k
	DefaultMaxClusters = 10
	// DefaultMaxIterations caps the k-means loop
	DefaultMaxIterations = 10
	// seedDistance is the minimum RGB distance between two seeds
	seedDistance = 60.0
)

func coordinates(c septypes.RGB) clusters.Coordinates {
	return clusters.Coordinates{float64(c[0]), float64(c[1]), float64(c[2])}
}

func fromCoordinates(p clusters.Coordinates) septypes.RGB {
	var c septypes.RGB
	for i := range 3 {
		c[i] = uint8(max(0, min(255, math.Round(p[i]))))
	}
	return c
}

// Seeds ranks the histogram by frequency and keeps candidates that are
// farther than 60 from every seed already chosen, stopping at k.
func Seeds(hist []Frequency, k int) []septypes.RGB {
	if k <= 0 || len(hist) == 0 {
		return nil
	}
	ranked := slices.Clone(hist)
	slices.SortStableFunc(ranked, func(a, b Frequency) int {
		return b.Count - a.Count
	})

	seeds := []septypes.RGB{ranked[0].Color}
	for _, cand := range ranked[1:] {
		if len(seeds) >= k {
			break
		}
		distinct := true
		for _, s := range seeds {
			if colorutil.Distance(cand.Color, s) <= seedDistance {
				distinct = false
				break
			}
		}
		if distinct {
			seeds = append(seeds, cand.Color)
		}
	}
	return seeds
}

// Cluster runs deterministic k-means over the sampled pixels. It returns one
// cluster per seed, in seed order, with the pixel count of its final
// assignment; clusters that lost every pixel keep their last centroid and a
// zero count.
func Cluster(s Samples, k, maxIter int) []septypes.Cluster {
	if s.Empty() || k <= 0 {
		return nil
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	seeds := Seeds(s.Histogram, k)
	cc := make(clusters.Clusters, len(seeds))
	for i, seed := range seeds {
		cc[i].Center = coordinates(seed)
	}

	points := make(clusters.Observations, len(s.Pixels))
	for i, p := range s.Pixels {
		points[i] = coordinates(p)
	}
	assignments := make([]int, len(points))

	for range maxIter {
		cc.Reset()
		changes := 0
		for i, p := range points {
			ci := cc.Nearest(p)
			if assignments[i] != ci {
				assignments[i] = ci
				changes++
			}
			cc[ci].Append(p)
		}
		for i := range cc {
			cc[i].Recenter()
			cc[i].Center = coordinates(fromCoordinates(cc[i].Center))
		}
		if changes == 0 {
			break
		}
	}

	out := make([]septypes.Cluster, len(cc))
	for i, c := range cc {
		centroid := fromCoordinates(c.Center)
		h, sat, v := colorutil.HSV(centroid)
		out[i] = septypes.Cluster{
			Centroid: centroid,
			Hue:      h,
			Sat:      sat,
			Val:      v,
			Count:    len(c.Observations),
			Members:  []septypes.RGB{centroid},
		}
	}
	return out
}
