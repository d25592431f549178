package image2color

import (
	"slices"

	"spotsep/colorutil"
	septypes "spotsep/type"
)

const (
	backgroundMergeDistance = 30.0
	grayMergeDistance       = 60.0
	hueMergeDegrees         = 30.0
	coloredSaturation       = 0.15
)

// shouldMerge decides whether cur folds into target. isBackground marks the
// largest cluster, which only absorbs near-identical colors.
func shouldMerge(cur, target septypes.Cluster, isBackground bool) bool {
	if isBackground {
		return colorutil.Distance(cur.Centroid, target.Centroid) < backgroundMergeDistance
	}
	if cur.Sat > coloredSaturation && target.Sat > coloredSaturation {
		// shades and tints of one hue collapse into one ink
		return colorutil.HueDistance(cur.Hue, target.Hue) < hueMergeDegrees
	}
	return colorutil.Distance(cur.Centroid, target.Centroid) < grayMergeDistance
}

// Merge folds visually equivalent clusters together. Clusters are visited
// by descending pixel count; each one joins the first accepted cluster it
// matches or becomes a new accepted cluster. Accepted clusters keep their
// centroid and accumulate counts and member centroids.
func Merge(in []septypes.Cluster) []septypes.Cluster {
	sorted := slices.Clone(in)
	slices.SortStableFunc(sorted, func(a, b septypes.Cluster) int {
		return b.Count - a.Count
	})

	var out []septypes.Cluster
	for _, cur := range sorted {
		if cur.Count == 0 {
			continue
		}
		members := cur.Members
		if len(members) == 0 {
			members = []septypes.RGB{cur.Centroid}
		}

		merged := false
		for j := range out {
			if !shouldMerge(cur, out[j], j == 0) {
				continue
			}
			out[j].Count += cur.Count
			for _, m := range members {
				if !slices.Contains(out[j].Members, m) {
					out[j].Members = append(out[j].Members, m)
				}
			}
			merged = true
			break
		}
		if !merged {
			cur.Members = slices.Clone(members)
			out = append(out, cur)
		}
	}
	return out
}
