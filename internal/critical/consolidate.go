package critical

import "github.com/raj-open/herz-sub000/internal/eps"

// CleanUpCriticalPoints clusters the times of each derivative level on its
// own and unions the kinds of points that fall into the same cluster. Times
// are snapped to 0, tMin and tMax when eps-close to them.
func CleanUpCriticalPoints(levels [][]CriticalPoint, e, tMin, tMax float64) [][]CriticalPoint {
	bounds := &eps.Bounds{Lo: tMin, Hi: tMax}
	cleaned := make([][]CriticalPoint, len(levels))
	for level, points := range levels {
		if len(points) == 0 {
			cleaned[level] = []CriticalPoint{}
			continue
		}
		catalogue, maps := eps.DuplicatesGetAssignmentMaps(e, bounds, times(points))

		merged := make([]CriticalPoint, len(catalogue))
		seen := make([]bool, len(catalogue))
		for i, idx := range maps[0] {
			if !seen[idx] {
				merged[idx] = CriticalPoint{X: catalogue[idx], Y: points[i].Y}
				seen[idx] = true
			}
			merged[idx].Kinds |= points[i].Kinds
		}

		out := make([]CriticalPoint, 0, len(merged))
		for idx, pt := range merged {
			if !seen[idx] {
				continue
			}
			pt.Kinds = pt.Kinds.Resolve()
			out = append(out, pt)
		}
		cleaned[level] = out
	}
	return cleaned
}

// TimelineEntry holds the kinds found at one canonical time, per derivative
// level.
type TimelineEntry struct {
	Time  float64 `json:"time"`
	Kinds []Kind  `json:"kinds"`
}

// At returns the kinds at derivative level n, or no kinds when n is out of
// range.
func (e TimelineEntry) At(n int) Kind {
	if n < 0 || n >= len(e.Kinds) {
		return 0
	}
	return e.Kinds[n]
}

// GatherMultiLevelClassifications clusters the times of all levels together
// into one canonical timeline and records, for every canonical time, the
// union of kinds each level has there.
func GatherMultiLevelClassifications(levels [][]CriticalPoint, e, tMin, tMax float64) []TimelineEntry {
	lists := make([][]float64, len(levels))
	total := 0
	for level, points := range levels {
		lists[level] = times(points)
		total += len(points)
	}
	if total == 0 {
		return []TimelineEntry{}
	}

	catalogue, maps := eps.DuplicatesGetAssignmentMaps(e, &eps.Bounds{Lo: tMin, Hi: tMax}, lists...)
	timeline := make([]TimelineEntry, len(catalogue))
	for idx, t := range catalogue {
		timeline[idx] = TimelineEntry{Time: t, Kinds: make([]Kind, len(levels))}
	}
	for level, points := range levels {
		for i, idx := range maps[level] {
			timeline[idx].Kinds[level] |= points[i].Kinds
		}
	}
	return timeline
}

func times(points []CriticalPoint) []float64 {
	out := make([]float64, len(points))
	for i, pt := range points {
		out[i] = pt.X
	}
	return out
}
