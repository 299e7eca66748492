package cycles

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Outside labels samples that belong to no cycle.
const Outside = -1

// madScale makes the median absolute deviation consistent with the standard
// deviation of normally distributed data.
const madScale = 1.4826

// Window is the half-open sample range [Start, End) of one cycle.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of samples in the window.
func (w Window) Len() int { return w.End - w.Start }

// GetCycles labels n samples by the cycle they belong to. Samples between
// consecutive extreme indices share an id; samples before the first or from
// the last extremum on are Outside. With removeGaps set, windows whose length
// is a robust outlier (|z| ≥ sig against median and MAD of all lengths) are
// relabeled Outside and the remaining ones renumbered. At least one sample
// always carries id 0: if nothing survives, every sample is labeled 0.
func GetCycles(extremeIndices []int, n int, removeGaps bool, sig float64) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Outside
	}

	bounds := boundaries(extremeIndices, n)
	var windows []Window
	for k := 0; k+1 < len(bounds); k++ {
		windows = append(windows, Window{Start: bounds[k], End: bounds[k+1]})
	}
	if removeGaps {
		windows = dropOutliers(windows, sig)
	}

	for id, w := range windows {
		for i := w.Start; i < w.End; i++ {
			labels[i] = id
		}
	}
	if len(windows) == 0 {
		for i := range labels {
			labels[i] = 0
		}
	}
	return labels
}

// boundaries returns the sorted distinct extreme indices inside [0, n).
func boundaries(indices []int, n int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	sort.Ints(out)

	uniq := out[:0]
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			uniq = append(uniq, v)
		}
	}
	return uniq
}

func dropOutliers(windows []Window, sig float64) []Window {
	if len(windows) < 3 {
		return windows
	}
	lengths := make([]float64, len(windows))
	for i, w := range windows {
		lengths[i] = float64(w.Len())
	}
	med := median(lengths)
	dev := make([]float64, len(lengths))
	for i, l := range lengths {
		dev[i] = math.Abs(l - med)
	}
	mad := madScale * median(dev)
	if mad == 0 {
		return windows
	}

	kept := windows[:0:0]
	for i, w := range windows {
		if math.Abs(lengths[i]-med)/mad < sig {
			kept = append(kept, w)
		}
	}
	return kept
}

func median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// CyclesToWindows converts a per-sample labeling into the index ranges of its
// runs of equal, non-negative labels.
func CyclesToWindows(labels []int) []Window {
	var windows []Window
	start := 0
	for i := 1; i <= len(labels); i++ {
		if i < len(labels) && labels[i] == labels[start] {
			continue
		}
		if labels[start] >= 0 {
			windows = append(windows, Window{Start: start, End: i})
		}
		start = i
	}
	return windows
}
