package series

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Peak is a detected local maximum.
type Peak struct {
	Index int
	Value float64
	// Prominence is the height above the higher of the two surrounding
	// valleys.
	Prominence float64
}

// PeakDetector finds local maxima of sampled data.
type PeakDetector struct {
	// Window is the number of samples on each side a peak must exceed.
	Window int
	// MinDistance is the minimum distance between peaks, in samples.
	MinDistance int
	// MinProminence is the minimum prominence of a peak.
	MinProminence float64
	// Troughs detects local minima instead.
	Troughs bool
}

// Detect returns the peaks sorted by index. When two peaks are closer than
// MinDistance the more prominent one wins.
func (pd *PeakDetector) Detect(values []float64) []Peak {
	if len(values) < 3 {
		return nil
	}
	data := values
	if pd.Troughs {
		data = make([]float64, len(values))
		copy(data, values)
		floats.Scale(-1, data)
	}
	w := max(pd.Window, 1)

	var peaks []Peak
	for i := 1; i < len(data)-1; i++ {
		if !isLocalMaximum(data, i, w) {
			continue
		}
		if p := prominence(data, i); p >= pd.MinProminence {
			peaks = append(peaks, Peak{Index: i, Value: values[i], Prominence: p})
		}
	}
	return pd.filterByDistance(peaks)
}

func isLocalMaximum(data []float64, i, w int) bool {
	for j := max(i-w, 0); j < i; j++ {
		if data[j] >= data[i] {
			return false
		}
	}
	for j := i + 1; j <= i+w && j < len(data); j++ {
		if data[j] > data[i] {
			return false
		}
	}
	return true
}

func prominence(data []float64, i int) float64 {
	peak := data[i]
	left := peak
	for j := i - 1; j >= 0 && data[j] <= peak; j-- {
		left = math.Min(left, data[j])
	}
	right := peak
	for j := i + 1; j < len(data) && data[j] <= peak; j++ {
		right = math.Min(right, data[j])
	}
	return peak - math.Max(left, right)
}

func (pd *PeakDetector) filterByDistance(peaks []Peak) []Peak {
	if pd.MinDistance <= 1 || len(peaks) < 2 {
		return peaks
	}
	byProminence := make([]Peak, len(peaks))
	copy(byProminence, peaks)
	sort.SliceStable(byProminence, func(i, j int) bool {
		return byProminence[i].Prominence > byProminence[j].Prominence
	})

	var kept []Peak
	for _, p := range byProminence {
		ok := true
		for _, q := range kept {
			if abs(p.Index-q.Index) < pd.MinDistance {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, p)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })
	return kept
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// DetectExtrema returns the indices of the peaks of x whose prominence is at
// least a tenth of the range of x.
func DetectExtrema(x []float64, window, minDistance int) []int {
	return detect(x, window, minDistance, false)
}

// DetectTroughs is DetectExtrema for local minima.
func DetectTroughs(x []float64, window, minDistance int) []int {
	return detect(x, window, minDistance, true)
}

func detect(x []float64, window, minDistance int, troughs bool) []int {
	if len(x) < 3 {
		return nil
	}
	pd := &PeakDetector{
		Window:        window,
		MinDistance:   minDistance,
		MinProminence: 0.1 * (floats.Max(x) - floats.Min(x)),
		Troughs:       troughs,
	}
	peaks := pd.Detect(x)
	out := make([]int, len(peaks))
	for i, p := range peaks {
		out[i] = p.Index
	}
	return out
}
