package eps

import (
	"sort"

	"github.com/raj-open/herz-sub000/internal/field"
)

// Bounds is a closed interval that clustered values are snapped onto.
type Bounds struct {
	Lo, Hi float64
}

func sortByRealImag[T field.Scalar](values []T) {
	sort.SliceStable(values, func(i, j int) bool {
		a, b := values[i], values[j]
		if field.Real(a) != field.Real(b) {
			return field.Real(a) < field.Real(b)
		}
		return field.Imag(a) < field.Imag(b)
	})
}

// CleanDuplicates sorts values by (real, imag) and greedily merges runs in
// which each value is eps-close to its predecessor. Runs are replaced by
// their mean, then snapped to 0 and to the bounds when eps-close to them.
//
// Closeness is only checked between neighbours so a long run may span more
// than eps end to end.
func CleanDuplicates[T field.Scalar](values []T, eps float64, bounds *Bounds) []T {
	if len(values) == 0 {
		return []T{}
	}
	sorted := make([]T, len(values))
	copy(sorted, values)
	sortByRealImag(sorted)

	var clusters []T
	sum, count := sorted[0], 1
	for i := 1; i < len(sorted); i++ {
		if Close(sorted[i-1], sorted[i], eps) {
			sum += sorted[i]
			count++
			continue
		}
		clusters = append(clusters, sum/field.FromFloat[T](float64(count)))
		sum, count = sorted[i], 1
	}
	clusters = append(clusters, sum/field.FromFloat[T](float64(count)))

	for i, c := range clusters {
		clusters[i] = snap(c, eps, bounds)
	}
	sortByRealImag(clusters)

	result := clusters[:1]
	for _, c := range clusters[1:] {
		if c != result[len(result)-1] {
			result = append(result, c)
		}
	}
	return result
}

func snap[T field.Scalar](x T, eps float64, bounds *Bounds) T {
	var zero T
	if Close(x, zero, eps) {
		return zero
	}
	if bounds != nil {
		if lo := field.FromFloat[T](bounds.Lo); Close(x, lo, eps) {
			return lo
		}
		if hi := field.FromFloat[T](bounds.Hi); Close(x, hi, eps) {
			return hi
		}
	}
	return x
}

// DuplicatesGetAssignmentMaps flattens all lists into one deduplicated
// catalogue (see CleanDuplicates) and returns, for each input list, the
// catalogue index closest to each of its values.
func DuplicatesGetAssignmentMaps[T field.Scalar](eps float64, bounds *Bounds, lists ...[]T) ([]T, [][]int) {
	var flat []T
	for _, l := range lists {
		flat = append(flat, l...)
	}
	catalogue := CleanDuplicates(flat, eps, bounds)

	maps := make([][]int, len(lists))
	for k, l := range lists {
		maps[k] = make([]int, len(l))
		for i, x := range l {
			// catalogue is non-empty whenever l is
			maps[k][i], _ = ClosestIndex(x, catalogue)
		}
	}
	return catalogue, maps
}
