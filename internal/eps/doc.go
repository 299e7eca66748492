// Package eps implements tolerant comparison of floating point values.
//
// Differences are normalised by max(1, mean magnitude), so values of small
// magnitude are compared absolutely and large values relatively:
//
//	d := eps.NormalisedDifference(a, b)
//	if eps.SignNormalisedDifference(a, b, 1e-6) == eps.Zero {
//	    // a and b are considered equal
//	}
//
// [DuplicatesGetAssignmentMaps] clusters near-equal values from several lists
// into one catalogue and maps every input value onto it.
package eps
