// Package critical locates and classifies the critical points of fitted
// polynomial models and reconciles them across derivative levels.
//
//   - [GetCriticalPoints]: zeros, local extrema and inflections of p on [tMin, tMax]
//   - [GetCriticalPointsBounded]: additionally boundary points and global extrema
//   - [CleanUpCriticalPoints]: merge near-duplicate points per derivative level
//   - [GatherMultiLevelClassifications]: one timeline across all levels
//
// Candidates are the real roots of the derivative. Each candidate is
// classified by comparing p against grid points placed between neighbouring
// candidates; no other critical point lies between them, so the sign of the
// difference is decided by the mean value theorem.
package critical
