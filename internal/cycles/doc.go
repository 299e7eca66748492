// Package cycles splits a sampled periodic signal into cycle windows.
//
// Consecutive extrema bound a window. GetCycles labels every sample with the
// id of its window (or -1 outside any window) and CyclesToWindows turns such
// a labeling back into half-open index ranges.
package cycles
