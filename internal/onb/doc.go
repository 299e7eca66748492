// Package onb fits polynomials under linear constraints.
//
// [Conditions] builds an orthonormal basis, in L² over a union of intervals,
// of the polynomials of a given degree satisfying a set of [Condition]s.
// [Basis.Spectrum] projects a sampled curve onto that basis in closed form,
// which yields the constrained least-squares fit. [FitWindow] wraps both for
// one cycle window, normalising time to [0, 1] and removing the drift first.
package onb
