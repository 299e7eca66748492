// Package points recognizes named special points, such as the end of
// diastole, on the critical-point timeline of a fitted cycle.
//
// A Definition names the derivative level and kinds a point must carry and
// the points it must come after. Definitions are resolved in dependency
// order; circular dependencies are reported and the resolvable prefix is
// still recognized.
package points
