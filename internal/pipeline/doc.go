// Package pipeline fits every cycle window of a series and classifies the
// critical points of the fitted model and its derivatives.
//
// Windows are independent: Batch analyses them concurrently and a failing
// window is recorded and logged without affecting its siblings.
package pipeline
