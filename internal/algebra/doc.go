// Package algebra provides the polynomial-exponential model family
//
//	f(t) = lead · p(t) · exp(alpha·t)
//
// over the real or complex field, optionally cyclic in its polynomial part:
//
//   - [PolyExp]: the general model
//   - [NewPoly]: alpha = 0
//   - [NewExp]: p = 1
//   - [PolyTrig], [Cos], [Sin]: Re[C · p(t) · exp(iωt)]
//
// Models are immutable values. Every transformation (derivative, integral,
// rescale, arithmetic) returns a new model with its own lazily computed roots.
//
// # Cyclic models
//
// A cyclic model wraps t into [offset, offset+period) before evaluating p but
// evaluates the exponential factor at the unwrapped t. [PolyExp.ResolvePiecewise]
// splits a cyclic model into acyclic models that agree with it on each period.
package algebra
