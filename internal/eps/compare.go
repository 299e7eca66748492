package eps

import (
	"math"
	"math/cmplx"

	"github.com/raj-open/herz-sub000/internal/field"
)

// DefaultAccuracy is the tolerance used when a model does not carry its own.
const DefaultAccuracy = 1e-6

// Sign classifies a normalised difference against a tolerance.
type Sign int

const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
	// NonReal marks a complex difference with a non-negligible imaginary part.
	NonReal Sign = 2
)

func (s Sign) String() string {
	switch s {
	case Negative:
		return "-"
	case Zero:
		return "0"
	case Positive:
		return "+"
	case NonReal:
		return "i"
	}
	return "?"
}

// NormalisedDifference returns (b-a)/max(1, (|a|+|b|)/2).
func NormalisedDifference(a, b float64) float64 {
	scale := math.Max(1, (math.Abs(a)+math.Abs(b))/2)
	return (b - a) / scale
}

// NormalisedDifferenceC is the complex counterpart of NormalisedDifference.
func NormalisedDifferenceC(a, b complex128) complex128 {
	scale := math.Max(1, (cmplx.Abs(a)+cmplx.Abs(b))/2)
	return (b - a) / complex(scale, 0)
}

// SignNormalisedDifference classifies the normalised difference b-a as
// Positive, Negative or Zero against eps.
func SignNormalisedDifference(a, b, eps float64) Sign {
	d := NormalisedDifference(a, b)
	switch {
	case d >= eps:
		return Positive
	case d <= -eps:
		return Negative
	}
	return Zero
}

// SignNormalisedDifferenceC is SignNormalisedDifference for complex values.
// A non-negligible imaginary part yields NonReal.
func SignNormalisedDifferenceC(a, b complex128, eps float64) Sign {
	d := NormalisedDifferenceC(a, b)
	if math.Abs(imag(d)) >= eps {
		return NonReal
	}
	switch {
	case real(d) >= eps:
		return Positive
	case real(d) <= -eps:
		return Negative
	}
	return Zero
}

// Close reports whether a and b are eps-close in either field.
func Close[T field.Scalar](a, b T, eps float64) bool {
	return SignNormalisedDifferenceC(field.ToComplex(a), field.ToComplex(b), eps) == Zero
}

// IsReal reports whether x has a negligible imaginary part relative to its size.
func IsReal(x complex128, eps float64) bool {
	return SignNormalisedDifferenceC(complex(real(x), 0), x, eps) != NonReal
}

// ClosestIndex returns the index of the point nearest to x. Ties resolve to
// the lowest index.
func ClosestIndex[T field.Scalar](x T, points []T) (int, error) {
	if len(points) == 0 {
		return -1, ErrEmpty
	}
	best := 0
	bestDist := field.Abs(points[0] - x)
	for i := 1; i < len(points); i++ {
		if d := field.Abs(points[i] - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}
