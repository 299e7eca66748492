// Package field provides the two numeric fields the model hierarchy is
// instantiated over (float64 and complex128) and the handful of operations
// that cannot be expressed through Go's arithmetic operators alone.
package field

import (
	"math"
	"math/cmplx"
)

// Scalar is the set of coefficient fields supported by the algebra.
type Scalar interface {
	float64 | complex128
}

// IsComplex reports whether T is the complex field.
func IsComplex[T Scalar]() bool {
	var z T
	_, ok := any(z).(complex128)
	return ok
}

// FromFloat embeds a real number into T.
func FromFloat[T Scalar](x float64) T {
	var z T
	switch p := any(&z).(type) {
	case *float64:
		*p = x
	case *complex128:
		*p = complex(x, 0)
	}
	return z
}

// ToComplex embeds x into the complex field.
func ToComplex[T Scalar](x T) complex128 {
	switch v := any(x).(type) {
	case float64:
		return complex(v, 0)
	case complex128:
		return v
	}
	return 0
}

// Real is the real part of x.
func Real[T Scalar](x T) float64 {
	return real(ToComplex(x))
}

// Imag is the imaginary part of x, zero for the real field.
func Imag[T Scalar](x T) float64 {
	return imag(ToComplex(x))
}

// Abs is the absolute value or modulus of x.
func Abs[T Scalar](x T) float64 {
	switch v := any(x).(type) {
	case float64:
		return math.Abs(v)
	case complex128:
		return cmplx.Abs(v)
	}
	return 0
}

// Exp is e^x.
func Exp[T Scalar](x T) T {
	switch v := any(x).(type) {
	case float64:
		return any(math.Exp(v)).(T)
	case complex128:
		return any(cmplx.Exp(v)).(T)
	}
	return x
}

// Pow raises x to a non-negative integer power by repeated squaring.
func Pow[T Scalar](x T, n int) T {
	result := FromFloat[T](1)
	for n > 0 {
		if n&1 == 1 {
			result *= x
		}
		x *= x
		n >>= 1
	}
	return result
}
