package algebra

import "github.com/raj-open/herz-sub000/internal/field"

// matrix is a small dense square operator over T acting on coefficient
// vectors. Operator sizes are deg+1.
type matrix[T field.Scalar] [][]T

func identity[T field.Scalar](n int) matrix[T] {
	m := zeros[T](n)
	for i := 0; i < n; i++ {
		m[i][i] = field.FromFloat[T](1)
	}
	return m
}

func zeros[T field.Scalar](n int) matrix[T] {
	m := make(matrix[T], n)
	for i := range m {
		m[i] = make([]T, n)
	}
	return m
}

func (a matrix[T]) mul(b matrix[T]) matrix[T] {
	n := len(a)
	c := zeros[T](n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			if a[i][k] == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				c[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return c
}

func (a matrix[T]) pow(n int) matrix[T] {
	result := identity[T](len(a))
	base := a
	for n > 0 {
		if n&1 == 1 {
			result = result.mul(base)
		}
		base = base.mul(base)
		n >>= 1
	}
	return result
}

func (a matrix[T]) apply(v []T) []T {
	out := make([]T, len(a))
	for i := range a {
		for j, x := range v {
			out[i] += a[i][j] * x
		}
	}
	return out
}

// binomial returns C(n, k) as a float.
func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 1; i <= k; i++ {
		result = result * float64(n-k+i) / float64(i)
	}
	return result
}

// FallingFactorial returns n·(n-1)···(n-k+1), the k-th derivative factor of t^n.
func FallingFactorial(n, k int) float64 {
	if k > n {
		return 0
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result *= float64(n - i)
	}
	return result
}
