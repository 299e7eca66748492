package algebra

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/raj-open/herz-sub000/internal/eps"
	"github.com/raj-open/herz-sub000/internal/field"
)

const (
	maxRootIterations = 500
	polishIterations  = 4
)

// Roots returns the complex roots of the polynomial part, with multiplicity.
// The exponential factor has no roots. For cyclic models the roots are those
// of the unwrapped polynomial.
func (p *PolyExp[T]) Roots() []complex128 {
	return p.roots.get()
}

// RealRoots returns the sorted, deduplicated real roots of the polynomial
// part, polished by Newton steps.
func (p *PolyExp[T]) RealRoots() []float64 {
	monic := make([]complex128, len(p.coeff))
	for i, c := range p.coeff {
		monic[i] = field.ToComplex(c)
	}

	var reals []float64
	for _, z := range p.Roots() {
		if !eps.IsReal(z, p.accuracy) {
			continue
		}
		x := real(z)
		if !field.IsComplex[T]() {
			x = polishReal(monic, x)
		}
		reals = append(reals, x)
	}
	sort.Float64s(reals)
	return eps.CleanDuplicates(reals, p.accuracy, nil)
}

func (p *PolyExp[T]) computeRoots() []complex128 {
	if p.IsZero() || p.Degree() < 1 {
		return nil
	}
	monic := make([]complex128, len(p.coeff))
	for i, c := range p.coeff {
		monic[i] = field.ToComplex(c)
	}
	if p.Degree() == 1 {
		return []complex128{-monic[0]}
	}

	if !field.IsComplex[T]() {
		if roots, ok := companionRoots(monic); ok {
			return roots
		}
	}
	return durandKerner(monic)
}

// companionRoots computes the eigenvalues of the companion matrix of a monic
// real polynomial.
func companionRoots(monic []complex128) ([]complex128, bool) {
	n := len(monic) - 1
	c := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		c.Set(0, j, -real(monic[n-1-j]))
	}
	for i := 1; i < n; i++ {
		c.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(c, mat.EigenNone); !ok {
		return nil, false
	}
	return eig.Values(nil), true
}

// durandKerner finds all roots of a monic complex polynomial simultaneously.
func durandKerner(monic []complex128) []complex128 {
	n := len(monic) - 1
	radius := 1.0
	for _, c := range monic[:n] {
		radius = math.Max(radius, 1+cmplx.Abs(c))
	}

	z := make([]complex128, n)
	seed := complex(0.4, 0.9)
	for k := range z {
		z[k] = complex(radius, 0) * cmplx.Pow(seed, complex(float64(k), 0)) / complex(cmplx.Abs(seed), 0)
	}

	for iter := 0; iter < maxRootIterations; iter++ {
		delta := 0.0
		for k := range z {
			denom := complex(1, 0)
			for j := range z {
				if j != k {
					denom *= z[k] - z[j]
				}
			}
			if denom == 0 {
				denom = complex(1e-12, 0)
			}
			step := horner(monic, z[k]) / denom
			z[k] -= step
			delta = math.Max(delta, cmplx.Abs(step))
		}
		if delta < 1e-15 {
			break
		}
	}
	return z
}

// polishReal applies a few Newton steps on the real line and keeps the
// result only if it does not increase |p(x)|.
func polishReal(monic []complex128, x float64) float64 {
	coeff := make([]float64, len(monic))
	for i, c := range monic {
		coeff[i] = real(c)
	}
	deriv := make([]float64, len(coeff)-1)
	for i := range deriv {
		deriv[i] = float64(i+1) * coeff[i+1]
	}

	best, bestValue := x, math.Abs(horner(coeff, x))
	for i := 0; i < polishIterations; i++ {
		d := horner(deriv, x)
		if d == 0 {
			break
		}
		x -= horner(coeff, x) / d
		if v := math.Abs(horner(coeff, x)); v < bestValue {
			best, bestValue = x, v
		}
	}
	return best
}
