package onb

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/raj-open/herz-sub000/internal/algebra"
)

// rankTolerance is the relative singular/eigen value below which a direction
// counts as degenerate.
const rankTolerance = 1e-12

// Basis is an L²(Ω)-orthonormal basis of the polynomials of degree at most
// Degree that satisfy all Conditions. Column j of Q holds the monomial
// coefficients of the j-th basis element. Q is nil when the conditions leave
// no freedom.
type Basis struct {
	Degree     int
	Conditions []Condition
	Intervals  []algebra.Interval
	Q          *mat.Dense
}

// Conditions builds the constrained orthonormal basis:
//
//  1. condition matrix A
//  2. orthonormal basis B of null(A)
//  3. Gram matrix S = Bᵀ·M·B with the monomial inner products M over Ω
//  4. S = U·D·Uᵀ and Q = B·U·D^(-1/2)
//
// Directions with a degenerate eigenvalue are dropped.
func Conditions(deg int, conditions []Condition, intervals []algebra.Interval) *Basis {
	omega := algebra.MergeIntervals(intervals...)
	basis := &Basis{Degree: deg, Conditions: conditions, Intervals: omega}

	b := NullSpace(ConditionMatrix(deg, conditions), deg+1)
	if b == nil {
		return basis
	}
	_, r := b.Dims()

	var bm mat.Dense
	bm.Mul(MonomialGram(deg, omega), b)
	var s mat.Dense
	s.Mul(b.T(), &bm)
	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, (s.At(i, j)+s.At(j, i))/2)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return basis
	}
	values := eig.Values(nil)
	var u mat.Dense
	eig.VectorsTo(&u)

	largest := 0.0
	for _, v := range values {
		largest = math.Max(largest, v)
	}
	var keep []int
	for j, v := range values {
		if v > rankTolerance*largest {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return basis
	}

	scaled := mat.NewDense(r, len(keep), nil)
	for c, j := range keep {
		inv := 1 / math.Sqrt(values[j])
		for i := 0; i < r; i++ {
			scaled.Set(i, c, u.At(i, j)*inv)
		}
	}
	var q mat.Dense
	q.Mul(b, scaled)
	basis.Q = &q
	return basis
}

// NullSpace returns an orthonormal basis of null(a) as the columns of a
// dim×r matrix, the identity when a is nil, and nil when the null space is
// trivial.
func NullSpace(a *mat.Dense, dim int) *mat.Dense {
	if a == nil {
		id := mat.NewDense(dim, dim, nil)
		for i := 0; i < dim; i++ {
			id.Set(i, i, 1)
		}
		return id
	}
	m, _ := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	rank := 0
	if len(values) > 0 {
		tol := rankTolerance * float64(max(m, dim)) * values[0]
		for _, s := range values {
			if s > tol {
				rank++
			}
		}
	}
	if rank >= dim {
		return nil
	}

	null := mat.NewDense(dim, dim-rank, nil)
	for j := rank; j < dim; j++ {
		for i := 0; i < dim; i++ {
			null.Set(i, j-rank, v.At(i, j))
		}
	}
	return null
}

// MonomialGram returns M[k][l] = ∫_Ω t^(k+l) dt for k, l ≤ deg.
func MonomialGram(deg int, omega []algebra.Interval) *mat.Dense {
	n := deg + 1
	m := mat.NewDense(n, n, nil)
	for k := 0; k < n; k++ {
		for l := 0; l < n; l++ {
			e := float64(k + l + 1)
			sum := 0.0
			for _, iv := range omega {
				sum += (math.Pow(iv.Hi, e) - math.Pow(iv.Lo, e)) / e
			}
			m.Set(k, l, sum)
		}
	}
	return m
}

// Dim is the number of basis elements.
func (b *Basis) Dim() int {
	if b.Q == nil {
		return 0
	}
	_, c := b.Q.Dims()
	return c
}

// Element returns basis polynomial j.
func (b *Basis) Element(j int) *algebra.PolyExp[float64] {
	return algebra.NewPoly(mat.Col(nil, j, b.Q))
}

// Combine returns Σ_j coeffs[j]·q_j in the monomial basis.
func (b *Basis) Combine(coeffs []float64) *algebra.PolyExp[float64] {
	if b.Q == nil {
		return algebra.Zero[float64]()
	}
	var out mat.VecDense
	out.MulVec(b.Q, mat.NewVecDense(len(coeffs), coeffs))
	return algebra.NewPoly(out.RawVector().Data)
}

// InnerProduct returns ⟨p, q⟩ in L²(Ω) for polynomials of degree ≤ Degree.
func (b *Basis) InnerProduct(p, q []float64) float64 {
	g := MonomialGram(b.Degree, b.Intervals)
	pv := mat.NewVecDense(b.Degree+1, pad(p, b.Degree+1))
	qv := mat.NewVecDense(b.Degree+1, pad(q, b.Degree+1))
	return mat.Inner(pv, g, qv)
}

func pad(c []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, c)
	return out
}
