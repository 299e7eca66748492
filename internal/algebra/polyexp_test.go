package algebra

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalisation(t *testing.T) {
	p := NewPoly([]float64{2, 4, 6, 0, 0})

	assert.Equal(t, 2, p.Degree())
	assert.InDelta(t, 6, p.Lead(), 1e-12)
	assert.InDelta(t, 1, p.Monic()[2], 0)
	assert.InDeltaSlice(t, []float64{2, 4, 6}, p.Coefficients(), 1e-12)

	z := NewPoly([]float64{0, 0})
	assert.True(t, z.IsZero())
	assert.Equal(t, 0, z.Degree())
	assert.Equal(t, 0.0, z.Evaluate(3))
}

func TestEvaluate(t *testing.T) {
	p := NewPoly([]float64{1, -2, 1})
	assert.InDelta(t, 0, p.Evaluate(1), 1e-12)
	assert.InDelta(t, 4, p.Evaluate(3), 1e-12)

	f := NewPolyExp([]float64{0, 1}, 0.5)
	assert.InDelta(t, 2*math.Exp(1), f.Evaluate(2), 1e-12)
	assert.InDeltaSlice(t, []float64{0, math.Exp(0.5)}, f.Values([]float64{0, 1}), 1e-12)
}

func TestEvaluateCyclic(t *testing.T) {
	p := NewPoly([]float64{0, 0, 1}, WithCycle(0, 1))
	assert.InDelta(t, 0.25, p.Evaluate(1.5), 1e-12)
	assert.InDelta(t, 0.25, p.Evaluate(-0.5), 1e-12)

	// only the polynomial part is periodic
	f := NewPolyExp([]float64{0, 1}, 1, WithCycle(0, 1))
	assert.InDelta(t, 0.5*math.Exp(2.5), f.Evaluate(2.5), 1e-9)
}

func TestInvalidPeriodPanics(t *testing.T) {
	assert.PanicsWithValue(t, ErrInvalidPeriod, func() {
		NewPoly([]float64{1}, WithCycle(0, 0))
	})
}

func TestDerivativePoly(t *testing.T) {
	p := NewPoly([]float64{1, 2, 3, 4})
	assert.InDeltaSlice(t, []float64{2, 6, 12}, p.Derivative(1).Coefficients(), 1e-12)
	assert.InDeltaSlice(t, []float64{6, 24}, p.Derivative(2).Coefficients(), 1e-12)
	assert.True(t, p.Derivative(4).IsZero())
}

func TestDerivativeExp(t *testing.T) {
	// d/dt[t·e^{2t}] = (1 + 2t)·e^{2t}
	f := NewPolyExp([]float64{0, 1}, 2)
	df := f.Derivative(1)
	assert.InDeltaSlice(t, []float64{1, 2}, df.Coefficients(), 1e-12)
	assert.InDelta(t, 2, df.Alpha(), 0)

	for _, x := range []float64{-1, 0, 0.3, 1.2} {
		h := 1e-6
		numeric := (f.Evaluate(x+h) - f.Evaluate(x-h)) / (2 * h)
		assert.InDelta(t, numeric, df.Evaluate(x), 1e-5)
	}
}

func TestIntegralExp(t *testing.T) {
	// ∫ t·e^t dt = (t - 1)·e^t
	f := NewPolyExp([]float64{0, 1}, 1)
	assert.InDeltaSlice(t, []float64{-1, 1}, f.Integral(1).Coefficients(), 1e-12)
}

func TestIntegralDerivativeInverse(t *testing.T) {
	models := []*PolyExp[float64]{
		NewPoly([]float64{1, -3, 0.5, 2}),
		NewPolyExp([]float64{2, 1, -1}, 0.7),
		NewPolyExp([]float64{-1, 0, 0, 4}, -1.3),
		NewExp(3.0, 2.0),
	}

	for _, f := range models {
		for n := 0; n <= 3; n++ {
			g := f.Integral(n).Derivative(n)
			assert.True(t, g.Equal(f, 1e-9), "n=%d: %v != %v", n, g, f)
		}
	}
}

func TestIntegralDerivativeInverseComplex(t *testing.T) {
	f := NewPolyExp([]complex128{1 + 1i, -2, 0.5i}, complex(0.2, 3))
	for n := 0; n <= 3; n++ {
		g := f.Integral(n).Derivative(n)
		assert.True(t, g.Equal(f, 1e-9), "n=%d: %v != %v", n, g, f)
	}
}

func TestDerivativeChain(t *testing.T) {
	chain := NewPoly([]float64{0, 0, 0, 1}).DerivativeChain(3)
	require.Len(t, chain, 4)
	assert.Equal(t, 3, chain[0].Degree())
	assert.Equal(t, 0, chain[3].Degree())
	assert.InDelta(t, 6, chain[3].Evaluate(10), 1e-12)
}

func TestAddAndMul(t *testing.T) {
	p := NewPoly([]float64{-1, 1})
	q := NewPoly([]float64{-2, 1})

	sum, err := p.Add(q)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-3, 2}, sum.Coefficients(), 1e-12)

	diff, err := p.Sub(p)
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	prod, err := p.Mul(q)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, -3, 1}, prod.Coefficients(), 1e-12)
	assert.ElementsMatch(t, []complex128{1, 2}, prod.Roots())

	scaled := prod.Scale(3)
	assert.InDelta(t, 3*prod.Evaluate(0.4), scaled.Evaluate(0.4), 1e-12)
}

func TestMulExponents(t *testing.T) {
	f := NewPolyExp([]float64{1, 1}, 0.5)
	g := NewExp(2.0, -1.5)
	prod, err := f.Mul(g)
	require.NoError(t, err)
	assert.InDelta(t, -1, prod.Alpha(), 1e-12)
	for _, x := range []float64{-1, 0.5, 2} {
		assert.InDelta(t, f.Evaluate(x)*g.Evaluate(x), prod.Evaluate(x), 1e-9)
	}
}

func TestIncompatible(t *testing.T) {
	f := NewPolyExp([]float64{1, 1}, 0.5)
	g := NewPolyExp([]float64{1, 1}, 1.5)
	_, err := f.Add(g)
	assert.ErrorIs(t, err, ErrIncompatible)

	c := NewPoly([]float64{1, 1}, WithCycle(0, 1))
	_, err = c.Mul(NewPoly([]float64{1, 1}))
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = c.Mul(NewExp(1.0, 2.0))
	assert.NoError(t, err)
}

func TestRootValidity(t *testing.T) {
	polys := [][]float64{
		{-6, 11, -6, 1},
		{3, 0, -7, 1, 2},
		{1, -2, 1},
		{-1, 0, 0, 0, 0, 1},
		{0.5, -3, 0.2, 4, -1, 0.3},
	}

	for _, coeff := range polys {
		p := NewPoly(coeff)
		for _, r := range p.RealRoots() {
			assert.InDelta(t, 0, p.Evaluate(r), 1e-6, "p=%v root=%g", coeff, r)
		}
		for _, z := range p.Roots() {
			value := 0i
			for i := len(coeff) - 1; i >= 0; i-- {
				value = value*z + complex(coeff[i], 0)
			}
			assert.Less(t, cmplx.Abs(value), 1e-6, "p=%v root=%v", coeff, z)
		}
	}
}

func TestRealRoots(t *testing.T) {
	assert.InDeltaSlice(t, []float64{1, 2, 3}, NewPoly([]float64{-6, 11, -6, 1}).RealRoots(), 1e-9)
	assert.InDeltaSlice(t, []float64{1}, NewPoly([]float64{1, -2, 1}).RealRoots(), 1e-6)
	assert.Empty(t, NewPoly([]float64{1, 0, 1}).RealRoots())
	assert.Empty(t, NewPoly([]float64{5}).RealRoots())
}

func TestComplexRoots(t *testing.T) {
	// (t - i)(t + 2)
	p := NewPoly([]complex128{-2i, 2 - 1i, 1})
	roots := p.Roots()
	require.Len(t, roots, 2)
	for _, z := range roots {
		assert.Less(t, cmplx.Abs(horner(p.Monic(), z)), 1e-9)
	}
	assert.InDeltaSlice(t, []float64{-2}, p.RealRoots(), 1e-9)
}

func TestRescale(t *testing.T) {
	f := NewPolyExp([]float64{1, -2, 0.5}, 0.3)
	tests := []struct {
		a, t0 float64
	}{
		{2, 0.1},
		{-1.5, 0.4},
		{0.5, -2},
	}

	for _, tt := range tests {
		g := f.Rescale(tt.a, tt.t0)
		for _, x := range []float64{-1, 0, 0.37, 1.9} {
			assert.InDelta(t, f.Evaluate(tt.a*(x+tt.t0)), g.Evaluate(x), 1e-9, "a=%g t0=%g x=%g", tt.a, tt.t0, x)
		}
	}
}

func TestRescaleCyclic(t *testing.T) {
	f := NewPolyExp([]float64{0, 1}, 0.3, WithCycle(0, 1))

	g := f.Rescale(2, 0.1)
	assert.InDelta(t, -0.1, g.Offset(), 1e-12)
	assert.InDelta(t, 0.5, g.Period(), 1e-12)

	h := f.Rescale(-2, 0.1)
	assert.InDelta(t, -0.6, h.Offset(), 1e-12)
	assert.InDelta(t, 0.5, h.Period(), 1e-12)

	for _, x := range []float64{0.37, -0.83, 1.21, 2.93} {
		assert.InDelta(t, f.Evaluate(2*(x+0.1)), g.Evaluate(x), 1e-9, "a=2 x=%g", x)
		assert.InDelta(t, f.Evaluate(-2*(x+0.1)), h.Evaluate(x), 1e-9, "a=-2 x=%g", x)
	}
}

func TestMergeIntervals(t *testing.T) {
	merged := MergeIntervals(Interval{3, 4}, Interval{0, 1}, Interval{0.5, 2}, Interval{5, 4.5})
	assert.Equal(t, []Interval{{0, 2}, {3, 4}, {4.5, 5}}, merged)
	assert.Nil(t, MergeIntervals())
}

func TestResolveInterval(t *testing.T) {
	p := NewPoly([]float64{1, 1}, WithCycle(0, 1))
	segments := p.ResolveInterval(0.5, 2)
	require.Len(t, segments, 2)
	assert.Equal(t, Segment{K: 0, Interval: Interval{0.5, 1}}, segments[0])
	assert.Equal(t, Segment{K: 1, Interval: Interval{1, 2}}, segments[1])

	acyclic := NewPoly([]float64{1, 1})
	assert.Len(t, acyclic.ResolveInterval(-5, 5), 1)
}

func TestResolvePiecewiseFidelity(t *testing.T) {
	f := NewPolyExp([]float64{1, -2, 3}, 0.25, WithCycle(0.2, 0.7))
	pieces := f.ResolvePiecewise(Interval{0, 2.5}, Interval{3, 3.4}, Interval{2.4, 2.6})

	require.NotEmpty(t, pieces)
	for _, piece := range pieces {
		assert.False(t, piece.Model.Cyclic())
		for _, frac := range []float64{0.1, 0.25, 0.5, 0.9} {
			x := piece.Lo + frac*piece.Length()
			assert.InDelta(t, f.Evaluate(x), piece.Model.Evaluate(x), 1e-9, "piece=%v x=%g", piece.Interval, x)
		}
	}
	assert.InDelta(t, 0, pieces[0].Lo, 0)
	assert.InDelta(t, 3.4, pieces[len(pieces)-1].Hi, 0)
}

func TestTrig(t *testing.T) {
	c := Cos(2, 3)
	leaf, amp := c.Leaf()
	assert.Equal(t, LeafCos, leaf)
	assert.InDelta(t, 2, amp, 1e-12)
	assert.InDelta(t, 2*math.Cos(3*0.4), c.Evaluate(0.4), 1e-12)

	dc := c.Derivative(1)
	leaf, amp = dc.Leaf()
	assert.Equal(t, LeafSin, leaf)
	assert.InDelta(t, -6, amp, 1e-12)
	assert.InDelta(t, -6*math.Sin(1.2), dc.Evaluate(0.4), 1e-12)

	leaf, amp = c.Derivative(2).Leaf()
	assert.Equal(t, LeafCos, leaf)
	assert.InDelta(t, -18, amp, 1e-12)

	s := Sin(1, 2)
	assert.InDelta(t, math.Sin(1), s.Evaluate(0.5), 1e-12)
	leaf, amp = s.Integral(1).Leaf()
	assert.Equal(t, LeafCos, leaf)
	assert.InDelta(t, -0.5, amp, 1e-12)
}

func TestTrigPolynomial(t *testing.T) {
	// Re[t·e^{it}] = t·cos(t)
	p := NewPolyTrig([]complex128{0, 1}, 1)
	for _, x := range []float64{0, 0.7, 2.1} {
		assert.InDelta(t, x*math.Cos(x), p.Evaluate(x), 1e-12)
		assert.InDelta(t, math.Cos(x)-x*math.Sin(x), p.Derivative(1).Evaluate(x), 1e-12)
	}
	leaf, _ := p.Leaf()
	assert.Equal(t, LeafNone, leaf)
}
