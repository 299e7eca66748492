package onb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/raj-open/herz-sub000/internal/algebra"
)

func TestConditionMatrix(t *testing.T) {
	a := ConditionMatrix(3, []Condition{
		DerivativeCondition{Order: 1, Time: 2},
		IntegralCondition{Intervals: []algebra.Interval{{Lo: 0, Hi: 1}, {Lo: 2, Hi: 3}}},
	})
	require.NotNil(t, a)

	// d/dt t^k at 2 = k·2^(k-1)
	assert.Equal(t, []float64{0, 1, 4, 12}, mat.Row(nil, 0, a))
	// ∫ t^k over [0,1] ∪ [2,3]
	expected := []float64{2, (1 + 9 - 4) / 2.0, (1 + 27 - 8) / 3.0, (1 + 81 - 16) / 4.0}
	assert.InDeltaSlice(t, expected, mat.Row(nil, 1, a), 1e-12)

	assert.Nil(t, ConditionMatrix(3, nil))
}

func TestOrthonormality(t *testing.T) {
	tests := []struct {
		name       string
		deg        int
		conditions []Condition
		intervals  []algebra.Interval
	}{
		{"unconstrained", 4, nil, []algebra.Interval{{Lo: 0, Hi: 1}}},
		{"default", 5, DefaultConditions(), []algebra.Interval{{Lo: 0, Hi: 1}}},
		{
			"split domain",
			5,
			[]Condition{
				DerivativeCondition{Order: 2, Time: 0.5},
				IntegralCondition{Intervals: []algebra.Interval{{Lo: 0, Hi: 0.3}}},
			},
			[]algebra.Interval{{Lo: 0, Hi: 0.4}, {Lo: 0.6, Hi: 1.2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			basis := Conditions(tt.deg, tt.conditions, tt.intervals)
			require.Equal(t, tt.deg+1-len(tt.conditions), basis.Dim())

			for i := 0; i < basis.Dim(); i++ {
				qi := mat.Col(nil, i, basis.Q)
				for j := 0; j < basis.Dim(); j++ {
					want := 0.0
					if i == j {
						want = 1
					}
					got := basis.InnerProduct(qi, mat.Col(nil, j, basis.Q))
					assert.InDelta(t, want, got, 1e-7, "<q%d, q%d>", i, j)
				}
			}

			if a := ConditionMatrix(tt.deg, tt.conditions); a != nil {
				var aq mat.Dense
				aq.Mul(a, basis.Q)
				r, c := aq.Dims()
				for i := 0; i < r; i++ {
					for j := 0; j < c; j++ {
						assert.InDelta(t, 0, aq.At(i, j), 1e-7)
					}
				}
			}
		})
	}
}

func TestOverConstrained(t *testing.T) {
	basis := Conditions(2, DefaultConditions(), []algebra.Interval{{Lo: 0, Hi: 1}})
	assert.Equal(t, 0, basis.Dim())

	p, coeffs, err := basis.Spectrum([]float64{0, 1}, []float64{1, 2}, nil)
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	assert.Empty(t, coeffs)
}

func TestSpectrumReproducesLinear(t *testing.T) {
	ts := []float64{0, 0.2, 0.5, 0.9, 1}
	xs := make([]float64, len(ts))
	for i, s := range ts {
		xs[i] = 2 + 3*s
	}

	for _, deg := range []int{1, 3} {
		basis := Conditions(deg, nil, []algebra.Interval{{Lo: 0, Hi: 1}})
		p, _, err := basis.Spectrum(ts, xs, nil)
		require.NoError(t, err)
		for _, s := range []float64{0, 0.3, 0.77, 1} {
			assert.InDelta(t, 2+3*s, p.Evaluate(s), 1e-8, "deg=%d s=%g", deg, s)
		}
	}
}

func TestSpectrumErrors(t *testing.T) {
	basis := Conditions(2, nil, []algebra.Interval{{Lo: 0, Hi: 1}})
	_, _, err := basis.Spectrum([]float64{0, 1}, []float64{1}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, _, err = basis.Spectrum([]float64{0}, []float64{1}, nil)
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

func TestCyclicInterpolant(t *testing.T) {
	f := &interpolant{t: []float64{0, 0.5}, x: []float64{0, 1}, cycle: &Cycle{Period: 1}}
	assert.InDelta(t, 0.5, f.at(0.25), 1e-12)
	assert.InDelta(t, 0.5, f.at(0.75), 1e-12)
	assert.InDelta(t, 0.5, f.at(1.25), 1e-12)
	assert.InDelta(t, 0.5, f.at(-0.25), 1e-12)
	assert.InDelta(t, 1, f.at(2.5), 1e-12)

	assert.Equal(t, []float64{0.2, 0.5, 1, 1.5, 1.7}, f.breakpoints(0.2, 1.7))
}

func TestCyclicSpectrum(t *testing.T) {
	// a periodic triangle wave on [0, 2] fits like its single period twice
	ts := []float64{0, 0.5}
	xs := []float64{0, 1}
	basis := Conditions(2, nil, []algebra.Interval{{Lo: 0, Hi: 2}})
	p, _, err := basis.Spectrum(ts, xs, &Cycle{Period: 1})
	require.NoError(t, err)

	// constants lie in the space, so the integral is preserved: 0.5 per period
	integral := p.Integral(1).Evaluate(2) - p.Integral(1).Evaluate(0)
	assert.InDelta(t, 1, integral, 1e-9)
}

func TestFitWindow(t *testing.T) {
	n := 301
	ts := make([]float64, n)
	xs := make([]float64, n)
	for i := range ts {
		ts[i] = 2 + 3*float64(i)/float64(n-1)
		s := (ts[i] - 2) / 3
		xs[i] = 5 + ts[i] + 4*math.Pow(math.Sin(math.Pi*s), 2)
	}

	info, err := FitWindow(ts, xs, DefaultConditions(), 8)
	require.NoError(t, err)
	require.Len(t, info.Coefficients, 9)

	norm := info.Normalisation
	assert.InDelta(t, 2, norm.Start, 0)
	assert.InDelta(t, 3, norm.Period, 1e-12)
	assert.InDelta(t, 7, norm.Intercept, 1e-12)
	assert.InDelta(t, 3, norm.Gradient, 1e-12)
	assert.InDelta(t, 4, norm.Scale, 1e-3)

	q := info.Normalised()
	dq := q.Derivative(1)
	assert.InDelta(t, 0, q.Evaluate(0), 1e-8)
	assert.InDelta(t, 0, q.Evaluate(1), 1e-8)
	assert.InDelta(t, 0, dq.Evaluate(0), 1e-7)
	assert.InDelta(t, 0, dq.Evaluate(1), 1e-7)

	assert.Less(t, Residual(info, ts, xs), 0.05)

	model := info.Model()
	signal := info.Signal()
	for _, x := range []float64{2, 2.7, 3.5, 4.9} {
		assert.InDelta(t, info.Evaluate(x), model.Evaluate(x), 1e-6)
		assert.InDelta(t, info.Evaluate(x), signal.Evaluate((x-2)/3), 1e-9)
	}
	// drift included: the signal spans 7 at s = 0 to 10 at s = 1
	assert.InDelta(t, 7, signal.Evaluate(0), 1e-7)
	assert.InDelta(t, 10, signal.Evaluate(1), 1e-7)
}

func TestFitWindowErrors(t *testing.T) {
	_, err := FitWindow([]float64{1}, []float64{1}, nil, 3)
	assert.ErrorIs(t, err, ErrTooFewSamples)
	_, err = FitWindow([]float64{1, 1}, []float64{1, 2}, nil, 3)
	assert.ErrorIs(t, err, ErrTooFewSamples)
	_, err = FitWindow([]float64{1, 2}, []float64{1}, nil, 3)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestMinimumDegree(t *testing.T) {
	assert.Equal(t, 5, MinimumDegree(DefaultConditions(), 0))
	assert.Equal(t, 7, MinimumDegree(DefaultConditions(), 5))
	assert.Equal(t, 8, SafeDegree(8, DefaultConditions(), 2))
	assert.Equal(t, 5, SafeDegree(2, DefaultConditions(), 0))
}
