package onb

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/raj-open/herz-sub000/internal/algebra"
)

// Normalisation maps a physical cycle onto the fit's internal representation:
// s = (t - Start)/Period and x = Intercept + Gradient·s + Scale·q(s).
type Normalisation struct {
	Start     float64 `json:"start"`
	Period    float64 `json:"period"`
	Intercept float64 `json:"intercept"`
	Gradient  float64 `json:"gradient"`
	Scale     float64 `json:"scale"`
}

// FittedInfo is the result of fitting one window.
type FittedInfo struct {
	Coefficients  []float64     `json:"coefficients"`
	Normalisation Normalisation `json:"normalisation"`
}

// Normalised returns q on [0, 1].
func (f *FittedInfo) Normalised() *algebra.PolyExp[float64] {
	return algebra.NewPoly(f.Coefficients)
}

// Signal returns Intercept + Gradient·s + Scale·q(s), the fit in physical
// units over normalised time s ∈ [0, 1].
func (f *FittedInfo) Signal(opts ...algebra.Option) *algebra.PolyExp[float64] {
	n := f.Normalisation
	q := algebra.NewPoly(f.Coefficients, opts...).Scale(n.Scale)
	drift := algebra.NewPoly([]float64{n.Intercept, n.Gradient}, opts...)
	// both summands are acyclic polynomials
	signal, _ := q.Add(drift)
	return signal
}

// Model returns the fit in physical time and units.
func (f *FittedInfo) Model() *algebra.PolyExp[float64] {
	n := f.Normalisation
	return f.Signal().Rescale(1/n.Period, -n.Start)
}

// Evaluate returns the fitted value at physical time t.
func (f *FittedInfo) Evaluate(t float64) float64 {
	n := f.Normalisation
	s := (t - n.Start) / n.Period
	return n.Intercept + n.Gradient*s + n.Scale*f.Normalised().Evaluate(s)
}

// NormaliseWindow maps samples of one window to s ∈ [0, 1] and to the
// drift-removed, scaled residual, returning the normalisation used.
func NormaliseWindow(t, x []float64) ([]float64, []float64, Normalisation, error) {
	if len(t) != len(x) {
		return nil, nil, Normalisation{}, ErrLengthMismatch
	}
	if len(t) < 2 || !(t[len(t)-1] > t[0]) {
		return nil, nil, Normalisation{}, ErrTooFewSamples
	}
	n := Normalisation{
		Start:     t[0],
		Period:    t[len(t)-1] - t[0],
		Intercept: x[0],
		Gradient:  x[len(x)-1] - x[0],
	}

	s := make([]float64, len(t))
	copy(s, t)
	floats.AddConst(-n.Start, s)
	floats.Scale(1/n.Period, s)

	r := make([]float64, len(x))
	for i := range x {
		r[i] = x[i] - n.Intercept - n.Gradient*s[i]
	}
	n.Scale = math.Max(math.Abs(floats.Max(r)), math.Abs(floats.Min(r)))
	if n.Scale == 0 {
		n.Scale = 1
	}
	floats.Scale(1/n.Scale, r)
	return s, r, n, nil
}

// FitWindow fits a polynomial of degree deg to one cycle window under the
// given conditions, which apply to the normalised residual on [0, 1].
func FitWindow(t, x []float64, conditions []Condition, deg int) (*FittedInfo, error) {
	s, r, norm, err := NormaliseWindow(t, x)
	if err != nil {
		return nil, err
	}
	basis := Conditions(deg, conditions, []algebra.Interval{{Lo: 0, Hi: 1}})
	q, _, err := basis.Spectrum(s, r, nil)
	if err != nil {
		return nil, err
	}
	return &FittedInfo{
		Coefficients:  pad(q.Coefficients(), deg+1),
		Normalisation: norm,
	}, nil
}

// Residual is the root mean square deviation of model from the samples.
func Residual(model interface{ Evaluate(float64) float64 }, t, x []float64) float64 {
	if len(t) == 0 {
		return 0
	}
	diff := make([]float64, len(t))
	for i := range t {
		diff[i] = model.Evaluate(t[i]) - x[i]
	}
	return floats.Norm(diff, 2) / math.Sqrt(float64(len(diff)))
}
