package onb

import (
	"math"
	"sort"

	"github.com/raj-open/herz-sub000/internal/algebra"
)

// Cycle makes the interpolated samples periodic with the given period,
// starting at the first sample time.
type Cycle struct {
	Period float64
}

// interpolant is the piecewise linear interpolation of sorted samples,
// constant beyond the ends or periodically extended.
type interpolant struct {
	t, x  []float64
	cycle *Cycle
}

func (f *interpolant) at(s float64) float64 {
	n := len(f.t)
	if f.cycle != nil {
		t0 := f.t[0]
		s = t0 + math.Mod(s-t0, f.cycle.Period)
		if s < t0 {
			s += f.cycle.Period
		}
		if s > f.t[n-1] {
			// seam between the last sample and the first of the next period
			t1 := t0 + f.cycle.Period
			if t1 == f.t[n-1] {
				return f.x[n-1]
			}
			w := (s - f.t[n-1]) / (t1 - f.t[n-1])
			return f.x[n-1] + w*(f.x[0]-f.x[n-1])
		}
	}
	if s <= f.t[0] {
		return f.x[0]
	}
	if s >= f.t[n-1] {
		return f.x[n-1]
	}
	i := sort.SearchFloat64s(f.t, s)
	if f.t[i] == s {
		return f.x[i]
	}
	w := (s - f.t[i-1]) / (f.t[i] - f.t[i-1])
	return f.x[i-1] + w*(f.x[i]-f.x[i-1])
}

// breakpoints returns the sorted kinks of the interpolant inside [lo, hi],
// including both ends.
func (f *interpolant) breakpoints(lo, hi float64) []float64 {
	points := []float64{lo, hi}
	if f.cycle == nil {
		for _, s := range f.t {
			if s > lo && s < hi {
				points = append(points, s)
			}
		}
	} else {
		p := f.cycle.Period
		k0 := math.Floor((lo - f.t[0]) / p)
		k1 := math.Ceil((hi - f.t[0]) / p)
		for k := k0; k <= k1; k++ {
			for _, s := range f.t {
				if u := s + k*p; u > lo && u < hi {
					points = append(points, u)
				}
			}
			if u := f.t[0] + (k+1)*p; u > lo && u < hi {
				points = append(points, u)
			}
		}
	}
	sort.Float64s(points)

	out := points[:1]
	for _, s := range points[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// Spectrum projects the piecewise linear interpolation of (t, x) onto the
// basis and returns the resulting polynomial, the L²(Ω)-closest element of
// the constrained space, together with its basis coefficients. Samples must
// be sorted by time. A nil cycle extends the samples as constants.
func (b *Basis) Spectrum(t, x []float64, cycle *Cycle) (*algebra.PolyExp[float64], []float64, error) {
	if len(t) != len(x) {
		return nil, nil, ErrLengthMismatch
	}
	if len(t) < 2 {
		return nil, nil, ErrTooFewSamples
	}
	dim := b.Dim()
	if dim == 0 {
		return algebra.Zero[float64](), []float64{}, nil
	}

	type antiderivatives struct{ first, second *algebra.PolyExp[float64] }
	anti := make([]antiderivatives, dim)
	for j := range anti {
		q := b.Element(j)
		anti[j] = antiderivatives{first: q.Integral(1), second: q.Integral(2)}
	}

	f := &interpolant{t: t, x: x, cycle: cycle}
	coeffs := make([]float64, dim)
	for _, iv := range b.Intervals {
		kinks := f.breakpoints(iv.Lo, iv.Hi)
		for i := 0; i+1 < len(kinks); i++ {
			s0, s1 := kinks[i], kinks[i+1]
			x0, x1 := f.at(s0), f.at(s1)
			// x(s) = c0 + m·s on [s0, s1]
			m := (x1 - x0) / (s1 - s0)
			c0 := x0 - m*s0
			for j, a := range anti {
				// ∫ (c0 + m·s)·q = c0·[Q1] + m·[s·Q1 - Q2]
				q10, q11 := a.first.Evaluate(s0), a.first.Evaluate(s1)
				q20, q21 := a.second.Evaluate(s0), a.second.Evaluate(s1)
				coeffs[j] += c0*(q11-q10) + m*((s1*q11-q21)-(s0*q10-q20))
			}
		}
	}
	return b.Combine(coeffs), coeffs, nil
}
