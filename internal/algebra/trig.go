package algebra

import (
	"fmt"
	"math"
)

// Leaf names the elementary trigonometric function a PolyTrig reduces to.
type Leaf int

const (
	LeafNone Leaf = iota
	LeafCos
	LeafSin
)

func (l Leaf) String() string {
	switch l {
	case LeafCos:
		return "cos"
	case LeafSin:
		return "sin"
	}
	return "polytrig"
}

// PolyTrig is the real-valued model t ↦ Re[C·p(t)·exp(iωt)].
type PolyTrig struct {
	inner *PolyExp[complex128]
	omega float64
}

// NewPolyTrig builds Re[p(t)·exp(iωt)] from complex coefficients of p.
func NewPolyTrig(coeff []complex128, omega float64, opts ...Option) *PolyTrig {
	return &PolyTrig{
		inner: NewPolyExp(coeff, complex(0, omega), opts...),
		omega: omega,
	}
}

// Cos returns amplitude·cos(ωt).
func Cos(amplitude, omega float64, opts ...Option) *PolyTrig {
	return NewPolyTrig([]complex128{complex(amplitude, 0)}, omega, opts...)
}

// Sin returns amplitude·sin(ωt) = Re[-i·amplitude·exp(iωt)].
func Sin(amplitude, omega float64, opts ...Option) *PolyTrig {
	return NewPolyTrig([]complex128{complex(0, -amplitude)}, omega, opts...)
}

func (p *PolyTrig) Omega() float64 { return p.omega }

// Complex returns the underlying complex model.
func (p *PolyTrig) Complex() *PolyExp[complex128] { return p.inner }

func (p *PolyTrig) Evaluate(t float64) float64 {
	return real(p.inner.Evaluate(t))
}

func (p *PolyTrig) Values(ts []float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = p.Evaluate(t)
	}
	return out
}

// Derivative commutes with taking the real part, so cos and sin leaves swap
// with every odd order.
func (p *PolyTrig) Derivative(n int) *PolyTrig {
	return &PolyTrig{inner: p.inner.Derivative(n), omega: p.omega}
}

func (p *PolyTrig) Integral(n int) *PolyTrig {
	return &PolyTrig{inner: p.inner.Integral(n), omega: p.omega}
}

func (p *PolyTrig) Scale(c float64) *PolyTrig {
	return &PolyTrig{inner: p.inner.Scale(complex(c, 0)), omega: p.omega}
}

func (p *PolyTrig) Add(q *PolyTrig) (*PolyTrig, error) {
	sum, err := p.inner.Add(q.inner)
	if err != nil {
		return nil, err
	}
	return &PolyTrig{inner: sum, omega: p.omega}, nil
}

// Leaf reports whether p is a pure cosine or sine and returns its amplitude.
func (p *PolyTrig) Leaf() (Leaf, float64) {
	if p.inner.Degree() != 0 {
		return LeafNone, 0
	}
	c := p.inner.Lead()
	tol := p.inner.Accuracy()
	switch {
	case math.Abs(imag(c)) <= tol*max(1, math.Abs(real(c))):
		return LeafCos, real(c)
	case math.Abs(real(c)) <= tol*max(1, math.Abs(imag(c))):
		return LeafSin, -imag(c)
	}
	return LeafNone, 0
}

func (p *PolyTrig) String() string {
	if leaf, amp := p.Leaf(); leaf != LeafNone {
		return fmt.Sprintf("%g·%s(%g·t)", amp, leaf, p.omega)
	}
	return fmt.Sprintf("Re[%v]", p.inner)
}
