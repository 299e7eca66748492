package algebra

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/raj-open/herz-sub000/internal/eps"
	"github.com/raj-open/herz-sub000/internal/field"
)

// trimTolerance is the relative size below which trailing coefficients are
// discarded.
const trimTolerance = 1e-14

type settings struct {
	cyclic   bool
	offset   float64
	period   float64
	accuracy float64
}

// Option configures a model at construction.
type Option func(*settings)

// WithCycle makes the polynomial part periodic on [offset, offset+period).
func WithCycle(offset, period float64) Option {
	return func(s *settings) {
		s.cyclic = true
		s.offset = offset
		s.period = period
	}
}

// WithAccuracy sets the tolerance used for root deduplication and
// comparisons.
func WithAccuracy(accuracy float64) Option {
	return func(s *settings) {
		s.accuracy = accuracy
	}
}

type rootCache struct {
	once    sync.Once
	compute func() []complex128
	values  []complex128
}

func (c *rootCache) get() []complex128 {
	c.once.Do(func() {
		c.values = c.compute()
	})
	return c.values
}

// PolyExp is the model t ↦ lead·p(t)·exp(alpha·t) with monic p.
type PolyExp[T field.Scalar] struct {
	coeff    []T
	lead     T
	alpha    T
	cyclic   bool
	offset   float64
	period   float64
	accuracy float64
	roots    *rootCache
}

// NewPolyExp builds a model from raw coefficients (index = power). The
// leading coefficient is absorbed into the lead factor. It panics with
// ErrInvalidPeriod for a cyclic model whose period is not positive.
func NewPolyExp[T field.Scalar](coeff []T, alpha T, opts ...Option) *PolyExp[T] {
	s := settings{accuracy: eps.DefaultAccuracy}
	for _, opt := range opts {
		opt(&s)
	}
	if s.cyclic && !(s.period > 0) {
		panic(ErrInvalidPeriod)
	}
	return build(coeff, alpha, field.FromFloat[T](1), s)
}

// NewPoly builds a pure polynomial model.
func NewPoly[T field.Scalar](coeff []T, opts ...Option) *PolyExp[T] {
	var zero T
	return NewPolyExp(coeff, zero, opts...)
}

// NewExp builds the pure exponential lead·exp(alpha·t).
func NewExp[T field.Scalar](lead, alpha T, opts ...Option) *PolyExp[T] {
	return NewPolyExp([]T{lead}, alpha, opts...)
}

// Zero returns the zero model.
func Zero[T field.Scalar]() *PolyExp[T] {
	return NewPoly[T](nil)
}

func build[T field.Scalar](coeff []T, alpha, scale T, s settings) *PolyExp[T] {
	raw := make([]T, len(coeff))
	for i, c := range coeff {
		raw[i] = scale * c
	}

	maxAbs := 0.0
	for _, c := range raw {
		maxAbs = math.Max(maxAbs, field.Abs(c))
	}
	n := len(raw)
	for n > 0 && field.Abs(raw[n-1]) <= trimTolerance*maxAbs {
		n--
	}

	p := &PolyExp[T]{
		alpha:    alpha,
		cyclic:   s.cyclic,
		offset:   s.offset,
		period:   s.period,
		accuracy: s.accuracy,
	}
	if n == 0 {
		p.coeff = []T{field.FromFloat[T](1)}
	} else {
		p.lead = raw[n-1]
		p.coeff = make([]T, n)
		for i := 0; i < n; i++ {
			p.coeff[i] = raw[i] / p.lead
		}
		p.coeff[n-1] = field.FromFloat[T](1)
	}
	p.roots = &rootCache{compute: p.computeRoots}
	return p
}

func (p *PolyExp[T]) settings() settings {
	return settings{cyclic: p.cyclic, offset: p.offset, period: p.period, accuracy: p.accuracy}
}

// with builds a sibling model sharing p's cyclic parameters and accuracy.
func (p *PolyExp[T]) with(raw []T, alpha T) *PolyExp[T] {
	return build(raw, alpha, field.FromFloat[T](1), p.settings())
}

func (p *PolyExp[T]) Lead() T { return p.lead }
func (p *PolyExp[T]) Alpha() T { return p.alpha }
func (p *PolyExp[T]) Cyclic() bool { return p.cyclic }
func (p *PolyExp[T]) Offset() float64 { return p.offset }
func (p *PolyExp[T]) Period() float64 { return p.period }
func (p *PolyExp[T]) Accuracy() float64 { return p.accuracy }
func (p *PolyExp[T]) Degree() int { return len(p.coeff) - 1 }
func (p *PolyExp[T]) IsZero() bool { return p.lead == 0 }
func (p *PolyExp[T]) hasExp() bool { return p.alpha != 0 }
func (p *PolyExp[T]) isConstPoly() bool { return len(p.coeff) == 1 }
func (p *PolyExp[T]) Monic() []T { return append([]T(nil), p.coeff...) }

// Coefficients returns lead·coeff, the unnormalised polynomial part.
func (p *PolyExp[T]) Coefficients() []T {
	out := make([]T, len(p.coeff))
	for i, c := range p.coeff {
		out[i] = p.lead * c
	}
	return out
}

// Acyclic returns a copy of p without cyclic wrapping.
func (p *PolyExp[T]) Acyclic() *PolyExp[T] {
	s := p.settings()
	s.cyclic = false
	s.offset, s.period = 0, 0
	return build(p.Coefficients(), p.alpha, field.FromFloat[T](1), s)
}

// Wrap maps t into [offset, offset+period) for cyclic models.
func (p *PolyExp[T]) Wrap(t float64) float64 {
	if !p.cyclic {
		return t
	}
	k := math.Floor((t - p.offset) / p.period)
	return t - k*p.period
}

func horner[T field.Scalar](coeff []T, t T) T {
	var acc T
	for i := len(coeff) - 1; i >= 0; i-- {
		acc = acc*t + coeff[i]
	}
	return acc
}

// Evaluate returns f(t).
func (p *PolyExp[T]) Evaluate(t float64) T {
	if p.IsZero() {
		var zero T
		return zero
	}
	value := p.lead * horner(p.coeff, field.FromFloat[T](p.Wrap(t)))
	if p.hasExp() {
		value *= field.Exp(p.alpha * field.FromFloat[T](t))
	}
	return value
}

// Values evaluates f at every t.
func (p *PolyExp[T]) Values(ts []float64) []T {
	out := make([]T, len(ts))
	for i, t := range ts {
		out[i] = p.Evaluate(t)
	}
	return out
}

func (p *PolyExp[T]) sameCycle(q *PolyExp[T]) bool {
	if p.cyclic != q.cyclic {
		return false
	}
	if !p.cyclic {
		return true
	}
	return eps.Close(p.offset, q.offset, p.accuracy) && eps.Close(p.period, q.period, p.accuracy)
}

// Add returns p+q. Both models need the same alpha and cyclic parameters.
func (p *PolyExp[T]) Add(q *PolyExp[T]) (*PolyExp[T], error) {
	if p.IsZero() {
		return q, nil
	}
	if q.IsZero() {
		return p, nil
	}
	if !eps.Close(p.alpha, q.alpha, p.accuracy) || !p.sameCycle(q) {
		return nil, fmt.Errorf("add %v and %v: %w", p, q, ErrIncompatible)
	}
	a, b := p.Coefficients(), q.Coefficients()
	n := max(len(a), len(b))
	sum := make([]T, n)
	for i := range sum {
		if i < len(a) {
			sum[i] += a[i]
		}
		if i < len(b) {
			sum[i] += b[i]
		}
	}
	return p.with(sum, p.alpha), nil
}

// Sub returns p-q.
func (p *PolyExp[T]) Sub(q *PolyExp[T]) (*PolyExp[T], error) {
	return p.Add(q.Neg())
}

func (p *PolyExp[T]) Neg() *PolyExp[T] {
	return p.Scale(field.FromFloat[T](-1))
}

// Scale multiplies the lead factor by c. Roots are unchanged.
func (p *PolyExp[T]) Scale(c T) *PolyExp[T] {
	if c == 0 {
		return build(nil, p.alpha, c, p.settings())
	}
	out := *p
	out.lead = p.lead * c
	return &out
}

// Mul returns p·q: coefficients convolve, alphas add, leads multiply and the
// roots of the product are the union of both root lists. A cyclic model may
// only be multiplied by a model with the same cycle or without polynomial
// part.
func (p *PolyExp[T]) Mul(q *PolyExp[T]) (*PolyExp[T], error) {
	s := p.settings()
	switch {
	case p.cyclic && q.cyclic:
		if !p.sameCycle(q) {
			return nil, fmt.Errorf("multiply %v and %v: %w", p, q, ErrIncompatible)
		}
	case p.cyclic:
		if !q.isConstPoly() {
			return nil, fmt.Errorf("multiply %v and %v: %w", p, q, ErrIncompatible)
		}
	case q.cyclic:
		if !p.isConstPoly() {
			return nil, fmt.Errorf("multiply %v and %v: %w", p, q, ErrIncompatible)
		}
		s = q.settings()
	}

	conv := make([]T, len(p.coeff)+len(q.coeff)-1)
	for i, a := range p.coeff {
		for j, b := range q.coeff {
			conv[i+j] += a * b
		}
	}
	out := build(conv, p.alpha+q.alpha, field.FromFloat[T](1), s)
	out.lead = p.lead * q.lead
	if out.IsZero() {
		return build(nil, out.alpha, out.lead, s), nil
	}
	out.roots = &rootCache{compute: func() []complex128 {
		return append(append([]complex128(nil), p.Roots()...), q.Roots()...)
	}}
	return out, nil
}

// Derivative returns the n-th derivative.
func (p *PolyExp[T]) Derivative(n int) *PolyExp[T] {
	if n <= 0 || p.IsZero() {
		return p
	}
	raw := p.Coefficients()
	if !p.hasExp() {
		for k := 0; k < n; k++ {
			if len(raw) <= 1 {
				return p.with(nil, p.alpha)
			}
			next := make([]T, len(raw)-1)
			for i := range next {
				next[i] = field.FromFloat[T](float64(i+1)) * raw[i+1]
			}
			raw = next
		}
		return p.with(raw, p.alpha)
	}
	return p.with(derivativeOperator(p.alpha, len(raw)).pow(n).apply(raw), p.alpha)
}

// Integral returns the n-th antiderivative with vanishing integration
// constants in the polynomial part.
func (p *PolyExp[T]) Integral(n int) *PolyExp[T] {
	if n <= 0 || p.IsZero() {
		return p
	}
	raw := p.Coefficients()
	if !p.hasExp() {
		for k := 0; k < n; k++ {
			next := make([]T, len(raw)+1)
			for i, c := range raw {
				next[i+1] = c / field.FromFloat[T](float64(i+1))
			}
			raw = next
		}
		return p.with(raw, p.alpha)
	}
	return p.with(integralOperator(p.alpha, len(raw)).pow(n).apply(raw), p.alpha)
}

// DerivativeChain returns [f, f', ..., f^(n)].
func (p *PolyExp[T]) DerivativeChain(n int) []*PolyExp[T] {
	chain := make([]*PolyExp[T], 0, n+1)
	chain = append(chain, p)
	for k := 1; k <= n; k++ {
		chain = append(chain, chain[k-1].Derivative(1))
	}
	return chain
}

// derivativeOperator encodes d/dt[q(t)e^{αt}] = (q'(t) + αq(t))e^{αt}.
func derivativeOperator[T field.Scalar](alpha T, dim int) matrix[T] {
	d := zeros[T](dim)
	for k := 0; k < dim; k++ {
		d[k][k] = alpha
		if k+1 < dim {
			d[k][k+1] = field.FromFloat[T](float64(k + 1))
		}
	}
	return d
}

// integralOperator inverts derivativeOperator. With D = αI + N and N
// nilpotent, D⁻¹ = Σ_j (-1)^j N^j / α^(j+1), the truncated expansion of
// 1/(α+x).
func integralOperator[T field.Scalar](alpha T, dim int) matrix[T] {
	shift := zeros[T](dim)
	for k := 0; k+1 < dim; k++ {
		shift[k][k+1] = field.FromFloat[T](float64(k + 1))
	}
	inv := zeros[T](dim)
	term := identity[T](dim)
	factor := field.FromFloat[T](1) / alpha
	for j := 0; j < dim; j++ {
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				inv[r][c] += factor * term[r][c]
			}
		}
		term = term.mul(shift)
		factor = -factor / alpha
	}
	return inv
}

// shifted returns the coefficients of r(t) = q(a·(t+t0)) for raw q.
func shifted[T field.Scalar](raw []T, a, t0 float64) []T {
	n := len(raw)
	out := make([]T, n)
	for k := 0; k < n; k++ {
		ck := raw[k] * field.FromFloat[T](field.Pow(a, k))
		for j := 0; j <= k; j++ {
			out[j] += ck * field.FromFloat[T](binomial(k, j)*field.Pow(t0, k-j))
		}
	}
	return out
}

// Rescale returns g(t) = f(a·(t+t0)). For cyclic models the cycle is mapped
// accordingly; a negative a reverses its orientation.
func (p *PolyExp[T]) Rescale(a, t0 float64) *PolyExp[T] {
	if a == 0 {
		s := p.settings()
		s.cyclic, s.offset, s.period = false, 0, 0
		return build([]T{p.Evaluate(0)}, 0, field.FromFloat[T](1), s)
	}
	s := p.settings()
	if p.cyclic {
		if a > 0 {
			s.offset = p.offset/a - t0
		} else {
			s.offset = (p.offset+p.period)/a - t0
		}
		s.period = p.period / math.Abs(a)
	}
	alpha := p.alpha * field.FromFloat[T](a)
	scale := field.FromFloat[T](1)
	if p.hasExp() {
		scale = field.Exp(alpha * field.FromFloat[T](t0))
	}
	return build(shifted(p.Coefficients(), a, t0), alpha, scale, s)
}

// ShiftPoly translates only the polynomial part: p(t) becomes p(t-h) and a
// cyclic offset moves by h. The exponential factor is left untouched.
func (p *PolyExp[T]) ShiftPoly(h float64) *PolyExp[T] {
	s := p.settings()
	if p.cyclic {
		s.offset += h
	}
	return build(shifted(p.Coefficients(), 1, -h), p.alpha, field.FromFloat[T](1), s)
}

// Equal compares p and q coefficient-wise within tol.
func (p *PolyExp[T]) Equal(q *PolyExp[T], tol float64) bool {
	if p.IsZero() || q.IsZero() {
		return p.IsZero() == q.IsZero()
	}
	if !eps.Close(p.alpha, q.alpha, tol) || !p.sameCycle(q) {
		return false
	}
	a, b := p.Coefficients(), q.Coefficients()
	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y T
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if !eps.Close(x, y, tol) {
			return false
		}
	}
	return true
}

func (p *PolyExp[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v·(", p.lead)
	for i, c := range p.coeff {
		if i > 0 {
			sb.WriteString(" + ")
		}
		switch i {
		case 0:
			fmt.Fprintf(&sb, "%v", c)
		case 1:
			fmt.Fprintf(&sb, "%v·t", c)
		default:
			fmt.Fprintf(&sb, "%v·t^%d", c, i)
		}
	}
	sb.WriteString(")")
	if p.hasExp() {
		fmt.Fprintf(&sb, "·exp(%v·t)", p.alpha)
	}
	if p.cyclic {
		fmt.Fprintf(&sb, " [cyclic %g+%g]", p.offset, p.period)
	}
	return sb.String()
}
