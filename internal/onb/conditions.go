package onb

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/raj-open/herz-sub000/internal/algebra"
)

// Condition is a linear constraint on the fitted polynomial. It is one of
// DerivativeCondition or IntegralCondition.
type Condition interface {
	condition()
	fmt.Stringer
}

// DerivativeCondition demands p^(Order)(Time) = 0.
type DerivativeCondition struct {
	Order int
	Time  float64
}

// IntegralCondition demands that the integral of p over the union of
// Intervals vanishes.
type IntegralCondition struct {
	Intervals []algebra.Interval
}

func (DerivativeCondition) condition() {}
func (IntegralCondition) condition() {}

func (c DerivativeCondition) String() string {
	return fmt.Sprintf("p^(%d)(%g) = 0", c.Order, c.Time)
}

func (c IntegralCondition) String() string {
	return fmt.Sprintf("∫p over %v = 0", c.Intervals)
}

// DefaultConditions pins the drift-removed cycle to zero with vanishing
// slope at both ends of [0, 1].
func DefaultConditions() []Condition {
	return []Condition{
		DerivativeCondition{Order: 0, Time: 0},
		DerivativeCondition{Order: 0, Time: 1},
		DerivativeCondition{Order: 1, Time: 0},
		DerivativeCondition{Order: 1, Time: 1},
	}
}

// row returns the coefficients a_k such that the condition reads Σ a_k c_k = 0
// for p = Σ c_k t^k.
func row(c Condition, deg int) []float64 {
	r := make([]float64, deg+1)
	switch c := c.(type) {
	case DerivativeCondition:
		for k := c.Order; k <= deg; k++ {
			r[k] = algebra.FallingFactorial(k, c.Order) * math.Pow(c.Time, float64(k-c.Order))
		}
	case IntegralCondition:
		for _, iv := range c.Intervals {
			for k := 0; k <= deg; k++ {
				e := float64(k + 1)
				r[k] += (math.Pow(iv.Hi, e) - math.Pow(iv.Lo, e)) / e
			}
		}
	}
	return r
}

// ConditionMatrix has one row per condition and deg+1 columns. It is nil
// when there are no conditions.
func ConditionMatrix(deg int, conditions []Condition) *mat.Dense {
	if len(conditions) == 0 {
		return nil
	}
	a := mat.NewDense(len(conditions), deg+1, nil)
	for i, c := range conditions {
		a.SetRow(i, row(c, deg))
	}
	return a
}

// MinimumDegree is the smallest degree that leaves a non-trivial solution
// space for the conditions and room for the given number of critical points.
func MinimumDegree(conditions []Condition, criticalPoints int) int {
	return max(len(conditions), criticalPoints+1) + 1
}

// SafeDegree raises deg to MinimumDegree when needed.
func SafeDegree(deg int, conditions []Condition, criticalPoints int) int {
	return max(deg, MinimumDegree(conditions, criticalPoints))
}
