package onb

import (
	"math"
	"testing"

	"github.com/raj-open/herz-sub000/internal/algebra"
)

func BenchmarkConditions(b *testing.B) {
	conds := DefaultConditions()
	omega := []algebra.Interval{{Lo: 0, Hi: 1}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Conditions(8, conds, omega)
	}
}

func BenchmarkFitWindow(b *testing.B) {
	n := 500
	ts := make([]float64, n)
	xs := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i) / float64(n-1)
		xs[i] = math.Pow(math.Sin(math.Pi*ts[i]), 2)
	}
	conds := DefaultConditions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FitWindow(ts, xs, conds, 8); err != nil {
			b.Fatal(err)
		}
	}
}
