package critical

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/raj-open/herz-sub000/internal/algebra"
	"github.com/raj-open/herz-sub000/internal/eps"
)

// Poly is the real polynomial model the finder operates on.
type Poly = algebra.PolyExp[float64]

// GetCriticalPoints classifies the real roots of dp as local minima, local
// maxima or inflections of p and tags the real roots of p as zeros. Only
// points within [tMin, tMax] are returned, sorted by time. The result is
// empty when dp has no real roots.
func GetCriticalPoints(p, dp *Poly, tMin, tMax float64) []CriticalPoint {
	e := p.Accuracy()
	candidates := mergeFlat(p, eps.CleanDuplicates(dp.RealRoots(), e, nil), e)
	if len(candidates) == 0 {
		return []CriticalPoint{}
	}

	points := make([]CriticalPoint, 0, len(candidates))
	for i, t0 := range candidates {
		pre, post := gridNeighbours(candidates, i, tMin, tMax)
		y := p.Evaluate(t0)
		s1 := eps.SignNormalisedDifference(p.Evaluate(pre), y, e)
		s2 := eps.SignNormalisedDifference(y, p.Evaluate(post), e)

		var kind Kind
		switch {
		case s1 == eps.Negative && s2 == eps.Positive:
			kind = LocalMinimum
		case s1 == eps.Positive && s2 == eps.Negative:
			kind = LocalMaximum
		case s1 == s2 && s1 != eps.Zero:
			kind = Inflection
		default:
			continue
		}
		if eps.Close(y, 0, e) {
			kind |= Zero
		}
		points = append(points, CriticalPoint{X: t0, Y: y, Kinds: kind})
	}

	for _, z := range mergeFlat(p, p.RealRoots(), e) {
		if i := indexFlat(p, points, z, e); i >= 0 {
			points[i].Kinds |= Zero
			continue
		}
		points = append(points, CriticalPoint{X: z, Y: p.Evaluate(z), Kinds: Zero})
	}

	result := points[:0]
	for _, pt := range points {
		if !withinBounds(pt.X, tMin, tMax, e) {
			continue
		}
		pt.Kinds = pt.Kinds.Resolve()
		result = append(result, pt)
	}
	sortPoints(result)
	return result
}

// GetCriticalPointsBounded extends GetCriticalPoints with points at tMin and
// tMax and tags the global extrema among all points with MINIMUM/MAXIMUM.
// Points left without any tag are dropped.
func GetCriticalPointsBounded(p, dp *Poly, tMin, tMax float64) []CriticalPoint {
	e := p.Accuracy()
	points := GetCriticalPoints(p, dp, tMin, tMax)

	for _, b := range []float64{tMin, tMax} {
		if i := indexNear(points, b, e); i >= 0 {
			points[i].X = b
			points[i].Y = p.Evaluate(b)
			continue
		}
		points = append(points, CriticalPoint{X: b, Y: p.Evaluate(b)})
	}

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		yMin = math.Min(yMin, pt.Y)
		yMax = math.Max(yMax, pt.Y)
	}

	result := points[:0]
	for _, pt := range points {
		if eps.Close(pt.Y, yMin, e) {
			pt.Kinds |= Minimum
		}
		if eps.Close(pt.Y, yMax, e) {
			pt.Kinds |= Maximum
		}
		if pt.Kinds.Empty() {
			continue
		}
		result = append(result, pt)
	}
	sortPoints(result)
	return result
}

// gridNeighbours returns the grid points enclosing candidate i: midpoints
// towards adjacent candidates, or a step outwards at either end.
func gridNeighbours(candidates []float64, i int, tMin, tMax float64) (float64, float64) {
	t0 := candidates[i]
	var pre, post float64
	if i == 0 {
		pre = t0 - math.Max(1, t0-tMin)
	} else {
		pre = (candidates[i-1] + t0) / 2
	}
	if i == len(candidates)-1 {
		post = t0 + math.Max(1, tMax-t0)
	} else {
		post = (t0 + candidates[i+1]) / 2
	}
	return pre, post
}

// mergeFlat collapses runs of sorted times across which p is eps-constant
// and that lie within flatSpread(e) of each other onto their mean. A root of
// multiplicity m splits by about the m-th root of the machine precision.
func mergeFlat(p *Poly, times []float64, e float64) []float64 {
	if len(times) < 2 {
		return times
	}
	out := make([]float64, 0, len(times))
	start := 0
	for i := 1; i <= len(times); i++ {
		if i < len(times) && flat(p, times[i-1], times[i], e) {
			continue
		}
		out = append(out, stat.Mean(times[start:i], nil))
		start = i
	}
	return out
}

func flatSpread(e float64) float64 {
	return math.Sqrt(e)
}

func flat(p *Poly, a, b, e float64) bool {
	if math.Abs(b-a) > flatSpread(e) {
		return false
	}
	y := p.Evaluate(a)
	return eps.Close(y, p.Evaluate(b), e) && eps.Close(y, p.Evaluate((a+b)/2), e)
}

// indexFlat returns the point that t is eps-close to, or failing that the
// nearest point p is flat towards.
func indexFlat(p *Poly, points []CriticalPoint, t, e float64) int {
	if i := indexNear(points, t, e); i >= 0 {
		return i
	}
	best := -1
	for i, pt := range points {
		if !flat(p, pt.X, t, e) {
			continue
		}
		if best < 0 || math.Abs(pt.X-t) < math.Abs(points[best].X-t) {
			best = i
		}
	}
	return best
}

func indexNear(points []CriticalPoint, t, e float64) int {
	for i, pt := range points {
		if eps.Close(pt.X, t, e) {
			return i
		}
	}
	return -1
}

func withinBounds(t, tMin, tMax, e float64) bool {
	return eps.SignNormalisedDifference(tMin, t, e) != eps.Negative &&
		eps.SignNormalisedDifference(t, tMax, e) != eps.Negative
}

// AlignPeaks returns the time of the unique MAXIMUM in a bounded point list.
func AlignPeaks(window int, points []CriticalPoint) (float64, error) {
	found := -1
	for i, pt := range points {
		if !pt.Kinds.Has(Maximum) {
			continue
		}
		if found >= 0 {
			return 0, &InvariantError{Window: window, Reason: "more than one maximum in cycle"}
		}
		found = i
	}
	if found < 0 {
		return 0, &InvariantError{Window: window, Reason: "no maximum found in cycle"}
	}
	return points[found].X, nil
}
