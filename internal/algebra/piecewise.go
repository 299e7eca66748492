package algebra

import (
	"math"
	"sort"

	"github.com/raj-open/herz-sub000/internal/field"
)

// Interval is the closed time range [Lo, Hi].
type Interval struct {
	Lo, Hi float64
}

func (iv Interval) Length() float64 {
	return iv.Hi - iv.Lo
}

func (iv Interval) Contains(t float64) bool {
	return iv.Lo <= t && t <= iv.Hi
}

// MergeIntervals returns the sorted union of the intervals. Reversed
// intervals are normalised first; touching intervals are joined.
func MergeIntervals(intervals ...Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval, len(intervals))
	for i, iv := range intervals {
		if iv.Hi < iv.Lo {
			iv.Lo, iv.Hi = iv.Hi, iv.Lo
		}
		sorted[i] = iv
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Lo <= last.Hi {
			last.Hi = math.Max(last.Hi, iv.Hi)
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Segment is the part of an interval lying in cycle K.
type Segment struct {
	K int
	Interval
}

// ResolveInterval splits [lo, hi] into maximal segments each contained in a
// single period. Acyclic models yield one segment with K = 0.
func (p *PolyExp[T]) ResolveInterval(lo, hi float64) []Segment {
	if !p.cyclic {
		return []Segment{{K: 0, Interval: Interval{Lo: lo, Hi: hi}}}
	}
	cycle := func(t float64) int {
		return int(math.Floor((t - p.offset) / p.period))
	}
	k0 := cycle(lo)
	k1 := cycle(hi)
	// hi on a cycle boundary belongs to the segment ending there
	if k1 > k0 && p.offset+float64(k1)*p.period == hi {
		k1--
	}

	segments := make([]Segment, 0, k1-k0+1)
	for k := k0; k <= k1; k++ {
		start := math.Max(lo, p.offset+float64(k)*p.period)
		end := math.Min(hi, p.offset+float64(k+1)*p.period)
		if end < start {
			continue
		}
		segments = append(segments, Segment{K: k, Interval: Interval{Lo: start, Hi: end}})
	}
	return segments
}

// Piece is an acyclic model valid on its interval.
type Piece[T field.Scalar] struct {
	Interval
	Model *PolyExp[T]
}

// ResolvePiecewise merges the intervals and returns acyclic models that agree
// pointwise with p on each piece. For a cyclic model every piece lies within
// one period and its polynomial part is shifted by that period's offset.
func (p *PolyExp[T]) ResolvePiecewise(intervals ...Interval) []Piece[T] {
	var pieces []Piece[T]
	acyclic := p.Acyclic()
	for _, iv := range MergeIntervals(intervals...) {
		for _, seg := range p.ResolveInterval(iv.Lo, iv.Hi) {
			model := acyclic
			if p.cyclic && seg.K != 0 {
				model = acyclic.ShiftPoly(float64(seg.K) * p.period)
			}
			pieces = append(pieces, Piece[T]{Interval: seg.Interval, Model: model})
		}
	}
	return pieces
}
