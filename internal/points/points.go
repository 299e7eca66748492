package points

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/raj-open/herz-sub000/internal/critical"
)

// Definition describes a named special point.
type Definition struct {
	Name       string
	Derivative int
	Kinds      critical.Kind
	After      []string
}

// Point is the outcome of recognizing one Definition.
type Point struct {
	Name  string  `json:"name"`
	Time  float64 `json:"time"`
	Found bool    `json:"found"`
}

// Order sorts definitions so that every point follows the points named in
// its After list. References to undefined names are ignored. When the
// dependencies are circular, Order returns the ordered prefix that does not
// depend on a cycle together with an error wrapping ErrCircular.
func Order(defs []Definition) ([]Definition, error) {
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		if _, ok := index[d.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
		}
		index[d.Name] = i
	}

	pending := make([]int, len(defs))
	dependents := make([][]int, len(defs))
	for i, d := range defs {
		for _, name := range d.After {
			j, ok := index[name]
			if !ok {
				continue
			}
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	queue := make([]int, 0, len(defs))
	for i := range defs {
		if pending[i] == 0 {
			queue = append(queue, i)
		}
	}
	ordered := make([]Definition, 0, len(defs))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, defs[i])
		for _, j := range dependents[i] {
			pending[j]--
			if pending[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(ordered) < len(defs) {
		var stuck []string
		for i, d := range defs {
			if pending[i] > 0 {
				stuck = append(stuck, d.Name)
			}
		}
		return ordered, fmt.Errorf("%w: %s", ErrCircular, strings.Join(stuck, ", "))
	}
	return ordered, nil
}

// Recognize matches every definition against the timeline. A point is the
// earliest entry whose kinds at the definition's derivative level contain
// all of its kinds and that lies strictly after every found point it depends
// on. Results are returned in the order of defs; points that cannot be
// matched, or that depend on a circular ordering, are reported not found.
func Recognize(log logrus.FieldLogger, timeline []critical.TimelineEntry, defs []Definition) []Point {
	ordered, err := Order(defs)
	if err != nil {
		log.WithError(err).Warn("special points only partially ordered")
	}

	found := make(map[string]float64, len(ordered))
	for _, d := range ordered {
		lower, bounded := 0.0, false
		for _, name := range d.After {
			if t, ok := found[name]; ok && (!bounded || t > lower) {
				lower, bounded = t, true
			}
		}
		for _, entry := range timeline {
			if bounded && entry.Time <= lower {
				continue
			}
			if entry.At(d.Derivative).Has(d.Kinds) {
				found[d.Name] = entry.Time
				break
			}
		}
	}

	out := make([]Point, len(defs))
	for i, d := range defs {
		t, ok := found[d.Name]
		out[i] = Point{Name: d.Name, Time: t, Found: ok}
	}
	return out
}
