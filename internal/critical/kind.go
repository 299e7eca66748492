package critical

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is a set of classification tags.
type Kind uint8

const (
	Zero Kind = 1 << iota
	LocalMinimum
	LocalMaximum
	Inflection
	Minimum
	Maximum
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{Zero, "ZERO"},
	{LocalMinimum, "LOCAL_MINIMUM"},
	{LocalMaximum, "LOCAL_MAXIMUM"},
	{Inflection, "INFLECTION"},
	{Minimum, "MINIMUM"},
	{Maximum, "MAXIMUM"},
}

// Has reports whether every tag of tags is present.
func (k Kind) Has(tags Kind) bool {
	return k&tags == tags
}

func (k Kind) Empty() bool {
	return k == 0
}

// Resolve replaces a contradictory LOCAL_MINIMUM+LOCAL_MAXIMUM pair by
// INFLECTION.
func (k Kind) Resolve() Kind {
	if k.Has(LocalMinimum | LocalMaximum) {
		k &^= LocalMinimum | LocalMaximum
		k |= Inflection
	}
	return k
}

func (k Kind) String() string {
	if k == 0 {
		return "-"
	}
	var parts []string
	for _, kn := range kindNames {
		if k.Has(kn.kind) {
			parts = append(parts, kn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseKind parses a single tag name such as "LOCAL_MAXIMUM".
func ParseKind(name string) (Kind, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, kn := range kindNames {
		if kn.name == name {
			return kn.kind, true
		}
	}
	return 0, false
}

// CriticalPoint is a classified point (X, Y) of a model.
type CriticalPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Kinds Kind    `json:"kinds"`
}

func sortPoints(points []CriticalPoint) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	*k = 0
	s := string(text)
	if s == "-" || s == "" {
		return nil
	}
	for _, part := range strings.Split(s, "|") {
		tag, ok := ParseKind(part)
		if !ok {
			return fmt.Errorf("critical: unknown kind %q", part)
		}
		*k |= tag
	}
	return nil
}
