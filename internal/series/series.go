package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Series is a sampled quantity with strictly increasing times.
type Series struct {
	Name string
	T    []float64
	X    []float64
}

func (s *Series) Len() int { return len(s.T) }

// Slice returns the samples in [start, end). The slices share storage with s.
func (s *Series) Slice(start, end int) ([]float64, []float64) {
	return s.T[start:end], s.X[start:end]
}

// ReadCSV reads the columns timeCol and valueCol of a CSV document with a
// header row. Empty names select the first and second column. Rows with an
// unparsable time are skipped; unparsable values are gaps and get filled by
// linear interpolation. Rows are sorted by time and repeated times dropped.
func ReadCSV(r io.Reader, timeCol, valueCol string) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}
	ti, err := column(header, timeCol, 0)
	if err != nil {
		return nil, err
	}
	vi, err := column(header, valueCol, 1)
	if err != nil {
		return nil, err
	}

	type sample struct{ t, x float64 }
	var samples []sample
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if ti >= len(record) {
			continue
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(record[ti]), 64)
		if err != nil || math.IsNaN(t) {
			continue
		}
		x := math.NaN()
		if vi < len(record) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(record[vi]), 64); err == nil {
				x = v
			}
		}
		samples = append(samples, sample{t, x})
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].t < samples[j].t })
	s := &Series{Name: strings.TrimSpace(header[vi])}
	for i, smp := range samples {
		if i > 0 && smp.t == samples[i-1].t {
			continue
		}
		s.T = append(s.T, smp.t)
		s.X = append(s.X, smp.x)
	}
	if FillGaps(s.T, s.X) < 0 {
		return nil, ErrNoData
	}
	return s, nil
}

func column(header []string, name string, fallback int) (int, error) {
	if name == "" {
		if fallback >= len(header) {
			return 0, fmt.Errorf("%w: column %d", ErrUnknownColumn, fallback)
		}
		return fallback, nil
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// FillGaps replaces NaN values in x by linear interpolation in t between the
// nearest valid neighbours and by the nearest valid value at the ends. It
// returns the number of filled values, or -1 when x has no valid value.
func FillGaps(t, x []float64) int {
	var valid []int
	for i, v := range x {
		if !math.IsNaN(v) {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		return -1
	}

	filled := 0
	next := 0
	for i := range x {
		if !math.IsNaN(x[i]) {
			continue
		}
		for next < len(valid) && valid[next] < i {
			next++
		}
		switch {
		case next == 0:
			x[i] = x[valid[0]]
		case next == len(valid):
			x[i] = x[valid[len(valid)-1]]
		default:
			a, b := valid[next-1], valid[next]
			w := (t[i] - t[a]) / (t[b] - t[a])
			x[i] = x[a] + w*(x[b]-x[a])
		}
		filled++
	}
	return filled
}
