package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"

	"github.com/raj-open/herz-sub000/internal/critical"
	"github.com/raj-open/herz-sub000/internal/pipeline"
	"github.com/raj-open/herz-sub000/internal/points"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Header
			}
			return Cell
		}).
		Headers(headers...)
}

// Timeline renders the critical-point timeline of one window with one column
// per derivative level.
func Timeline(res *pipeline.WindowResult) string {
	levels := len(res.Levels)
	headers := []string{"s", "t"}
	for k := 0; k < levels; k++ {
		headers = append(headers, fmt.Sprintf("d%d", k))
	}
	t := newTable(headers...)
	for _, entry := range res.Timeline {
		row := []string{
			fmt.Sprintf("%.4f", entry.Time),
			fmt.Sprintf("%.4f", res.PhysicalTime(entry.Time)),
		}
		for k := 0; k < levels; k++ {
			row = append(row, entry.At(k).String())
		}
		t.Row(row...)
	}
	return t.String()
}

// Points renders the recognized points of every window.
func Points(results []*pipeline.WindowResult) string {
	var names []string
	for _, r := range results {
		if len(r.Points) > len(names) {
			names = names[:0]
			for _, p := range r.Points {
				names = append(names, p.Name)
			}
		}
	}
	t := newTable(append([]string{"window", "peak"}, names...)...)
	for _, r := range results {
		row := []string{fmt.Sprint(r.Index), peak(r)}
		for i := range names {
			row = append(row, point(r.Points, i))
		}
		t.Row(row...)
	}
	return t.String()
}

func peak(r *pipeline.WindowResult) string {
	if r.Err != nil {
		return Missing.Render("failed")
	}
	return fmt.Sprintf("%.4f", r.Peak)
}

func point(pts []points.Point, i int) string {
	if i >= len(pts) || !pts[i].Found {
		return Missing.Render("-")
	}
	return Found.Render(fmt.Sprintf("%.4f", pts[i].Time))
}

// Kinds lists the critical points per derivative level on one line each.
func Kinds(levels [][]critical.CriticalPoint) string {
	var b strings.Builder
	for k, pts := range levels {
		fmt.Fprintf(&b, "%s %d points", Subtle.Render(fmt.Sprintf("d%d:", k)), len(pts))
		for _, p := range pts {
			fmt.Fprintf(&b, " %s@%.3f", p.Kinds, p.X)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Fitted samples the fitted models of all windows at the times t, with NaN
// outside every window.
func Fitted(t []float64, results []*pipeline.WindowResult) []float64 {
	out := make([]float64, len(t))
	for i := range out {
		out[i] = math.NaN()
	}
	for _, r := range results {
		if r.Fit == nil {
			continue
		}
		end := min(r.Window.End+1, len(t))
		for i := r.Window.Start; i < end; i++ {
			out[i] = r.Fit.Evaluate(t[i])
		}
	}
	return out
}

// Plot draws the data and the fitted curve.
func Plot(x, fitted []float64, width, height int, caption string) string {
	return asciigraph.PlotMany([][]float64{x, fitted},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(caption),
	)
}
