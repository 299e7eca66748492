package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/raj-open/herz-sub000/internal/algebra"
	"github.com/raj-open/herz-sub000/internal/critical"
	"github.com/raj-open/herz-sub000/internal/cycles"
	"github.com/raj-open/herz-sub000/internal/eps"
	"github.com/raj-open/herz-sub000/internal/onb"
	"github.com/raj-open/herz-sub000/internal/points"
)

const DefaultLevels = 3

type Options struct {
	Accuracy   float64
	Degree     int
	Conditions []onb.Condition
	// Levels is the number of derivative orders classified, starting at 0.
	Levels  int
	Points  []points.Definition
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Accuracy:   eps.DefaultAccuracy,
		Degree:     8,
		Conditions: onb.DefaultConditions(),
		Levels:     DefaultLevels,
		Workers:    runtime.NumCPU(),
	}
}

// WindowResult is the analysis of one cycle window. Critical points and the
// timeline are in normalised time s ∈ [0, 1]; Peak and the recognized
// points are in physical time.
type WindowResult struct {
	Index    int                        `json:"index"`
	Window   cycles.Window              `json:"window"`
	Fit      *onb.FittedInfo            `json:"fit,omitempty"`
	Residual float64                    `json:"residual"`
	Peak     float64                    `json:"peak"`
	Levels   [][]critical.CriticalPoint `json:"levels,omitempty"`
	Timeline []critical.TimelineEntry   `json:"timeline,omitempty"`
	Points   []points.Point             `json:"points"`
	Err      error                      `json:"-"`
}

// PhysicalTime maps normalised time s of the window to physical time.
func (r *WindowResult) PhysicalTime(s float64) float64 {
	if r.Fit == nil {
		return s
	}
	return r.Fit.Normalisation.Start + s*r.Fit.Normalisation.Period
}

type Analyser struct {
	opts Options
	log  logrus.FieldLogger
}

func New(log logrus.FieldLogger, opts Options) *Analyser {
	if opts.Accuracy <= 0 {
		opts.Accuracy = eps.DefaultAccuracy
	}
	if opts.Levels <= 0 {
		opts.Levels = DefaultLevels
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Analyser{opts: opts, log: log}
}

// AnalyseWindow fits the samples of one window and classifies the critical
// points of the fitted signal, drift included, and its derivatives over
// normalised time [0, 1]. On error the returned result still reports every
// named point as not found.
func (a *Analyser) AnalyseWindow(index int, t, x []float64) (*WindowResult, error) {
	res := &WindowResult{Index: index, Points: a.missing()}

	deg := onb.SafeDegree(a.opts.Degree, a.opts.Conditions, len(a.opts.Points))
	fit, err := onb.FitWindow(t, x, a.opts.Conditions, deg)
	if err != nil {
		return res, fmt.Errorf("fit window %d: %w", index, err)
	}
	res.Fit = fit
	res.Residual = onb.Residual(fit, t, x)

	signal := fit.Signal(algebra.WithAccuracy(a.opts.Accuracy))
	chain := signal.DerivativeChain(a.opts.Levels)
	levels := make([][]critical.CriticalPoint, a.opts.Levels)
	for k := range levels {
		levels[k] = critical.GetCriticalPointsBounded(chain[k], chain[k+1], 0, 1)
	}
	res.Levels = critical.CleanUpCriticalPoints(levels, a.opts.Accuracy, 0, 1)
	res.Timeline = critical.GatherMultiLevelClassifications(res.Levels, a.opts.Accuracy, 0, 1)

	peak, err := critical.AlignPeaks(index, res.Levels[0])
	if err != nil {
		return res, err
	}
	res.Peak = res.PhysicalTime(peak)

	res.Points = points.Recognize(a.log, res.Timeline, a.opts.Points)
	for i := range res.Points {
		if res.Points[i].Found {
			res.Points[i].Time = res.PhysicalTime(res.Points[i].Time)
		}
	}
	return res, nil
}

// Batch analyses every window of the series (t, x). A window covers its
// samples and the first sample of the next cycle. Results are returned in
// window order; per-window failures are stored in WindowResult.Err. The
// returned error is only set when ctx is cancelled.
func (a *Analyser) Batch(ctx context.Context, t, x []float64, windows []cycles.Window) ([]*WindowResult, error) {
	results := make([]*WindowResult, len(windows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, w := range windows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.window(i, w, t, x)
			res.Window = w
			if err != nil {
				res.Err = err
				a.log.WithFields(logrus.Fields{
					"window": i,
					"start":  w.Start,
					"end":    w.End,
				}).WithError(err).Warn("window analysis failed")
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Analyser) window(i int, w cycles.Window, t, x []float64) (*WindowResult, error) {
	if w.Start < 0 || w.End > len(t) || w.End > len(x) || w.Start >= w.End {
		res := &WindowResult{Index: i, Points: a.missing()}
		return res, fmt.Errorf("%w: [%d, %d)", ErrWindowRange, w.Start, w.End)
	}
	end := w.End
	if end < len(t) && end < len(x) {
		end++
	}
	return a.AnalyseWindow(i, t[w.Start:end], x[w.Start:end])
}

// missing reports every named point as not found.
func (a *Analyser) missing() []points.Point {
	out := make([]points.Point, len(a.opts.Points))
	for i, d := range a.opts.Points {
		out[i] = points.Point{Name: d.Name}
	}
	return out
}

// Failed counts the results that carry an error.
func Failed(results []*WindowResult) int {
	n := 0
	for _, r := range results {
		if r != nil && r.Err != nil {
			n++
		}
	}
	return n
}
