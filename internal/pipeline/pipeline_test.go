package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raj-open/herz-sub000/internal/config"
	"github.com/raj-open/herz-sub000/internal/critical"
	"github.com/raj-open/herz-sub000/internal/cycles"
	"github.com/raj-open/herz-sub000/internal/points"
)

// pulse samples 10 + 4·sin²(πt) on [0, 4] with troughs at the integers.
func pulse() ([]float64, []float64) {
	n := 401
	ts := make([]float64, n)
	xs := make([]float64, n)
	for i := range ts {
		ts[i] = 0.01 * float64(i)
		xs[i] = 10 + 4*math.Pow(math.Sin(math.Pi*ts[i]), 2)
	}
	return ts, xs
}

func analyser(t *testing.T) (*Analyser, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	opts := DefaultOptions()
	opts.Workers = 2
	opts.Points = []points.Definition{
		{Name: "peak", Derivative: 0, Kinds: critical.Maximum},
		{Name: "upstroke", Derivative: 1, Kinds: critical.LocalMaximum | critical.Maximum},
		{Name: "second-peak", Derivative: 0, Kinds: critical.Maximum, After: []string{"peak"}},
	}
	return New(log, opts), hook
}

func TestAnalyseWindow(t *testing.T) {
	ts, xs := pulse()
	a, _ := analyser(t)

	res, err := a.AnalyseWindow(0, ts[100:201], xs[100:201])
	require.NoError(t, err)

	assert.Less(t, res.Residual, 0.05)
	assert.InDelta(t, 1.5, res.Peak, 1e-3)
	require.Len(t, res.Levels, DefaultLevels)
	assert.NotEmpty(t, res.Timeline)

	require.Len(t, res.Points, 3)
	assert.True(t, res.Points[0].Found)
	assert.InDelta(t, 1.5, res.Points[0].Time, 1e-3)
	assert.True(t, res.Points[1].Found)
	assert.InDelta(t, 1.25, res.Points[1].Time, 1e-2)
	assert.False(t, res.Points[2].Found)

	assert.InDelta(t, 1.75, res.PhysicalTime(0.75), 1e-12)
}

func TestAnalyseWindowDrift(t *testing.T) {
	ts, xs := pulse()
	for i := range xs {
		xs[i] += 2 * ts[i]
	}
	a, _ := analyser(t)

	res, err := a.AnalyseWindow(0, ts[100:201], xs[100:201])
	require.NoError(t, err)

	// 4π·sin(2πt) + 2 vanishes just after the undrifted peak
	want := 1.5 + math.Asin(1/(2*math.Pi))/(2*math.Pi)
	assert.InDelta(t, want, res.Peak, 2e-3)
	assert.InDelta(t, want, res.Points[0].Time, 2e-3)

	best, bestValue := 0.0, math.Inf(-1)
	for k := 0; k <= 10000; k++ {
		x := 1 + float64(k)/10000
		if v := res.Fit.Evaluate(x); v > bestValue {
			best, bestValue = x, v
		}
	}
	assert.InDelta(t, best, res.Peak, 1e-3)
}

func TestAnalyseWindowTooShort(t *testing.T) {
	a, _ := analyser(t)

	res, err := a.AnalyseWindow(4, []float64{1}, []float64{2})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Nil(t, res.Fit)
	for _, p := range res.Points {
		assert.False(t, p.Found, p.Name)
	}
}

func TestBatch(t *testing.T) {
	ts, xs := pulse()
	a, hook := analyser(t)

	windows := []cycles.Window{
		{Start: 0, End: 100},
		{Start: 100, End: 200},
		{Start: 390, End: 500},
		{Start: 200, End: 300},
		{Start: 300, End: 400},
	}
	results, err := a.Batch(context.Background(), ts, xs, windows)
	require.NoError(t, err)
	require.Len(t, results, len(windows))
	assert.Equal(t, 1, Failed(results))

	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, windows[i], res.Window)
		if i == 2 {
			assert.ErrorIs(t, res.Err, ErrWindowRange)
			assert.False(t, res.Points[0].Found)
			continue
		}
		require.NoError(t, res.Err)
		assert.InDelta(t, ts[windows[i].Start]+0.5, res.Peak, 1e-3)
	}

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 2, entry.Data["window"])
	assert.Equal(t, 390, entry.Data["start"])
}

func TestBatchCancelled(t *testing.T) {
	ts, xs := pulse()
	a, _ := analyser(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Batch(ctx, ts, xs, []cycles.Window{{Start: 0, End: 100}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfigEndToEnd(t *testing.T) {
	ts, xs := pulse()
	cfg := config.DefaultConfig()
	log, hook := test.NewNullLogger()

	windows := Windows(log, ts, xs, Windowing{
		PeakWindow:  cfg.PeakWindow,
		MinDistance: cfg.PeakMinDistance,
		Troughs:     cfg.Troughs,
		RemoveGaps:  cfg.RemoveGaps,
		GapSigma:    cfg.GapSigma,
	})
	require.Equal(t, []cycles.Window{{Start: 100, End: 200}, {Start: 200, End: 300}}, windows)

	defs, err := cfg.Definitions()
	require.NoError(t, err)
	a := New(log, Options{
		Accuracy:   cfg.Accuracy,
		Degree:     cfg.Degree,
		Conditions: cfg.Conditions(),
		Points:     defs,
		Workers:    cfg.Workers,
	})
	results, err := a.Batch(context.Background(), ts, xs, windows)
	require.NoError(t, err)
	assert.Equal(t, 0, Failed(results))

	for _, res := range results {
		require.NoError(t, res.Err)
		start := ts[res.Window.Start]
		assert.InDelta(t, start+0.5, res.Peak, 1e-3)

		// ed, eivc, peak, eivr
		require.Len(t, res.Points, 4)
		for _, p := range res.Points {
			assert.True(t, p.Found, "window %d point %s", res.Index, p.Name)
		}
		assert.InDelta(t, start, res.Points[0].Time, 1e-6)
		assert.InDelta(t, start+0.25, res.Points[1].Time, 1e-2)
		assert.InDelta(t, start+0.5, res.Points[2].Time, 1e-3)
		assert.InDelta(t, start+0.75, res.Points[3].Time, 1e-2)
	}

	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, entry.Level, entry.Message)
	}
}

func TestWindowsAtPeaks(t *testing.T) {
	ts, xs := pulse()
	log, _ := test.NewNullLogger()

	windows := Windows(log, ts, xs, Windowing{PeakWindow: 5})
	require.Equal(t, []cycles.Window{{Start: 50, End: 150}, {Start: 150, End: 250}, {Start: 250, End: 350}}, windows)
}
