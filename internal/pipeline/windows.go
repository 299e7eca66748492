package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/raj-open/herz-sub000/internal/cycles"
	"github.com/raj-open/herz-sub000/internal/series"
)

// Windowing controls how a series is cut into cycles.
type Windowing struct {
	PeakWindow int
	// MinDistance between extrema in samples. Zero uses half the estimated
	// period.
	MinDistance int
	// Troughs cuts cycles at local minima, so every cycle holds a single
	// maximum. Cutting at maxima puts one at both ends of each cycle.
	Troughs    bool
	RemoveGaps bool
	GapSigma   float64
}

// Windows cuts the series (t, x) into cycle windows between consecutive
// extrema.
func Windows(log logrus.FieldLogger, t, x []float64, w Windowing) []cycles.Window {
	minDistance := w.MinDistance
	if minDistance == 0 && len(t) > 1 {
		if period, err := series.EstimatePeriod(t, x); err == nil {
			dt := (t[len(t)-1] - t[0]) / float64(len(t)-1)
			minDistance = int(0.5 * period / dt)
			log.WithField("period", period).Debug("estimated period")
		} else {
			log.WithError(err).Warn("period estimate failed")
		}
	}

	var extrema []int
	if w.Troughs {
		extrema = series.DetectTroughs(x, w.PeakWindow, minDistance)
	} else {
		extrema = series.DetectExtrema(x, w.PeakWindow, minDistance)
	}
	labels := cycles.GetCycles(extrema, len(x), w.RemoveGaps, w.GapSigma)
	windows := cycles.CyclesToWindows(labels)
	log.WithFields(logrus.Fields{
		"samples": len(x),
		"extrema": len(extrema),
		"windows": len(windows),
	}).Info("series windowed")
	return windows
}
