// Package series ingests sampled time series and prepares them for cycle
// windowing: CSV reading with gap interpolation, peak detection and a
// spectral estimate of the dominant period.
package series
