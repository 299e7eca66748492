package series

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitudes of the non-negative frequency
// coefficients of the mean-removed data.
func PowerSpectrum(data []float64) []float64 {
	centred := make([]float64, len(data))
	copy(centred, data)
	floats.AddConst(-stat.Mean(data, nil), centred)

	fft := fourier.NewFFT(len(centred))
	coeffs := fft.Coefficients(nil, centred)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// EstimatePeriod returns the period of the strongest non-constant frequency
// of x, assuming t is uniformly sampled.
func EstimatePeriod(t, x []float64) (float64, error) {
	n := len(x)
	if n != len(t) || n < 4 {
		return 0, ErrTooFewSamples
	}
	dt := (t[n-1] - t[0]) / float64(n-1)
	if dt <= 0 {
		return 0, ErrTooFewSamples
	}

	ps := PowerSpectrum(x)
	best := floats.MaxIdx(ps[1:]) + 1
	if ps[best] == 0 {
		return 0, ErrNoPeriodicity
	}
	return float64(n) * dt / float64(best), nil
}
