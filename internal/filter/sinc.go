// Package filter designs the windowed-sinc interpolation kernels used for
// band-limited sample rate conversion.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-reverb/internal/mathutil"
)

const (
	minTaps         = 4
	maxTaps         = 4096
	minOversampling = 1
	maxOversampling = 4096

	// windowHalfDivisor turns the tap count into the window half-width.
	windowHalfDivisor = 2
)

// SincParams describes a windowed-sinc interpolation table.
type SincParams struct {
	// Taps is the number of input samples each output sample draws from.
	// Must be even; the kernel is centred between taps Taps/2-1 and Taps/2.
	Taps int

	// Oversampling is the number of table phases per input sample interval.
	Oversampling int

	// Cutoff is the passband edge as a fraction of the input Nyquist
	// frequency, in (0, 1].
	Cutoff float64

	// Attenuation is the Kaiser window design attenuation in dB.
	Attenuation float64
}

// Validate checks if sinc parameters are valid.
func (p *SincParams) Validate() error {
	if p.Taps < minTaps || p.Taps > maxTaps || p.Taps%2 != 0 {
		return fmt.Errorf("taps %d must be even and in [%d, %d]", p.Taps, minTaps, maxTaps)
	}

	if p.Oversampling < minOversampling || p.Oversampling > maxOversampling {
		return fmt.Errorf("oversampling %d out of range [%d, %d]", p.Oversampling, minOversampling, maxOversampling)
	}

	if !(p.Cutoff > 0 && p.Cutoff <= 1) {
		return fmt.Errorf("cutoff %f out of range (0, 1]", p.Cutoff)
	}

	if p.Attenuation < 0 {
		return fmt.Errorf("attenuation %f dB must be positive", p.Attenuation)
	}

	return nil
}

// SincTable is an oversampled windowed-sinc kernel stored phase-first.
//
// Phases[j][k] is the kernel weight of tap k when the output instant lies
// j/Oversampling of an input interval after tap Taps/2-1. There are
// Oversampling+1 phases so that linear interpolation between phase j and
// j+1 never wraps.
type SincTable struct {
	Phases       [][]float64
	Taps         int
	Oversampling int
	Cutoff       float64
	Beta         float64
}

// DesignSincTable builds the phase table for params.
//
// Each weight is cutoff·sinc(cutoff·t)·w(t), where t is the distance in
// input samples between the tap and the output instant and w is a Kaiser
// window spanning all taps.
func DesignSincTable(params SincParams) (*SincTable, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	beta := mathutil.KaiserBeta(params.Attenuation)
	i0Beta := mathutil.BesselI0(beta)
	halfWidth := float64(params.Taps) / windowHalfDivisor
	centre := float64(params.Taps/windowHalfDivisor - 1)

	phases := make([][]float64, params.Oversampling+1)
	for j := range phases {
		frac := float64(j) / float64(params.Oversampling)
		phase := make([]float64, params.Taps)
		for k := range phase {
			t := frac + centre - float64(k)
			phase[k] = params.Cutoff * mathutil.Sinc(params.Cutoff*t) *
				mathutil.KaiserWindowAt(t, halfWidth, beta, i0Beta)
		}
		phases[j] = phase
	}

	return &SincTable{
		Phases:       phases,
		Taps:         params.Taps,
		Oversampling: params.Oversampling,
		Cutoff:       params.Cutoff,
		Beta:         beta,
	}, nil
}

// Lookup returns the two table phases bracketing frac ∈ [0, 1) and the
// linear weight of the upper one.
func (st *SincTable) Lookup(frac float64) (lo, hi []float64, weight float64) {
	pos := frac * float64(st.Oversampling)
	j := int(pos)
	if j >= st.Oversampling {
		j = st.Oversampling - 1
	}
	return st.Phases[j], st.Phases[j+1], pos - float64(j)
}

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64
}

// ComputeFrequencyResponse evaluates the DTFT magnitude of coeffs at
// numPoints frequencies from 0 up to (but excluding) Nyquist.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = 512
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / float64(2*numPoints)
		response.Frequencies[k] = freq

		var realPart, imagPart float64
		omega := 2 * math.Pi * freq

		for n, h := range coeffs {
			angle := omega * float64(n)
			realPart += h * math.Cos(angle)
			imagPart -= h * math.Sin(angle)
		}

		response.Magnitude[k] = math.Hypot(realPart, imagPart)
	}

	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
