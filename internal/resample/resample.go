// Package resample converts a whole sample buffer from one rate to another
// with band-limited windowed-sinc interpolation.
//
// It is a batch operation meant for impulse responses: the complete input is
// known up front, so the interpolation is centred on every output instant and
// the result carries no filter latency. There is no streaming state.
package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-reverb/internal/filter"
	"github.com/tphakala/simd/f64"
)

// Fixed interpolation quality. These are not runtime-tunable.
const (
	// sincTaps is the number of input samples contributing to each output.
	sincTaps = 256

	// sincCutoff is the passband edge relative to the lower of the two
	// Nyquist frequencies.
	sincCutoff = 0.95

	// sincOversampling is the number of kernel phases per input interval.
	// Weights between phases are linearly interpolated.
	sincOversampling = 256

	// sincAttenuation is the Kaiser window design attenuation in dB.
	sincAttenuation = 120.0
)

// Ratio limits (output rate / input rate).
//
// When downsampling, the cutoff scales with the ratio while the kernel span
// stays sincTaps input samples, so the window covers fewer sinc zero
// crossings. At minRatio each side still spans about seven of them and the
// Kaiser transition band stays clear of DC. Lower ratios lose DC gain and
// stopband rejection, so they are refused.
const (
	minRatio = 1.0 / 16.0
	maxRatio = 256.0
)

// ErrResample indicates that a conversion could not be performed.
var ErrResample = errors.New("resample failed")

// OutputLength returns the number of samples Resample produces for n input
// samples.
func OutputLength(n, fromRate, toRate int) int {
	if fromRate == toRate {
		return n
	}
	return int(math.Round(float64(n) * float64(toRate) / float64(fromRate)))
}

// KernelParams returns the interpolation kernel used for a conversion from
// fromRate to toRate. The cutoff tracks the lower of the two Nyquist
// frequencies.
func KernelParams(fromRate, toRate int) filter.SincParams {
	ratio := float64(toRate) / float64(fromRate)
	return filter.SincParams{
		Taps:         sincTaps,
		Oversampling: sincOversampling,
		Cutoff:       sincCutoff * math.Min(1, ratio),
		Attenuation:  sincAttenuation,
	}
}

// Resample converts in from fromRate to toRate.
//
// Equal rates return a copy of in. Otherwise the output has
// round(len(in)·toRate/fromRate) samples and output sample n is the
// band-limited input evaluated at time n/toRate.
func Resample(in []float32, fromRate, toRate int) ([]float32, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrResample)
	}
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("%w: sample rates must be positive (%d -> %d)", ErrResample, fromRate, toRate)
	}

	if fromRate == toRate {
		out := make([]float32, len(in))
		copy(out, in)
		return out, nil
	}

	ratio := float64(toRate) / float64(fromRate)
	if ratio < minRatio || ratio > maxRatio {
		return nil, fmt.Errorf("%w: ratio %g out of range [%g, %g]", ErrResample, ratio, minRatio, maxRatio)
	}

	outLen := OutputLength(len(in), fromRate, toRate)
	if outLen < 1 {
		return nil, fmt.Errorf("%w: %d samples at ratio %g produce no output", ErrResample, len(in), ratio)
	}

	table, err := filter.DesignSincTable(KernelParams(fromRate, toRate))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResample, err)
	}

	// Zero-pad so every window is in range; tap k of output n reads input
	// sample i0-(sincTaps/2-1)+k, which lives at padded[i0+k].
	padded := make([]float64, len(in)+sincTaps)
	offset := sincTaps/2 - 1
	for i, v := range in {
		padded[offset+i] = float64(v)
	}

	out := make([]float32, outLen)
	from, to := int64(fromRate), int64(toRate)

	for n := range out {
		// Exact rational position n·from/to avoids drift on long buffers.
		num := int64(n) * from
		i0 := int(num / to)
		frac := float64(num%to) / float64(to)

		window := padded[i0 : i0+sincTaps]
		lo, hi, w := table.Lookup(frac)

		y := (1-w)*f64.DotProductUnsafe(lo, window) + w*f64.DotProductUnsafe(hi, window)
		out[n] = float32(y)
	}

	return out, nil
}
