// Package testutil provides reusable test helpers for the reverb engines.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	SampleTolerance  = 1e-6
)

// UnitImpulse returns n samples with a leading 1.0 followed by zeros.
func UnitImpulse(n int) []float32 {
	s := make([]float32, n)
	if n > 0 {
		s[0] = 1
	}
	return s
}

// Sine returns n samples of a sine wave at freq Hz.
func Sine(n int, freq, sampleRate, amplitude float64) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return s
}

// Noise returns n uniformly distributed samples in [-amplitude, amplitude).
// The sequence is fixed by seed.
func Noise(n int, amplitude float64, seed uint64) []float32 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(amplitude * (2*rng.Float64() - 1))
	}
	return s
}

// DirectConvolve computes the first len(x) samples of the linear
// convolution of x and h in float64.
func DirectConvolve(x, h []float32) []float64 {
	y := make([]float64, len(x))
	for n := range y {
		var acc float64
		for k := 0; k < len(h) && k <= n; k++ {
			acc += float64(h[k]) * float64(x[n-k])
		}
		y[n] = acc
	}
	return y
}

// MaxAbs returns the largest absolute sample value.
func MaxAbs(s []float32) float64 {
	var peak float64
	for _, v := range s {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	return peak
}

// AssertSamplesInDelta verifies that actual matches expected sample by sample.
// Only the first mismatch is reported.
func AssertSamplesInDelta(t *testing.T, expected []float64, actual []float32, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Abs(expected[i]-float64(actual[i])) > tolerance {
			return assert.Fail(t, "sample mismatch",
				"sample %d: got %g, want %g (tolerance %g)", i, actual[i], expected[i], tolerance)
		}
	}
	return true
}

// AssertFloat32InDelta is AssertSamplesInDelta for float32 expectations.
func AssertFloat32InDelta(t *testing.T, expected, actual []float32, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	wide := make([]float64, len(expected))
	for i, v := range expected {
		wide[i] = float64(v)
	}
	return AssertSamplesInDelta(t, wide, actual, tolerance, msgAndArgs...)
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(float64(v)) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(float64(v), 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllZero verifies that every sample is exactly zero.
func AssertAllZero(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "non-zero sample", "s[%d]=%g", i, v)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
