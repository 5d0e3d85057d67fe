package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-reverb/internal/testutil"
)

// edgeMargin skips samples whose kernel reaches into the zero padding.
const edgeMargin = sincTaps

// TestResample_SameRateCopies verifies pass-through for equal rates.
func TestResample_SameRateCopies(t *testing.T) {
	in := testutil.Noise(1000, 0.5, 1)

	out, err := Resample(in, 44100, 44100)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out[0] = 42
	assert.NotEqual(t, float32(42), in[0], "output must not alias input")
}

// TestResample_InvalidInput verifies error cases.
func TestResample_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		in       []float32
		from, to int
	}{
		{"empty", nil, 44100, 48000},
		{"zero_from", []float32{1}, 0, 48000},
		{"negative_to", []float32{1}, 44100, -1},
		{"ratio_too_high", []float32{1, 2, 3}, 100, 100000},
		{"ratio_too_low", []float32{1, 2, 3}, 100000, 100},
		{"below_kernel_range", make([]float32, 1700), 17000, 1000},
		{"no_output", []float32{1}, 48000, 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resample(tt.in, tt.from, tt.to)
			require.ErrorIs(t, err, ErrResample)
			assert.Nil(t, out)
		})
	}
}

// TestResample_LengthScalesWithRatio verifies output length for common rate pairs.
func TestResample_LengthScalesWithRatio(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
	}{
		{"CD_to_DAT", 44100, 48000},
		{"DAT_to_CD", 48000, 44100},
		{"2x_down", 44100, 22050},
		{"2x_up", 22050, 44100},
		{"CD_to_HiRes", 44100, 96000},
	}

	const n = 4410

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resample(testutil.Noise(n, 0.5, 7), tt.from, tt.to)
			require.NoError(t, err)

			expected := float64(n) * float64(tt.to) / float64(tt.from)
			assert.InDelta(t, expected, float64(len(out)), 1.0)
			assert.Equal(t, OutputLength(n, tt.from, tt.to), len(out))
			testutil.AssertNoNaNOrInf(t, out)
		})
	}
}

// TestResample_PreservesDC verifies that a constant signal keeps its level.
func TestResample_PreservesDC(t *testing.T) {
	in := make([]float32, 4000)
	for i := range in {
		in[i] = 0.5
	}

	for _, to := range []int{48000, 32000, 88200} {
		out, err := Resample(in, 44100, to)
		require.NoError(t, err)

		for i := edgeMargin; i < len(out)-edgeMargin; i++ {
			require.InDelta(t, 0.5, out[i], 1e-4, "rate %d sample %d", to, i)
		}
	}
}

// TestResample_PreservesDCAtLowestRatio verifies that the steepest accepted
// downsampling ratio still passes DC at unity gain.
func TestResample_PreservesDCAtLowestRatio(t *testing.T) {
	const from, to = 48000, 3000

	in := make([]float32, 32000)
	for i := range in {
		in[i] = 0.5
	}

	out, err := Resample(in, from, to)
	require.NoError(t, err)
	require.Len(t, out, 2000)

	margin := sincTaps * to / from
	for i := margin; i < len(out)-margin; i++ {
		require.InDelta(t, 0.5, out[i], 1e-4, "sample %d", i)
	}

	_, err = Resample(in, from, from/16-1)
	require.ErrorIs(t, err, ErrResample)
}

// TestResample_PreservesInBandSine verifies that an in-band tone is
// reconstructed at the new rate with correct amplitude and phase.
func TestResample_PreservesInBandSine(t *testing.T) {
	const (
		from = 44100
		to   = 48000
		freq = 1000.0
	)

	in := testutil.Sine(8820, freq, from, 0.8)
	out, err := Resample(in, from, to)
	require.NoError(t, err)

	for i := edgeMargin; i < len(out)-edgeMargin; i++ {
		want := 0.8 * math.Sin(2*math.Pi*freq*float64(i)/to)
		require.InDelta(t, want, out[i], 1e-3, "sample %d", i)
	}
}

// TestResample_RejectsAboveTargetNyquist verifies anti-aliasing when downsampling.
func TestResample_RejectsAboveTargetNyquist(t *testing.T) {
	in := testutil.Sine(9600, 18000, 48000, 1.0)

	out, err := Resample(in, 48000, 24000)
	require.NoError(t, err)

	assert.Less(t, testutil.MaxAbs(out[edgeMargin:len(out)-edgeMargin]), 1e-3,
		"18 kHz must not alias into a 24 kHz stream")
}

// TestOutputLength verifies the length formula.
func TestOutputLength(t *testing.T) {
	assert.Equal(t, 100, OutputLength(100, 44100, 44100))
	assert.Equal(t, 48000, OutputLength(44100, 44100, 48000))
	assert.Equal(t, 22050, OutputLength(44100, 44100, 22050))
	assert.Equal(t, 0, OutputLength(1, 48000, 8000))
}

// BenchmarkResample_OneSecondCDtoDAT benchmarks a one-second conversion.
func BenchmarkResample_OneSecondCDtoDAT(b *testing.B) {
	in := testutil.Noise(44100, 0.5, 3)
	for b.Loop() {
		_, _ = Resample(in, 44100, 48000)
	}
}

func TestKernelParams(t *testing.T) {
	up := KernelParams(44100, 48000)
	assert.Equal(t, sincTaps, up.Taps)
	assert.Equal(t, sincOversampling, up.Oversampling)
	assert.InDelta(t, sincCutoff, up.Cutoff, 1e-12)
	require.NoError(t, up.Validate())

	down := KernelParams(48000, 24000)
	assert.InDelta(t, sincCutoff/2, down.Cutoff, 1e-12)
}
