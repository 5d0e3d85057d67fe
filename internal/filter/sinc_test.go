package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTaps         = 256
	testOversampling = 64
	testAttenuation  = 120.0

	passbandRippleDB = 0.01
	stopbandFloorDB  = -100.0
)

func testParams(cutoff float64) SincParams {
	return SincParams{
		Taps:         testTaps,
		Oversampling: testOversampling,
		Cutoff:       cutoff,
		Attenuation:  testAttenuation,
	}
}

// TestSincParams_Validate verifies that invalid designs are rejected.
func TestSincParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *SincParams)
	}{
		{"odd_taps", func(p *SincParams) { p.Taps = 255 }},
		{"too_few_taps", func(p *SincParams) { p.Taps = 2 }},
		{"too_many_taps", func(p *SincParams) { p.Taps = maxTaps + 2 }},
		{"zero_oversampling", func(p *SincParams) { p.Oversampling = 0 }},
		{"zero_cutoff", func(p *SincParams) { p.Cutoff = 0 }},
		{"cutoff_above_nyquist", func(p *SincParams) { p.Cutoff = 1.01 }},
		{"negative_attenuation", func(p *SincParams) { p.Attenuation = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(0.95)
			tt.modify(&p)
			assert.Error(t, p.Validate())

			_, err := DesignSincTable(p)
			assert.Error(t, err)
		})
	}

	p := testParams(1.0)
	assert.NoError(t, p.Validate())
}

// TestDesignSincTable_Shape verifies the table dimensions.
func TestDesignSincTable_Shape(t *testing.T) {
	st, err := DesignSincTable(testParams(0.95))
	require.NoError(t, err)

	assert.Len(t, st.Phases, testOversampling+1)
	for j, phase := range st.Phases {
		assert.Len(t, phase, testTaps, "phase %d", j)
	}
	assert.InDelta(t, 12.2652, st.Beta, 1e-3)
}

// TestDesignSincTable_FullBandPhaseZeroIsImpulse verifies that a full-band
// kernel evaluated on the sample grid passes samples through unchanged.
func TestDesignSincTable_FullBandPhaseZeroIsImpulse(t *testing.T) {
	st, err := DesignSincTable(testParams(1.0))
	require.NoError(t, err)

	centre := testTaps/2 - 1
	for k, w := range st.Phases[0] {
		if k == centre {
			assert.InDelta(t, 1.0, w, 1e-12)
			continue
		}
		assert.InDelta(t, 0.0, w, 1e-12, "tap %d", k)
	}
}

// TestDesignSincTable_LastPhaseIsShiftedFirst verifies continuity between
// the last phase of one interval and the first phase of the next.
func TestDesignSincTable_LastPhaseIsShiftedFirst(t *testing.T) {
	st, err := DesignSincTable(testParams(0.95))
	require.NoError(t, err)

	first := st.Phases[0]
	last := st.Phases[testOversampling]
	for k := 1; k < testTaps; k++ {
		assert.InDelta(t, first[k-1], last[k], 1e-15, "tap %d", k)
	}
}

// TestDesignSincTable_UnityDCGain verifies every phase preserves DC.
func TestDesignSincTable_UnityDCGain(t *testing.T) {
	for _, cutoff := range []float64{0.95, 0.5, 0.25} {
		st, err := DesignSincTable(testParams(cutoff))
		require.NoError(t, err)

		for j, phase := range st.Phases {
			var sum float64
			for _, w := range phase {
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 1e-4, "cutoff %v phase %d", cutoff, j)
		}
	}
}

// TestDesignSincTable_FrequencyResponse verifies passband flatness and
// stopband rejection of a half-band design.
func TestDesignSincTable_FrequencyResponse(t *testing.T) {
	st, err := DesignSincTable(testParams(0.5))
	require.NoError(t, err)

	response := ComputeFrequencyResponse(st.Phases[testOversampling/2], 512)

	for i, f := range response.Frequencies {
		db := MagnitudeDB(response.Magnitude[i])
		switch {
		case f <= 0.2:
			assert.InDelta(t, 0.0, db, passbandRippleDB, "passband at f=%v", f)
		case f >= 0.3:
			assert.Less(t, db, stopbandFloorDB, "stopband at f=%v", f)
		}
	}
}

// TestLookup verifies phase selection and interpolation weight.
func TestLookup(t *testing.T) {
	st, err := DesignSincTable(testParams(0.95))
	require.NoError(t, err)

	lo, hi, w := st.Lookup(0)
	assert.Same(t, &st.Phases[0][0], &lo[0])
	assert.Same(t, &st.Phases[1][0], &hi[0])
	assert.Zero(t, w)

	lo, hi, w = st.Lookup(0.5 + 0.25/testOversampling)
	assert.Same(t, &st.Phases[testOversampling/2][0], &lo[0])
	assert.Same(t, &st.Phases[testOversampling/2+1][0], &hi[0])
	assert.InDelta(t, 0.25, w, 1e-9)

	lo, hi, w = st.Lookup(0.9999999)
	assert.Same(t, &st.Phases[testOversampling-1][0], &lo[0])
	assert.Same(t, &st.Phases[testOversampling][0], &hi[0])
	assert.LessOrEqual(t, w, 1.0)
}

// TestMagnitudeDB verifies decibel conversion and its floor.
func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), 1e-12)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), 1e-12)
	assert.InDelta(t, -200.0, MagnitudeDB(0), 1e-12)
}
