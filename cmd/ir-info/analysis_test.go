package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exponentialDecay returns an impulse response whose energy falls 60 dB
// every rt60 seconds.
func exponentialDecay(rt60 float64, sampleRate int, seconds float64) []float32 {
	n := int(seconds * float64(sampleRate))
	rate := math.Log(1000) / (rt60 * float64(sampleRate))
	h := make([]float32, n)
	for i := range h {
		h[i] = float32(math.Exp(-rate * float64(i)))
	}
	return h
}

func TestAnalyzeIR_RT60(t *testing.T) {
	for _, rt60 := range []float64{0.3, 0.7, 1.2} {
		h := exponentialDecay(rt60, 8000, 3*rt60)

		st := analyzeIR(h, 8000)
		assert.InDelta(t, rt60, st.rt60, rt60*0.02, "rt60 %v", rt60)
		assert.InDelta(t, 30.0, st.fitRange, 0)
		assert.InDelta(t, 1.0, st.peak, 1e-6)
		assert.Zero(t, st.peakIndex)
	}
}

func TestEstimateRT60_FallsBackToT20(t *testing.T) {
	// A straight -10 dB/s decay that stops at -30 dB: T30 is out of reach.
	edc := make([]float64, 301)
	for i := range edc {
		edc[i] = -0.1 * float64(i)
	}

	rt60, span, err := estimateRT60(edc, 100)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, span, 0)
	assert.InDelta(t, 6.0, rt60, 1e-9)

	_, _, err = estimateRT60(edc[:200], 100)
	require.ErrorIs(t, err, errNoDecay)
}

func TestAnalyzeIR_NoDecay(t *testing.T) {
	st := analyzeIR(make([]float32, 100), 8000)
	assert.Zero(t, st.rt60)
	assert.Zero(t, st.energy)

	flat := []float32{1, 1, 1, 1}
	st = analyzeIR(flat, 8000)
	assert.InDelta(t, 4.0, st.energy, 1e-12)
	assert.Zero(t, st.rt60)
}

func TestEnergyDecayCurve(t *testing.T) {
	edc := energyDecayCurve([]float64{1, 1})
	require.Len(t, edc, 2)
	assert.InDelta(t, 0, edc[0], 1e-12)
	assert.InDelta(t, 10*math.Log10(0.5), edc[1], 1e-12)

	assert.Nil(t, energyDecayCurve([]float64{0, 0}))
	assert.Nil(t, energyDecayCurve(nil))
}

func TestAnalyzeKernel(t *testing.T) {
	r, err := analyzeKernel(44100, 48000)
	require.NoError(t, err)

	assert.Equal(t, 256, r.taps)
	assert.Equal(t, 257, r.phases)
	assert.InDelta(t, 0.95, r.cutoff, 1e-12)
	assert.InDelta(t, 1.0, r.dcGainMin, 1e-3)
	assert.InDelta(t, 1.0, r.dcGainMax, 1e-3)
	assert.Less(t, r.rippleDB, 0.01)
	assert.Less(t, r.stopbandDB, -90.0)
}

func TestRun_PackagedRoom(t *testing.T) {
	require.NoError(t, run("", 0, 1024, false))
	require.NoError(t, run("", 48000, 1024, true))
}

func TestRun_WAVImpulseResponse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ir.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, 2205)
	for i := range data {
		data[i] = int(32767 * math.Exp(-float64(i)/200))
	}
	enc := wav.NewEncoder(f, 22050, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 1, SampleRate: 22050},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	require.NoError(t, run(path, 0, 256, false))
	require.Error(t, run(filepath.Join(t.TempDir(), "missing.wav"), 0, 256, false))
}
