package wavio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wavFormatPCM = 1

func writeTestWAV(t *testing.T, path string, data []int, rate, bitDepth, channels int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, bitDepth, channels, wavFormatPCM)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestFullScale(t *testing.T) {
	tests := []struct {
		bitDepth int
		want     float64
	}{
		{8, 127},
		{16, 32767},
		{24, 8388607},
		{32, 2147483647},
		{0, 32767},
		{4, 32767},
		{64, 32767},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, FullScale(tt.bitDepth), 0, "bit depth %d", tt.bitDepth)
	}
}

func TestDownmix(t *testing.T) {
	dst := make([]float32, 4)

	n := Downmix(dst, []int{2, 4, 6}, 1, 0.5)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float32{1, 2, 3, 0}, dst)

	n = Downmix(dst, []int{3, 1, 3, 3, 3, 0}, 3, 1)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 7.0/3, dst[0], 1e-6)
	assert.InDelta(t, 2.0, dst[1], 1e-6)

	n = Downmix(make([]float32, 1), []int{1, 1, 1, 1}, 2, 1)
	assert.Equal(t, 1, n, "limited by destination length")
}

func TestLoadImpulseResponse(t *testing.T) {
	t.Run("stereo_16bit", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ir.wav")
		writeTestWAV(t, path, []int{32767, 32767, 0, -32767}, 48000, 16, 2)

		ir, err := LoadImpulseResponse(path)
		require.NoError(t, err)
		assert.Equal(t, 48000, ir.SampleRate())
		assert.InDeltaSlice(t, []float32{1, -0.5}, ir.Samples(), 1e-6)
	})

	t.Run("mono_24bit", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ir.wav")
		writeTestWAV(t, path, []int{8388607, -4194304, 0}, 22050, 24, 1)

		ir, err := LoadImpulseResponse(path)
		require.NoError(t, err)
		assert.Equal(t, 22050, ir.SampleRate())
		assert.InDeltaSlice(t, []float32{1, -0.5, 0}, ir.Samples(), 1e-6)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadImpulseResponse(filepath.Join(t.TempDir(), "missing.wav"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open impulse response")
	})

	t.Run("not_wav", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.wav")
		require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

		_, err := LoadImpulseResponse(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid WAV file")
	})
}
