package irstore

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func le(values ...float32) []byte {
	out := make([]byte, 0, len(values)*bytesPerSample)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func TestDecode(t *testing.T) {
	ir, err := Decode(le(1, -0.5, 0.25), 48000)
	require.NoError(t, err)

	assert.Equal(t, []float32{1, -0.5, 0.25}, ir.Samples())
	assert.Equal(t, 3, ir.Len())
	assert.Equal(t, 48000, ir.SampleRate())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		rate int
	}{
		{"empty", nil, 44100},
		{"truncated", []byte{0, 0, 128, 63, 0}, 44100},
		{"nan", le(float32(math.NaN())), 44100},
		{"inf", le(1, float32(math.Inf(-1))), 44100},
		{"zero_rate", le(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir, err := Decode(tt.data, tt.rate)
			require.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, ir)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	orig, err := NewImpulseResponse([]float32{0.1, 0.2, -0.3, 0}, 22050)
	require.NoError(t, err)

	data := Encode(orig)
	assert.Len(t, data, 16)

	back, err := Decode(data, 22050)
	require.NoError(t, err)
	assert.Equal(t, orig.Samples(), back.Samples())
}

func TestNewImpulseResponse_CopiesInput(t *testing.T) {
	src := []float32{1, 2}
	ir, err := NewImpulseResponse(src, 8000)
	require.NoError(t, err)

	src[0] = 99
	assert.Equal(t, float32(1), ir.Samples()[0])

	_, err = NewImpulseResponse(nil, 8000)
	require.ErrorIs(t, err, ErrDecode)
}

func TestImpulseResponse_Duration(t *testing.T) {
	ir, err := NewImpulseResponse(make([]float32, 22050), 44100)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, ir.Duration())
}

func TestRoom(t *testing.T) {
	ir, err := Room()
	require.NoError(t, err)

	assert.Equal(t, RoomSampleRate, ir.SampleRate())
	assert.Equal(t, 44100, ir.Len())
	assert.Zero(t, ir.Len()%22050, "room length should be a multiple of 22050")

	var peak float64
	for _, s := range ir.Samples() {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	assert.Greater(t, peak, 0.0)
	assert.LessOrEqual(t, peak, 1.0)
}

func TestRoom_ConcurrentFirstUseSharesDecode(t *testing.T) {
	const goroutines = 16

	results := make([]*ImpulseResponse, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Go(func() {
			ir, err := Room()
			if err == nil {
				results[i] = ir
			}
		})
	}
	wg.Wait()

	for i := range results {
		require.NotNil(t, results[i])
		assert.Same(t, results[0], results[i])
	}
}
