// Package wavio loads impulse responses from WAV files and converts integer
// PCM to normalized float samples. Both command-line tools share it so a
// given file decodes to the same levels everywhere.
package wavio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
	reverb "github.com/tphakala/go-audio-reverb"
)

// Supported integer PCM depths.
const (
	minBitDepth = 8
	maxBitDepth = 32

	// defaultFullScale is used when the bit depth is unknown.
	defaultFullScale = 32767.0
)

// FullScale returns the largest positive sample value of signed PCM at
// bitDepth, 2^(bitDepth-1) - 1. Unsupported depths fall back to 16-bit.
func FullScale(bitDepth int) float64 {
	if bitDepth < minBitDepth || bitDepth > maxBitDepth {
		return defaultFullScale
	}
	return float64(int64(1)<<(bitDepth-1) - 1)
}

// Downmix averages interleaved int frames into normalized mono samples and
// returns the number of frames written.
func Downmix(dst []float32, data []int, channels int, invMaxVal float64) int {
	frames := min(len(data)/channels, len(dst))

	if channels == 1 {
		for i := range frames {
			dst[i] = float32(float64(data[i]) * invMaxVal)
		}
		return frames
	}

	scale := invMaxVal / float64(channels)
	for i := range frames {
		var sum int
		for _, v := range data[i*channels : (i+1)*channels] {
			sum += v
		}
		dst[i] = float32(float64(sum) * scale)
	}
	return frames
}

// LoadImpulseResponse reads a WAV impulse response, downmixed to mono.
func LoadImpulseResponse(path string) (*reverb.ImpulseResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open impulse response: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth < minBitDepth || bitDepth > maxBitDepth {
		return nil, fmt.Errorf("unsupported bit depth %d in %s", bitDepth, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read impulse response: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid WAV buffer: %s", path)
	}

	channels := buf.Format.NumChannels
	mono := make([]float32, len(buf.Data)/channels)
	Downmix(mono, buf.Data, channels, 1.0/FullScale(bitDepth))

	ir, err := reverb.NewImpulseResponse(mono, buf.Format.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("impulse response %s: %w", path, err)
	}
	return ir, nil
}
