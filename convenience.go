package reverb

import (
	"fmt"

	"github.com/tphakala/go-audio-reverb/internal/irstore"
	"github.com/tphakala/go-audio-reverb/internal/resample"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050

	// RoomSampleRate is the sample rate of the packaged room impulse response.
	RoomSampleRate = irstore.RoomSampleRate
)

// NewImpulseResponse copies samples into a validated impulse response.
func NewImpulseResponse(samples []float32, sampleRate int) (*ImpulseResponse, error) {
	return irstore.NewImpulseResponse(samples, sampleRate)
}

// DecodeImpulseResponse parses consecutive little-endian float32 samples.
// Malformed data fails with ErrResourceDecode.
func DecodeImpulseResponse(data []byte, sampleRate int) (*ImpulseResponse, error) {
	return irstore.Decode(data, sampleRate)
}

// EncodeImpulseResponse serializes ir in the DecodeImpulseResponse layout.
func EncodeImpulseResponse(ir *ImpulseResponse) []byte {
	return irstore.Encode(ir)
}

// LoadRoomImpulseResponse returns the packaged room impulse response.
//
// The resource is decoded once per process; concurrent callers share that
// decode and receive the same read-only value. A decode error means the
// binary was built with a corrupt resource.
func LoadRoomImpulseResponse() (*ImpulseResponse, error) {
	return irstore.Room()
}

// MustLoadRoomImpulseResponse is like LoadRoomImpulseResponse but panics on
// failure. It is intended for program initialization.
func MustLoadRoomImpulseResponse() *ImpulseResponse {
	ir, err := LoadRoomImpulseResponse()
	if err != nil {
		panic(fmt.Sprintf("reverb: %v", err))
	}
	return ir
}

// ResampleImpulseResponse converts ir to sampleRate with the same
// interpolation the convolution engine uses at construction.
func ResampleImpulseResponse(ir *ImpulseResponse, sampleRate int) (*ImpulseResponse, error) {
	out, _, err := impulseAtRate(ir, sampleRate)
	return out, err
}

// ResampledLength returns the impulse response length a convolution engine
// would use for an n-sample response converted from fromRate to toRate.
func ResampledLength(n, fromRate, toRate int) int {
	return resample.OutputLength(n, fromRate, toRate)
}

// NewRoomReverb creates a convolution reverb over the packaged room
// impulse response.
func NewRoomReverb(sampleRate, chunkSize int) (*ConvolutionReverb, error) {
	ir, err := LoadRoomImpulseResponse()
	if err != nil {
		return nil, err
	}
	return NewConvolution(ir, &ConvolutionConfig{
		SampleRate: sampleRate,
		ChunkSize:  chunkSize,
	})
}

// ProcessSignal runs a whole buffer through p in blocks of chunkSize
// samples. The last block is zero-padded and the result is trimmed to
// len(signal).
func ProcessSignal(p Processor, signal []float32, chunkSize int) ([]float32, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, chunkSize)
	}

	out := make([]float32, 0, len(signal)+chunkSize)
	block := make([]float32, chunkSize)

	for start := 0; start < len(signal); start += chunkSize {
		n := copy(block, signal[start:])
		clear(block[n:])

		processed, err := p.Process(block)
		if err != nil {
			return nil, fmt.Errorf("block at sample %d: %w", start, err)
		}
		out = append(out, processed...)
	}

	return out[:len(signal)], nil
}
