// Package irstore holds impulse responses and decodes the packaged room
// response embedded in the binary.
package irstore

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	// bytesPerSample is the size of one little-endian IEEE-754 float32 sample.
	bytesPerSample = 4

	// RoomSampleRate is the sample rate of the embedded room response.
	RoomSampleRate = 44100
)

// ErrDecode indicates a malformed impulse response resource.
var ErrDecode = errors.New("impulse response decode failed")

//go:embed data/room_44100.f32le
var roomData []byte

// ImpulseResponse is an immutable mono impulse response.
//
// The slice returned by Samples is shared; callers must not modify it.
type ImpulseResponse struct {
	samples    []float32
	sampleRate int
}

// NewImpulseResponse copies samples into a new ImpulseResponse.
func NewImpulseResponse(samples []float32, sampleRate int) (*ImpulseResponse, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrDecode)
	}

	owned := make([]float32, len(samples))
	copy(owned, samples)

	return validated(owned, sampleRate)
}

// Samples returns the response samples. The result is read-only.
func (ir *ImpulseResponse) Samples() []float32 {
	return ir.samples
}

// Len returns the number of samples.
func (ir *ImpulseResponse) Len() int {
	return len(ir.samples)
}

// SampleRate returns the sample rate in Hz.
func (ir *ImpulseResponse) SampleRate() int {
	return ir.sampleRate
}

// Duration returns the length of the response in time.
func (ir *ImpulseResponse) Duration() time.Duration {
	return time.Duration(float64(len(ir.samples)) / float64(ir.sampleRate) * float64(time.Second))
}

// Decode interprets data as consecutive 4-byte little-endian float32 samples.
func Decode(data []byte, sampleRate int) (*ImpulseResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty resource", ErrDecode)
	}
	if len(data)%bytesPerSample != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrDecode, len(data), bytesPerSample)
	}

	samples := make([]float32, len(data)/bytesPerSample)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(data[i*bytesPerSample:])
		samples[i] = math.Float32frombits(bits)
	}

	return validated(samples, sampleRate)
}

// validated checks samples and takes ownership of them.
func validated(samples []float32, sampleRate int) (*ImpulseResponse, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrDecode, sampleRate)
	}
	for i, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return nil, fmt.Errorf("%w: sample %d is not finite", ErrDecode, i)
		}
	}
	return &ImpulseResponse{samples: samples, sampleRate: sampleRate}, nil
}

// Encode is the inverse of Decode.
func Encode(ir *ImpulseResponse) []byte {
	out := make([]byte, len(ir.samples)*bytesPerSample)
	for i, s := range ir.samples {
		binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(s))
	}
	return out
}

var loadRoom = sync.OnceValues(func() (*ImpulseResponse, error) {
	return Decode(roomData, RoomSampleRate)
})

// Room returns the embedded room response, decoding it on first use.
// Concurrent first calls share a single decode.
func Room() (*ImpulseResponse, error) {
	return loadRoom()
}
