package reverb

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-reverb/internal/irstore"
	"github.com/tphakala/go-audio-reverb/internal/resample"
	"github.com/tphakala/go-audio-reverb/internal/spectral"
)

// Processor is a block-based mono audio effect.
type Processor interface {
	// Process consumes one block of samples and returns a block of the
	// same length.
	Process(chunk []float32) ([]float32, error)

	// Reset discards all signal history.
	Reset()
}

// ImpulseResponse is an immutable mono impulse response with its sample rate.
type ImpulseResponse = irstore.ImpulseResponse

// Transform is a fixed-length real discrete Fourier transform. Inverse is
// unnormalized: Inverse(Forward(x)) yields Len()·x.
type Transform = spectral.Transform

// TransformFactory creates a Transform of a given length.
type TransformFactory = spectral.Factory

// Common errors returned by the reverb engines.
var (
	// ErrResourceDecode indicates malformed impulse response bytes.
	ErrResourceDecode = irstore.ErrDecode

	// ErrResample indicates the impulse response could not be converted to
	// the stream sample rate.
	ErrResample = resample.ErrResample

	// ErrTransform indicates a spectral transform failed during construction
	// or processing.
	ErrTransform = spectral.ErrTransform

	// ErrBufferInit indicates the delay line could not be pre-populated.
	ErrBufferInit = errors.New("delay buffer initialization failed")

	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid reverb configuration")

	// ErrChunkSize indicates a block whose length differs from the
	// engine's fixed chunk size.
	ErrChunkSize = errors.New("chunk size mismatch")
)

// ConvolutionConfig holds convolution reverb configuration.
type ConvolutionConfig struct {
	// SampleRate is the sample rate of the input stream in Hz. The impulse
	// response is resampled to it when the rates differ.
	SampleRate int

	// ChunkSize is the fixed number of samples in every processed block.
	ChunkSize int

	// Transform creates the spectral transform. Nil selects the built-in
	// FFT, which supports any length.
	Transform TransformFactory
}

// Validate checks if the configuration is valid.
func (c *ConvolutionConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	return nil
}

// DelayConfig holds delay reverb configuration.
type DelayConfig struct {
	// SampleRate is the stream sample rate in Hz.
	SampleRate int

	// Delay is the echo delay in seconds.
	Delay float64

	// Amplitude is the feedback gain, in [0, 1).
	Amplitude float64
}

// Validate checks if the configuration is valid.
func (c *DelayConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if !isFinite(c.Delay) || c.Delay <= 0 {
		return fmt.Errorf("%w: delay must be a positive number of seconds, got %v", ErrInvalidConfig, c.Delay)
	}
	if c.Delay*float64(c.SampleRate) > maxDelaySamples {
		return fmt.Errorf("%w: delay %vs exceeds %d samples at %d Hz", ErrInvalidConfig, c.Delay, maxDelaySamples, c.SampleRate)
	}
	if c.delaySamples() < minDelaySamples {
		return fmt.Errorf("%w: delay %vs is shorter than one sample at %d Hz", ErrInvalidConfig, c.Delay, c.SampleRate)
	}
	if !isFinite(c.Amplitude) || c.Amplitude < 0 || c.Amplitude >= maxAmplitude {
		return fmt.Errorf("%w: amplitude must be in [0, %v), got %v", ErrInvalidConfig, maxAmplitude, c.Amplitude)
	}
	return nil
}

// Info describes a configured engine.
type Info struct {
	// Algorithm names the effect.
	Algorithm string

	// SampleRate is the stream sample rate in Hz.
	SampleRate int

	// ChunkSize is the fixed block length, or 0 when blocks may vary.
	ChunkSize int

	// FFTLen is the transform length of a convolution engine.
	FFTLen int

	// IRLen is the impulse response length at the stream rate.
	IRLen int

	// DelaySamples is the delay line length of a delay engine.
	DelaySamples int

	// Latency is the processing latency in samples.
	Latency int

	// MemoryUsage is the approximate working-buffer size in bytes.
	MemoryUsage int64
}

// infoProvider is implemented by engines that can describe themselves.
type infoProvider interface {
	GetInfo() Info
}

// GetInfo returns information about a processor.
func GetInfo(p Processor) Info {
	if provider, ok := p.(infoProvider); ok {
		return provider.GetInfo()
	}
	return Info{Algorithm: "unknown"}
}
