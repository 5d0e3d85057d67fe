package reverb

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-audio-reverb/internal/irstore"
	"github.com/tphakala/go-audio-reverb/internal/resample"
	"github.com/tphakala/go-audio-reverb/internal/ringbuf"
	"github.com/tphakala/go-audio-reverb/internal/spectral"
	"github.com/tphakala/simd/f64"
)

const (
	bytesPerFloat32    = 4
	bytesPerFloat64    = 8
	bytesPerComplex128 = 16
)

// ConvolutionReverb convolves a mono stream with an impulse response using
// overlap-save FFT block convolution.
//
// Every block must have the chunk size fixed at construction. The transform
// length is chunkSize + irLen - 1, so each block needs exactly one forward
// and one inverse transform and no partitioning. The spectrum of the impulse
// response is computed once and reused for the lifetime of the engine.
//
// Output is sample-aligned with the input: block k of the output holds the
// linear convolution values for block k of the input.
//
// A ConvolutionReverb is not safe for concurrent use.
type ConvolutionReverb struct {
	ir         *ImpulseResponse // at the stream rate
	sampleRate int
	chunkSize  int
	fftLen     int
	scale      float64 // 1/fftLen; the inverse transform is unnormalized
	resampled  bool

	transform  Transform
	irSpectrum []complex128

	// history always holds the most recent fftLen input samples.
	history *ringbuf.Ring

	// Working buffers, allocated once.
	window   []float32
	timeBuf  []float64
	spectrum []complex128
	product  []complex128
}

// NewConvolution creates a convolution reverb for ir.
//
// If the impulse response rate differs from cfg.SampleRate it is resampled
// once here. Failures wrap ErrInvalidConfig, ErrResample or ErrTransform.
func NewConvolution(ir *ImpulseResponse, cfg *ConvolutionConfig) (*ConvolutionReverb, error) {
	if ir == nil {
		return nil, fmt.Errorf("%w: impulse response is nil", ErrInvalidConfig)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	streamIR, resampled, err := impulseAtRate(ir, cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	fftLen := cfg.ChunkSize + streamIR.Len() - 1
	if fftLen > maxFFTLen {
		return nil, fmt.Errorf("%w: transform length %d exceeds %d", ErrInvalidConfig, fftLen, maxFFTLen)
	}

	factory := cfg.Transform
	if factory == nil {
		factory = spectral.NewFourier
	}
	transform, err := factory(fftLen)
	if err != nil {
		return nil, fmt.Errorf("%w: creating length %d transform: %w", ErrTransform, fftLen, err)
	}
	if transform.Len() != fftLen {
		return nil, fmt.Errorf("%w: factory returned length %d, want %d", ErrTransform, transform.Len(), fftLen)
	}

	bins := spectral.Bins(fftLen)
	c := &ConvolutionReverb{
		ir:         streamIR,
		sampleRate: cfg.SampleRate,
		chunkSize:  cfg.ChunkSize,
		fftLen:     fftLen,
		scale:      1.0 / float64(fftLen),
		resampled:  resampled,
		transform:  transform,
		irSpectrum: make([]complex128, bins),
		history:    ringbuf.New(fftLen),
		window:     make([]float32, fftLen),
		timeBuf:    make([]float64, fftLen),
		spectrum:   make([]complex128, bins),
		product:    make([]complex128, bins),
	}

	// Zero-padded impulse response spectrum.
	for i, s := range streamIR.Samples() {
		c.timeBuf[i] = float64(s)
	}
	if err := transform.Forward(c.irSpectrum, c.timeBuf); err != nil {
		return nil, fmt.Errorf("%w: impulse response spectrum: %w", ErrTransform, err)
	}

	c.history.Fill(0)

	logrus.WithFields(logrus.Fields{
		"function":    "NewConvolution",
		"sample_rate": c.sampleRate,
		"chunk_size":  c.chunkSize,
		"ir_len":      streamIR.Len(),
		"fft_len":     fftLen,
		"resampled":   resampled,
	}).Debug("Convolution reverb created")

	return c, nil
}

// impulseAtRate returns ir converted to sampleRate.
func impulseAtRate(ir *ImpulseResponse, sampleRate int) (*ImpulseResponse, bool, error) {
	if ir.SampleRate() == sampleRate {
		return ir, false, nil
	}

	samples, err := resample.Resample(ir.Samples(), ir.SampleRate(), sampleRate)
	if err != nil {
		return nil, false, fmt.Errorf("impulse response %d Hz -> %d Hz: %w", ir.SampleRate(), sampleRate, err)
	}

	out, err := irstore.NewImpulseResponse(samples, sampleRate)
	if err != nil {
		return nil, false, fmt.Errorf("%w: resampled impulse response: %w", ErrResample, err)
	}
	return out, true, nil
}

// Process convolves one block and returns a new block of the same length.
func (c *ConvolutionReverb) Process(chunk []float32) ([]float32, error) {
	out := make([]float32, len(chunk))
	if err := c.ProcessTo(out, chunk); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessTo convolves src into dst without allocating.
// Both must have exactly ChunkSize samples; dst may alias src.
func (c *ConvolutionReverb) ProcessTo(dst, src []float32) error {
	if len(src) != c.chunkSize {
		return fmt.Errorf("%w: got %d samples, want %d", ErrChunkSize, len(src), c.chunkSize)
	}
	if len(dst) != c.chunkSize {
		return fmt.Errorf("%w: output has %d samples, want %d", ErrChunkSize, len(dst), c.chunkSize)
	}

	c.history.PushOverwrite(src)
	c.history.Peek(c.window)
	for i, s := range c.window {
		c.timeBuf[i] = float64(s)
	}

	if err := c.transform.Forward(c.spectrum, c.timeBuf); err != nil {
		return fmt.Errorf("%w: forward: %w", ErrTransform, err)
	}
	if err := spectral.Mul(c.product, c.spectrum, c.irSpectrum); err != nil {
		return err
	}
	if err := c.transform.Inverse(c.timeBuf, c.product); err != nil {
		return fmt.Errorf("%w: inverse: %w", ErrTransform, err)
	}

	// Only the trailing chunk is free of circular wrap-around.
	valid := c.timeBuf[c.fftLen-c.chunkSize:]
	f64.Scale(valid, valid, c.scale)
	for i, v := range valid {
		dst[i] = float32(v)
	}

	return nil
}

// Reset clears the input history. The impulse response spectrum is kept.
func (c *ConvolutionReverb) Reset() {
	c.history.Clear()
	c.history.Fill(0)
}

// ChunkSize returns the fixed block length.
func (c *ConvolutionReverb) ChunkSize() int {
	return c.chunkSize
}

// FFTLen returns the transform length, ChunkSize() + IRLen() - 1.
func (c *ConvolutionReverb) FFTLen() int {
	return c.fftLen
}

// IRLen returns the impulse response length at the stream rate.
func (c *ConvolutionReverb) IRLen() int {
	return c.ir.Len()
}

// ImpulseResponse returns the impulse response at the stream rate.
func (c *ConvolutionReverb) ImpulseResponse() *ImpulseResponse {
	return c.ir
}

// SampleRate returns the stream sample rate.
func (c *ConvolutionReverb) SampleRate() int {
	return c.sampleRate
}

// Latency returns the processing latency in samples, which is always zero.
func (c *ConvolutionReverb) Latency() int {
	return 0
}

// GetInfo returns information about the engine.
func (c *ConvolutionReverb) GetInfo() Info {
	bins := int64(spectral.Bins(c.fftLen))
	n := int64(c.fftLen)
	return Info{
		Algorithm:    "overlap-save convolution",
		SampleRate:   c.sampleRate,
		ChunkSize:    c.chunkSize,
		FFTLen:       c.fftLen,
		IRLen:        c.ir.Len(),
		DelaySamples: 0,
		Latency:      0,
		MemoryUsage:  2*n*bytesPerFloat32 + n*bytesPerFloat64 + 3*bins*bytesPerComplex128,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
