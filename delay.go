package reverb

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-audio-reverb/internal/ringbuf"
)

// DelayReverb is a single allpass feedback echo.
//
// For each sample, with d the sample written DelaySamples() earlier:
//
//	mixed = in + a·d
//	out   = -a·mixed + d
//
// and mixed is fed back into the delay line. The magnitude response is flat;
// only the echo structure changes. Blocks may have any length.
//
// A DelayReverb is not safe for concurrent use.
type DelayReverb struct {
	sampleRate   int
	delay        float64
	amplitude    float64
	delaySamples int

	line    *ringbuf.Ring
	delayed []float32 // scratch, grown on demand
	mixed   []float32
}

// NewDelay creates a delay reverb.
func NewDelay(cfg *DelayConfig) (*DelayReverb, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &DelayReverb{
		sampleRate:   cfg.SampleRate,
		delay:        cfg.Delay,
		amplitude:    cfg.Amplitude,
		delaySamples: cfg.delaySamples(),
	}
	d.line = ringbuf.New(delayCapacityFactor * d.delaySamples)

	if err := d.prime(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":      "NewDelay",
		"sample_rate":   d.sampleRate,
		"delay_seconds": d.delay,
		"delay_samples": d.delaySamples,
		"amplitude":     cfg.Amplitude,
	}).Debug("Delay reverb created")

	return d, nil
}

// delaySamples rounds the delay to whole samples.
func (c *DelayConfig) delaySamples() int {
	return int(math.Round(float64(c.SampleRate) * c.Delay))
}

// prime fills the initial delay tap with silence.
func (d *DelayReverb) prime() error {
	for i := range d.delaySamples {
		if err := d.line.TryPush(0); err != nil {
			return fmt.Errorf("%w: slot %d of %d: %w", ErrBufferInit, i, d.delaySamples, err)
		}
	}
	return nil
}

// Process applies the echo to chunk and returns a new block of the same length.
func (d *DelayReverb) Process(chunk []float32) ([]float32, error) {
	out := make([]float32, len(chunk))
	if err := d.ProcessTo(out, chunk); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessTo applies the echo to src, writing len(src) samples into dst.
// dst may alias src.
func (d *DelayReverb) ProcessTo(dst, src []float32) error {
	n := len(src)
	if len(dst) != n {
		return fmt.Errorf("%w: output has %d samples, want %d", ErrChunkSize, len(dst), n)
	}
	if n == 0 {
		return nil
	}

	if cap(d.delayed) < n {
		d.delayed = make([]float32, n)
		d.mixed = make([]float32, n)
	}
	delayed := d.delayed[:n]
	mixed := d.mixed[:n]

	// Samples the line cannot supply are silence.
	clear(delayed)
	d.line.Pop(delayed)

	a := float32(d.amplitude)
	for i, x := range src {
		mixed[i] = x + a*delayed[i]
	}

	// Whatever does not fit is dropped.
	d.line.Push(mixed)

	for i := range dst {
		dst[i] = -a*mixed[i] + delayed[i]
	}

	return nil
}

// Reset restores the silent initial delay line.
func (d *DelayReverb) Reset() {
	d.line.Clear()
	// Cannot fail: the line is empty and holds twice the delay.
	_ = d.prime()
}

// DelaySamples returns the delay line length in samples.
func (d *DelayReverb) DelaySamples() int {
	return d.delaySamples
}

// Amplitude returns the feedback gain.
func (d *DelayReverb) Amplitude() float64 {
	return d.amplitude
}

// SampleRate returns the stream sample rate.
func (d *DelayReverb) SampleRate() int {
	return d.sampleRate
}

// GetInfo returns information about the engine.
func (d *DelayReverb) GetInfo() Info {
	return Info{
		Algorithm:    "allpass delay",
		SampleRate:   d.sampleRate,
		DelaySamples: d.delaySamples,
		MemoryUsage:  int64(d.line.Cap()+2*cap(d.delayed)) * bytesPerFloat32,
	}
}
