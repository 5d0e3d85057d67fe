package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	reverb "github.com/tphakala/go-audio-reverb"
	"github.com/tphakala/go-audio-reverb/internal/wavio"
	"github.com/tphakala/simd/f32"
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file         *os.File
	decoder      *wav.Decoder
	rate         int
	channels     int
	bitDepth     int
	totalSamples int64
	format       *audio.Format
	invMaxVal    float64
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format.NumChannels < 1 || format.SampleRate <= 0 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported WAV format in %s: %d channels at %d Hz", path, format.NumChannels, format.SampleRate)
	}

	logrus.WithFields(logrus.Fields{
		"sample_rate": format.SampleRate,
		"channels":    format.NumChannels,
		"bit_depth":   bitDepth,
	}).Debug("Input format")

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:         inputFile,
		decoder:      decoder,
		rate:         format.SampleRate,
		channels:     format.NumChannels,
		bitDepth:     bitDepth,
		totalSamples: int64(duration.Seconds() * float64(format.SampleRate)),
		format:       format,
		invMaxVal:    1.0 / wavio.FullScale(bitDepth),
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// newReadBuffer allocates an interleaved buffer holding frames frames.
func newReadBuffer(w *wavInputInfo, frames int) *audio.IntBuffer {
	return &audio.IntBuffer{
		Data:   make([]int, frames*w.channels),
		Format: w.format,
	}
}

// readFrames decodes up to len(mono) frames and downmixes them into mono.
// It returns 0 at end of input.
func (w *wavInputInfo) readFrames(buf *audio.IntBuffer, mono []float32) (int, error) {
	buf.Data = buf.Data[:min(cap(buf.Data), len(mono)*w.channels)]

	n, err := w.decoder.PCMBuffer(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	frames := n / w.channels
	return wavio.Downmix(mono, buf.Data[:frames*w.channels], w.channels, w.invMaxVal), nil
}

// newEffect builds the processor selected by opts for a stream at sampleRate.
func newEffect(opts *options, sampleRate int) (reverb.Processor, string, error) {
	switch opts.effect {
	case effectDelay:
		d, err := reverb.NewDelay(&reverb.DelayConfig{
			SampleRate: sampleRate,
			Delay:      opts.delay,
			Amplitude:  opts.amplitude,
		})
		if err != nil {
			return nil, "", err
		}
		return d, fmt.Sprintf("delay (%d samples, amplitude %.2f)", d.DelaySamples(), d.Amplitude()), nil

	case effectConvolution:
		var ir *reverb.ImpulseResponse
		var err error
		if opts.irPath != "" {
			ir, err = wavio.LoadImpulseResponse(opts.irPath)
		} else {
			ir, err = reverb.LoadRoomImpulseResponse()
		}
		if err != nil {
			return nil, "", err
		}

		c, err := reverb.NewConvolution(ir, &reverb.ConvolutionConfig{
			SampleRate: sampleRate,
			ChunkSize:  opts.chunkSize,
		})
		if err != nil {
			return nil, "", err
		}

		info := reverb.GetInfo(c)
		logrus.WithFields(logrus.Fields{
			"ir_rate":      ir.SampleRate(),
			"ir_len":       info.IRLen,
			"fft_len":      info.FFTLen,
			"memory_bytes": info.MemoryUsage,
		}).Debug("Convolution engine ready")

		return c, fmt.Sprintf("convolution (%d-sample IR, FFT %d)", info.IRLen, info.FFTLen), nil

	default:
		return nil, "", fmt.Errorf("unknown effect %q", opts.effect)
	}
}

// sampleWriter accepts quantized mono samples.
type sampleWriter interface {
	WriteSamples(samples []int) error
}

// wavOutputWriter wraps the output file and encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// createWAVOutput creates a mono PCM WAV file.
func createWAVOutput(path string, sampleRate, bitDepth int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, 1, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteSamples writes samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	w.buf.Data = samples
	if err := w.encoder.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}

// blockProcessor regroups an arbitrary stream of samples into fixed-size
// blocks, applies the effect, mixes and writes the result.
type blockProcessor struct {
	effect reverb.Processor
	out    sampleWriter

	block   []float32 // pending dry input
	fill    int
	scratch []float32
	ints    []int

	mix, gain float32
	maxVal    float64

	written int64
	peak    float64
}

func newBlockProcessor(effect reverb.Processor, chunkSize int, mix, gain float32, bitDepth int, out sampleWriter) *blockProcessor {
	return &blockProcessor{
		effect:  effect,
		out:     out,
		block:   make([]float32, chunkSize),
		scratch: make([]float32, chunkSize),
		ints:    make([]int, chunkSize),
		mix:     mix,
		gain:    gain,
		maxVal:  wavio.FullScale(bitDepth),
	}
}

// feed queues samples, processing every completed block.
func (p *blockProcessor) feed(samples []float32) error {
	for len(samples) > 0 {
		n := copy(p.block[p.fill:], samples)
		p.fill += n
		samples = samples[n:]

		if p.fill == len(p.block) {
			if err := p.processBlock(); err != nil {
				return err
			}
		}
	}
	return nil
}

// feedSilence queues n zero samples.
func (p *blockProcessor) feedSilence(n int) error {
	for n > 0 {
		k := min(n, len(p.block)-p.fill)
		clear(p.block[p.fill : p.fill+k])
		p.fill += k
		n -= k

		if p.fill == len(p.block) {
			if err := p.processBlock(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flush zero-pads and processes a partial block, writing only the real samples.
func (p *blockProcessor) flush() error {
	if p.fill == 0 {
		return nil
	}
	clear(p.block[p.fill:])
	return p.processBlock()
}

func (p *blockProcessor) processBlock() error {
	valid := p.fill
	p.fill = 0

	wet, err := p.effect.Process(p.block)
	if err != nil {
		return fmt.Errorf("effect failed at sample %d: %w", p.written, err)
	}

	mixInto(wet, p.block, p.scratch, p.mix, p.gain)
	for _, v := range wet[:valid] {
		p.peak = max(p.peak, math.Abs(float64(v)))
	}

	quantizeInto(p.ints, wet[:valid], p.maxVal)
	if err := p.out.WriteSamples(p.ints[:valid]); err != nil {
		return err
	}
	p.written += int64(valid)
	return nil
}

// mixInto computes wet = gain·(mix·wet + (1-mix)·dry). scratch must be at
// least len(wet) long.
func mixInto(wet, dry, scratch []float32, mix, gain float32) {
	f32.Scale(wet, wet, mix*gain)
	if mix >= 1 {
		return
	}

	s := scratch[:len(wet)]
	f32.Scale(s, dry[:len(wet)], (1-mix)*gain)
	for i := range wet {
		wet[i] += s[i]
	}
}

// quantizeInto clamps samples to [-1, 1] and scales them to integers.
func quantizeInto(dst []int, src []float32, maxVal float64) {
	for i, v := range src {
		sample := float64(v)
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		dst[i] = int(sample * maxVal)
	}
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalSamples int64
	lastProgress int
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalSamples int64) *progressTracker {
	return &progressTracker{totalSamples: totalSamples}
}

// reportIfNeeded logs progress when another interval has been crossed.
// It returns true when a report was emitted.
func (p *progressTracker) reportIfNeeded(currentSamples int64) bool {
	if p.totalSamples == 0 || !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return false
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress < p.lastProgress+progressInterval {
		return false
	}

	logrus.WithField("percent", progress).Debug("Progress")
	p.lastProgress = progress
	return true
}
