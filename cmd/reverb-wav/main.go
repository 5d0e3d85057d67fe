// Command reverb-wav applies a reverb effect to a WAV file.
//
// Usage:
//
//	reverb-wav input.wav output.wav                          # packaged room response
//	reverb-wav -ir hall.wav -tail 2 input.wav output.wav     # custom impulse response, keep 2s of tail
//	reverb-wav -effect delay -delay 0.3 -amplitude 0.5 in.wav out.wav
//	reverb-wav -mix 0.3 -gain 0.8 input.wav output.wav       # 30% wet
//
// Multi-channel input is downmixed to mono before processing.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	reverb "github.com/tphakala/go-audio-reverb"
	"github.com/tphakala/simd/cpu"
)

const (
	progressInterval = 10 // Log progress every N%
	percentScale     = 100

	// CLI defaults
	defaultDelay     = 0.25
	defaultAmplitude = 0.6
	minRequiredArgs  = 2

	// wavFormatPCM is the WAVE_FORMAT_PCM format tag.
	wavFormatPCM = 1
)

// Effect names accepted by -effect.
const (
	effectConvolution = "conv"
	effectDelay       = "delay"
)

// options holds parsed command line settings.
type options struct {
	effect    string
	irPath    string
	chunkSize int
	delay     float64
	amplitude float64
	mix       float64
	gain      float64
	tail      float64
}

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.effect, "effect", effectConvolution, "Effect: conv (convolution) or delay")
	flag.StringVar(&opts.irPath, "ir", "", "Impulse response WAV for conv (default: packaged room)")
	flag.IntVar(&opts.chunkSize, "chunk", reverb.DefaultChunkSize, "Block size in samples")
	flag.Float64Var(&opts.delay, "delay", defaultDelay, "Delay time in seconds (delay effect)")
	flag.Float64Var(&opts.amplitude, "amplitude", defaultAmplitude, "Feedback amplitude in [0, 1) (delay effect)")
	flag.Float64Var(&opts.mix, "mix", 1.0, "Wet/dry mix: 0 = dry only, 1 = wet only")
	flag.Float64Var(&opts.gain, "gain", 1.0, "Output gain")
	flag.Float64Var(&opts.tail, "tail", 0, "Seconds of silence appended to let the effect ring out")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s voice.wav voice_room.wav                    # Room reverb\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -ir hall.wav -tail 2 dry.wav wet.wav         # Custom impulse response\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -effect delay -delay 0.3 dry.wav echo.wav    # Allpass echo\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	if err := opts.validate(); err != nil {
		return err
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	outputPath := args[1]

	logrus.WithFields(logrus.Fields{
		"input":  inputPath,
		"output": outputPath,
		"effect": opts.effect,
		"chunk":  opts.chunkSize,
		"simd":   cpu.Info(),
	}).Debug("Starting")

	start := time.Now()
	stats, err := reverbWAV(inputPath, outputPath, &opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Processed %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %s, %d Hz, %d channel(s) -> mono, %d-bit\n",
		stats.description, stats.sampleRate, stats.channels, stats.bitDepth)
	fmt.Printf("  %d samples in -> %d samples out (peak %.3f)\n",
		stats.inputSamples, stats.outputSamples, stats.peak)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputSamples)/float64(stats.sampleRate)/elapsed.Seconds())
	if stats.peak > 1 {
		logrus.WithField("peak", stats.peak).Warn("Output clipped; lower -gain")
	}

	return nil
}

// validate checks option ranges that do not depend on the input file.
func (o *options) validate() error {
	o.effect = strings.ToLower(o.effect)
	switch o.effect {
	case effectConvolution, effectDelay:
	default:
		return fmt.Errorf("unknown effect %q (want %s or %s)", o.effect, effectConvolution, effectDelay)
	}
	if o.chunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", o.chunkSize)
	}
	if o.mix < 0 || o.mix > 1 {
		return fmt.Errorf("mix must be in [0, 1], got %v", o.mix)
	}
	if o.gain < 0 {
		return fmt.Errorf("gain must not be negative, got %v", o.gain)
	}
	if o.tail < 0 {
		return fmt.Errorf("tail must not be negative, got %v", o.tail)
	}
	return nil
}

type reverbStats struct {
	description   string
	sampleRate    int
	channels      int
	bitDepth      int
	inputSamples  int64
	outputSamples int64
	peak          float64
}

func reverbWAV(inputPath, outputPath string, opts *options) (stats *reverbStats, err error) {
	input, err := openWAVInput(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	effect, description, err := newEffect(opts, input.rate)
	if err != nil {
		return nil, err
	}

	output, err := createWAVOutput(outputPath, input.rate, input.bitDepth)
	if err != nil {
		return nil, err
	}
	// Close errors matter: the encoder patches the header on close.
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	stats = &reverbStats{
		description: description,
		sampleRate:  input.rate,
		channels:    input.channels,
		bitDepth:    input.bitDepth,
	}

	proc := newBlockProcessor(effect, opts.chunkSize, float32(opts.mix), float32(opts.gain), input.bitDepth, output)
	progress := newProgressTracker(input.totalSamples)

	readBuf := newReadBuffer(input, opts.chunkSize)
	mono := make([]float32, opts.chunkSize)
	for {
		frames, err := input.readFrames(readBuf, mono)
		if err != nil {
			return nil, err
		}
		if frames == 0 {
			break
		}

		stats.inputSamples += int64(frames)
		if err := proc.feed(mono[:frames]); err != nil {
			return nil, err
		}
		progress.reportIfNeeded(stats.inputSamples)
	}

	tailFrames := int(opts.tail * float64(input.rate))
	if err := proc.feedSilence(tailFrames); err != nil {
		return nil, err
	}
	if err := proc.flush(); err != nil {
		return nil, err
	}

	stats.outputSamples = proc.written
	stats.peak = proc.peak
	return stats, nil
}
