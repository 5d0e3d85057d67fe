// Command ir-info describes an impulse response and the convolution engine
// that would be built from it.
//
// Usage:
//
//	ir-info                              # packaged room response at its native rate
//	ir-info -rate 48000 -chunk 512       # engine parameters for a 48 kHz stream
//	ir-info -ir hall.wav -kernel         # custom response, with resampling kernel analysis
package main

import (
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
	reverb "github.com/tphakala/go-audio-reverb"
	"github.com/tphakala/go-audio-reverb/internal/wavio"
	"github.com/tphakala/simd/cpu"
)

const (
	bytesPerKilobyte = 1024.0
	msPerSecond      = 1000.0
)

func main() {
	var (
		irPath  = flag.String("ir", "", "Impulse response WAV (default: packaged room)")
		rate    = flag.Int("rate", 0, "Stream sample rate in Hz (default: impulse response rate)")
		chunk   = flag.Int("chunk", reverb.DefaultChunkSize, "Block size in samples")
		kernel  = flag.Bool("kernel", false, "Analyze the resampling kernel when rates differ")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(*irPath, *rate, *chunk, *kernel); err != nil {
		logrus.Fatal(err)
	}
}

func run(irPath string, rate, chunk int, kernel bool) error {
	ir, source, err := loadIR(irPath)
	if err != nil {
		return err
	}
	if rate == 0 {
		rate = ir.SampleRate()
	}

	st := analyzeIR(ir.Samples(), ir.SampleRate())

	fmt.Printf("Impulse response: %s\n", source)
	fmt.Printf("  Samples: %d at %d Hz (%.3fs)\n", ir.Len(), ir.SampleRate(), ir.Duration().Seconds())
	fmt.Printf("  Peak: %.4f at sample %d (%.2f ms)\n",
		st.peak, st.peakIndex, float64(st.peakIndex)/float64(ir.SampleRate())*msPerSecond)
	fmt.Printf("  Energy: %.4f\n", st.energy)
	if st.rt60 > 0 {
		fmt.Printf("  RT60: %.3fs (fit over %.0f dB)\n", st.rt60, st.fitRange)
	} else {
		fmt.Printf("  RT60: not measurable\n")
	}

	c, err := reverb.NewConvolution(ir, &reverb.ConvolutionConfig{SampleRate: rate, ChunkSize: chunk})
	if err != nil {
		return err
	}
	info := reverb.GetInfo(c)

	fmt.Printf("\nConvolution engine:\n")
	fmt.Printf("  Stream rate: %d Hz, chunk: %d samples\n", info.SampleRate, info.ChunkSize)
	if rate != ir.SampleRate() {
		fmt.Printf("  Resampled IR: %d -> %d samples\n", ir.Len(), info.IRLen)
	}
	fmt.Printf("  FFT length: %d\n", info.FFTLen)
	fmt.Printf("  Latency: %d samples\n", info.Latency)
	fmt.Printf("  Memory usage: %.2f KB\n", float64(info.MemoryUsage)/bytesPerKilobyte)
	fmt.Printf("  SIMD: %s\n", cpu.Info())

	if kernel && rate != ir.SampleRate() {
		r, err := analyzeKernel(ir.SampleRate(), rate)
		if err != nil {
			return err
		}
		printKernelReport(ir.SampleRate(), rate, r)
	}

	return nil
}

// loadIR returns the impulse response at path, or the packaged room.
func loadIR(path string) (*reverb.ImpulseResponse, string, error) {
	if path == "" {
		ir, err := reverb.LoadRoomImpulseResponse()
		return ir, fmt.Sprintf("packaged room (%d Hz)", reverb.RoomSampleRate), err
	}

	ir, err := wavio.LoadImpulseResponse(path)
	return ir, path, err
}
