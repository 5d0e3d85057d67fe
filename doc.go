// Package reverb provides block-based reverberation effects for mono float32
// audio streams in pure Go.
//
// # Features
//
//   - Convolution reverb with overlap-save FFT block convolution
//   - Automatic one-shot resampling of the impulse response to the stream rate
//   - Allpass delay reverb with a single feedback tap
//   - A packaged room impulse response, decoded once on first use
//   - Optional SIMD acceleration via github.com/tphakala/simd
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
// Convolving a stream with the packaged room response:
//
//	rev, err := reverb.NewRoomReverb(48000, 1024)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range audioChunks { // every chunk has 1024 samples
//	    wet, err := rev.Process(chunk)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    writeOutput(wet)
//	}
//
// Using your own impulse response:
//
//	ir, err := reverb.NewImpulseResponse(samples, 44100)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rev, err := reverb.NewConvolution(ir, &reverb.ConvolutionConfig{
//	    SampleRate: 48000,
//	    ChunkSize:  512,
//	})
//
// A delay reverb:
//
//	echo, err := reverb.NewDelay(&reverb.DelayConfig{
//	    SampleRate: 48000,
//	    Delay:      0.25,
//	    Amplitude:  0.6,
//	})
//
// # Convolution
//
// [ConvolutionReverb] keeps the most recent chunkSize + irLen - 1 input
// samples in a ring buffer. For every block it transforms that window,
// multiplies it by the cached impulse response spectrum, transforms back and
// keeps the trailing chunkSize samples, which are free of circular
// wrap-around. The output has no latency. The transform backend can be
// replaced through [ConvolutionConfig.Transform].
//
// Chunk sizes are fixed per engine; a block of any other length fails with
// [ErrChunkSize]. Use [ProcessSignal] to run a whole buffer through an engine.
//
// # Delay
//
// [DelayReverb] mixes the input with the delayed line, feeds the mix back
// and outputs -a·mixed + delayed. Amplitudes are restricted to [0, 1) so the
// feedback loop is stable.
//
// # Errors
//
// Construction and processing return wrapped sentinel errors that can be
// tested with errors.Is: [ErrResourceDecode], [ErrResample], [ErrTransform],
// [ErrBufferInit], [ErrInvalidConfig] and [ErrChunkSize].
//
// # Thread Safety
//
// Engine instances are not safe for concurrent use; calls to Process on the
// same instance must be serialized. Separate instances are independent and
// may share one [ImpulseResponse].
package reverb
