package reverb

// Engine limits.
const (
	// DefaultChunkSize is the block length used by the tools when none is given.
	DefaultChunkSize = 1024

	// maxFFTLen bounds chunkSize + irLen - 1 so that a bad configuration
	// fails at construction instead of exhausting memory.
	maxFFTLen = 1 << 26
)

// Delay reverb limits.
const (
	// minDelaySamples is the shortest delay line the engine accepts.
	minDelaySamples = 1

	// maxDelaySamples bounds the delay line length (about 5.8 minutes at
	// 192 kHz) so that a bad configuration fails at construction instead of
	// exhausting memory.
	maxDelaySamples = 1 << 26

	// delayCapacityFactor sizes the delay ring relative to the delay length.
	delayCapacityFactor = 2

	// maxAmplitude is the exclusive upper bound on the feedback amplitude.
	maxAmplitude = 1.0
)
