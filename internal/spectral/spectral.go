// Package spectral provides the real-to-complex transform used by the
// convolution engine.
//
// Transforms are unnormalized in the inverse direction: Inverse(Forward(x))
// returns Len()·x. Callers scale once per block.
package spectral

import (
	"errors"
	"fmt"

	"github.com/tphakala/simd/c128"
	"gonum.org/v1/gonum/dsp/fourier"
)

// hermitianDivisor gives the number of unique bins of a real transform of
// length n as n/hermitianDivisor + 1.
const hermitianDivisor = 2

// ErrTransform indicates a transform could not be created or evaluated.
var ErrTransform = errors.New("spectral transform failed")

// Transform is a fixed-length real discrete Fourier transform.
type Transform interface {
	// Len returns the time-domain length.
	Len() int

	// Forward writes the Len()/2+1 non-negative frequency bins of src into dst.
	Forward(dst []complex128, src []float64) error

	// Inverse writes the unnormalized time-domain sequence of src into dst.
	Inverse(dst []float64, src []complex128) error
}

// Factory creates a Transform of length n.
type Factory func(n int) (Transform, error)

// Bins returns the number of frequency bins of a real transform of length n.
func Bins(n int) int {
	return n/hermitianDivisor + 1
}

// Fourier is a Transform backed by gonum's mixed-radix FFT.
// Any positive length is supported.
type Fourier struct {
	fft *fourier.FFT
	n   int
}

// NewFourier creates a transform of length n.
func NewFourier(n int) (Transform, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: length must be positive, got %d", ErrTransform, n)
	}
	return &Fourier{fft: fourier.NewFFT(n), n: n}, nil
}

// Len implements Transform.
func (f *Fourier) Len() int {
	return f.n
}

// Forward implements Transform.
func (f *Fourier) Forward(dst []complex128, src []float64) error {
	if len(src) != f.n {
		return fmt.Errorf("%w: forward input length %d, want %d", ErrTransform, len(src), f.n)
	}
	if len(dst) != Bins(f.n) {
		return fmt.Errorf("%w: forward output length %d, want %d", ErrTransform, len(dst), Bins(f.n))
	}
	f.fft.Coefficients(dst, src)
	return nil
}

// Inverse implements Transform.
func (f *Fourier) Inverse(dst []float64, src []complex128) error {
	if len(src) != Bins(f.n) {
		return fmt.Errorf("%w: inverse input length %d, want %d", ErrTransform, len(src), Bins(f.n))
	}
	if len(dst) != f.n {
		return fmt.Errorf("%w: inverse output length %d, want %d", ErrTransform, len(dst), f.n)
	}
	f.fft.Sequence(dst, src)
	return nil
}

// Mul computes the element-wise complex product dst[i] = a[i]·b[i].
func Mul(dst, a, b []complex128) error {
	if len(a) != len(b) || len(dst) < len(a) {
		return fmt.Errorf("%w: spectrum lengths %d, %d into %d", ErrTransform, len(a), len(b), len(dst))
	}
	c128.Mul(dst[:len(a)], a, b)
	return nil
}
