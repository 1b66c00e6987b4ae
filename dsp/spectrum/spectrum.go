// Package spectrum computes magnitude spectra of real sample blocks.
//
// It exists to verify the per-sample processors: impulse responses of
// all-pass sections should have flat magnitude, oscillator output should
// concentrate energy at the expected bin. The FFT comes from algo-fft and
// the complex-to-magnitude unpacking uses SIMD-optimized algo-vecmath
// kernels when available.
package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Analyzer computes magnitude spectra of fixed-size real blocks. It owns its
// scratch buffers, so repeated calls do not allocate.
type Analyzer struct {
	size int
	plan *algofft.Plan[complex128]

	in  []complex128
	out []complex128
	re  []float64
	im  []float64
}

// NewAnalyzer creates an analyzer for blocks of the given size. The size
// must be a power of two accepted by the FFT backend.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 2 {
		return nil, fmt.Errorf("spectrum: block size must be >= 2: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	bins := size/2 + 1

	return &Analyzer{
		size: size,
		plan: plan,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
		re:   make([]float64, bins),
		im:   make([]float64, bins),
	}, nil
}

// Size returns the block size.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of non-redundant spectrum bins, size/2 + 1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// BinFrequency returns the center frequency in Hz of the given bin at the
// given sample rate.
func (a *Analyzer) BinFrequency(bin int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(a.size)
}

// Magnitude writes |X[k]| for the non-redundant bins of block into dst and
// returns it. The block length must equal Size; dst must have room for
// Bins values (pass nil to allocate).
func (a *Analyzer) Magnitude(dst, block []float64) ([]float64, error) {
	if len(block) != a.size {
		return nil, fmt.Errorf("spectrum: block length must be %d: %d", a.size, len(block))
	}

	bins := a.Bins()
	if dst == nil {
		dst = make([]float64, bins)
	}
	if len(dst) < bins {
		return nil, fmt.Errorf("spectrum: dst must hold %d bins: %d", bins, len(dst))
	}

	for i, v := range block {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward FFT failed: %w", err)
	}

	for i := 0; i < bins; i++ {
		a.re[i] = real(a.out[i])
		a.im[i] = imag(a.out[i])
	}

	vecmath.Magnitude(dst[:bins], a.re, a.im)

	return dst[:bins], nil
}

// PeakBin returns the bin index with the largest magnitude, ignoring the DC
// bin.
func PeakBin(magnitudes []float64) int {
	best := 1
	bestMag := math.Inf(-1)
	for i := 1; i < len(magnitudes); i++ {
		if magnitudes[i] > bestMag {
			best = i
			bestMag = magnitudes[i]
		}
	}

	return best
}
