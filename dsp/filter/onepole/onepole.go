// Package onepole implements a single-coefficient exponential smoothing
// low-pass filter.
//
// The pole is placed by exponential decay, b1 = exp(-2*pi*fc/fs), giving a
// first-order 6 dB/octave roll-off at the cost of one multiply-add per
// sample. It is the cheapest recursive smoother available and is commonly
// embedded inside higher-order designs as a damping or parameter-smoothing
// stage.
package onepole

import (
	"fmt"
	"math"

	"github.com/mtthw-meyer/embedded-dsp/internal/fastmath"
)

// LowPass is a one-pole low-pass filter.
//
// The zero value is not usable; construct with New. A fresh filter passes
// input through unchanged until SetFreq is called (a0=1, b1=0).
type LowPass struct {
	sampleRate float64
	freqHz     float64

	a0 float64
	b1 float64
	z1 float64
}

// New constructs a one-pole low-pass for the given sample rate. The sample
// rate is fixed for the life of the filter.
func New(sampleRate float64) (*LowPass, error) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("onepole: sample rate must be > 0 and finite: %f", sampleRate)
	}

	return &LowPass{
		sampleRate: sampleRate,
		a0:         1,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (f *LowPass) SampleRate() float64 { return f.sampleRate }

// Freq returns the current cutoff frequency in Hz.
func (f *LowPass) Freq() float64 { return f.freqHz }

// SetFreq sets the cutoff frequency in Hz and recomputes coefficients.
// Negative or non-finite values are clamped to 0 (pure accumulator hold
// never occurs: b1 stays in (0, 1], so the filter is unconditionally
// stable).
func (f *LowPass) SetFreq(freqHz float64) {
	if freqHz < 0 || !isFinite(freqHz) {
		freqHz = 0
	}

	f.freqHz = freqHz
	f.b1 = fastmath.Exp(-2 * math.Pi * freqHz / f.sampleRate)
	f.a0 = 1 - f.b1
}

// ProcessSample processes one sample.
func (f *LowPass) ProcessSample(input float64) float64 {
	f.z1 = input*f.a0 + f.z1*f.b1
	return f.z1
}

// ProcessInPlace processes a mono buffer in place.
func (f *LowPass) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// Reset clears filter state. Coefficients are left untouched.
func (f *LowPass) Reset() {
	f.z1 = 0
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
