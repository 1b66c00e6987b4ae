// Package allpass implements delay-line-backed all-pass sections.
//
// An all-pass section has unit magnitude response at every frequency and a
// frequency-dependent phase shift, which makes it the standard diffusion
// building block in reverb networks. Two parameterizations are provided:
// Filter tunes a first-order section by corner frequency, while SP tunes a
// longer section by loop time and decay time (the Schroeder form).
//
// Both sections borrow a delay.Line for their sample history and never
// allocate; the caller owns the backing buffer for the life of the filter.
package allpass

import (
	"fmt"
	"math"

	"github.com/mtthw-meyer/embedded-dsp/dsp/delay"
)

// Filter is a first-order all-pass section parameterized by corner
// frequency. The delay line is typically very short, length 1 for the
// canonical one-sample-delay section.
type Filter struct {
	sampleRate float64
	line       *delay.Line
	k1         float64
}

// New constructs an all-pass section around line. The line is borrowed, not
// owned: the caller must keep its backing buffer alive and untouched for as
// long as the filter is in use.
func New(sampleRate float64, line *delay.Line) (*Filter, error) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("allpass: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if line == nil {
		return nil, fmt.Errorf("allpass: delay line must not be nil")
	}

	return &Filter{sampleRate: sampleRate, line: line}, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Coefficient returns the current feedback coefficient.
func (f *Filter) Coefficient() float64 { return f.k1 }

// SetFreq sets the corner frequency in Hz. Negative or non-finite values
// are clamped to 0, which yields k1=1 (full phase inversion at DC).
func (f *Filter) SetFreq(freqHz float64) {
	if freqHz < 0 || !isFinite(freqHz) {
		freqHz = 0
	}

	w := math.Pi * freqHz / f.sampleRate
	f.k1 = (1 - w) / (1 + w)
}

// ProcessSample processes one sample through the section.
func (f *Filter) ProcessSample(input float64) float64 {
	z1 := f.line.Read()
	out := f.k1*z1 + input
	f.line.Write(out)

	return z1 - f.k1*out
}

// ProcessInPlace processes a mono buffer in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// Reset clears the borrowed delay line.
func (f *Filter) Reset() {
	f.line.Reset()
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
