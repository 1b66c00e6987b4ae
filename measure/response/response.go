// Package response measures steady-state magnitude response of per-sample
// processors.
//
// A processor is driven with a unit sine, the transient is discarded, and
// the output energy at the probe frequency is extracted with a Goertzel
// recursion. Comparing against the same analysis of the raw probe yields
// the gain at that frequency without a full FFT.
package response

import (
	"fmt"
	"math"

	"github.com/mtthw-meyer/embedded-dsp/dsp/chain"
	"github.com/mtthw-meyer/embedded-dsp/dsp/core"
)

// goertzel accumulates the single-bin DFT term at one frequency.
type goertzel struct {
	coeff  float64
	s0, s1 float64
}

func newGoertzel(freqHz, sampleRate float64) goertzel {
	return goertzel{coeff: 2 * math.Cos(2*math.Pi*freqHz/sampleRate)}
}

func (g *goertzel) process(input float64) {
	s := input + g.coeff*g.s0 - g.s1
	g.s1 = g.s0
	g.s0 = s
}

func (g *goertzel) magnitude() float64 {
	p := g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// Magnitude returns the steady-state gain of p at freqHz: output magnitude
// over input magnitude for a unit sine probe. warmup samples are processed
// and discarded before n samples are analyzed.
//
// n should cover an integer number of probe periods to keep spectral
// leakage out of the estimate; round(n*freqHz/sampleRate) periods are close
// enough for the tolerances used here.
func Magnitude(p chain.SampleProcessor, freqHz, sampleRate float64, warmup, n int) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("response: processor must not be nil")
	}

	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 0, fmt.Errorf("response: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if freqHz <= 0 || freqHz >= sampleRate/2 {
		return 0, fmt.Errorf("response: frequency must be in (0, sampleRate/2): %f", freqHz)
	}

	if warmup < 0 || n <= 0 {
		return 0, fmt.Errorf("response: warmup must be >= 0 and n > 0: %d, %d", warmup, n)
	}

	step := 2 * math.Pi * freqHz / sampleRate
	phase := 0.0

	for i := 0; i < warmup; i++ {
		p.ProcessSample(math.Sin(phase))
		phase += step
	}

	out := newGoertzel(freqHz, sampleRate)
	ref := newGoertzel(freqHz, sampleRate)

	for i := 0; i < n; i++ {
		x := math.Sin(phase)
		phase += step

		ref.process(x)
		out.process(p.ProcessSample(x))
	}

	refMag := ref.magnitude()
	if refMag == 0 {
		return 0, fmt.Errorf("response: degenerate probe at %f Hz", freqHz)
	}

	return out.magnitude() / refMag, nil
}

// MagnitudeDB returns Magnitude converted to dB.
func MagnitudeDB(p chain.SampleProcessor, freqHz, sampleRate float64, warmup, n int) (float64, error) {
	gain, err := Magnitude(p, freqHz, sampleRate, warmup, n)
	if err != nil {
		return 0, err
	}

	return core.LinearToDB(gain), nil
}
