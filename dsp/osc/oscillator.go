// Package osc implements a band-limited periodic waveform generator.
//
// Plain Triangle/Saw/Ramp/Square shapes are direct piecewise formulas and
// alias once their harmonics cross Nyquist; the PolyBLEP variants subtract a
// two-sample polynomial correction at each waveform discontinuity, which
// suppresses aliasing at the cost of slightly rounded corners.
package osc

import (
	"fmt"
	"math"

	"github.com/mtthw-meyer/embedded-dsp/dsp/core"
)

const (
	twoPi      = 2 * math.Pi
	twoPiRecip = 1 / twoPi

	defaultFrequency = 440.0
	defaultAmplitude = 1.0
)

// WaveType selects the generated waveform shape.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
	WaveSaw
	WaveRamp
	WaveSquare
	WavePolyBLEPTriangle
	WavePolyBLEPSaw
	WavePolyBLEPSquare
)

func (w WaveType) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSaw:
		return "saw"
	case WaveRamp:
		return "ramp"
	case WaveSquare:
		return "square"
	case WavePolyBLEPTriangle:
		return "polyblep_triangle"
	case WavePolyBLEPSaw:
		return "polyblep_saw"
	case WavePolyBLEPSquare:
		return "polyblep_square"
	default:
		return "unknown"
	}
}

func validWave(w WaveType) bool {
	return w >= WaveSine && w <= WavePolyBLEPSquare
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	wave      WaveType
	frequency float64
	amplitude float64
	phase     float64
}

func defaultConfig() config {
	return config{
		wave:      WaveSine,
		frequency: defaultFrequency,
		amplitude: defaultAmplitude,
	}
}

// WithWave selects the waveform shape.
func WithWave(wave WaveType) Option {
	return func(cfg *config) error {
		if !validWave(wave) {
			return fmt.Errorf("osc: invalid wave type: %d", wave)
		}

		cfg.wave = wave

		return nil
	}
}

// WithFrequency sets the initial frequency in Hz. Must be finite and >= 0.
func WithFrequency(freqHz float64) Option {
	return func(cfg *config) error {
		if freqHz < 0 || !isFinite(freqHz) {
			return fmt.Errorf("osc: frequency must be >= 0 and finite: %v", freqHz)
		}

		cfg.frequency = freqHz

		return nil
	}
}

// WithAmplitude sets the initial amplitude. Must be finite.
func WithAmplitude(amplitude float64) Option {
	return func(cfg *config) error {
		if !isFinite(amplitude) {
			return fmt.Errorf("osc: amplitude must be finite: %v", amplitude)
		}

		cfg.amplitude = amplitude

		return nil
	}
}

// WithPhase sets the initial phase in [0, 1], scaled internally to [0, 2pi).
func WithPhase(phase float64) Option {
	return func(cfg *config) error {
		if !isFinite(phase) {
			return fmt.Errorf("osc: phase must be finite: %v", phase)
		}

		cfg.phase = core.Clamp(phase, 0, 1)

		return nil
	}
}

// Oscillator generates one output sample per ProcessSample call; it takes no
// input. The sample rate is fixed for the life of the instance.
type Oscillator struct {
	wave       WaveType
	sampleRate float64
	amplitude  float64
	frequency  float64
	phase      float64
	phaseInc   float64

	// leaky-integrator memory, used only by WavePolyBLEPTriangle
	last float64
}

// New constructs an oscillator for the given sample rate.
func New(sampleRate float64, opts ...Option) (*Oscillator, error) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("osc: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	o := &Oscillator{
		wave:       cfg.wave,
		sampleRate: sampleRate,
		amplitude:  cfg.amplitude,
		frequency:  cfg.frequency,
		phase:      cfg.phase * twoPi,
	}
	o.calcPhaseInc()

	return o, nil
}

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Wave returns the waveform shape.
func (o *Oscillator) Wave() WaveType { return o.wave }

// Freq returns the frequency in Hz.
func (o *Oscillator) Freq() float64 { return o.frequency }

// Amplitude returns the output amplitude.
func (o *Oscillator) Amplitude() float64 { return o.amplitude }

// SetFreq sets the frequency in Hz. Negative or non-finite values are
// clamped to 0.
func (o *Oscillator) SetFreq(freqHz float64) {
	if freqHz < 0 || !isFinite(freqHz) {
		freqHz = 0
	}

	o.frequency = freqHz
	o.calcPhaseInc()
}

// SetAmplitude sets the output amplitude. Non-finite values are clamped to 0.
func (o *Oscillator) SetAmplitude(amplitude float64) {
	if !isFinite(amplitude) {
		amplitude = 0
	}

	o.amplitude = amplitude
}

// SetPhase jumps the phase to the given position, clamped to [0, 1] and
// scaled to [0, 2pi). Calling this mid-stream produces an audible phase
// discontinuity; that jump is the documented behavior, not an artifact to
// smooth over.
func (o *Oscillator) SetPhase(phase float64) {
	if !isFinite(phase) {
		phase = 0
	}

	o.phase = core.Clamp(phase, 0, 1) * twoPi
}

// Reset rewinds the phase and clears the integrator memory.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.last = 0
}

// ProcessSample computes one output sample and advances the phase. Call once
// per sample period.
func (o *Oscillator) ProcessSample() float64 {
	var out float64

	switch o.wave {
	case WaveSine:
		out = math.Sin(o.phase)
	case WaveTriangle:
		t := o.phase*twoPiRecip*2 - 1
		out = 2 * (math.Abs(t) - 0.5)
	case WaveSaw:
		out = -(o.phase*twoPiRecip*2 - 1)
	case WaveRamp:
		out = o.phase*twoPiRecip*2 - 1
	case WaveSquare:
		if o.phase < math.Pi {
			out = 1
		} else {
			out = -1
		}
	case WavePolyBLEPTriangle:
		t := o.phase * twoPiRecip
		if o.phase < math.Pi {
			out = 1
		} else {
			out = -1
		}
		out += polyBLEP(o.phaseInc, t)
		out -= polyBLEP(o.phaseInc, math.Mod(t+0.5, 1))
		// Leaky integrator turns the corrected square into a triangle:
		// y[n] = inc*x[n] + (1-inc)*y[n-1]. Amplitude sags at very low
		// frequencies, the accepted trade for alias suppression.
		out = o.phaseInc*out + (1-o.phaseInc)*o.last
		o.last = out
	case WavePolyBLEPSaw:
		t := o.phase * twoPiRecip
		out = 2*t - 1
		out -= polyBLEP(o.phaseInc, t)
		out = -out
	case WavePolyBLEPSquare:
		t := o.phase * twoPiRecip
		if o.phase < math.Pi {
			out = 1
		} else {
			out = -1
		}
		out += polyBLEP(o.phaseInc, t)
		out -= polyBLEP(o.phaseInc, math.Mod(t+0.5, 1))
	}

	o.phase += o.phaseInc
	if o.phase > twoPi {
		o.phase -= twoPi
	}

	return out * o.amplitude
}

// ProcessBlock fills buf with consecutive output samples.
func (o *Oscillator) ProcessBlock(buf []float64) {
	for i := range buf {
		buf[i] = o.ProcessSample()
	}
}

func (o *Oscillator) calcPhaseInc() {
	o.phaseInc = twoPi * o.frequency / o.sampleRate
}

// polyBLEP evaluates the two-sample polynomial band-limited step residual
// for normalized phase t in [0, 1), with dt the phase step per sample.
func polyBLEP(phaseInc, t float64) float64 {
	dt := phaseInc * twoPiRecip

	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
