// Package svf implements a two-pole state-variable filter with simultaneous
// low-pass, high-pass, band-pass, notch and peak outputs.
//
// The filter uses the Chamberlin topology with trapezoidal (zero-delay
// feedback) behavior approximated by running the core update twice per
// sample: once on the previous raw input as an interpolated midpoint and
// once on the current input. This doubles the effective update rate and
// halves the aliasing contributed by the drive nonlinearity without a true
// upsampling filter. A cubic soft-clip term on the band-pass accumulator
// tames self-oscillation at high resonance.
package svf

import (
	"fmt"
	"math"

	"github.com/mtthw-meyer/embedded-dsp/dsp/core"
)

const (
	maxPreDrive = 0.1

	defaultCutoffHz  = 0.0
	defaultResonance = 0.0
	defaultDrive     = 0.0
)

// Variant selects the per-sample update rule.
type Variant int

const (
	// VariantOversampled is the canonical update: the core runs on the
	// previous input and then on the current input, publishing the second
	// pass. This is the 2x-oversampled zero-delay-feedback form.
	VariantOversampled Variant = iota
	// VariantTwoPassAverage is the superseded update kept for comparison:
	// the core runs twice on the same input and the two passes are averaged
	// with weight 0.5 each.
	VariantTwoPassAverage
)

func (v Variant) String() string {
	switch v {
	case VariantOversampled:
		return "oversampled"
	case VariantTwoPassAverage:
		return "two_pass_average"
	default:
		return "unknown"
	}
}

// Tap selects which output ProcessSample returns. All taps remain readable
// through the getters regardless of the selection.
type Tap int

const (
	TapLowPass Tap = iota
	TapHighPass
	TapBandPass
	TapNotch
	TapPeak
)

func (tap Tap) String() string {
	switch tap {
	case TapLowPass:
		return "low_pass"
	case TapHighPass:
		return "high_pass"
	case TapBandPass:
		return "band_pass"
	case TapNotch:
		return "notch"
	case TapPeak:
		return "peak"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	variant   Variant
	tap       Tap
	cutoffHz  float64
	resonance float64
	drive     float64
}

func defaultConfig() config {
	return config{
		variant:   VariantOversampled,
		tap:       TapLowPass,
		cutoffHz:  defaultCutoffHz,
		resonance: defaultResonance,
		drive:     defaultDrive,
	}
}

// WithVariant selects the per-sample update rule.
func WithVariant(variant Variant) Option {
	return func(cfg *config) error {
		if variant < VariantOversampled || variant > VariantTwoPassAverage {
			return fmt.Errorf("svf: invalid variant: %d", variant)
		}

		cfg.variant = variant

		return nil
	}
}

// WithTap selects the output returned by ProcessSample.
func WithTap(tap Tap) Option {
	return func(cfg *config) error {
		if tap < TapLowPass || tap > TapPeak {
			return fmt.Errorf("svf: invalid tap: %d", tap)
		}

		cfg.tap = tap

		return nil
	}
}

// WithCutoffHz sets the initial cutoff frequency. Must be finite.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if !isFinite(cutoffHz) {
			return fmt.Errorf("svf: cutoff must be finite: %v", cutoffHz)
		}

		cfg.cutoffHz = cutoffHz

		return nil
	}
}

// WithResonance sets the initial resonance. Must be finite.
func WithResonance(resonance float64) Option {
	return func(cfg *config) error {
		if !isFinite(resonance) {
			return fmt.Errorf("svf: resonance must be finite: %v", resonance)
		}

		cfg.resonance = resonance

		return nil
	}
}

// WithDrive sets the initial drive. Must be finite.
func WithDrive(drive float64) Option {
	return func(cfg *config) error {
		if !isFinite(drive) {
			return fmt.Errorf("svf: drive must be finite: %v", drive)
		}

		cfg.drive = drive

		return nil
	}
}

// Filter is a state-variable filter with five simultaneous outputs.
type Filter struct {
	sampleRate float64
	variant    Variant
	tap        Tap

	// accumulators
	lowPass  float64
	highPass float64
	bandPass float64
	notch    float64
	previous float64

	// parameters and derived coefficients
	cutoffHz  float64
	freq      float64
	resonance float64
	preDrive  float64
	drive     float64
	damp      float64

	// published outputs of the most recent ProcessSample call
	outLowPass  float64
	outHighPass float64
	outBandPass float64
	outNotch    float64
	outPeak     float64
}

// New constructs a state-variable filter. The sample rate is fixed for the
// life of the filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("svf: sample rate must be > 0 and finite: %f", sampleRate)
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

	f := &Filter{
		sampleRate: sampleRate,
		variant:    cfg.variant,
		tap:        cfg.tap,
	}

	f.SetDrive(cfg.drive)
	f.SetResonance(cfg.resonance)
	f.SetFreq(cfg.cutoffHz)

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Variant returns the per-sample update rule.
func (f *Filter) Variant() Variant { return f.variant }

// Freq returns the clamped cutoff frequency in Hz.
func (f *Filter) Freq() float64 { return f.cutoffHz }

// Resonance returns the clamped resonance.
func (f *Filter) Resonance() float64 { return f.resonance }

// SetFreq sets the cutoff frequency in Hz, clamped to [0, sampleRate/3],
// and recomputes the pre-warped frequency coefficient and damping.
func (f *Filter) SetFreq(freqHz float64) {
	if !isFinite(freqHz) {
		freqHz = 0
	}

	f.cutoffHz = core.Clamp(freqHz, 0, f.sampleRate/3)
	f.freq = 2 * math.Sin(math.Pi*math.Min(0.25, f.cutoffHz/(2*f.sampleRate)))
	f.calcDamp()
}

// SetResonance sets resonance, clamped to [0, 1], and recomputes damping
// and effective drive.
func (f *Filter) SetResonance(resonance float64) {
	if !isFinite(resonance) {
		resonance = 0
	}

	f.resonance = core.Clamp(resonance, 0, 1)
	f.calcDamp()
	f.drive = f.preDrive * f.resonance
}

// SetDrive sets the internal distortion amount. The effective pre-drive is
// drive*0.1 clamped to [0, 0.1]; the applied drive additionally scales with
// resonance.
func (f *Filter) SetDrive(drive float64) {
	if !isFinite(drive) {
		drive = 0
	}

	f.preDrive = core.Clamp(drive*0.1, 0, maxPreDrive)
	f.drive = f.preDrive * f.resonance
}

// Both bounds are load-bearing: 2/freq - 0.5*freq keeps the integrators
// stable as freq tends to 0, and the cap at 2 prevents runaway gain at
// high resonance.
func (f *Filter) calcDamp() {
	f.damp = math.Min(
		2*(1-math.Pow(f.resonance, 0.25)),
		math.Min(2, 2/f.freq-0.5*f.freq),
	)
}

func (f *Filter) pass(input float64) {
	f.notch = input - f.damp*f.bandPass
	f.lowPass += f.freq * f.bandPass
	f.highPass = f.notch - f.lowPass
	f.bandPass += f.freq*f.highPass - f.drive*f.bandPass*f.bandPass*f.bandPass
}

// ProcessSample pushes one input sample through the filter, publishes all
// five outputs, and returns the selected tap.
func (f *Filter) ProcessSample(input float64) float64 {
	switch f.variant {
	case VariantTwoPassAverage:
		f.pass(input)
		f.outLowPass = 0.5 * f.lowPass
		f.outHighPass = 0.5 * f.highPass
		f.outBandPass = 0.5 * f.bandPass
		f.outNotch = 0.5 * f.notch
		f.outPeak = 0.5 * (f.lowPass - f.highPass)

		f.pass(input)
		f.outLowPass += 0.5 * f.lowPass
		f.outHighPass += 0.5 * f.highPass
		f.outBandPass += 0.5 * f.bandPass
		f.outNotch += 0.5 * f.notch
		f.outPeak += 0.5 * (f.lowPass - f.highPass)
	default:
		// The previous raw input stands in for the half-sample midpoint,
		// so each call advances the core at twice the audio rate.
		f.pass(f.previous)
		f.pass(input)
		f.outLowPass = f.lowPass
		f.outHighPass = f.highPass
		f.outBandPass = f.bandPass
		f.outNotch = f.notch
		f.outPeak = f.lowPass - f.highPass
	}

	f.previous = input

	return f.selected()
}

// ProcessInPlace processes a mono buffer in place, writing the selected tap.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// Reset clears accumulator state and published outputs. Coefficients are
// left untouched.
func (f *Filter) Reset() {
	f.lowPass = 0
	f.highPass = 0
	f.bandPass = 0
	f.notch = 0
	f.previous = 0
	f.outLowPass = 0
	f.outHighPass = 0
	f.outBandPass = 0
	f.outNotch = 0
	f.outPeak = 0
}

// LowPass returns the low-pass output of the most recent ProcessSample call.
func (f *Filter) LowPass() float64 { return f.outLowPass }

// HighPass returns the high-pass output of the most recent ProcessSample call.
func (f *Filter) HighPass() float64 { return f.outHighPass }

// BandPass returns the band-pass output of the most recent ProcessSample call.
func (f *Filter) BandPass() float64 { return f.outBandPass }

// Notch returns the notch output of the most recent ProcessSample call.
func (f *Filter) Notch() float64 { return f.outNotch }

// Peak returns the peak (low minus high) output of the most recent
// ProcessSample call.
func (f *Filter) Peak() float64 { return f.outPeak }

func (f *Filter) selected() float64 {
	switch f.tap {
	case TapHighPass:
		return f.outHighPass
	case TapBandPass:
		return f.outBandPass
	case TapNotch:
		return f.outNotch
	case TapPeak:
		return f.outPeak
	default:
		return f.outLowPass
	}
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
