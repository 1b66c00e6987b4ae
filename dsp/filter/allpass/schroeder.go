package allpass

import (
	"fmt"

	"github.com/mtthw-meyer/embedded-dsp/dsp/core"
	"github.com/mtthw-meyer/embedded-dsp/dsp/delay"
	"github.com/mtthw-meyer/embedded-dsp/internal/fastmath"
)

const (
	minLoopTime = 0.0001

	// ln(0.001): calibrates the feedback coefficient so the looped energy
	// has decayed by -60 dB after reverbTime seconds.
	decayConstant = -6.9078

	// Seconds of headroom kept between the longest usable loop time and
	// the end of the backing buffer.
	loopTimeMargin = 0.01
)

// SP is a Schroeder all-pass section parameterized by loop time and reverb
// time, the diffusion element of classic reverb topologies.
//
// The feedback coefficient is exp(-6.9078 * loopTime / reverbTime), chosen
// so that after reverbTime seconds the recirculating energy has fallen to
// -60 dB. A reverb time of exactly 0 disables feedback, turning the section
// into a plain delay; callers must otherwise never rely on a zero reverb
// time, which has no decay interpretation.
type SP struct {
	sampleRate  float64
	line        *delay.Line
	maxLoopTime float64
	loopTime    float64
	reverbTime  float64
	coef        float64
}

// NewSP constructs a Schroeder all-pass around line. The usable loop time is
// bounded by the line length: maxLoopTime = len/sampleRate - 0.01, fixed at
// construction. The line is borrowed, not owned.
func NewSP(sampleRate float64, line *delay.Line) (*SP, error) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("allpass: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if line == nil {
		return nil, fmt.Errorf("allpass: delay line must not be nil")
	}

	maxLoopTime := float64(line.Len())/sampleRate - loopTimeMargin
	if maxLoopTime < minLoopTime {
		return nil, fmt.Errorf("allpass: delay line too short for sample rate %f: %d samples",
			sampleRate, line.Len())
	}

	return &SP{
		sampleRate:  sampleRate,
		line:        line,
		maxLoopTime: maxLoopTime,
		loopTime:    maxLoopTime,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (f *SP) SampleRate() float64 { return f.sampleRate }

// MaxLoopTime returns the longest usable loop time in seconds, fixed at
// construction from the delay line length.
func (f *SP) MaxLoopTime() float64 { return f.maxLoopTime }

// LoopTime returns the clamped loop time in seconds.
func (f *SP) LoopTime() float64 { return f.loopTime }

// ReverbTime returns the decay target in seconds.
func (f *SP) ReverbTime() float64 { return f.reverbTime }

// Coefficient returns the current feedback coefficient.
func (f *SP) Coefficient() float64 { return f.coef }

// SetLoopTime sets the loop (delay) time in seconds, clamped to
// [0.0001, MaxLoopTime], and recomputes the feedback coefficient.
func (f *SP) SetLoopTime(seconds float64) {
	if !isFinite(seconds) {
		seconds = minLoopTime
	}

	f.loopTime = core.Clamp(seconds, minLoopTime, f.maxLoopTime)
	f.updateCoef()
}

// SetReverbTime sets the -60 dB decay target in seconds and recomputes the
// feedback coefficient.
func (f *SP) SetReverbTime(seconds float64) {
	f.reverbTime = seconds
	f.updateCoef()
}

func (f *SP) updateCoef() {
	if f.reverbTime == 0 {
		f.coef = 0
		return
	}

	f.coef = fastmath.Exp(decayConstant * f.loopTime / f.reverbTime)
}

// ProcessSample processes one sample through the section.
func (f *SP) ProcessSample(input float64) float64 {
	y := f.line.Read()
	z := core.FlushDenormals(f.coef*y + input)
	f.line.Write(z)

	return y - f.coef*z
}

// ProcessInPlace processes a mono buffer in place.
func (f *SP) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// Reset clears the borrowed delay line.
func (f *SP) Reset() {
	f.line.Reset()
}
