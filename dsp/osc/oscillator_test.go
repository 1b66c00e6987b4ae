package osc_test

import (
	"math"
	"testing"

	"github.com/mtthw-meyer/embedded-dsp/dsp/osc"
	"github.com/mtthw-meyer/embedded-dsp/dsp/spectrum"
	"github.com/mtthw-meyer/embedded-dsp/internal/testutil"
)

const sampleRate = 44100.0

func TestNewValidation(t *testing.T) {
	if _, err := osc.New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if _, err := osc.New(sampleRate, osc.WithWave(99)); err == nil {
		t.Fatal("expected error for invalid wave type")
	}

	if _, err := osc.New(sampleRate, osc.WithFrequency(-1)); err == nil {
		t.Fatal("expected error for negative frequency")
	}

	if _, err := osc.New(sampleRate, osc.WithAmplitude(math.NaN())); err == nil {
		t.Fatal("expected error for NaN amplitude")
	}
}

func TestSineStartsAtZeroPhase(t *testing.T) {
	o, err := osc.New(sampleRate, osc.WithFrequency(1000))
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireNear(t, o.ProcessSample(), 0, 1e-12)
}

func TestSineMatchesClosedForm(t *testing.T) {
	const freq = 997.0

	o, err := osc.New(sampleRate, osc.WithFrequency(freq), osc.WithAmplitude(0.75))
	if err != nil {
		t.Fatal(err)
	}

	step := 2 * math.Pi * freq / sampleRate
	for i := 0; i < 4096; i++ {
		want := 0.75 * math.Sin(step*float64(i))
		testutil.RequireNear(t, o.ProcessSample(), want, 1e-9)
	}
}

// Output at sample n repeats at n + round(sampleRate/freq) once the period
// divides the rate exactly.
func TestSinePeriodicity(t *testing.T) {
	const freq = 441.0 // period is exactly 100 samples

	o, err := osc.New(sampleRate, osc.WithFrequency(freq))
	if err != nil {
		t.Fatal(err)
	}

	period := int(math.Round(sampleRate / freq))

	out := make([]float64, 10*period)
	o.ProcessBlock(out)

	for i := 0; i+period < len(out); i++ {
		testutil.RequireNear(t, out[i+period], out[i], 1e-9)
	}
}

func TestAmplitudeBounds(t *testing.T) {
	waves := []osc.WaveType{
		osc.WaveSine, osc.WaveTriangle, osc.WaveSaw, osc.WaveRamp, osc.WaveSquare,
		osc.WavePolyBLEPTriangle, osc.WavePolyBLEPSaw, osc.WavePolyBLEPSquare,
	}

	for _, wave := range waves {
		o, err := osc.New(sampleRate, osc.WithWave(wave), osc.WithFrequency(440))
		if err != nil {
			t.Fatal(err)
		}

		out := make([]float64, 44100)
		o.ProcessBlock(out)

		testutil.RequireFinite(t, out)

		// PolyBLEP corrections may overshoot slightly around discontinuities
		if peak := testutil.MaxAbs(out); peak > 1.3 {
			t.Fatalf("%v: peak %v exceeds bound", wave, peak)
		}
	}
}

func TestSquareLevels(t *testing.T) {
	o, err := osc.New(sampleRate, osc.WithWave(osc.WaveSquare), osc.WithFrequency(100))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4410; i++ {
		v := o.ProcessSample()
		if v != 1 && v != -1 {
			t.Fatalf("sample %d: got %v want +/-1", i, v)
		}
	}
}

func TestTriangleRampSawShapes(t *testing.T) {
	mk := func(wave osc.WaveType) *osc.Oscillator {
		o, err := osc.New(sampleRate, osc.WithWave(wave), osc.WithFrequency(441))
		if err != nil {
			t.Fatal(err)
		}
		return o
	}

	saw := mk(osc.WaveSaw)
	ramp := mk(osc.WaveRamp)

	// saw is the negated ramp
	for i := 0; i < 1000; i++ {
		testutil.RequireNear(t, saw.ProcessSample(), -ramp.ProcessSample(), 1e-12)
	}

	tri := mk(osc.WaveTriangle)

	// triangle starts at the falling peak and is continuous
	prev := tri.ProcessSample()
	testutil.RequireNear(t, prev, 1, 1e-6)

	maxStep := 4 * 441 / sampleRate // slope of a unit triangle at 441 Hz
	for i := 0; i < 1000; i++ {
		v := tri.ProcessSample()
		if math.Abs(v-prev) > maxStep+1e-9 {
			t.Fatalf("sample %d: triangle discontinuity %v -> %v", i, prev, v)
		}
		prev = v
	}
}

// The band-limited saw must carry far less inharmonic (aliased) energy than
// the raw saw at the same frequency. The fundamental is placed exactly on an
// FFT bin so harmonic and alias energy separate without windowing.
func TestPolyBLEPSawReducesAliasing(t *testing.T) {
	const (
		size    = 8192
		fundBin = 744 // ~4 kHz at 44.1 kHz
	)

	freq := fundBin * sampleRate / size

	render := func(wave osc.WaveType) []float64 {
		o, err := osc.New(sampleRate, osc.WithWave(wave), osc.WithFrequency(freq))
		if err != nil {
			t.Fatal(err)
		}

		out := make([]float64, size)
		o.ProcessBlock(out)
		return out
	}

	an, err := spectrum.NewAnalyzer(size)
	if err != nil {
		t.Fatal(err)
	}

	isHarmonicBin := func(bin int) bool {
		for k := fundBin; k <= size/2; k += fundBin {
			if bin >= k-1 && bin <= k+1 {
				return true
			}
		}
		return false
	}

	aliasEnergy := func(block []float64) float64 {
		mags, err := an.Magnitude(nil, block)
		if err != nil {
			t.Fatal(err)
		}

		var energy float64
		for bin := fundBin / 2; bin < len(mags); bin++ {
			if !isHarmonicBin(bin) {
				energy += mags[bin] * mags[bin]
			}
		}
		return energy
	}

	raw := aliasEnergy(render(osc.WaveSaw))
	blep := aliasEnergy(render(osc.WavePolyBLEPSaw))

	if blep >= raw/2 {
		t.Fatalf("alias energy not reduced: raw %v, polyblep %v", raw, blep)
	}
}

func TestSetPhaseClamped(t *testing.T) {
	o, err := osc.New(sampleRate, osc.WithFrequency(1000))
	if err != nil {
		t.Fatal(err)
	}

	o.SetPhase(0.25) // quarter cycle: sine peak
	testutil.RequireNear(t, o.ProcessSample(), 1, 1e-12)

	o.SetPhase(5) // clamps to full cycle
	testutil.RequireNear(t, o.ProcessSample(), math.Sin(2*math.Pi), 1e-9)
}

func TestSetFreqTakesEffect(t *testing.T) {
	o, err := osc.New(sampleRate, osc.WithFrequency(441))
	if err != nil {
		t.Fatal(err)
	}

	o.SetFreq(882)
	period := int(math.Round(sampleRate / 882))

	out := make([]float64, 8*period)
	o.ProcessBlock(out)

	for i := 0; i+period < len(out); i++ {
		testutil.RequireNear(t, out[i+period], out[i], 1e-9)
	}
}

func TestResetRewindsPhase(t *testing.T) {
	o, err := osc.New(sampleRate, osc.WithFrequency(1234))
	if err != nil {
		t.Fatal(err)
	}

	first := o.ProcessSample()
	for i := 0; i < 100; i++ {
		o.ProcessSample()
	}

	o.Reset()
	testutil.RequireNear(t, o.ProcessSample(), first, 0)
}

func TestWaveTypeStrings(t *testing.T) {
	if osc.WaveSine.String() != "sine" || osc.WavePolyBLEPSaw.String() != "polyblep_saw" {
		t.Fatal("unexpected wave type names")
	}

	if osc.WaveType(99).String() != "unknown" {
		t.Fatal("expected unknown for invalid wave type")
	}
}
