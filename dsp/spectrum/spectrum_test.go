package spectrum_test

import (
	"testing"

	"github.com/mtthw-meyer/embedded-dsp/dsp/spectrum"
	"github.com/mtthw-meyer/embedded-dsp/internal/testutil"
)

const sampleRate = 44100.0

func TestNewAnalyzerValidation(t *testing.T) {
	if _, err := spectrum.NewAnalyzer(0); err == nil {
		t.Fatal("expected error for zero size")
	}

	if _, err := spectrum.NewAnalyzer(1); err == nil {
		t.Fatal("expected error for size 1")
	}
}

func TestBins(t *testing.T) {
	an, err := spectrum.NewAnalyzer(1024)
	if err != nil {
		t.Fatal(err)
	}

	if an.Size() != 1024 || an.Bins() != 513 {
		t.Fatalf("got size %d bins %d", an.Size(), an.Bins())
	}

	testutil.RequireNear(t, an.BinFrequency(512, sampleRate), sampleRate/2, 1e-9)
}

func TestMagnitudeLengthValidation(t *testing.T) {
	an, err := spectrum.NewAnalyzer(64)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := an.Magnitude(nil, make([]float64, 32)); err == nil {
		t.Fatal("expected error for short block")
	}

	if _, err := an.Magnitude(make([]float64, 3), make([]float64, 64)); err == nil {
		t.Fatal("expected error for short dst")
	}
}

// An impulse has unit magnitude in every bin.
func TestImpulseSpectrumIsFlat(t *testing.T) {
	an, err := spectrum.NewAnalyzer(256)
	if err != nil {
		t.Fatal(err)
	}

	mags, err := an.Magnitude(nil, testutil.Impulse(256, 0))
	if err != nil {
		t.Fatal(err)
	}

	if len(mags) != an.Bins() {
		t.Fatalf("bins: got %d want %d", len(mags), an.Bins())
	}

	for _, mag := range mags {
		testutil.RequireNear(t, mag, 1, 1e-9)
	}
}

// A bin-aligned sine concentrates its energy in one bin.
func TestSinePeakBin(t *testing.T) {
	const (
		size = 1024
		bin  = 32
	)

	freq := bin * sampleRate / size
	block := testutil.Sine(freq, sampleRate, 1, size)

	an, err := spectrum.NewAnalyzer(size)
	if err != nil {
		t.Fatal(err)
	}

	mags, err := an.Magnitude(nil, block)
	if err != nil {
		t.Fatal(err)
	}

	if got := spectrum.PeakBin(mags); got != bin {
		t.Fatalf("peak bin: got %d want %d", got, bin)
	}

	// a real sine of amplitude A shows A*size/2 in its bin
	testutil.RequireNear(t, mags[bin], size/2, 1e-6)

	for i, mag := range mags {
		if i >= bin-1 && i <= bin+1 {
			continue
		}
		if mag > 1e-6 {
			t.Fatalf("bin %d: leakage magnitude %v", i, mag)
		}
	}
}

func TestMagnitudeReusesDst(t *testing.T) {
	an, err := spectrum.NewAnalyzer(64)
	if err != nil {
		t.Fatal(err)
	}

	dst := make([]float64, an.Bins())

	got, err := an.Magnitude(dst, testutil.Impulse(64, 0))
	if err != nil {
		t.Fatal(err)
	}

	if &got[0] != &dst[0] {
		t.Fatal("dst not reused")
	}
}

func TestPeakBinIgnoresDC(t *testing.T) {
	mags := []float64{100, 1, 5, 2}
	if got := spectrum.PeakBin(mags); got != 2 {
		t.Fatalf("got %d want 2", got)
	}
}
