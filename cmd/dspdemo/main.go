// Command dspdemo renders an oscillator to a 16-bit mono WAV file,
// optionally shaped by a resonant low-pass filter and an all-pass diffuser.
//
// Usage:
//
//	dspdemo [flags]
//
// Examples:
//
//	dspdemo -out tone.wav
//	dspdemo -wave polyblep_saw -freq 220 -seconds 2 -out saw.wav
//	dspdemo -wave square -cutoff 800 -resonance 0.7 -out filtered.wav
//	dspdemo -wave polyblep_saw -diffuse 0.2 -out diffused.wav
//	dspdemo -list
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/mtthw-meyer/embedded-dsp/dsp/chain"
	"github.com/mtthw-meyer/embedded-dsp/dsp/delay"
	"github.com/mtthw-meyer/embedded-dsp/dsp/filter/allpass"
	"github.com/mtthw-meyer/embedded-dsp/dsp/filter/svf"
	"github.com/mtthw-meyer/embedded-dsp/dsp/osc"
)

var waves = []osc.WaveType{
	osc.WaveSine,
	osc.WaveTriangle,
	osc.WaveSaw,
	osc.WaveRamp,
	osc.WaveSquare,
	osc.WavePolyBLEPTriangle,
	osc.WavePolyBLEPSaw,
	osc.WavePolyBLEPSquare,
}

func main() {
	rate := flag.Int("rate", 44100, "sample rate in Hz")
	seconds := flag.Float64("seconds", 1.0, "duration of the rendered tone")
	freq := flag.Float64("freq", 440, "oscillator frequency in Hz")
	waveName := flag.String("wave", "sine", "waveform name (use -list to see available)")
	amplitude := flag.Float64("amplitude", 0.8, "oscillator amplitude in [0, 1]")
	cutoff := flag.Float64("cutoff", 0, "low-pass cutoff in Hz (0 disables the filter)")
	resonance := flag.Float64("resonance", 0, "low-pass resonance in [0, 1]")
	diffuse := flag.Float64("diffuse", 0, "all-pass diffusion reverb time in seconds (0 disables)")
	out := flag.String("out", "dspdemo.wav", "output WAV file path")
	list := flag.Bool("list", false, "list available waveform names")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dspdemo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders an oscillator to a 16-bit mono WAV file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dspdemo -wave polyblep_saw -freq 220 -seconds 2 -out saw.wav\n")
		fmt.Fprintf(os.Stderr, "  dspdemo -wave square -cutoff 800 -resonance 0.7 -out filtered.wav\n")
		fmt.Fprintf(os.Stderr, "  dspdemo -list\n")
	}
	flag.Parse()

	if *list {
		for _, w := range waves {
			fmt.Println(w)
		}
		return
	}

	if err := run(*rate, *seconds, *freq, *waveName, *amplitude, *cutoff, *resonance, *diffuse, *out); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(rate int, seconds, freq float64, waveName string, amplitude, cutoff, resonance, diffuse float64, out string) error {
	wave, err := resolveWave(waveName)
	if err != nil {
		return err
	}

	if seconds <= 0 || math.IsNaN(seconds) {
		return fmt.Errorf("invalid duration %v", seconds)
	}

	sampleRate := float64(rate)

	gen, err := osc.New(sampleRate,
		osc.WithWave(wave),
		osc.WithFrequency(freq),
		osc.WithAmplitude(amplitude),
	)
	if err != nil {
		return err
	}

	fx := chain.NewChain()

	if cutoff > 0 {
		filter, err := svf.New(sampleRate,
			svf.WithTap(svf.TapLowPass),
			svf.WithCutoffHz(cutoff),
			svf.WithResonance(resonance),
		)
		if err != nil {
			return err
		}
		fx.Append(filter)
	}

	if diffuse > 0 {
		// ~20 ms diffusion loop, a typical early-reflection scale.
		lineLen := rate / 50
		line, err := delay.New(make([]float64, lineLen))
		if err != nil {
			return err
		}
		diffuser, err := allpass.NewSP(sampleRate, line)
		if err != nil {
			return err
		}
		diffuser.SetReverbTime(diffuse)
		fx.Append(diffuser)
	}

	n := int(seconds * sampleRate)
	samples := make([]float64, n)
	gen.ProcessBlock(samples)
	fx.ProcessInPlace(samples)

	return writeWAV(out, rate, samples)
}

func resolveWave(name string) (osc.WaveType, error) {
	for _, w := range waves {
		if w.String() == name {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown waveform %q (use -list to see available)", name)
}

func writeWAV(path string, rate int, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  rate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}

	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
