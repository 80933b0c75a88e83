// Package synth renders pitches to unsigned 8-bit PCM using a fixed additive
// "piano" waveform shaped by a piecewise-linear envelope.
package synth

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidRenderParameters is returned for a non-positive duration, sample
// rate or frequency.
var ErrInvalidRenderParameters = errors.New("invalid render parameters")

const (
	// Silence is the unsigned 8-bit PCM midpoint.
	Silence = 128
	// Gain scales the raw waveform before it is offset by Silence.
	Gain = 100

	// frameEpsilon absorbs float error in sampleRate*seconds so that, for
	// example, 44100 * (1.0/6) yields 7350 frames.
	frameEpsilon = 1e-9
)

var sqrt3Over2 = math.Sqrt(3) / 2

// FrameCount returns floor(sampleRate * seconds).
func FrameCount(sampleRate int, seconds float64) (int, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("%w: sample rate %d", ErrInvalidRenderParameters, sampleRate)
	}
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: duration %v", ErrInvalidRenderParameters, seconds)
	}
	return int(math.Floor(float64(sampleRate)*seconds + frameEpsilon)), nil
}

// harmonic is the three-term piano waveform at phase-normalized time u.
// See https://dsp.stackexchange.com/a/46606.
func harmonic(u float64) float64 {
	return 0.25*math.Sin(3*math.Pi*u) + 0.25*math.Sin(math.Pi*u) + sqrt3Over2*math.Cos(math.Pi*u)
}

// Waveform returns the envelope-shaped waveform of a single tone, one value
// per entry of amps. The values are unquantized.
func Waveform(freq float64, sampleRate int, amps []float64) []float64 {
	period := float64(sampleRate) / freq
	form := make([]float64, len(amps))
	for x, amp := range amps {
		form[x] = harmonic(float64(x)/period) * amp
	}
	return form
}

// Quantize maps a raw sample to a byte: scale and offset in floating point,
// clamp to [0, 255], then truncate. NaN maps to 0.
func Quantize(v float64) byte {
	v = v*Gain + Silence
	if !(v >= 0) {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return byte(v)
}

// quantizeSum sums forms sample by sample in the given order and quantizes
// each sum once.
func quantizeSum(forms [][]float64, n int) []byte {
	out := make([]byte, n)
	for x := range out {
		var sum float64
		for _, form := range forms {
			sum += form[x]
		}
		out[x] = Quantize(sum)
	}
	return out
}

func silence(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = Silence
	}
	return out
}

// Render synthesizes freqs sounding together for the given duration. An empty
// freqs renders silence. Tones are summed in ascending frequency order without
// normalization and quantized once.
func Render(freqs []float64, seconds float64, sampleRate int, env Envelope) ([]byte, error) {
	n, err := FrameCount(sampleRate, seconds)
	if err != nil {
		return nil, err
	}
	if len(freqs) == 0 {
		return silence(n), nil
	}
	for _, f := range freqs {
		if !(f > 0) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: frequency %v", ErrInvalidRenderParameters, f)
		}
	}
	amps, err := Interpolate(n, env)
	if err != nil {
		return nil, err
	}

	sorted := append([]float64(nil), freqs...)
	sort.Float64s(sorted)
	forms := make([][]float64, len(sorted))
	for i, f := range sorted {
		forms[i] = Waveform(f, sampleRate, amps)
	}
	return quantizeSum(forms, n), nil
}
