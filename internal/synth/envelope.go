package synth

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedEnvelope is returned when keyframes are unsorted or do not span
// exactly 0.0 to 1.0.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// Keyframe pins the amplitude at a normalized time in [0, 1].
type Keyframe struct {
	Time float64 `yaml:"time"`
	Amp  float64 `yaml:"amp"`
}

// Envelope is a piecewise-linear amplitude shape, keyframes in ascending time.
type Envelope []Keyframe

// DefaultEnvelope is a percussive, piano-like shape: sharp attack, moderate
// decay, slow release to silence.
var DefaultEnvelope = Envelope{
	{Time: 0.0, Amp: 0.0},
	{Time: 0.005, Amp: 1.0},
	{Time: 0.25, Amp: 0.5},
	{Time: 0.9, Amp: 0.1},
	{Time: 1.0, Amp: 0.0},
}

// Validate checks that e is finite, starts at 0.0, ends at 1.0 and strictly
// ascends.
func (e Envelope) Validate() error {
	if len(e) < 2 {
		return fmt.Errorf("%w: need at least 2 keyframes, got %d", ErrMalformedEnvelope, len(e))
	}
	if e[0].Time != 0 {
		return fmt.Errorf("%w: first keyframe at %v, want 0", ErrMalformedEnvelope, e[0].Time)
	}
	if last := e[len(e)-1].Time; last != 1 {
		return fmt.Errorf("%w: last keyframe at %v, want 1", ErrMalformedEnvelope, last)
	}
	for i, k := range e {
		if math.IsNaN(k.Time) || math.IsInf(k.Time, 0) || math.IsNaN(k.Amp) || math.IsInf(k.Amp, 0) {
			return fmt.Errorf("%w: keyframe %d is not finite", ErrMalformedEnvelope, i)
		}
	}
	for i := 1; i < len(e); i++ {
		if !(e[i].Time > e[i-1].Time) {
			return fmt.Errorf("%w: keyframe %d at %v does not follow %v", ErrMalformedEnvelope, i, e[i].Time, e[i-1].Time)
		}
	}
	return nil
}

// Interpolate samples e at numFrames evenly spaced points starting at 0.
// Frame i sits at i/numFrames, so the final keyframe is approached but never
// reached.
func Interpolate(numFrames int, e Envelope) ([]float64, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if numFrames < 0 {
		return nil, fmt.Errorf("%w: %d frames", ErrInvalidRenderParameters, numFrames)
	}

	amps := make([]float64, numFrames)
	k := 0 // e[k] <= frac < e[k+1]
	for i := range amps {
		frac := float64(i) / float64(numFrames)
		for frac >= e[k+1].Time {
			k++
		}
		t0, a0 := e[k].Time, e[k].Amp
		t1, a1 := e[k+1].Time, e[k+1].Amp
		amps[i] = a0 + (frac-t0)*(a1-a0)/(t1-t0)
	}
	return amps, nil
}
