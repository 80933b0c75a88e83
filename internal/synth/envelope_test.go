package synth

import (
	"errors"
	"math"
	"testing"
)

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{"empty", Envelope{}},
		{"single keyframe", Envelope{{0, 1}}},
		{"does not start at zero", Envelope{{0.1, 0}, {1, 0}}},
		{"does not end at one", Envelope{{0, 0}, {0.9, 0}}},
		{"unsorted", Envelope{{0, 0}, {0.5, 1}, {0.25, 0.5}, {1, 0}}},
		{"repeated time", Envelope{{0, 0}, {0.5, 1}, {0.5, 0.5}, {1, 0}}},
		{"nan time", Envelope{{0, 0}, {math.NaN(), 1}, {1, 0}}},
		{"nan amplitude", Envelope{{0, 0}, {0.5, math.NaN()}, {1, 0}}},
		{"infinite amplitude", Envelope{{0, 0}, {0.5, math.Inf(1)}, {1, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.env.Validate(); !errors.Is(err, ErrMalformedEnvelope) {
				t.Errorf("expected ErrMalformedEnvelope, got %v", err)
			}
			if _, err := Interpolate(10, tt.env); !errors.Is(err, ErrMalformedEnvelope) {
				t.Errorf("Interpolate: expected ErrMalformedEnvelope, got %v", err)
			}
		})
	}

	if err := DefaultEnvelope.Validate(); err != nil {
		t.Errorf("default envelope is invalid: %v", err)
	}
}

func TestInterpolateLinearRamp(t *testing.T) {
	amps, err := Interpolate(4, Envelope{{0, 0}, {1, 1}})
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	want := []float64{0, 0.25, 0.5, 0.75}
	if len(amps) != len(want) {
		t.Fatalf("got %d frames, want %d", len(amps), len(want))
	}
	for i := range want {
		if math.Abs(amps[i]-want[i]) > 1e-12 {
			t.Errorf("amps[%d] = %v, want %v", i, amps[i], want[i])
		}
	}
}

func TestInterpolateDefaultEnvelope(t *testing.T) {
	const n = 1000
	amps, err := Interpolate(n, DefaultEnvelope)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	if len(amps) != n {
		t.Fatalf("got %d frames, want %d", len(amps), n)
	}

	// Frames that land exactly on a keyframe take its amplitude.
	checks := map[int]float64{
		0:   0.0,
		5:   1.0,
		250: 0.5,
		900: 0.1,
	}
	for i, want := range checks {
		if math.Abs(amps[i]-want) > 1e-9 {
			t.Errorf("amps[%d] = %v, want %v", i, amps[i], want)
		}
	}

	// Decay between 0.25 and 0.9 is monotonic.
	for i := 251; i < 900; i++ {
		if amps[i] > amps[i-1] {
			t.Fatalf("amps[%d] = %v rises above amps[%d] = %v", i, amps[i], i-1, amps[i-1])
		}
	}
	if amps[n-1] <= 0 || amps[n-1] >= 0.1 {
		t.Errorf("last frame %v should be in the release tail", amps[n-1])
	}
}

func TestInterpolateZeroFrames(t *testing.T) {
	amps, err := Interpolate(0, DefaultEnvelope)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	if len(amps) != 0 {
		t.Errorf("got %d frames, want 0", len(amps))
	}

	if _, err := Interpolate(-1, DefaultEnvelope); !errors.Is(err, ErrInvalidRenderParameters) {
		t.Errorf("expected ErrInvalidRenderParameters, got %v", err)
	}
}
