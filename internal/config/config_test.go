package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/icco/seqgrid/internal/pitch"
	"github.com/icco/seqgrid/internal/synth"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	table, err := cfg.PitchTable()
	if err != nil {
		t.Fatal(err)
	}
	f, err := table.Frequency("A", 4)
	if err != nil || f != 880 {
		t.Errorf("A4 = %v, %v, want 880", f, err)
	}

	s, err := cfg.Synthesizer(table)
	if err != nil {
		t.Fatalf("Synthesizer: %v", err)
	}
	if s.FrameCount() != 7350 {
		t.Errorf("frame count = %d, want 7350", s.FrameCount())
	}
}

func TestDefaultDoesNotShareSlices(t *testing.T) {
	cfg := Default()
	cfg.ChromaticScale[0] = "X"
	cfg.Envelope[1].Amp = 0.3
	if pitch.DefaultScale[0] != "C" || synth.DefaultEnvelope[1].Amp != 1 {
		t.Error("mutating a config changed the package defaults")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
sample_rate: 22050
display:
  columns: 32
envelope:
  - {time: 0, amp: 0}
  - {time: 0.5, amp: 1}
  - {time: 1, amp: 0}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("sample_rate = %d", cfg.SampleRate)
	}
	if cfg.Display.Columns != 32 || cfg.Display.Scroll != 4 || cfg.Display.LowOctave != 3 {
		t.Errorf("display = %+v, want columns overridden and the rest defaulted", cfg.Display)
	}
	if len(cfg.Envelope) != 3 {
		t.Errorf("envelope has %d keyframes, want 3", len(cfg.Envelope))
	}
	if cfg.NoteDuration != 1.0/6 || cfg.ReferencePitch != pitch.DefaultReference {
		t.Error("unspecified settings lost their defaults")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != Default().SampleRate {
		t.Error("empty path did not return the defaults")
	}

	empty, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if empty.Display != Default().Display {
		t.Error("empty file changed the defaults")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "tempo: 120\n"},
		{"zero sample rate", "sample_rate: 0\n"},
		{"negative duration", "note_duration: -1\n"},
		{"nan duration", "note_duration: .nan\n"},
		{"bad envelope", "envelope: [{time: 0.5, amp: 1}, {time: 1, amp: 0}]\n"},
		{"nan envelope time", "envelope: [{time: 0, amp: 0}, {time: .nan, amp: 1}, {time: 1, amp: 0}]\n"},
		{"inverted octaves", "octaves: {min: 5, max: 2}\n"},
		{"display outside octaves", "octaves: {min: 4, max: 8}\n"},
		{"inverted display", "display: {low_octave: 5, high_octave: 3}\n"},
		{"zero columns", "display: {columns: 0}\n"},
		{"reference not in scale", "reference_pitch: {note: H, octave: 4, frequency: 440}\n"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.doc))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestEnvelopeErrorIsWrapped(t *testing.T) {
	cfg := Default()
	cfg.Envelope = synth.Envelope{{Time: 0, Amp: 0}}
	err := cfg.Validate()
	if !errors.Is(err, synth.ErrMalformedEnvelope) || !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected both ErrInvalidConfig and ErrMalformedEnvelope, got %v", err)
	}
}
