// Package config loads the sequencer's startup settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/icco/seqgrid/internal/pitch"
	"github.com/icco/seqgrid/internal/synth"
)

// ErrInvalidConfig wraps every configuration load or validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// OctaveRange bounds the supported pitches.
type OctaveRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Display controls the editor's visible window.
type Display struct {
	LowOctave  int `yaml:"low_octave"`
	HighOctave int `yaml:"high_octave"`
	Columns    int `yaml:"columns"`
	Scroll     int `yaml:"scroll"`
}

// Config holds the synthesis, pitch and display settings for a run.
type Config struct {
	SampleRate     int             `yaml:"sample_rate"`
	NoteDuration   float64         `yaml:"note_duration"`
	ReferencePitch pitch.Reference `yaml:"reference_pitch"`
	ChromaticScale []string        `yaml:"chromatic_scale"`
	Octaves        OctaveRange     `yaml:"octaves"`
	Envelope       synth.Envelope  `yaml:"envelope"`
	Display        Display         `yaml:"display"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SampleRate:     44100,
		NoteDuration:   1.0 / 6,
		ReferencePitch: pitch.DefaultReference,
		ChromaticScale: append([]string(nil), pitch.DefaultScale...),
		Octaves:        OctaveRange{Min: 0, Max: 8},
		Envelope:       append(synth.Envelope(nil), synth.DefaultEnvelope...),
		Display: Display{
			LowOctave:  3,
			HighOctave: 5,
			Columns:    64,
			Scroll:     4,
		},
	}
}

// Load reads path over the defaults. An empty path yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and the pitch table they describe.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if !(c.NoteDuration > 0) || math.IsInf(c.NoteDuration, 0) {
		return fmt.Errorf("%w: note_duration must be positive, got %g", ErrInvalidConfig, c.NoteDuration)
	}
	if err := c.Envelope.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Octaves.Min > c.Octaves.Max {
		return fmt.Errorf("%w: octaves.min %d above octaves.max %d", ErrInvalidConfig, c.Octaves.Min, c.Octaves.Max)
	}

	d := c.Display
	if d.LowOctave > d.HighOctave {
		return fmt.Errorf("%w: display.low_octave %d above display.high_octave %d", ErrInvalidConfig, d.LowOctave, d.HighOctave)
	}
	if d.LowOctave < c.Octaves.Min || d.HighOctave > c.Octaves.Max {
		return fmt.Errorf("%w: display octaves %d..%d outside %d..%d", ErrInvalidConfig,
			d.LowOctave, d.HighOctave, c.Octaves.Min, c.Octaves.Max)
	}
	if d.Columns <= 0 || d.Scroll <= 0 {
		return fmt.Errorf("%w: display.columns and display.scroll must be positive", ErrInvalidConfig)
	}

	if _, err := c.PitchTable(); err != nil {
		return err
	}
	return nil
}

// PitchTable builds the table described by the config.
func (c *Config) PitchTable() (*pitch.Table, error) {
	t, err := pitch.NewTable(c.ChromaticScale, c.ReferencePitch, c.Octaves.Min, c.Octaves.Max)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return t, nil
}

// Synthesizer builds a synthesizer over table with the configured rate,
// note length and envelope.
func (c *Config) Synthesizer(table *pitch.Table) (*synth.Synthesizer, error) {
	return synth.New(table, synth.Options{
		SampleRate:   c.SampleRate,
		NoteDuration: c.NoteDuration,
		Envelope:     c.Envelope,
	})
}
