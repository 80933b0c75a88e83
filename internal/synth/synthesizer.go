package synth

import (
	"fmt"

	"github.com/icco/seqgrid/internal/pitch"
)

// Options configures a Synthesizer.
type Options struct {
	SampleRate   int
	NoteDuration float64 // seconds per column
	Envelope     Envelope
}

// Synthesizer renders grid columns. It precomputes the waveform of every
// pitch the table supports at construction and is read-only afterwards.
type Synthesizer struct {
	table      *pitch.Table
	sampleRate int
	duration   float64
	envelope   Envelope
	frames     int
	noteforms  map[pitch.Pitch][]float64
}

// New validates opts and builds the noteform table for every pitch of table.
func New(table *pitch.Table, opts Options) (*Synthesizer, error) {
	frames, err := FrameCount(opts.SampleRate, opts.NoteDuration)
	if err != nil {
		return nil, err
	}
	amps, err := Interpolate(frames, opts.Envelope)
	if err != nil {
		return nil, err
	}

	s := &Synthesizer{
		table:      table,
		sampleRate: opts.SampleRate,
		duration:   opts.NoteDuration,
		envelope:   append(Envelope(nil), opts.Envelope...),
		frames:     frames,
		noteforms:  make(map[pitch.Pitch][]float64),
	}
	for _, p := range table.Pitches() {
		freq, err := table.Frequency(p.Note, p.Octave)
		if err != nil {
			return nil, err
		}
		s.noteforms[p] = Waveform(freq, s.sampleRate, amps)
	}
	return s, nil
}

// SampleRate is the output rate in Hz.
func (s *Synthesizer) SampleRate() int { return s.sampleRate }

func (s *Synthesizer) NoteDuration() float64 { return s.duration }

// FrameCount is the number of samples in one column.
func (s *Synthesizer) FrameCount() int { return s.frames }

// RenderPitches renders one column in which ps sound together. The result is
// byte-identical to Render over the pitches' frequencies.
func (s *Synthesizer) RenderPitches(ps pitch.Set) ([]byte, error) {
	if len(ps) == 0 {
		return silence(s.frames), nil
	}
	sorted := s.table.Sorted(ps)
	forms := make([][]float64, len(sorted))
	for i, p := range sorted {
		form, ok := s.noteforms[p]
		if !ok {
			if err := s.table.Validate(p); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: no waveform for %s", pitch.ErrInvalidPitch, p)
		}
		forms[i] = form
	}
	return quantizeSum(forms, s.frames), nil
}

// Render synthesizes arbitrary frequencies for an arbitrary duration with the
// configured sample rate and envelope.
func (s *Synthesizer) Render(freqs []float64, seconds float64) ([]byte, error) {
	b, err := Render(freqs, seconds, s.sampleRate, s.envelope)
	if err != nil {
		return nil, fmt.Errorf("render %d tones: %w", len(freqs), err)
	}
	return b, nil
}
