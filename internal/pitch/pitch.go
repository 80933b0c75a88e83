// Package pitch maps note names and octaves to equal-tempered frequencies.
package pitch

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidPitch is returned for an unknown note name or an octave outside
// the table's supported range.
var ErrInvalidPitch = errors.New("invalid pitch")

const notesPerOctave = 12

// semitone is the equal-tempered ratio between adjacent notes.
var semitone = math.Pow(2, 1.0/notesPerOctave)

// DefaultScale is the chromatic scale used when none is configured.
var DefaultScale = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Pitch is a note name within an octave. Pitches are comparable and can be
// used as map keys.
type Pitch struct {
	Note   string `yaml:"note"`
	Octave int    `yaml:"octave"`
}

func (p Pitch) String() string {
	return p.Note + strconv.Itoa(p.Octave)
}

// Set is an unordered collection of pitches sounding together.
type Set map[Pitch]struct{}

// NewSet returns a set holding ps.
func NewSet(ps ...Pitch) Set {
	s := make(Set, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in s.
func (s Set) Has(p Pitch) bool {
	_, ok := s[p]
	return ok
}

func (s Set) Add(p Pitch) {
	s[p] = struct{}{}
}

func (s Set) Remove(p Pitch) {
	delete(s, p)
}

// Clone returns a copy of s. The copy of a nil set is empty, not nil.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// Reference anchors the tuning: Note in Octave sounds at Frequency Hz.
type Reference struct {
	Note      string  `yaml:"note"`
	Octave    int     `yaml:"octave"`
	Frequency float64 `yaml:"frequency"`
}

// DefaultReference tunes A4 to 880 Hz.
var DefaultReference = Reference{Note: "A", Octave: 4, Frequency: 880}

// Table computes frequencies for a fixed scale, reference and octave range.
// It is immutable after construction and safe to share.
type Table struct {
	scale     []string
	index     map[string]int
	ref       Reference
	refIndex  int
	minOctave int
	maxOctave int
}

// NewTable validates the scale and reference and builds a table supporting
// octaves minOctave..maxOctave inclusive.
func NewTable(scale []string, ref Reference, minOctave, maxOctave int) (*Table, error) {
	if len(scale) != notesPerOctave {
		return nil, fmt.Errorf("chromatic scale needs %d notes, got %d", notesPerOctave, len(scale))
	}
	index := make(map[string]int, len(scale))
	for i, name := range scale {
		if name == "" {
			return nil, fmt.Errorf("chromatic scale has an empty note name at position %d", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("chromatic scale repeats note %q", name)
		}
		index[name] = i
	}
	refIndex, ok := index[ref.Note]
	if !ok {
		return nil, fmt.Errorf("reference note %q is not in the scale", ref.Note)
	}
	if ref.Frequency <= 0 {
		return nil, fmt.Errorf("reference frequency must be positive, got %v", ref.Frequency)
	}
	if minOctave > maxOctave {
		return nil, fmt.Errorf("octave range %d..%d is empty", minOctave, maxOctave)
	}
	return &Table{
		scale:     append([]string(nil), scale...),
		index:     index,
		ref:       ref,
		refIndex:  refIndex,
		minOctave: minOctave,
		maxOctave: maxOctave,
	}, nil
}

// DefaultTable returns the table for DefaultScale and DefaultReference over
// octaves 0..8.
func DefaultTable() *Table {
	t, err := NewTable(DefaultScale, DefaultReference, 0, 8)
	if err != nil {
		panic(err)
	}
	return t
}

// Scale returns a copy of the chromatic note names, lowest first.
func (t *Table) Scale() []string {
	return append([]string(nil), t.scale...)
}

// OctaveRange returns the inclusive range of supported octaves.
func (t *Table) OctaveRange() (lo, hi int) {
	return t.minOctave, t.maxOctave
}

// Index returns the position of note within the scale.
func (t *Table) Index(note string) (int, error) {
	i, ok := t.index[note]
	if !ok {
		return 0, fmt.Errorf("%w: unknown note %q", ErrInvalidPitch, note)
	}
	return i, nil
}

// Validate reports whether p names a note of the scale within the supported
// octave range.
func (t *Table) Validate(p Pitch) error {
	if _, err := t.Index(p.Note); err != nil {
		return err
	}
	if p.Octave < t.minOctave || p.Octave > t.maxOctave {
		return fmt.Errorf("%w: octave %d outside %d..%d", ErrInvalidPitch, p.Octave, t.minOctave, t.maxOctave)
	}
	return nil
}

// Frequency returns the frequency in Hz of note in octave.
func (t *Table) Frequency(note string, octave int) (float64, error) {
	p := Pitch{Note: note, Octave: octave}
	if err := t.Validate(p); err != nil {
		return 0, err
	}
	halfSteps := (octave-t.ref.Octave)*notesPerOctave + (t.index[note] - t.refIndex)
	return t.ref.Frequency * math.Pow(semitone, float64(halfSteps)), nil
}

// Pitches lists every supported pitch from lowest to highest.
func (t *Table) Pitches() []Pitch {
	ps := make([]Pitch, 0, (t.maxOctave-t.minOctave+1)*notesPerOctave)
	for octave := t.minOctave; octave <= t.maxOctave; octave++ {
		for _, note := range t.scale {
			ps = append(ps, Pitch{Note: note, Octave: octave})
		}
	}
	return ps
}

// Less orders pitches from low to high. Unknown notes sort after known ones.
func (t *Table) Less(a, b Pitch) bool {
	if a.Octave != b.Octave {
		return a.Octave < b.Octave
	}
	ai, aok := t.index[a.Note]
	bi, bok := t.index[b.Note]
	if aok != bok {
		return aok
	}
	if !aok {
		return a.Note < b.Note
	}
	return ai < bi
}

// Sorted returns the pitches of s from lowest to highest.
func (t *Table) Sorted(s Set) []Pitch {
	ps := make([]Pitch, 0, len(s))
	for p := range s {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return t.Less(ps[i], ps[j]) })
	return ps
}

// Parse reads the compact form produced by Pitch.String, such as "C#4" or
// "A-1".
func (t *Table) Parse(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	split := strings.IndexFunc(s, func(r rune) bool {
		return r == '-' || (r >= '0' && r <= '9')
	})
	if split <= 0 {
		return Pitch{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidPitch, s)
	}
	octave, err := strconv.Atoi(s[split:])
	if err != nil {
		return Pitch{}, fmt.Errorf("%w: bad octave in %q", ErrInvalidPitch, s)
	}
	p := Pitch{Note: s[:split], Octave: octave}
	if err := t.Validate(p); err != nil {
		return Pitch{}, err
	}
	return p, nil
}

// MIDIKey returns the MIDI note number of p, counting the first scale note of
// octave -1 as key 0.
func (t *Table) MIDIKey(p Pitch) (uint8, error) {
	if err := t.Validate(p); err != nil {
		return 0, err
	}
	key := (p.Octave+1)*notesPerOctave + t.index[p.Note]
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("%w: %s has no MIDI key", ErrInvalidPitch, p)
	}
	return uint8(key), nil //nolint:gosec // bounded above
}

// FromMIDIKey is the inverse of MIDIKey.
func (t *Table) FromMIDIKey(key uint8) (Pitch, error) {
	p := Pitch{
		Note:   t.scale[int(key)%notesPerOctave],
		Octave: int(key)/notesPerOctave - 1,
	}
	if err := t.Validate(p); err != nil {
		return Pitch{}, err
	}
	return p, nil
}
