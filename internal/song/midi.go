package song

import (
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/seqgrid/internal/pitch"
)

const (
	ticksPerQuarterNote = 960 // Standard MIDI resolution
	midiBPM             = 120
	midiChannel         = 0
	midiVelocity        = 100
)

// ticksPerColumn converts a column duration in seconds to MIDI ticks at the
// given tempo and resolution.
func ticksPerColumn(noteDuration, bpm float64, resolution uint32) uint32 {
	ticks := math.Round(noteDuration * bpm / 60 * float64(resolution))
	if ticks < 1 {
		return 1
	}
	return uint32(ticks)
}

// ExportMIDI writes g as a standard MIDI file: a tempo track and one note
// track where every column lasts noteDuration seconds.
func ExportMIDI(w io.Writer, g *Grid, table *pitch.Table, noteDuration float64) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)
	ticksPerStep := ticksPerColumn(noteDuration, midiBPM, ticksPerQuarterNote)

	// Track 0: Tempo track
	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(midiBPM))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	var track smf.Track
	var lastTick uint32
	for _, col := range g.Columns() {
		keys := make([]uint8, 0, len(g.columns[col]))
		for _, p := range table.Sorted(g.columns[col]) {
			key, err := table.MIDIKey(p)
			if err != nil {
				return fmt.Errorf("column %d: %w", col, err)
			}
			keys = append(keys, key)
		}

		pos := uint32(col) * ticksPerStep //nolint:gosec // columns are never negative
		for i, key := range keys {
			var delta uint32
			if i == 0 {
				delta = pos - lastTick
			}
			track.Add(delta, midi.NoteOn(midiChannel, key, midiVelocity))
		}
		// Note off just before the next column starts
		for i, key := range keys {
			var delta uint32
			if i == 0 {
				delta = ticksPerStep - 1
			}
			track.Add(delta, midi.NoteOff(midiChannel, key))
		}
		lastTick = pos + ticksPerStep - 1
	}
	endTick := uint32(g.Len()) * ticksPerStep //nolint:gosec // Len is never negative
	if lastTick < endTick {
		track.Close(endTick - lastTick)
	} else {
		track.Close(0)
	}
	if err := sm.Add(track); err != nil {
		return fmt.Errorf("error adding note track: %w", err)
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// ImportMIDI reads note-on events from every track of a standard MIDI file
// and quantizes them to columns of noteDuration seconds.
func ImportMIDI(r io.Reader, table *pitch.Table, noteDuration float64) (map[int]pitch.Set, error) {
	rd, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSongData, err)
	}

	resolution := uint32(ticksPerQuarterNote)
	if mt, ok := rd.TimeFormat.(smf.MetricTicks); ok {
		resolution = uint32(mt.Resolution())
	}
	bpm := float64(midiBPM)
	if tempoChanges := rd.TempoChanges(); len(tempoChanges) > 0 && tempoChanges[0].BPM > 0 {
		bpm = tempoChanges[0].BPM
	}
	ticksPerStep := ticksPerColumn(noteDuration, bpm, resolution)

	columns := make(map[int]pitch.Set)
	for _, track := range rd.Tracks {
		var currentTick uint64
		for _, ev := range track {
			currentTick += uint64(ev.Delta)

			var channel, key, velocity uint8
			if !ev.Message.GetNoteOn(&channel, &key, &velocity) || velocity == 0 {
				continue
			}
			p, err := table.FromMIDIKey(key)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptSongData, err)
			}
			step := currentTick / uint64(ticksPerStep)
			if step >= MaxColumns {
				return nil, fmt.Errorf("%w: note at tick %d is past column %d", ErrCorruptSongData, currentTick, MaxColumns-1)
			}
			col := int(step)
			if columns[col] == nil {
				columns[col] = make(pitch.Set)
			}
			columns[col].Add(p)
		}
	}
	return columns, nil
}

// ExportMIDI writes the session's grid as a standard MIDI file.
func (s *Session) ExportMIDI(w io.Writer, noteDuration float64) error {
	return ExportMIDI(w, s.grid, s.table, noteDuration)
}

// ImportMIDI replaces the grid with the notes of a standard MIDI file. On
// error the session is left with an empty grid.
func (s *Session) ImportMIDI(r io.Reader, noteDuration float64) error {
	columns, err := ImportMIDI(r, s.table, noteDuration)
	if err != nil {
		s.Reset()
		return err
	}
	s.replace(columns)
	return nil
}
