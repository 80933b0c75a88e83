package song

import (
	"bytes"
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/seqgrid/internal/pitch"
)

func TestMIDIExportImport(t *testing.T) {
	sess, _ := newTestSession(t)
	edits := map[int][]pitch.Pitch{
		0:  {c4, e4, g4},
		1:  {c4},
		5:  {pitch.Pitch{Note: "A#", Octave: 3}},
		16: {g4, pitch.Pitch{Note: "C", Octave: 5}},
	}
	for col, ps := range edits {
		for _, p := range ps {
			if _, err := sess.Toggle(col, p); err != nil {
				t.Fatal(err)
			}
		}
	}

	var buf bytes.Buffer
	if err := sess.ExportMIDI(&buf, testDuration); err != nil {
		t.Fatalf("ExportMIDI: %v", err)
	}

	imported, _ := newTestSession(t)
	if err := imported.ImportMIDI(bytes.NewReader(buf.Bytes()), testDuration); err != nil {
		t.Fatalf("ImportMIDI: %v", err)
	}

	if got, want := imported.Grid().Columns(), sess.Grid().Columns(); len(got) != len(want) {
		t.Fatalf("imported columns %v, want %v", got, want)
	}
	for col, ps := range edits {
		got := imported.PitchesAt(col)
		if len(got) != len(ps) {
			t.Errorf("column %d: imported %v, want %v", col, got, ps)
		}
		for _, p := range ps {
			if !got.Has(p) {
				t.Errorf("column %d lost %v", col, p)
			}
		}
	}
}

func TestMIDIImportQuantizesToColumns(t *testing.T) {
	// 120 BPM at 960 ticks per quarter: a 1/6 s column is 320 ticks.
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(640, midi.NoteOn(0, 60, 90)) // column 2
	tr.Add(100, midi.NoteOff(0, 60))    // tick 740
	tr.Add(220, midi.NoteOn(0, 64, 90)) // tick 960: column 3
	tr.Add(10, midi.NoteOn(0, 67, 0))   // velocity 0 is a note off
	tr.Close(0)
	if err := sm.Add(tr); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	cols, err := ImportMIDI(&buf, pitch.DefaultTable(), testDuration)
	if err != nil {
		t.Fatalf("ImportMIDI: %v", err)
	}
	if len(cols) != 2 || !cols[2].Has(c4) || !cols[3].Has(e4) {
		t.Errorf("imported %v, want C4 at 2 and E4 at 3", cols)
	}
}

func TestMIDIImportRejectsOutOfRangeKeys(t *testing.T) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 127, 90))
	tr.Close(0)
	if err := sm.Add(tr); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	sess, _ := newTestSession(t)
	if _, err := sess.Toggle(0, c4); err != nil {
		t.Fatal(err)
	}
	if err := sess.ImportMIDI(&buf, testDuration); !errors.Is(err, ErrCorruptSongData) {
		t.Errorf("expected ErrCorruptSongData, got %v", err)
	}
	if !sess.Grid().Empty() {
		t.Error("failed import left notes in the grid")
	}

	if _, err := ImportMIDI(bytes.NewReader([]byte("not a midi file")), pitch.DefaultTable(), testDuration); !errors.Is(err, ErrCorruptSongData) {
		t.Errorf("expected ErrCorruptSongData for garbage input, got %v", err)
	}
}

func TestMIDIImportRejectsNotesPastColumnLimit(t *testing.T) {
	// 320 ticks per column: this note lands in column MaxColumns.
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(320*MaxColumns, midi.NoteOn(0, 60, 90))
	tr.Close(0)
	if err := sm.Add(tr); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportMIDI(&buf, pitch.DefaultTable(), testDuration); !errors.Is(err, ErrCorruptSongData) {
		t.Errorf("expected ErrCorruptSongData, got %v", err)
	}
}
