package song

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/icco/seqgrid/internal/pitch"
)

// ErrCorruptSongData is returned when a stored song is malformed or refers to
// pitches outside the supported range.
var ErrCorruptSongData = errors.New("corrupt song data")

const formatVersion = 1

type songFile struct {
	Version int          `yaml:"version"`
	Columns []columnFile `yaml:"columns"`
}

type columnFile struct {
	Column  int           `yaml:"column"`
	Pitches []pitch.Pitch `yaml:"pitches,flow"`
}

// Encode writes g as a YAML song document. Columns appear in ascending order
// with their pitches sorted low to high.
func Encode(w io.Writer, g *Grid, table *pitch.Table) error {
	doc := songFile{Version: formatVersion, Columns: []columnFile{}}
	for _, col := range g.Columns() {
		doc.Columns = append(doc.Columns, columnFile{
			Column:  col,
			Pitches: table.Sorted(g.columns[col]),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode song: %w", err)
	}
	return enc.Close()
}

// Decode parses a YAML song document into column sets, validating every
// pitch against table. Nothing is returned unless the whole document is
// valid.
func Decode(r io.Reader, table *pitch.Table) (map[int]pitch.Set, error) {
	var doc songFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return make(map[int]pitch.Set), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptSongData, err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSongData, doc.Version)
	}

	columns := make(map[int]pitch.Set, len(doc.Columns))
	seen := make(map[int]bool, len(doc.Columns))
	for _, c := range doc.Columns {
		if !ValidColumn(c.Column) {
			return nil, fmt.Errorf("%w: column %d outside 0..%d", ErrCorruptSongData, c.Column, MaxColumns-1)
		}
		if seen[c.Column] {
			return nil, fmt.Errorf("%w: column %d appears twice", ErrCorruptSongData, c.Column)
		}
		seen[c.Column] = true

		set := make(pitch.Set, len(c.Pitches))
		for _, p := range c.Pitches {
			if err := table.Validate(p); err != nil {
				return nil, fmt.Errorf("%w: column %d: %v", ErrCorruptSongData, c.Column, err)
			}
			set.Add(p)
		}
		if len(set) > 0 {
			columns[c.Column] = set
		}
	}
	return columns, nil
}

// ReadFile loads the song stored at path.
func ReadFile(path string, table *pitch.Table) (map[int]pitch.Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("read song: %w", err)
	}
	columns, err := Decode(bytes.NewReader(data), table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return columns, nil
}

// WriteFile stores g at path, replacing any existing file.
func WriteFile(path string, g *Grid, table *pitch.Table) error {
	var buf bytes.Buffer
	if err := Encode(&buf, g, table); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write song: %w", err)
	}
	return nil
}
