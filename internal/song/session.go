package song

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/icco/seqgrid/internal/pitch"
)

// Sink plays a finite buffer of unsigned 8-bit mono PCM and blocks until it
// has finished or ctx is done.
type Sink interface {
	Play(ctx context.Context, samples []byte) error
}

// Session owns a grid and the cached compilation of it. It is not safe for
// concurrent use.
type Session struct {
	table    *pitch.Table
	renderer ColumnRenderer
	grid     *Grid
	song     CompiledSong
	logger   *log.Logger

	compiles int
}

// NewSession returns a session with an empty grid. A nil logger discards
// output.
func NewSession(table *pitch.Table, renderer ColumnRenderer, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Session{
		table:    table,
		renderer: renderer,
		logger:   logger,
	}
	s.grid = NewGrid(s.song.Invalidate)
	return s
}

// Table is the pitch table the session validates against.
func (s *Session) Table() *pitch.Table { return s.table }

// Grid exposes the grid for display. Mutations through it still invalidate
// the compiled song.
func (s *Session) Grid() *Grid { return s.grid }

// Toggle validates p and flips its membership in col.
func (s *Session) Toggle(col int, p pitch.Pitch) (bool, error) {
	if err := s.table.Validate(p); err != nil {
		return false, err
	}
	on, err := s.grid.Toggle(col, p)
	if err != nil {
		return false, err
	}
	s.logger.Debug("toggle", "column", col, "pitch", p, "on", on)
	return on, nil
}

func (s *Session) PitchesAt(col int) pitch.Set { return s.grid.PitchesAt(col) }

func (s *Session) MaxColumn() (int, bool) { return s.grid.MaxColumn() }

// ClearColumn removes every pitch from col.
func (s *Session) ClearColumn(col int) bool {
	return s.grid.ClearColumn(col)
}

// Reset replaces the grid with an empty one.
func (s *Session) Reset() {
	s.replace(make(map[int]pitch.Set))
}

func (s *Session) replace(columns map[int]pitch.Set) {
	s.song.Invalidate()
	s.grid.columns = columns
}

// Fresh reports whether the next Compile will be served from cache.
func (s *Session) Fresh() bool {
	return s.song.Fresh()
}

// Compile returns the rendered song, recompiling only if the grid changed
// since the last successful compile. A failed compile leaves the cache as it
// was. The returned buffer must not be modified.
func (s *Session) Compile() ([]byte, error) {
	if samples, ok := s.song.Samples(); ok {
		s.logger.Debug("compiled song cache hit", "bytes", len(samples))
		return samples, nil
	}

	start := time.Now()
	samples, err := Compile(s.grid, s.renderer)
	if err != nil {
		return nil, fmt.Errorf("compile song: %w", err)
	}
	s.compiles++
	s.song.Store(samples)
	s.logger.Debug("compiled song", "columns", s.grid.Len(), "bytes", len(samples), "elapsed", time.Since(start))
	return samples, nil
}

// Play compiles the song and hands it to sink, blocking until playback ends.
func (s *Session) Play(ctx context.Context, sink Sink) error {
	samples, err := s.Compile()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}
	if err := sink.Play(ctx, samples); err != nil {
		return fmt.Errorf("play song: %w", err)
	}
	return nil
}

// NoteSamples renders p alone for one column, for auditioning.
func (s *Session) NoteSamples(p pitch.Pitch) ([]byte, error) {
	if err := s.table.Validate(p); err != nil {
		return nil, err
	}
	return s.renderer.RenderPitches(pitch.NewSet(p))
}

// PlayNote plays p alone for one column.
func (s *Session) PlayNote(ctx context.Context, sink Sink, p pitch.Pitch) error {
	samples, err := s.NoteSamples(p)
	if err != nil {
		return err
	}
	return sink.Play(ctx, samples)
}

// Load replaces the grid with the song stored at path. On any error the
// session is left with an empty grid.
func (s *Session) Load(path string) error {
	columns, err := ReadFile(path, s.table)
	if err != nil {
		s.Reset()
		return err
	}
	s.replace(columns)
	s.logger.Info("loaded song", "path", path, "columns", s.grid.Len())
	return nil
}

// Save writes the grid to path.
func (s *Session) Save(path string) error {
	if err := WriteFile(path, s.grid, s.table); err != nil {
		return err
	}
	s.logger.Info("saved song", "path", path, "columns", s.grid.Len())
	return nil
}
