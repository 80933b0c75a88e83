package song

import (
	"errors"
	"fmt"
	"math"

	"github.com/icco/seqgrid/internal/pitch"
)

// ErrSongTooLong is returned when a compiled song would not fit in memory.
var ErrSongTooLong = errors.New("song too long")

// ColumnRenderer renders the pitches of one column to a fixed number of
// samples.
type ColumnRenderer interface {
	RenderPitches(ps pitch.Set) ([]byte, error)
	FrameCount() int
}

// Compile renders columns 0 through the last populated one, rests included,
// and concatenates them. An empty grid compiles to an empty buffer.
func Compile(g *Grid, r ColumnRenderer) ([]byte, error) {
	last, ok := g.MaxColumn()
	if !ok {
		return []byte{}, nil
	}

	if !ValidColumn(last) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColumn, last)
	}
	frames := r.FrameCount()
	if frames < 0 || (frames > 0 && last+1 > math.MaxInt32/frames) {
		return nil, fmt.Errorf("%w: %d columns of %d frames", ErrSongTooLong, last+1, frames)
	}

	out := make([]byte, 0, (last+1)*frames)
	for col := 0; col <= last; col++ {
		samples, err := r.RenderPitches(g.columns[col])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", col, err)
		}
		out = append(out, samples...)
	}
	return out, nil
}

type cacheState int

const (
	stale cacheState = iota
	fresh
)

// CompiledSong caches a compiled buffer. It is either stale or holds exactly
// what compiling the current grid would produce.
type CompiledSong struct {
	state   cacheState
	samples []byte
}

// Samples returns the cached buffer and true when fresh.
func (c *CompiledSong) Samples() ([]byte, bool) {
	if c.state != fresh {
		return nil, false
	}
	return c.samples, true
}

// Store marks samples as the fresh compiled song.
func (c *CompiledSong) Store(samples []byte) {
	c.state = fresh
	c.samples = samples
}

// Invalidate drops the cached buffer.
func (c *CompiledSong) Invalidate() {
	c.state = stale
	c.samples = nil
}

// Fresh reports whether a buffer is cached.
func (c *CompiledSong) Fresh() bool {
	return c.state == fresh
}
