// Package song holds the editable note grid, compiles it to PCM and persists
// it.
package song

import (
	"errors"
	"fmt"
	"sort"

	"github.com/icco/seqgrid/internal/pitch"
)

// ErrInvalidColumn is returned for a column index outside 0..MaxColumns-1.
var ErrInvalidColumn = errors.New("invalid column")

// MaxColumns bounds the song length. At the default note duration this is
// a little under half an hour.
const MaxColumns = 10000

// ValidColumn reports whether col lies in 0..MaxColumns-1.
func ValidColumn(col int) bool {
	return col >= 0 && col < MaxColumns
}

// Grid is a sparse timeline of columns, each holding the pitches that sound
// in that slot. Columns without pitches are rests and are never stored.
type Grid struct {
	columns    map[int]pitch.Set
	invalidate func()
}

// NewGrid returns an empty grid. invalidate, if non-nil, runs before every
// mutation.
func NewGrid(invalidate func()) *Grid {
	return &Grid{
		columns:    make(map[int]pitch.Set),
		invalidate: invalidate,
	}
}

func (g *Grid) changed() {
	if g.invalidate != nil {
		g.invalidate()
	}
}

// Toggle adds p to column col if absent and removes it otherwise. It reports
// whether p is present afterwards. A column left empty is dropped.
func (g *Grid) Toggle(col int, p pitch.Pitch) (bool, error) {
	if !ValidColumn(col) {
		return false, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	g.changed()

	set, ok := g.columns[col]
	if !ok {
		g.columns[col] = pitch.NewSet(p)
		return true, nil
	}
	if set.Has(p) {
		set.Remove(p)
		if len(set) == 0 {
			delete(g.columns, col)
		}
		return false, nil
	}
	set.Add(p)
	return true, nil
}

// ClearColumn removes every pitch from col. It reports whether anything was
// removed.
func (g *Grid) ClearColumn(col int) bool {
	if _, ok := g.columns[col]; !ok {
		return false
	}
	g.changed()
	delete(g.columns, col)
	return true
}

// Has reports whether p sounds in col.
func (g *Grid) Has(col int, p pitch.Pitch) bool {
	return g.columns[col].Has(p)
}

// PitchesAt returns a copy of the pitches in col; empty for a rest.
func (g *Grid) PitchesAt(col int) pitch.Set {
	return g.columns[col].Clone()
}

// MaxColumn returns the highest populated column. ok is false for an empty
// grid.
func (g *Grid) MaxColumn() (col int, ok bool) {
	col = -1
	for c := range g.columns {
		if c > col {
			col = c
		}
	}
	return col, col >= 0
}

// Len is the logical song length in columns: one past the highest populated
// column.
func (g *Grid) Len() int {
	col, _ := g.MaxColumn()
	return col + 1
}

// Columns lists populated columns in ascending order.
func (g *Grid) Columns() []int {
	cols := make([]int, 0, len(g.columns))
	for c := range g.columns {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

// Empty reports whether no column holds a pitch.
func (g *Grid) Empty() bool {
	return len(g.columns) == 0
}
