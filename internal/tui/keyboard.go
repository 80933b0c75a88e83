package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/icco/seqgrid/internal/pitch"
)

var (
	whiteKeys  = []int{0, 2, 4, 5, 7, 9, 11}   // C D E F G A B
	blackAfter = []int{1, 3, -1, 6, 8, 10, -1} // C# D# _ F# G# A# _
)

// renderKeyboard draws octaves lo..hi as a piano keyboard with the pitches in
// active lit in their row colour.
func renderKeyboard(table *pitch.Table, active pitch.Set, lo, hi int) string {
	scale := table.Scale()

	whiteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	blackStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	lit := func(degree int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(degreeColors[degree])).Bold(true)
	}

	var top, bottom strings.Builder
	top.WriteString(strings.Repeat(" ", labelWidth))
	bottom.WriteString(strings.Repeat(" ", labelWidth))

	for octave := lo; octave <= hi; octave++ {
		// Top row (black keys), offset to sit between the white keys
		for _, degree := range blackAfter {
			top.WriteString(" ")
			if degree < 0 {
				top.WriteString(" ")
				continue
			}
			if active.Has(pitch.Pitch{Note: scale[degree], Octave: octave}) {
				top.WriteString(lit(degree).Render("█"))
			} else {
				top.WriteString(blackStyle.Render("█"))
			}
		}

		// Bottom row (white keys)
		for _, degree := range whiteKeys {
			if active.Has(pitch.Pitch{Note: scale[degree], Octave: octave}) {
				bottom.WriteString(lit(degree).Render("█"))
			} else {
				bottom.WriteString(whiteStyle.Render("█"))
			}
			bottom.WriteString(" ")
		}
	}

	return top.String() + "\n" + bottom.String()
}

// renderColumnNotes lists the pitches of a column low to high.
func renderColumnNotes(table *pitch.Table, col int, active pitch.Set) string {
	if len(active) == 0 {
		return helpStyle.Render(fmt.Sprintf("Column %d: rest", col))
	}
	names := make([]string, 0, len(active))
	for _, p := range table.Sorted(active) {
		names = append(names, p.String())
	}
	return fmt.Sprintf("Column %d: %s", col, songStyle.Render(strings.Join(names, " ")))
}
