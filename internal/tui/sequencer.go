package tui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/icco/seqgrid/internal/audio"
	"github.com/icco/seqgrid/internal/config"
	"github.com/icco/seqgrid/internal/pitch"
	"github.com/icco/seqgrid/internal/song"
)

const (
	labelWidth = 5 // "C#4" plus padding
	cellWidth  = 2
	gridTop    = 5 // title, blank, file line, ruler, clock
)

// degreeColors colours note rows by scale degree (256-colour palette).
var degreeColors = []string{"161", "203", "209", "214", "185", "106", "71", "72", "67", "62", "97", "132"}

// clockColors is the playhead gradient, from cyan to magenta.
var clockColors = []string{
	"#00FFFF", "#00E5FF", "#00CCFF", "#00B2FF",
	"#0099FF", "#0080FF", "#0066FF", "#1A4DFF",
	"#3333FF", "#4D1AFF", "#6600FF", "#8000FF",
	"#9900FF", "#B300FF", "#CC00FF", "#FF00FF",
}

// playTickMsg advances the playhead by one column.
type playTickMsg struct{ gen int }

// playDoneMsg is sent when the sink returns from playing the song.
type playDoneMsg struct {
	gen int
	err error
}

type previewDoneMsg struct{ err error }

// sequencerModel edits one song
type sequencerModel struct {
	cfg     *config.Config
	session *song.Session
	logger  *log.Logger
	sink    song.Sink
	path    string

	rows    []pitch.Pitch // display pitches, highest first
	cursorX int           // column
	cursorY int           // index into rows
	offset  int           // first visible column

	isPlaying bool
	playGen   int
	playStep  int
	stop      context.CancelFunc

	message string
	isError bool
}

func newSequencerModel(cfg *config.Config, session *song.Session, logger *log.Logger) sequencerModel {
	rows := displayRows(session.Table(), cfg.Display.LowOctave, cfg.Display.HighOctave)
	return sequencerModel{
		cfg:     cfg,
		session: session,
		logger:  logger,
		rows:    rows,
		cursorY: len(rows) / 2,
	}
}

func displayRows(table *pitch.Table, lo, hi int) []pitch.Pitch {
	scale := table.Scale()
	rows := make([]pitch.Pitch, 0, (hi-lo+1)*len(scale))
	for octave := hi; octave >= lo; octave-- {
		for i := len(scale) - 1; i >= 0; i-- {
			rows = append(rows, pitch.Pitch{Note: scale[i], Octave: octave})
		}
	}
	return rows
}

func (s *sequencerModel) setInfo(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.isError = false
}

func (s *sequencerModel) setError(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.isError = true
}

func (s *sequencerModel) resetView() {
	s.stopPlayback()
	s.cursorX = 0
	s.offset = 0
	s.message = ""
	s.isError = false
}

// open loads the song at path. A missing file starts a new, empty song that
// will be saved there.
func (s *sequencerModel) open(path string) error {
	s.resetView()
	err := s.session.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.setInfo("New song: %s", filepath.Base(path))
	case err != nil:
		return err
	default:
		s.setInfo("Loaded: %s", filepath.Base(path))
	}
	s.path = path
	return nil
}

func (s *sequencerModel) create(path string) error {
	s.resetView()
	s.session.Reset()
	if err := s.session.Save(path); err != nil {
		return err
	}
	s.path = path
	s.setInfo("New song created")
	return nil
}

// importMIDI loads a MIDI file into the grid. Saving writes a song file next
// to it.
func (s *sequencerModel) importMIDI(path string) error {
	s.resetView()
	f, err := os.Open(path) //nolint:gosec // path chosen in the file browser
	if err != nil {
		s.session.Reset()
		return err
	}
	defer func() { _ = f.Close() }()

	if err := s.session.ImportMIDI(f, s.cfg.NoteDuration); err != nil {
		return err
	}
	s.path = swapExt(path, ".yaml")
	s.setInfo("Imported %s, press s to save as %s", filepath.Base(path), filepath.Base(s.path))
	return nil
}

func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func (s *sequencerModel) visibleColumns(width int) int {
	cols := s.cfg.Display.Columns
	if width > 0 {
		if fit := (width - labelWidth) / cellWidth; fit < cols {
			cols = fit
		}
	}
	if cols < 1 {
		cols = 1
	}
	return cols
}

func (s *sequencerModel) scrollStep(vis int) int {
	if step := s.cfg.Display.Scroll; step < vis {
		return step
	}
	return vis
}

// follow scrolls the window until the cursor column is visible.
func (s *sequencerModel) follow(vis int) {
	step := s.scrollStep(vis)
	for s.cursorX < s.offset {
		s.offset -= step
	}
	if s.offset < 0 {
		s.offset = 0
	}
	for s.cursorX >= s.offset+vis {
		s.offset += step
	}
}

// scroll moves the window and the cursor together by delta columns.
func (s *sequencerModel) scroll(delta int) {
	next := s.offset + delta
	if next < 0 {
		next = 0
	}
	if next > song.MaxColumns-1 {
		next = song.MaxColumns - 1
	}
	s.cursorX += next - s.offset
	s.offset = next
	s.cursorX = max(0, min(s.cursorX, song.MaxColumns-1))
}

func (s *sequencerModel) toggle(ctx context.Context, col int, p pitch.Pitch) tea.Cmd {
	on, err := s.session.Toggle(col, p)
	if err != nil {
		s.setError("Error: %v", err)
		return nil
	}
	s.message = ""
	if !on {
		return nil
	}
	return s.preview(ctx, p)
}

// preview auditions a single note. The samples are rendered here so the
// command only touches its own buffer.
func (s *sequencerModel) preview(ctx context.Context, p pitch.Pitch) tea.Cmd {
	if s.sink == nil {
		return nil
	}
	samples, err := s.session.NoteSamples(p)
	if err != nil {
		s.setError("Error: %v", err)
		return nil
	}
	sink := s.sink
	return func() tea.Msg {
		return previewDoneMsg{err: sink.Play(ctx, samples)}
	}
}

func (s *sequencerModel) togglePlayback(ctx context.Context) tea.Cmd {
	if s.isPlaying {
		s.stopPlayback()
		s.setInfo("Stopped")
		return nil
	}
	if s.sink == nil {
		s.setError("Audio unavailable")
		return nil
	}

	samples, err := s.session.Compile()
	if err != nil {
		s.setError("Error compiling song: %v", err)
		return nil
	}
	if len(samples) == 0 {
		s.setInfo("Nothing to play")
		return nil
	}

	playCtx, stop := context.WithCancel(ctx)
	s.stop = stop
	s.isPlaying = true
	s.playGen++
	s.playStep = 0
	s.setInfo("Playing")

	gen, sink := s.playGen, s.sink
	return tea.Batch(
		func() tea.Msg {
			return playDoneMsg{gen: gen, err: sink.Play(playCtx, samples)}
		},
		s.tick(gen),
	)
}

func (s *sequencerModel) tick(gen int) tea.Cmd {
	step := time.Duration(s.cfg.NoteDuration * float64(time.Second))
	return tea.Tick(step, func(time.Time) tea.Msg {
		return playTickMsg{gen: gen}
	})
}

// stopPlayback cancels any running playback. Messages from it are ignored
// afterwards.
func (s *sequencerModel) stopPlayback() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.isPlaying {
		s.isPlaying = false
		s.playGen++
	}
}

func (s *sequencerModel) save() {
	if err := s.session.Save(s.path); err != nil {
		s.setError("Error saving: %v", err)
		return
	}
	s.setInfo("Saved %s", filepath.Base(s.path))
}

func (s *sequencerModel) renderWAV() {
	samples, err := s.session.Compile()
	if err != nil {
		s.setError("Error compiling song: %v", err)
		return
	}
	path := swapExt(s.path, ".wav")
	err = writeFile(path, func(f *os.File) error {
		return audio.WriteWAV(f, s.cfg.SampleRate, samples)
	})
	if err != nil {
		s.setError("Error writing WAV: %v", err)
		return
	}
	s.logger.Info("rendered song", "path", path, "bytes", len(samples))
	s.setInfo("Rendered %s", filepath.Base(path))
}

func (s *sequencerModel) exportMIDI() {
	path := swapExt(s.path, ".mid")
	err := writeFile(path, func(f *os.File) error {
		return s.session.ExportMIDI(f, s.cfg.NoteDuration)
	})
	if err != nil {
		s.setError("Error exporting MIDI: %v", err)
		return
	}
	s.logger.Info("exported midi", "path", path)
	s.setInfo("Exported %s", filepath.Base(path))
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path) //nolint:gosec // path derived from the song file
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (m model) updateSequencer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.sequencer
	vis := s.visibleColumns(m.width)

	switch {
	case key.Matches(msg, sequencerKeys.Back):
		return m.backToBrowser(), nil
	case key.Matches(msg, sequencerKeys.Up):
		if s.cursorY > 0 {
			s.cursorY--
		}
	case key.Matches(msg, sequencerKeys.Down):
		if s.cursorY < len(s.rows)-1 {
			s.cursorY++
		}
	case key.Matches(msg, sequencerKeys.Left):
		if s.cursorX > 0 {
			s.cursorX--
		}
		s.follow(vis)
	case key.Matches(msg, sequencerKeys.Right):
		if s.cursorX < song.MaxColumns-1 {
			s.cursorX++
		}
		s.follow(vis)
	case key.Matches(msg, sequencerKeys.ScrollLeft):
		s.scroll(-s.scrollStep(vis))
	case key.Matches(msg, sequencerKeys.ScrollRight):
		s.scroll(s.scrollStep(vis))
	case key.Matches(msg, sequencerKeys.Toggle):
		return m, s.toggle(m.ctx, s.cursorX, s.rows[s.cursorY])
	case key.Matches(msg, sequencerKeys.Clear):
		if s.session.ClearColumn(s.cursorX) {
			s.setInfo("Cleared column %d", s.cursorX)
		}
	case key.Matches(msg, sequencerKeys.Play):
		return m, s.togglePlayback(m.ctx)
	case key.Matches(msg, sequencerKeys.Save):
		s.save()
	case key.Matches(msg, sequencerKeys.WAV):
		s.renderWAV()
	case key.Matches(msg, sequencerKeys.MIDI):
		s.exportMIDI()
	}

	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	s := &m.sequencer
	col, row, ok := s.cellAt(msg.X, msg.Y, s.visibleColumns(m.width))
	if !ok {
		return m, nil
	}
	s.cursorX, s.cursorY = col, row
	return m, s.toggle(m.ctx, col, s.rows[row])
}

// cellAt maps screen coordinates to a grid cell.
func (s *sequencerModel) cellAt(x, y, vis int) (col, row int, ok bool) {
	row = y - gridTop
	if row < 0 || row >= len(s.rows) || x < labelWidth {
		return 0, 0, false
	}
	i := (x - labelWidth) / cellWidth
	if i >= vis {
		return 0, 0, false
	}
	return s.offset + i, row, true
}

func (m model) updatePlayback(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &m.sequencer

	switch msg := msg.(type) {
	case playTickMsg:
		if !s.isPlaying || msg.gen != s.playGen {
			return m, nil
		}
		s.playStep++
		return m, s.tick(msg.gen)

	case playDoneMsg:
		if msg.gen != s.playGen {
			return m, nil
		}
		s.stopPlayback()
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.logger.Error("playback failed", "err", msg.err)
			s.setError("Error playing: %v", msg.err)
		} else {
			s.setInfo("Finished")
		}

	case previewDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.logger.Debug("preview failed", "err", msg.err)
		}
	}

	return m, nil
}

func (m model) viewSequencer() string {
	s := m.sequencer
	vis := s.visibleColumns(m.width)

	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("SEQGRID - Step Sequencer") + "\n\n")
	b.WriteString(fmt.Sprintf("File: %s  Columns %d-%d\n", filepath.Base(s.path), s.offset, s.offset+vis-1))
	b.WriteString(s.renderRuler(vis) + "\n")
	b.WriteString(s.renderClockBar(vis) + "\n")

	for row, p := range s.rows {
		b.WriteString(s.renderRow(row, p, vis) + "\n")
	}

	b.WriteString("\n")
	active := s.session.PitchesAt(s.cursorX)
	b.WriteString(renderKeyboard(s.session.Table(), active, s.cfg.Display.LowOctave, s.cfg.Display.HighOctave) + "\n")
	b.WriteString(renderColumnNotes(s.session.Table(), s.cursorX, active) + "\n")

	b.WriteString("\n")
	if s.message != "" {
		if s.isError {
			b.WriteString(errorStyle.Render(s.message) + "\n")
		} else {
			b.WriteString(infoStyle.Render(s.message) + "\n")
		}
	}

	b.WriteString("\n" + m.help.View(sequencerKeys))

	return b.String()
}

// renderRuler numbers every eighth column.
func (s *sequencerModel) renderRuler(vis int) string {
	line := []rune(strings.Repeat(" ", labelWidth+vis*cellWidth))
	for i := 0; i < vis; i++ {
		col := s.offset + i
		if col%8 != 0 {
			continue
		}
		pos := labelWidth + i*cellWidth
		for j, r := range fmt.Sprint(col) {
			if pos+j < len(line) {
				line[pos+j] = r
			}
		}
	}
	return helpStyle.Render(string(line))
}

func (s *sequencerModel) renderClockBar(vis int) string {
	bar := strings.Builder{}
	bar.WriteString(fmt.Sprintf("%-*s", labelWidth, "Clock"))

	for i := 0; i < vis; i++ {
		col := s.offset + i
		color := lipgloss.Color(clockColors[col%len(clockColors)])

		var cell string
		var cellStyle lipgloss.Style
		switch {
		case s.isPlaying && col == s.playStep:
			// Current playing position
			cell = "▶ "
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(color).
				Bold(true)
		case s.isPlaying && col < s.playStep:
			cell = "█ "
			cellStyle = lipgloss.NewStyle().Foreground(color)
		default:
			cell = "· "
			cellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
		}
		bar.WriteString(cellStyle.Render(cell))
	}

	status := " Stopped"
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	if s.isPlaying {
		status = " Playing"
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	}
	bar.WriteString(statusStyle.Render(status))

	return bar.String()
}

func (s *sequencerModel) renderRow(row int, p pitch.Pitch, vis int) string {
	var b strings.Builder

	idx, _ := s.session.Table().Index(p.Note)
	color := lipgloss.Color(degreeColors[idx%len(degreeColors)])

	label := fmt.Sprintf("%-*s", labelWidth, p.String())
	if row == s.cursorY {
		b.WriteString(selectedStyle.Render(label))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(color).Render(label))
	}

	grid := s.session.Grid()
	for i := 0; i < vis; i++ {
		col := s.offset + i

		cell := "· "
		cellStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
		if grid.Has(col, p) {
			cell = "██"
			cellStyle = lipgloss.NewStyle().Foreground(color)
		}

		// Highlight playing column
		if s.isPlaying && col == s.playStep {
			cellStyle = cellStyle.Bold(true)
			if !grid.Has(col, p) {
				cellStyle = cellStyle.Foreground(lipgloss.Color("#00FF00"))
			}
		}

		// Highlight current cursor position
		if row == s.cursorY && col == s.cursorX {
			cellStyle = cellStyle.Background(lipgloss.Color("#7D56F4"))
		}

		b.WriteString(cellStyle.Render(cell))
	}

	return b.String()
}
