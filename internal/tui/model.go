// Package tui is the interactive grid editor
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/icco/seqgrid/internal/config"
	"github.com/icco/seqgrid/internal/pitch"
	"github.com/icco/seqgrid/internal/song"
	"github.com/icco/seqgrid/internal/synth"
)

// View modes
type viewMode int

const (
	fileBrowserMode viewMode = iota
	sequencerMode
)

// Options wires the editor to its collaborators.
type Options struct {
	Config *config.Config
	Table  *pitch.Table
	Synth  *synth.Synthesizer
	Logger *log.Logger

	// OpenSink is called once at startup. Playback is disabled when it is
	// nil or fails.
	OpenSink func() (song.Sink, error)

	// StartDir is where the file browser starts. SongPath, when set, is
	// opened straight away.
	StartDir string
	SongPath string
}

// Model represents the application state
type model struct {
	mode        viewMode
	fileBrowser fileBrowserModel
	sequencer   sequencerModel
	help        help.Model
	openSink    func() (song.Sink, error)
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	width       int
	height      int
}

// fileBrowserModel manages the file browser state
type fileBrowserModel struct {
	currentDir  string
	files       []fileInfo
	cursor      int
	viewportTop int
	message     string
}

type fileKind int

const (
	kindDir fileKind = iota
	kindSong
	kindMIDI
)

type fileInfo struct {
	name string
	path string
	kind fileKind
}

// sinkReadyMsg reports the outcome of opening the audio device.
type sinkReadyMsg struct {
	sink song.Sink
	err  error
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAFF")).
			Bold(true)

	songStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	midiStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))
)

// InitialModel builds the editor. It opens opts.SongPath if one is given,
// otherwise it starts in the file browser.
func InitialModel(opts Options) model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())

	dir := opts.StartDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		dir = wd
	}
	if opts.SongPath != "" {
		dir = filepath.Dir(opts.SongPath)
	}

	fb := fileBrowserModel{
		currentDir: dir,
		cursor:     0,
	}
	fb.loadFiles()

	m := model{
		mode:        fileBrowserMode,
		fileBrowser: fb,
		sequencer:   newSequencerModel(opts.Config, song.NewSession(opts.Table, opts.Synth, logger), logger),
		help:        help.New(),
		openSink:    opts.OpenSink,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}

	if opts.SongPath != "" {
		if err := m.sequencer.open(opts.SongPath); err != nil {
			m.fileBrowser.message = fmt.Sprintf("Error loading song: %v", err)
		} else {
			m.mode = sequencerMode
		}
	}
	return m
}

func (fb *fileBrowserModel) loadFiles() {
	fb.files = []fileInfo{}

	// Add parent directory entry
	if fb.currentDir != "/" {
		fb.files = append(fb.files, fileInfo{
			name: "..",
			path: filepath.Dir(fb.currentDir),
			kind: kindDir,
		})
	}

	entries, err := os.ReadDir(fb.currentDir)
	if err != nil {
		fb.message = fmt.Sprintf("Error reading directory: %v", err)
		return
	}

	for _, entry := range entries {
		// Skip hidden files
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info := fileInfo{
			name: entry.Name(),
			path: filepath.Join(fb.currentDir, entry.Name()),
		}
		switch ext := strings.ToLower(filepath.Ext(entry.Name())); {
		case entry.IsDir():
			info.kind = kindDir
		case ext == ".yaml" || ext == ".yml":
			info.kind = kindSong
		case ext == ".mid":
			info.kind = kindMIDI
		default:
			continue
		}
		fb.files = append(fb.files, info)
	}

	// Reset cursor if out of bounds
	if fb.cursor >= len(fb.files) && len(fb.files) > 0 {
		fb.cursor = len(fb.files) - 1
	}
	if fb.cursor < 0 {
		fb.cursor = 0
	}
	if fb.viewportTop > fb.cursor {
		fb.viewportTop = fb.cursor
	}
}

func (m model) maxVisibleLines() int {
	lines := m.height - 9
	if lines < 5 {
		lines = 5
	}
	return lines
}

func (m model) Init() tea.Cmd {
	if m.openSink == nil {
		return nil
	}
	open := m.openSink
	return func() tea.Msg {
		sink, err := open()
		return sinkReadyMsg{sink: sink, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case sinkReadyMsg:
		if msg.err != nil {
			m.logger.Warn("audio unavailable", "err", msg.err)
			m.sequencer.message = fmt.Sprintf("Audio unavailable: %v", msg.err)
			m.sequencer.isError = true
			return m, nil
		}
		m.sequencer.sink = msg.sink
		return m, nil

	case playTickMsg, playDoneMsg, previewDoneMsg:
		return m.updatePlayback(msg)

	case tea.MouseMsg:
		if m.mode == sequencerMode {
			return m.updateMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			m.sequencer.stopPlayback()
			m.cancel()
			return m, tea.Quit
		}

		// Route to appropriate mode handler
		switch m.mode {
		case fileBrowserMode:
			return m.updateFileBrowser(msg)
		case sequencerMode:
			return m.updateSequencer(msg)
		}
	}

	return m, nil
}

func (m model) updateFileBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fb := &m.fileBrowser
	maxVisible := m.maxVisibleLines()

	switch {
	case key.Matches(msg, browserKeys.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, browserKeys.Up):
		if fb.cursor > 0 {
			fb.cursor--
		}
		if fb.cursor < fb.viewportTop {
			fb.viewportTop = fb.cursor
		}
	case key.Matches(msg, browserKeys.Down):
		if fb.cursor < len(fb.files)-1 {
			fb.cursor++
		}
		if fb.cursor >= fb.viewportTop+maxVisible {
			fb.viewportTop = fb.cursor - maxVisible + 1
		}
	case key.Matches(msg, browserKeys.Open):
		if len(fb.files) == 0 {
			return m, nil
		}

		selected := fb.files[fb.cursor]
		switch selected.kind {
		case kindDir:
			fb.currentDir = selected.path
			fb.cursor = 0
			fb.viewportTop = 0
			fb.message = ""
			fb.loadFiles()
		case kindSong:
			if err := m.sequencer.open(selected.path); err != nil {
				fb.message = fmt.Sprintf("Error loading song: %v", err)
			} else {
				fb.message = ""
				m.mode = sequencerMode
			}
		case kindMIDI:
			if err := m.sequencer.importMIDI(selected.path); err != nil {
				fb.message = fmt.Sprintf("Error importing MIDI: %v", err)
			} else {
				fb.message = ""
				m.mode = sequencerMode
			}
		}
	case key.Matches(msg, browserKeys.New):
		newPath := unusedPath(fb.currentDir, "new_song", ".yaml")
		if err := m.sequencer.create(newPath); err != nil {
			fb.message = fmt.Sprintf("Error creating song: %v", err)
		} else {
			fb.message = ""
			m.mode = sequencerMode
		}
	case key.Matches(msg, browserKeys.Delete):
		// Delete selected file
		if len(fb.files) > 0 {
			selected := fb.files[fb.cursor]
			if selected.kind != kindDir {
				if err := os.Remove(selected.path); err != nil {
					fb.message = fmt.Sprintf("Error deleting: %v", err)
				} else {
					m.logger.Info("deleted file", "path", selected.path)
					fb.message = fmt.Sprintf("Deleted %s", selected.name)
					fb.loadFiles()
				}
			}
		}
	}

	return m, nil
}

// backToBrowser leaves the sequencer and refreshes the listing so newly
// saved or exported files show up.
func (m model) backToBrowser() model {
	m.sequencer.stopPlayback()
	m.mode = fileBrowserMode
	m.fileBrowser.loadFiles()
	return m
}

// unusedPath returns dir/base+ext, or dir/base_N+ext for the first N that
// does not exist yet.
func unusedPath(dir, base, ext string) string {
	path := filepath.Join(dir, base+ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
}

func (m model) View() string {
	switch m.mode {
	case fileBrowserMode:
		return m.viewFileBrowser()
	case sequencerMode:
		return m.viewSequencer()
	default:
		return "Unknown mode"
	}
}

func (m model) viewFileBrowser() string {
	fb := m.fileBrowser

	var b strings.Builder
	b.WriteString(titleStyle.Render("SEQGRID - Step Sequencer") + "\n\n")
	b.WriteString(fmt.Sprintf("Current Directory: %s\n\n", fb.currentDir))

	if len(fb.files) == 0 {
		b.WriteString("No songs or directories found.\n")
	} else {
		end := fb.viewportTop + m.maxVisibleLines()
		if end > len(fb.files) {
			end = len(fb.files)
		}
		for i := fb.viewportTop; i < end; i++ {
			file := fb.files[i]
			cursor := " "
			if i == fb.cursor {
				cursor = ">"
			}

			var name string
			switch file.kind {
			case kindDir:
				name = dirStyle.Render(file.name + "/")
			case kindSong:
				name = songStyle.Render(file.name)
			case kindMIDI:
				name = midiStyle.Render(file.name)
			}

			if i == fb.cursor {
				b.WriteString(selectedStyle.Render(fmt.Sprintf("%s %s", cursor, name)) + "\n")
			} else {
				b.WriteString(fmt.Sprintf("%s %s\n", cursor, name))
			}
		}
		if end < len(fb.files) {
			b.WriteString(helpStyle.Render(fmt.Sprintf("  … %d more", len(fb.files)-end)) + "\n")
		}
	}

	b.WriteString("\n")
	if fb.message != "" {
		b.WriteString(errorStyle.Render(fb.message) + "\n")
	}

	b.WriteString("\n" + m.help.View(browserKeys))

	return b.String()
}
