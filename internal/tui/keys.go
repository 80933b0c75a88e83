package tui

import "github.com/charmbracelet/bubbles/key"

type browserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	New    key.Binding
	Delete key.Binding
	Quit   key.Binding
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.New, k.Delete, k.Quit}
}

func (k browserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var browserKeys = browserKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new song")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type sequencerKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Toggle      key.Binding
	Play        key.Binding
	Save        key.Binding
	Clear       key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	WAV         key.Binding
	MIDI        key.Binding
	Back        key.Binding
}

func (k sequencerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Play, k.Save, k.Clear, k.Back}
}

func (k sequencerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ScrollLeft, k.ScrollRight, k.Toggle, k.Clear},
		{k.Play, k.Save, k.WAV, k.MIDI, k.Back},
	}
}

var sequencerKeys = sequencerKeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "higher")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "lower")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle note")),
	Play:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play/stop")),
	Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear column")),
	ScrollLeft:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "scroll left")),
	ScrollRight: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "scroll right")),
	WAV:         key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "render wav")),
	MIDI:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "export midi")),
	Back:        key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "back to files")),
}

var quitKey = key.NewBinding(key.WithKeys("ctrl+c"))
