package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap names every binding the UI reacts to. Digit keys for tenth-seeking
// are matched directly in the tracks handler rather than carried here.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding

	Add    key.Binding
	Delete key.Binding
	Update key.Binding

	Pause       key.Binding
	Next        key.Binding
	Prev        key.Binding
	Shuffle     key.Binding
	Follow      key.Binding
	Search      key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	VolumeDown  key.Binding
	VolumeUp    key.Binding

	Help key.Binding
	Back key.Binding
	Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "move up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "move down")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open / play")),

		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add playlist by url")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete playlist")),
		Update: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "re-fetch playlist")),

		Pause:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause / resume")),
		Next:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next track")),
		Prev:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous track")),
		Shuffle:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "stop and toggle shuffle")),
		Follow:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow playing track")),
		Search:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search titles")),
		SeekBack:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek back")),
		SeekForward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek forward")),
		VolumeDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		VolumeUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),

		Help: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "help")),
		Back: key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "back / quit")),
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

func (k keyMap) helpSections() []helpSection {
	fromBinding := func(b key.Binding) helpEntry {
		return helpEntry{keys: b.Help().Key, desc: b.Help().Desc}
	}
	return []helpSection{
		{
			title: "Playlists",
			entries: []helpEntry{
				fromBinding(k.Up),
				fromBinding(k.Down),
				fromBinding(k.Enter),
				fromBinding(k.Add),
				fromBinding(k.Delete),
				fromBinding(k.Update),
			},
		},
		{
			title: "Playback",
			entries: []helpEntry{
				fromBinding(k.Pause),
				fromBinding(k.Next),
				fromBinding(k.Prev),
				fromBinding(k.Shuffle),
				fromBinding(k.Follow),
				fromBinding(k.Search),
				fromBinding(k.SeekBack),
				fromBinding(k.SeekForward),
				{keys: "0-9", desc: "seek to that tenth of the track"},
				fromBinding(k.VolumeDown),
				fromBinding(k.VolumeUp),
			},
		},
		{
			title: "General",
			entries: []helpEntry{
				fromBinding(k.Help),
				fromBinding(k.Back),
				fromBinding(k.Quit),
			},
		},
	}
}
