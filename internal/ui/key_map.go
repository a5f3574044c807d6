package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	search    key.Binding
	next      key.Binding
	prev      key.Binding
	like      key.Binding
	nextImage key.Binding
	prevImage key.Binding
	open      key.Binding
	favorites key.Binding
	dismiss   key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		next:      key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next page")),
		prev:      key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "prev page")),
		like:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		nextImage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next image")),
		prevImage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev image")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open image")),
		favorites: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites")),
		dismiss:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.next, k.prev, k.favorites},
		{k.like, k.prevImage, k.nextImage, k.open},
		{k.dismiss, k.quit},
	}
}
