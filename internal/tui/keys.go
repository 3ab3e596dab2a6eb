package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Submit key.Binding
	Retry  key.Binding
	Quit   key.Binding
	Abort  key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x")),
	Submit: key.NewBinding(key.WithKeys("enter")),
	Retry:  key.NewBinding(key.WithKeys("r")),
	Quit:   key.NewBinding(key.WithKeys("q")),
	Abort:  key.NewBinding(key.WithKeys("ctrl+c", "esc")),
}

// optionIndex maps the digit keys 1-9 to option positions.
func optionIndex(k string) (int, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return 0, false
	}
	return int(k[0] - '1'), true
}
