package browser

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Search   key.Binding
	Sort     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Bigger   key.Binding
	Smaller  key.Binding
	Reload   key.Binding
	Retry    key.Binding
	Open     key.Binding
	Select   key.Binding
	Revoke   key.Binding
	Resend   key.Binding
	Yank     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Sort:     key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "sort")),
	NextPage: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	PrevPage: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "previous page")),
	Bigger:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "larger pages")),
	Smaller:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Retry:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Select:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "details")),
	Revoke:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "revoke")),
	Resend:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "resend")),
	Yank:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy email")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
