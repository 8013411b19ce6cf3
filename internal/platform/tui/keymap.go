package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cancode/hyperworm/internal/core"
)

// KeyMap holds the in-game key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	TurnLeft  key.Binding
	TurnRight key.Binding
	Skip      key.Binding
	Pause     key.Binding
	Restart   key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding

	steer key.Binding // help entry only
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.steer, k.TurnLeft, k.TurnRight, k.Pause, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.steer, k.TurnLeft, k.TurnRight},
		{k.Skip, k.Pause, k.Restart},
		{k.Back, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default in-game bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "w")),
		Down:      key.NewBinding(key.WithKeys("down", "s")),
		Left:      key.NewBinding(key.WithKeys("left", "a")),
		Right:     key.NewBinding(key.WithKeys("right", "d")),
		TurnLeft:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "turn left")),
		TurnRight: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "turn right")),
		Skip:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "skip intro")),
		Pause:     key.NewBinding(key.WithKeys("p", "esc"), key.WithHelp("p/esc", "pause")),
		Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Back:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "menu")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		steer:     key.NewBinding(key.WithKeys("up", "down", "left", "right", "w", "a", "s", "d"), key.WithHelp("←↑↓→/wasd", "steer")),
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
type KeyMapper struct {
	keys KeyMap
}

// NewKeyMapper creates a key mapper with the default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultKeyMap()}
}

// Keys returns the bindings, for help rendering.
func (km *KeyMapper) Keys() KeyMap {
	return km.keys
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	k := km.keys
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit, true
	case key.Matches(msg, k.Up):
		return core.ActionUp, false
	case key.Matches(msg, k.Down):
		return core.ActionDown, false
	case key.Matches(msg, k.Left):
		return core.ActionLeft, false
	case key.Matches(msg, k.Right):
		return core.ActionRight, false
	case key.Matches(msg, k.TurnLeft):
		return core.ActionTurnLeft, false
	case key.Matches(msg, k.TurnRight):
		return core.ActionTurnRight, false
	case key.Matches(msg, k.Skip):
		return core.ActionConfirm, false
	case key.Matches(msg, k.Pause):
		return core.ActionPause, false
	case key.Matches(msg, k.Restart):
		return core.ActionRestart, false
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone && !isQuit {
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}
	return MenuActionNone
}
