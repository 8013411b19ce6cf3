package core

import "math"

// Action is a semantic input, decoupled from physical keys.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionTurnLeft  // rotate heading counter-clockwise
	ActionTurnRight // rotate heading clockwise
	ActionConfirm
	ActionPause
	ActionRestart
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:      "none",
	ActionUp:        "up",
	ActionDown:      "down",
	ActionLeft:      "left",
	ActionRight:     "right",
	ActionTurnLeft:  "turn_left",
	ActionTurnRight: "turn_right",
	ActionConfirm:   "confirm",
	ActionPause:     "pause",
	ActionRestart:   "restart",
	ActionQuit:      "quit",
}

// String returns the action's wire name.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction is the inverse of Action.String.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return ActionNone, false
}

// InputFrame is the input for one simulation tick: discrete actions plus an
// optional analog steer vector (x right, y up) from a pointer.
type InputFrame struct {
	Actions map[Action]bool

	SteerX, SteerY float64
	HasSteer       bool
}

// NewInputFrame creates an empty frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make(map[Action]bool)}
}

// Set marks an action as triggered this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has reports whether a was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// SetSteer records a pointer direction. Zero or non-finite vectors are dropped.
func (f *InputFrame) SetSteer(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	if x == 0 && y == 0 {
		return
	}
	f.SteerX, f.SteerY, f.HasSteer = x, y, true
}

// Direction folds the directional actions into a vector (x right, y up).
// Opposing keys cancel.
func (f InputFrame) Direction() (x, y float64) {
	if f.Has(ActionRight) {
		x++
	}
	if f.Has(ActionLeft) {
		x--
	}
	if f.Has(ActionUp) {
		y++
	}
	if f.Has(ActionDown) {
		y--
	}
	return x, y
}

// Empty reports whether nothing was input this frame.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0 && !f.HasSteer
}

// List returns the triggered actions in declaration order.
func (f InputFrame) List() []Action {
	var out []Action
	for a := ActionUp; a <= ActionQuit; a++ {
		if f.Actions[a] {
			out = append(out, a)
		}
	}
	return out
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	clear(f.Actions)
	f.SteerX, f.SteerY, f.HasSteer = 0, 0, false
}

// Clone returns a deep copy.
func (f InputFrame) Clone() InputFrame {
	c := f
	c.Actions = make(map[Action]bool, len(f.Actions))
	for k, v := range f.Actions {
		c.Actions[k] = v
	}
	return c
}
