package core

// RuntimeConfig is passed to a game on every Reset.
type RuntimeConfig struct {
	ScreenW  int   // screen width in cells
	ScreenH  int   // screen height in cells
	TickRate int   // simulation ticks per second
	Seed     int64 // RNG seed; 0 lets the platform pick one
}

// DefaultConfig returns an 80x24 screen at 60 ticks per second.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// DT returns the fixed simulation step in seconds.
func (c RuntimeConfig) DT() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / float64(c.TickRate)
}

// GameState is the status a game reports to the platform.
type GameState struct {
	Score    int
	GameOver bool // the run has ended, won or lost
	Won      bool
	Paused   bool
}

// Event is something notable that happened during one tick.
type Event struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// StepResult is returned by Game.Step after each tick.
type StepResult struct {
	State  GameState
	Events []Event
}
