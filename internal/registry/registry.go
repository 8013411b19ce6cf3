// Package registry maps mode ids to game factories. Game packages register
// themselves from init so the platform can list and create them by name.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cancode/hyperworm/internal/core"
)

// ErrUnknownMode is returned by Create for an unregistered id.
var ErrUnknownMode = errors.New("registry: unknown mode")

// Game is implemented by every playable mode. Games are pure logic; the
// platform owns timing, input mapping and terminal output.
type Game interface {
	// ID is the mode identifier used on the command line and as the score key.
	ID() string
	Title() string

	// Reset starts a fresh run. Called at start and on restart.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws into dst. The screen is cleared by the game.
	Render(dst *core.Screen)

	State() core.GameState
}

// Observable is implemented by games that expose a serializable snapshot
// for replays and spectators.
type Observable interface {
	Observe() any
}

// Measurable is implemented by games that report run statistics beyond
// the score, such as the stage reached. RunSeed is the seed the current
// run was generated from, which changes when the game restarts itself.
type Measurable interface {
	RunStats() (stage int, length float64)
	RunSeed() int64
}

// Reporter is implemented by games that explain how a run ended.
type Reporter interface {
	EndReason() string
}

// Resizable is implemented by games that can follow a terminal resize
// without restarting the run.
type Resizable interface {
	Resize(w, h int)
}

// ScoreAware is implemented by games that display the stored best score.
type ScoreAware interface {
	SetHighScore(score int)
}

// GameInfo describes a registered mode.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new game instance.
type Factory func() Game

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
)

// Register adds a factory under id. It panics on duplicate ids.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", id))
	}
	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered modes sorted by id.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]GameInfo, 0, len(factories))
	for id := range factories {
		out = append(out, GameInfo{ID: id, Title: titles[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create instantiates the mode registered under id.
func Create(id string) (Game, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, id)
	}
	return f(), nil
}

// Exists reports whether id is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[id]
	return ok
}
