// Package hyperworm is the Hyper-Worm arcade mode: a continuously moving
// worm with a tapered tube body explores procedural rooms, eats food to
// grow and passes through doors to reach the next room.
package hyperworm

import (
	"math"
	"math/rand"

	"github.com/cancode/hyperworm/internal/config"
	"github.com/cancode/hyperworm/internal/core"
	"github.com/cancode/hyperworm/internal/registry"
	"github.com/cancode/hyperworm/internal/vecmath"
	"github.com/cancode/hyperworm/internal/worm"
)

// Mode selects campaign or endless play.
type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModeEndless  Mode = "endless"
)

// Phase is the top-level state of a run.
type Phase string

const (
	PhaseHatching Phase = "hatching"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
	PhaseWon      Phase = "won"
)

// Event types reported in core.StepResult.
const (
	EventHatched  = "hatched"
	EventBite     = "bite"
	EventDoorOpen = "door_open"
	EventRoom     = "room"
	EventDied     = "died"
	EventWon      = "won"
)

// Minimum screen size the renderer supports.
const (
	minScreenW = 40
	minScreenH = 14
)

// State is the per-run game state.
type State struct {
	Room         int
	Bites        int // total across rooms; this is the score
	RoomBites    int
	BitesPerRoom int
	Speed        float64
	Alive        bool
	DoorOpen     bool
}

// Game implements registry.Game for Hyper-Worm.
type Game struct {
	mode Mode
	cfg  config.HyperWormConfig
	diff *config.DifficultyManager
	rng  *rand.Rand
	seed int64
	dt   float64
	tick uint64

	screenW, screenH int
	tooSmall         bool

	phase     Phase
	paused    bool
	state     State
	highScore int
	cause     string

	room     *Room
	worm     *worm.Worm
	egg      vecmath.Vec3
	intro    *Animation
	food     vecmath.Vec3
	hasFood  bool
	doorAnim *Animation
	doorTime float64
	camera   Camera

	events []core.Event
}

var (
	configPath       string
	difficultyPreset = config.DifficultyNormal
)

// SetConfigPath sets the YAML file used by games created from the registry.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the preset applied to games created from the registry.
func SetDifficultyPreset(preset config.DifficultyPreset) {
	difficultyPreset = preset
}

// LoadConfig loads the configured YAML and applies the selected preset.
func LoadConfig() (config.HyperWormConfig, error) {
	cfg, err := config.Load(configPath)
	config.ApplyPreset(&cfg, difficultyPreset)
	return cfg, err
}

func fromRegistry(mode Mode) *Game {
	// A broken custom config falls back to defaults; the CLI validates the
	// path up front and reports the error there.
	cfg, _ := LoadConfig()
	return NewWithConfig(mode, cfg)
}

// New creates a campaign game with the default configuration.
func New() *Game {
	return NewWithConfig(ModeCampaign, config.DefaultHyperWormConfig())
}

// NewEndless creates an endless game with the default configuration.
func NewEndless() *Game {
	return NewWithConfig(ModeEndless, config.DefaultHyperWormConfig())
}

// NewWithConfig creates a game in mode with cfg.
func NewWithConfig(mode Mode, cfg config.HyperWormConfig) *Game {
	return &Game{
		mode:  mode,
		cfg:   cfg,
		diff:  config.NewDifficultyManager(cfg.Difficulty),
		phase: PhaseHatching,
	}
}

func init() {
	registry.Register("hyperworm", func() registry.Game {
		return fromRegistry(ModeCampaign)
	})
	registry.Register("hyperworm_endless", func() registry.Game {
		return fromRegistry(ModeEndless)
	})
}

// ID returns the mode identifier.
func (g *Game) ID() string {
	if g.mode == ModeEndless {
		return "hyperworm_endless"
	}
	return "hyperworm"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeEndless {
		return "Hyper-Worm (Endless)"
	}
	return "Hyper-Worm"
}

// SetHighScore sets the best score shown in the HUD.
func (g *Game) SetHighScore(score int) {
	g.highScore = score
}

// WormConfig converts the body and movement settings into worm parameters.
func WormConfig(cfg config.HyperWormConfig) worm.Config {
	b := cfg.Body
	return worm.Config{
		InitialLength:    b.InitialLength,
		MinLength:        b.MinLength,
		MaxLength:        b.MaxLength,
		GrowRate:         b.GrowRate,
		GrowAmount:       b.GrowAmount,
		BodyRadius:       b.BodyRadius,
		TailRadius:       b.TailRadius,
		RadialSegments:   b.RadialSegments,
		TubularSegments:  b.TubularSegments,
		CurveTension:     b.CurveTension,
		MinPointDistance: b.MinPointDistance,
		SteerBlend:       cfg.Movement.SteerBlend,
	}
}

// Reset starts a new run.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.seed = rc.Seed
	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.dt = rc.DT()
	g.tick = 0
	g.Resize(rc.ScreenW, rc.ScreenH)

	if g.worm != nil {
		g.worm.Release()
		g.worm = nil
	}

	g.paused = false
	g.cause = ""
	g.events = nil
	g.state = State{
		Room:         1,
		BitesPerRoom: max(g.cfg.Food.BitesPerRoom, 1),
		Alive:        true,
	}
	g.camera = NewCamera(g.cfg.Camera.Follow)

	g.loadRoom()
	g.egg = g.room.SpawnPoint(g.cfg.Body.BodyRadius)
	g.camera.Snap(g.egg)
	g.spawnFood()

	g.intro = NewAnimation(g.cfg.Intro.HatchSeconds)
	g.phase = PhaseHatching
	if g.cfg.Intro.Enabled {
		g.intro.Start()
	} else {
		g.intro.Cancel()
		g.hatch()
	}
	g.state.Speed = g.speed()
}

// Resize records the screen size. The simulation holds while the screen is
// too small to show the room; a zero size means headless.
func (g *Game) Resize(w, h int) {
	g.screenW, g.screenH = w, h
	headless := w == 0 && h == 0
	g.tooSmall = !headless && (w < minScreenW || h < minScreenH)
}

// loadRoom builds the room for state.Room and closes the door.
func (g *Game) loadRoom() {
	base := (g.state.Room - 1) / 2
	pillars := min(g.diff.Pillars(base, g.state.Bites, int(g.tick)), g.cfg.Room.MaxPillars)
	g.room = NewRoom(g.state.Room, g.cfg.Room, pillars, g.rng)
	g.state.DoorOpen = false
	g.state.RoomBites = 0
	g.doorAnim = NewAnimation(g.cfg.Door.AppearSeconds)
	g.doorTime = 0
}

// hatch spawns the worm at the egg. It starts at the minimum length and
// grows to its initial length.
func (g *Game) hatch() {
	wc := WormConfig(g.cfg)
	initial := wc.InitialLength
	wc.InitialLength = wc.MinLength
	g.worm = worm.New(wc, g.egg, vecmath.V3(0, 0, 1))
	g.worm.SetTargetLength(initial)
	g.phase = PhasePlaying
	g.emit(EventHatched, 0)
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	g.events = g.events[:0]

	if in.Has(core.ActionRestart) && g.ended() {
		g.Reset(core.RuntimeConfig{
			Seed:     g.rng.Int63(),
			ScreenW:  g.screenW,
			ScreenH:  g.screenH,
			TickRate: g.tickRate(),
		})
		return g.result()
	}

	if in.Has(core.ActionPause) && !g.ended() {
		g.paused = !g.paused
	}
	if g.paused || g.ended() || g.tooSmall {
		return g.result()
	}

	switch g.phase {
	case PhaseHatching:
		if in.Has(core.ActionConfirm) {
			g.intro.Cancel()
		}
		g.intro.Advance(g.dt)
		if g.intro.Done() {
			g.hatch()
		}
		g.camera.Update(g.egg, g.camera.Forward, g.cameraLimit())
	case PhasePlaying:
		g.steer(in)
		g.advance()
	}

	return g.result()
}

func (g *Game) tickRate() int {
	return int(math.Round(1 / g.dt))
}

func (g *Game) ended() bool {
	return g.phase == PhaseGameOver || g.phase == PhaseWon
}

func (g *Game) result() core.StepResult {
	var events []core.Event
	if len(g.events) > 0 {
		events = append(events, g.events...)
	}
	return core.StepResult{State: g.State(), Events: events}
}

func (g *Game) emit(kind string, value int) {
	g.events = append(g.events, core.Event{Type: kind, Value: value})
}

// steer feeds input to the worm. A pointer vector wins over keys; relative
// turns apply on top of either.
func (g *Game) steer(in core.InputFrame) {
	if in.HasSteer {
		g.worm.SetDirection(vecmath.Vec2{X: in.SteerX, Y: in.SteerY})
	} else if x, y := in.Direction(); x != 0 || y != 0 {
		g.worm.SetDirection(vecmath.Vec2{X: x, Y: y})
	}

	turn := g.cfg.Movement.TurnDegrees * math.Pi / 180
	if in.Has(core.ActionTurnLeft) {
		g.worm.Turn(turn)
	}
	if in.Has(core.ActionTurnRight) {
		g.worm.Turn(-turn)
	}
}

// speed returns the current head speed in units per second.
func (g *Game) speed() float64 {
	m := g.cfg.Movement
	base := m.BaseSpeed + m.SpeedPerBite*float64(g.state.Bites)
	s := g.diff.Speed(base, g.state.Bites, int(g.tick))
	if m.MaxSpeed > 0 {
		s = math.Min(s, m.MaxSpeed)
	}
	return s
}

// advance runs one playing tick: move, then food, door and collisions.
func (g *Game) advance() {
	g.state.Speed = g.speed()
	g.worm.Advance(g.dt, g.state.Speed)

	if g.state.DoorOpen {
		g.doorAnim.Advance(g.dt)
		g.doorTime += g.dt
	}

	head := g.worm.Head()
	g.camera.Update(head, g.worm.Forward(), g.cameraLimit())

	if g.hasFood && head.PlanarDist(g.food) < g.cfg.Food.EatDistance {
		g.eat()
	}

	if g.state.DoorOpen && head.PlanarDist(g.room.DoorPos()) < g.cfg.Door.EntryDistance {
		g.enterDoor()
		return
	}

	radius := g.cfg.Body.BodyRadius
	switch {
	case !g.room.Inside(head, radius):
		g.die("hit the wall")
	case g.room.HitPillar(head, radius):
		g.die("hit a pillar")
	}
}

func (g *Game) eat() {
	g.worm.Feed()
	g.state.Bites++
	g.state.RoomBites++
	g.hasFood = false
	g.emit(EventBite, g.state.Bites)

	if g.state.RoomBites >= g.state.BitesPerRoom && !g.state.DoorOpen {
		g.openDoor()
		return
	}
	g.spawnFood()
}

// openDoor shows the exit. No food spawns while the door is open.
func (g *Game) openDoor() {
	g.state.DoorOpen = true
	g.hasFood = false
	g.doorAnim.Start()
	g.doorTime = 0
	g.emit(EventDoorOpen, g.state.Room)
}

// enterDoor advances to the next room or ends a finished campaign.
func (g *Game) enterDoor() {
	if g.mode == ModeCampaign && g.state.Room >= g.cfg.Room.CampaignRooms {
		g.phase = PhaseWon
		g.emit(EventWon, g.state.Room)
		return
	}

	g.state.Room++
	g.loadRoom()
	spawn := g.room.SpawnPoint(g.cfg.Body.BodyRadius)
	g.worm.Reset(spawn)
	g.camera.Snap(spawn)
	g.spawnFood()
	g.emit(EventRoom, g.state.Room)
}

func (g *Game) die(cause string) {
	g.state.Alive = false
	g.cause = cause
	g.phase = PhaseGameOver
	g.emit(EventDied, g.state.Bites)
}

// spawnFood places food in the room away from the head and pillars.
func (g *Game) spawnFood() {
	clearance := g.cfg.Food.SpawnClearance
	reach := g.room.Half - 1
	avoid := g.egg
	if g.worm != nil {
		avoid = g.worm.Head()
	}

	// Nothing random fit: the lane is always free of pillars.
	p := g.room.LaneEnd(avoid, clearance)
	for i := 0; i < 64; i++ {
		q := vecmath.V3((g.rng.Float64()*2-1)*reach, 0, (g.rng.Float64()*2-1)*reach)
		if q.PlanarDist(avoid) >= clearance && g.room.Clear(q, clearance) {
			p = q
			break
		}
	}
	g.food = p
	g.hasFood = true
}

func (g *Game) cameraLimit() float64 {
	return g.room.Half
}

// State returns the platform-facing game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.state.Bites,
		GameOver: g.ended(),
		Won:      g.phase == PhaseWon,
		Paused:   g.paused,
	}
}

// RunSeed returns the seed of the current run.
func (g *Game) RunSeed() int64 {
	return g.seed
}

// RunStats returns the room reached and the worm length.
func (g *Game) RunStats() (int, float64) {
	if g.worm == nil {
		return g.state.Room, 0
	}
	return g.state.Room, g.worm.TargetLength()
}

// EndReason returns the cause of death, or "" while alive.
func (g *Game) EndReason() string {
	return g.cause
}

// Worm returns the player entity, or nil during the intro.
func (g *Game) Worm() *worm.Worm {
	return g.worm
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.phase
}
