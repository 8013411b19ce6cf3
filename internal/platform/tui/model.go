package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cancode/hyperworm/internal/core"
	"github.com/cancode/hyperworm/internal/registry"
	"github.com/cancode/hyperworm/internal/replay"
	"github.com/cancode/hyperworm/internal/spectate"
	"github.com/cancode/hyperworm/internal/storage"
)

// Options wires the optional sinks of a game model. Every field may be nil.
type Options struct {
	Store    *storage.Store
	Recorder *replay.Recorder
	Hub      *spectate.Hub
	Logger   *log.Logger
}

// Summary describes how a session ended.
type Summary struct {
	GameID  string
	RunID   string
	State   core.GameState
	Ticks   uint64
	Outcome string // outcome of the last run, "" if it never finished
	Back    bool   // the player asked for the menu rather than quitting
}

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	config     core.RuntimeConfig
	opts       Options
	logger     *log.Logger
	loop       uint64
	keyMapper  *KeyMapper
	help       help.Model
	inputFrame core.InputFrame
	gameState  core.GameState

	runID     string
	ticks     uint64 // ticks since the session started
	runTicks  uint64 // ticks since the current run started
	highScore int
	finished  bool // the current run has been recorded
	outcome   string

	showHelp   bool
	quitting   bool
	backToMenu bool
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:     cfg,
		opts:       opts,
		logger:     logger,
		loop:       nextLoop(),
		keyMapper:  NewKeyMapper(),
		help:       help.New(),
		inputFrame: core.NewInputFrame(),
		runID:      uuid.NewString(),
	}
	m.help.ShowAll = true
	m.help.Width = cfg.ScreenW

	if opts.Store != nil {
		if best, err := opts.Store.HighScore(game.ID()); err == nil {
			m.highScore = best
		} else {
			logger.Warn("could not load high score", "game", game.ID(), "error", err)
		}
	}
	if sa, ok := game.(registry.ScoreAware); ok {
		sa.SetHighScore(m.highScore)
	}
	return m
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	m.logger.Info("run started", "game", m.game.ID(), "run", m.runID, "seed", m.config.Seed)
	return tickCmd(m.loop, m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.Loop != m.loop || m.quitting || m.backToMenu {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keyMapper.Keys()
	switch msg.String() {
	case "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, keys.Back) && (m.gameState.GameOver || m.gameState.Paused):
		m.endRun(storage.OutcomeQuit)
		m.backToMenu = true
		return m, tea.Quit
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.endRun(storage.OutcomeQuit)
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleMouse turns a left click or drag into a steer vector from the
// screen centre. Cells are about twice as tall as wide.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
		return m, nil
	}
	dx := float64(msg.X) - float64(m.screen.Width())/2
	dy := float64(msg.Y) - float64(m.screen.Height())/2
	m.inputFrame.SetSteer(dx/2, -dy)
	return m, nil
}

// handleResize follows the terminal size without restarting the run.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.help.Width = msg.Width

	if r, ok := m.game.(registry.Resizable); ok {
		r.Resize(msg.Width, msg.Height)
		if m.opts.Recorder != nil {
			m.opts.Recorder.Resize(msg.Width, msg.Height)
		}
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	wasOver := m.gameState.GameOver

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.ticks++
	m.runTicks++

	m.publish(result)
	for _, e := range result.Events {
		m.logger.Debug("event", "type", e.Type, "value", e.Value, "tick", m.ticks)
	}

	// The game restarts itself; start a new run record.
	if wasOver && !m.gameState.GameOver {
		m.runID = uuid.NewString()
		m.runTicks = 0
		m.finished = false
		m.logger.Info("run started", "game", m.game.ID(), "run", m.runID)
	}

	if m.gameState.GameOver && !m.finished {
		outcome := storage.OutcomeDied
		if m.gameState.Won {
			outcome = storage.OutcomeWon
		}
		m.endRun(outcome)
	}

	// Clear input for next frame
	m.inputFrame.Clear()
	return m, tickCmd(m.loop, m.config.TickRate)
}

// publish feeds the step to the recorder and the spectator hub.
func (m *Model) publish(result core.StepResult) {
	if m.opts.Recorder == nil && m.opts.Hub == nil {
		return
	}
	var obs any
	if o, ok := m.game.(registry.Observable); ok {
		obs = o.Observe()
	}
	if m.opts.Recorder != nil {
		if err := m.opts.Recorder.Record(m.ticks, m.inputFrame, result.State.Score, obs); err != nil {
			m.logger.Error("replay write failed, recording stopped", "error", err)
			m.opts.Recorder = nil
		}
	}
	if m.opts.Hub != nil {
		if err := m.opts.Hub.Publish(m.game.ID(), result, obs); err != nil {
			m.logger.Warn("spectate publish failed", "error", err)
		}
	}
}

// endRun records the current run once. A quit before the first tick
// records nothing.
func (m *Model) endRun(outcome string) {
	if m.finished || (outcome == storage.OutcomeQuit && m.runTicks == 0) {
		return
	}
	m.finished = true
	m.outcome = outcome

	state := m.gameState
	run := storage.Run{
		RunID:   m.runID,
		GameID:  m.game.ID(),
		Seed:    m.config.Seed,
		Score:   state.Score,
		Ticks:   int64(m.runTicks),
		Outcome: outcome,
	}
	if ms, ok := m.game.(registry.Measurable); ok {
		run.Rooms, run.Length = ms.RunStats()
		run.Seed = ms.RunSeed()
	}
	if rp, ok := m.game.(registry.Reporter); ok {
		run.Cause = rp.EndReason()
	}
	if m.opts.Recorder != nil {
		run.Replay = m.opts.Recorder.Path()
	}

	m.logger.Info("run ended", "game", run.GameID, "run", run.RunID, "outcome", outcome,
		"score", run.Score, "rooms", run.Rooms, "cause", run.Cause)

	if m.opts.Hub != nil {
		//nolint:errcheck // Best-effort, viewers may be gone
		m.opts.Hub.End(run.GameID, state)
	}

	if m.opts.Store != nil {
		if state.Score > 0 {
			if _, err := m.opts.Store.SaveScore(run.GameID, state.Score); err != nil {
				m.logger.Warn("could not save score", "error", err)
			}
		}
		if _, err := m.opts.Store.RecordRun(run); err != nil {
			m.logger.Warn("could not record run", "error", err)
		}
	}

	if state.Score > m.highScore {
		m.highScore = state.Score
		if sa, ok := m.game.(registry.ScoreAware); ok {
			sa.SetHighScore(m.highScore)
		}
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		m.logger.Warn("screenshot skipped", "error", err)
		return
	}
	dir := filepath.Join(home, ".hyperworm", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("screenshot skipped", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot failed", "error", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	m.game.Render(m.screen)
	if !m.showHelp {
		return RenderScreen(m.screen)
	}

	helpView := helpStyle.Render(m.help.View(m.keyMapper.Keys()))
	rows := m.screen.Height() - lipgloss.Height(helpView)
	if rows <= 0 {
		return helpView
	}
	return renderRows(m.screen, rows) + "\n" + helpView
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Summary reports the session state.
func (m Model) Summary() Summary {
	return Summary{
		GameID:  m.game.ID(),
		RunID:   m.runID,
		State:   m.gameState,
		Ticks:   m.ticks,
		Outcome: m.outcome,
		Back:    m.backToMenu,
	}
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given game.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) (Summary, error) {
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		return model.Summary(), err
	}
	if fm, ok := final.(Model); ok {
		return fm.Summary(), nil
	}
	return model.Summary(), nil
}
