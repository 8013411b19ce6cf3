package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cancode/hyperworm/internal/config"
	"github.com/cancode/hyperworm/internal/core"
	"github.com/cancode/hyperworm/internal/games/hyperworm"
	"github.com/cancode/hyperworm/internal/platform/tui"
	"github.com/cancode/hyperworm/internal/registry"
	"github.com/cancode/hyperworm/internal/replay"
	"github.com/cancode/hyperworm/internal/spectate"
	"github.com/cancode/hyperworm/internal/storage"
)

const defaultReplayDir = "~/.hyperworm/replays"

var (
	flagConfig     string
	flagDifficulty string
	flagRecord     string
	flagSpectate   string
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start playing the specified mode, or pick one from the menu.

Controls:
  Arrows/WASD - Steer (absolute direction)
  Z/X         - Turn left/right
  Mouse       - Click or drag to steer toward the pointer
  Enter       - Skip the hatch intro
  P/Esc       - Pause
  R           - Restart (after game over)
  B           - Back to menu (when paused or over)
  ?           - Toggle help
  Q/Ctrl+C    - Quit

Difficulty options:
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

Examples:
  hyperworm play
  hyperworm play hyperworm --difficulty easy
  hyperworm play hyperworm_endless --config ./my-worm.yaml
  hyperworm play --record                # replays under ~/.hyperworm/replays
  hyperworm play --spectate :8080        # viewers: hyperworm watch localhost:8080`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Record a replay into this directory")
	playCmd.Flags().Lookup("record").NoOptDefVal = defaultReplayDir
	playCmd.Flags().StringVar(&flagSpectate, "spectate", "", "Stream the game to websocket viewers on this address")
}

func runPlay(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		runMenu(cmd, args)
		return
	}
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'hyperworm list' to see available modes.")
		os.Exit(1)
	}
	gameCfg, err := applyGameFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger("hyperworm", true)
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	summary, err := playGame(gameID, runtimeConfig(), gameCfg, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
	printSummary(summary)
}

// applyGameFlags points the game at --config and --difficulty and checks
// that the resulting configuration loads.
func applyGameFlags() (config.HyperWormConfig, error) {
	hyperworm.SetConfigPath(flagConfig)
	if flagDifficulty != "" {
		preset, ok := config.ParsePreset(flagDifficulty)
		if !ok {
			return config.HyperWormConfig{}, fmt.Errorf("unknown difficulty %q (want one of %v)", flagDifficulty, config.Presets())
		}
		hyperworm.SetDifficultyPreset(preset)
	}
	return hyperworm.LoadConfig()
}

// playGame runs one mode in the terminal with the sinks selected by the
// play flags. gameCfg is stored in the replay header.
func playGame(gameID string, cfg core.RuntimeConfig, gameCfg config.HyperWormConfig, store *storage.Store, logger *log.Logger) (tui.Summary, error) {
	game, err := registry.Create(gameID)
	if err != nil {
		return tui.Summary{}, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	opts := tui.Options{Store: store, Logger: logger}

	if flagRecord != "" {
		rec, err := startRecording(gameID, cfg, gameCfg)
		if err != nil {
			return tui.Summary{}, err
		}
		logger.Info("recording replay", "path", rec.Path())
		opts.Recorder = rec
	}

	if flagSpectate != "" {
		hub := spectate.NewHub(logger)
		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() {
			errc <- hub.Serve(ctx, flagSpectate, func(addr net.Addr) {
				logger.Info("spectators can connect", "url", "ws://"+addr.String()+"/ws")
			})
		}()
		defer func() {
			cancel()
			if err := <-errc; err != nil {
				logger.Error("spectate server failed", "error", err)
			}
		}()
		opts.Hub = hub
	}

	summary, runErr := tui.Run(game, cfg, opts)

	if opts.Recorder != nil {
		outcome := summary.Outcome
		if outcome == "" {
			outcome = storage.OutcomeQuit
		}
		if err := opts.Recorder.Close(outcome); err != nil {
			logger.Error("could not finish replay", "error", err)
		} else {
			fmt.Printf("Replay saved to %s\n", opts.Recorder.Path())
		}
	}
	return summary, runErr
}

// startRecording creates a replay file named after a fresh session id.
func startRecording(gameID string, cfg core.RuntimeConfig, gameCfg config.HyperWormConfig) (*replay.Recorder, error) {
	raw, err := json.Marshal(gameCfg)
	if err != nil {
		return nil, fmt.Errorf("cannot encode config: %w", err)
	}
	sessionID := uuid.NewString()
	path := filepath.Join(expandPath(flagRecord), sessionID+replay.Ext)
	return replay.Create(path, replay.Header{
		RunID:    sessionID,
		GameID:   gameID,
		Seed:     cfg.Seed,
		TickRate: cfg.TickRate,
		ScreenW:  cfg.ScreenW,
		ScreenH:  cfg.ScreenH,
		Config:   raw,
	})
}

// gameFromHeader rebuilds the game a replay was recorded with.
func gameFromHeader(h replay.Header) (*hyperworm.Game, error) {
	var mode hyperworm.Mode
	switch h.GameID {
	case "hyperworm":
		mode = hyperworm.ModeCampaign
	case "hyperworm_endless":
		mode = hyperworm.ModeEndless
	default:
		return nil, fmt.Errorf("%w %q", registry.ErrUnknownMode, h.GameID)
	}

	cfg := config.DefaultHyperWormConfig()
	if len(h.Config) > 0 {
		if err := json.Unmarshal(h.Config, &cfg); err != nil {
			return nil, fmt.Errorf("replay config: %w", err)
		}
	}
	return hyperworm.NewWithConfig(mode, cfg), nil
}

func printSummary(s tui.Summary) {
	if s.Ticks == 0 {
		return
	}
	result := "quit"
	switch {
	case s.State.Won:
		result = "won"
	case s.State.GameOver:
		result = "died"
	}
	fmt.Printf("%s: %s with score %d after %s\n", s.GameID, result, s.State.Score, ticksDuration(s.Ticks))
}

func ticksDuration(ticks uint64) time.Duration {
	rate := flagFPS
	if rate <= 0 {
		rate = 60
	}
	return (time.Duration(ticks) * time.Second / time.Duration(rate)).Round(time.Second)
}
