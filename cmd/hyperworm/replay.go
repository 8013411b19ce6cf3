package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cancode/hyperworm/internal/core"
	"github.com/cancode/hyperworm/internal/platform/tui"
	"github.com/cancode/hyperworm/internal/replay"
)

var (
	flagWatch bool
	flagSpeed float64
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Verify or watch a recorded run",
	Long: `Re-simulate a replay recorded with 'play --record'.

By default every tick is checked against the digest stored in the file and
the first divergence is reported. With --watch the run is drawn in the
terminal at the recorded tick rate.

Examples:
  hyperworm replay ~/.hyperworm/replays/<run>.jsonl.zst
  hyperworm replay run.jsonl.zst --watch --speed 2`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagWatch, "watch", false, "Draw the run in the terminal")
	replayCmd.Flags().Float64Var(&flagSpeed, "speed", 1, "Playback speed multiplier for --watch")
}

func runReplay(_ *cobra.Command, args []string) {
	logger, closeLog := newLogger("replay", false)
	defer closeLog()

	r, err := replay.Open(expandPath(args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	h := r.Header()
	game, err := gameFromHeader(h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("replaying", "game", h.GameID, "run", h.RunID, "seed", h.Seed, "started", h.StartedAt.Format(time.RFC3339))

	var onTick func(replay.Tick, core.StepResult)
	if flagWatch {
		onTick = watchTicks(h, game)
		fmt.Print("\x1b[?25l\x1b[2J") // hide cursor, clear
		defer fmt.Print("\x1b[?25h\n")
	}

	res, err := replay.Play(r, game, !flagWatch, onTick)
	if err != nil {
		if errors.Is(err, replay.ErrDigestMismatch) {
			fmt.Fprintf(os.Stderr, "Replay diverged: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: %d ticks replayed, %d verified, final score %d\n", h.GameID, res.Ticks, res.Checked, res.State.Score)
	if end := r.End(); end != nil {
		if end.Score != res.State.Score || end.Ticks != res.Ticks {
			fmt.Fprintf(os.Stderr, "Warning: file ends with score %d after %d ticks\n", end.Score, end.Ticks)
		}
		fmt.Printf("Recorded outcome: %s\n", end.Outcome)
	} else {
		fmt.Println("Recording was cut short (no end line).")
	}
}

// watchTicks draws each replayed tick and sleeps to keep the recorded pace.
func watchTicks(h replay.Header, game interface{ Render(*core.Screen) }) func(replay.Tick, core.StepResult) {
	screen := core.NewScreen(h.ScreenW, h.ScreenH)
	rate := h.TickRate
	if rate <= 0 {
		rate = 60
	}
	speed := flagSpeed
	if speed <= 0 {
		speed = 1
	}
	interval := time.Duration(float64(time.Second) / (float64(rate) * speed))

	next := time.Now()
	return func(t replay.Tick, _ core.StepResult) {
		if t.Resize != nil {
			screen.Resize(t.Resize[0], t.Resize[1])
			fmt.Print("\x1b[2J")
		}
		game.Render(screen)
		fmt.Print("\x1b[H" + tui.RenderScreen(screen))

		next = next.Add(interval)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		}
	}
}
