// hyperworm is a terminal game about a growing tube-bodied worm.
//
// Usage:
//
//	hyperworm list              - List available modes
//	hyperworm play [mode]       - Play a mode (menu when omitted)
//	hyperworm menu              - Start menu to pick modes interactively
//	hyperworm serve             - Start SSH server for remote play
//	hyperworm scores [mode]     - Show high scores and recent runs
//	hyperworm replay <file>     - Verify or watch a recorded run
//	hyperworm export            - Simulate a run and export the body as OBJ
//	hyperworm watch <url>       - Follow a spectated game
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Set database path (default: ~/.hyperworm/scores.db)
//	--log-level <lvl>   - debug, info, warn or error (default: info)
//	--log-file <path>   - Log destination during terminal play
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cancode/hyperworm/internal/core"
	// Import the game to register its modes
	_ "github.com/cancode/hyperworm/internal/games/hyperworm"
	"github.com/cancode/hyperworm/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hyperworm",
	Short: "Hyper-Worm - steer a growing worm through procedural rooms",
	Long: `Hyper-Worm is a terminal game: hatch from an egg, eat to grow your
tube-shaped body and find the door out of each room.

Available commands:
  list     - Show all available modes
  play     - Play a mode directly
  menu     - Interactive mode picker
  serve    - Start SSH server for remote play
  scores   - View high scores and recent runs
  replay   - Verify or watch a recorded run
  export   - Export the worm body as a Wavefront OBJ mesh
  watch    - Follow a game streamed with play --spectate

Examples:
  hyperworm play
  hyperworm play hyperworm_endless --difficulty hard
  hyperworm play --record --spectate :8080
  hyperworm replay ~/.hyperworm/replays/<run>.jsonl.zst
  hyperworm serve --ssh :2222`,
	Run: runMenu,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.hyperworm/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.hyperworm/hyperworm.log", "Log file used while the game owns the terminal")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
}

// newLogger builds the command logger. Terminal play writes to the log
// file so the alternate screen stays clean; everything else logs to stderr.
// The returned func closes the file.
func newLogger(prefix string, toFile bool) (*log.Logger, func()) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if toFile {
		w = io.Discard
		if path := expandPath(flagLogFile); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err == nil {
					w = f
					closeFn = func() { f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
				}
			}
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: unknown log level %q, using info\n", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger, closeFn
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// openStore opens the scores database. Play continues without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "path", flagDBPath, "error", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil
	}
	return store
}

// runtimeConfig sizes the runtime to the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
