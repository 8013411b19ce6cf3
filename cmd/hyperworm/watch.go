package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cancode/hyperworm/internal/spectate"
)

var flagWatchEvents bool

var watchCmd = &cobra.Command{
	Use:   "watch <url>",
	Short: "Follow a game streamed with play --spectate",
	Long: `Connect to a spectator stream and print the score and events of the
game as they happen.

Examples:
  hyperworm watch localhost:8080
  hyperworm watch ws://example.com:8080/ws --events=false`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagWatchEvents, "events", true, "Print game events")
}

func runWatch(_ *cobra.Command, args []string) {
	logger, closeLog := newLogger("watch", false)
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	viewer, hello, err := spectate.Dial(dialCtx, args[0])
	dialCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("connected", "viewer", viewer.ID(), "game", hello.GameID, "seq", hello.Seq)
	if hello.GameID != "" {
		fmt.Printf("Watching %s, score %d\n", hello.GameID, hello.State.Score)
	}

	go func() {
		<-ctx.Done()
		viewer.Close()
	}()

	lastScore := hello.State.Score
	for {
		f, err := viewer.Next()
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("stream closed", "error", err)
			}
			return
		}

		switch f.Type {
		case spectate.FrameTick:
			if flagWatchEvents && len(f.Events) > 0 {
				names := make([]string, len(f.Events))
				for i, e := range f.Events {
					names[i] = fmt.Sprintf("%s(%d)", e.Type, e.Value)
				}
				fmt.Printf("[%6d] %s\n", f.Seq, strings.Join(names, " "))
			}
			if f.State.Score != lastScore {
				lastScore = f.State.Score
				fmt.Printf("[%6d] score %d\n", f.Seq, lastScore)
			}
		case spectate.FrameEnd:
			result := "died"
			if f.State.Won {
				result = "won"
			}
			fmt.Printf("[%6d] run %s with score %d\n", f.Seq, result, f.State.Score)
		}
	}
}
