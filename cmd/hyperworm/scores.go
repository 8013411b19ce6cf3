package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cancode/hyperworm/internal/registry"
	"github.com/cancode/hyperworm/internal/storage"
)

var flagRuns int

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores and recent runs",
	Long: `Display the top 10 high scores, run statistics and the most recent
runs for a mode (default: hyperworm).

Examples:
  hyperworm scores
  hyperworm scores hyperworm_endless --runs 20`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagRuns, "runs", 5, "Number of recent runs to show (0 to hide)")
}

func runScores(cmd *cobra.Command, args []string) {
	gameID := "hyperworm"
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'hyperworm list' to see available modes.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}
	title := game.Title()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	scores, err := store.TopScores(gameID, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'hyperworm play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetGameStats(gameID); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d   Games: %d   Average: %.1f   Best room: %d   Wins: %d\n",
			stats.HighScore, stats.GamesCount, stats.AvgScore, stats.BestRoom, stats.Wins)
	}

	if flagRuns <= 0 {
		return
	}
	runs, err := store.RecentRuns(gameID, flagRuns)
	if err != nil || len(runs) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Recent runs:")
	fmt.Printf("  %-8s  %-5s  %-4s  %-7s  %-8s  %s\n", "Outcome", "Score", "Room", "Length", "Cause", "Replay")
	for _, r := range runs {
		cause, replayPath := r.Cause, r.Replay
		if cause == "" {
			cause = "-"
		}
		if replayPath == "" {
			replayPath = "-"
		}
		fmt.Printf("  %-8s  %-5d  %-4d  %-7.2f  %-8s  %s\n", r.Outcome, r.Score, r.Rooms, r.Length, cause, replayPath)
	}
}
