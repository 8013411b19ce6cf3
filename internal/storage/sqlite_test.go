package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveScore("hyperworm", 12); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore("hyperworm")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 12 {
		t.Errorf("HighScore() = %d after reopen, expected 12", high)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []int{10, 5, 20} {
		if _, err := store.SaveScore("hyperworm", s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("hyperworm_endless", 50); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("hyperworm", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}
	if scores[0].Score != 20 || scores[1].Score != 10 || scores[2].Score != 5 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
	for _, s := range scores {
		if s.GameID != "hyperworm" {
			t.Errorf("score for %q leaked into hyperworm", s.GameID)
		}
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveScore("hyperworm", (i+1)*10)
	}

	scores, err := store.TopScores("hyperworm", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 50 || scores[1].Score != 40 || scores[2].Score != 30 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("hyperworm")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	store.SaveScore("hyperworm", 7)
	store.SaveScore("hyperworm", 31)
	store.SaveScore("hyperworm", 18)

	high, err = store.HighScore("hyperworm")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 31 {
		t.Errorf("Expected high score of 31, got %d", high)
	}
}

func TestStoreRecordRun(t *testing.T) {
	store := openTestStore(t)

	run := Run{
		RunID:   "8d1f6c1e-4f3a-4d8e-9a55-2f0c1d2e3f40",
		GameID:  "hyperworm",
		Seed:    42,
		Score:   17,
		Rooms:   3,
		Length:  15.8,
		Ticks:   5400,
		Outcome: OutcomeDied,
		Cause:   "hit a pillar",
		Replay:  "/tmp/run.jsonl.zst",
	}
	id, err := store.RecordRun(run)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("RecordRun() id = %d", id)
	}

	got, err := store.RunByID(run.RunID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	got.ID, got.CreatedAt = 0, run.CreatedAt
	if got != run {
		t.Errorf("RunByID() = %+v\nexpected %+v", got, run)
	}
}

func TestStoreRecordRunValidation(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.RecordRun(Run{GameID: "hyperworm"}); err == nil {
		t.Error("RecordRun() accepted a run without an id")
	}

	if _, err := store.RecordRun(Run{RunID: "a", GameID: "hyperworm"}); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	got, err := store.RunByID("a")
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got.Outcome != OutcomeQuit || got.Cause != "" || got.Replay != "" {
		t.Errorf("defaults not applied: %+v", got)
	}

	if _, err := store.RecordRun(Run{RunID: "a", GameID: "hyperworm"}); err == nil {
		t.Error("RecordRun() accepted a duplicate run id")
	}
}

func TestStoreRunNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.RunByID("missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("RunByID() error = %v, expected ErrRunNotFound", err)
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)

	ids := []string{"r1", "r2", "r3", "r4"}
	for i, id := range ids {
		game := "hyperworm"
		if i == 2 {
			game = "hyperworm_endless"
		}
		if _, err := store.RecordRun(Run{RunID: id, GameID: game, Score: i}); err != nil {
			t.Fatalf("RecordRun() failed: %v", err)
		}
	}

	tests := []struct {
		name     string
		gameID   string
		limit    int
		expected []string
	}{
		{"one game", "hyperworm", 10, []string{"r4", "r2", "r1"}},
		{"limit", "hyperworm", 2, []string{"r4", "r2"}},
		{"all games", "", 0, []string{"r4", "r3", "r2", "r1"}},
		{"unknown game", "pong", 10, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runs, err := store.RecentRuns(tc.gameID, tc.limit)
			if err != nil {
				t.Fatalf("RecentRuns() failed: %v", err)
			}
			var got []string
			for _, r := range runs {
				got = append(got, r.RunID)
			}
			if len(got) != len(tc.expected) {
				t.Fatalf("RecentRuns() = %v, expected %v", got, tc.expected)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("RecentRuns() = %v, expected %v", got, tc.expected)
					break
				}
			}
		})
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("hyperworm", 10)
	store.SaveScore("hyperworm_endless", 30)
	store.RecordRun(Run{RunID: "a", GameID: "hyperworm"})
	store.RecordRun(Run{RunID: "b", GameID: "hyperworm_endless"})

	if err := store.ClearScores("hyperworm"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	if scores, _ := store.TopScores("hyperworm", 10); len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}
	if runs, _ := store.RecentRuns("hyperworm", 10); len(runs) != 0 {
		t.Errorf("Expected 0 runs after clear, got %d", len(runs))
	}
	if scores, _ := store.TopScores("hyperworm_endless", 10); len(scores) != 1 {
		t.Error("endless scores should not be affected by clearing campaign")
	}
	if runs, _ := store.RecentRuns("hyperworm_endless", 10); len(runs) != 1 {
		t.Error("endless runs should not be affected by clearing campaign")
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("hyperworm", 10)
	store.SaveScore("hyperworm", 20)
	store.RecordRun(Run{RunID: "a", GameID: "hyperworm", Rooms: 4, Outcome: OutcomeDied})
	store.RecordRun(Run{RunID: "b", GameID: "hyperworm", Rooms: 10, Outcome: OutcomeWon})

	stats, err := store.GetGameStats("hyperworm")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 20 || stats.AvgScore != 15 {
		t.Errorf("score stats = %+v", stats)
	}
	if stats.BestRoom != 10 || stats.Wins != 1 {
		t.Errorf("run stats = %+v", stats)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed not set")
	}

	empty, err := store.GetGameStats("hyperworm_endless")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if empty.GamesCount != 0 || empty.BestRoom != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
