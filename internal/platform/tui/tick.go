// Package tui runs games in the terminal with Bubble Tea: the fixed-rate
// tick loop, key and mouse mapping, menus, the scoreboard and the SSH
// server.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation tick. Loop identifies the
// model that scheduled it, so a stale loop cannot drive a newer game.
type TickMsg struct {
	Loop uint64
	Time time.Time
}

var loopSeq atomic.Uint64

func nextLoop() uint64 {
	return loopSeq.Add(1)
}

// tickCmd returns a command that sends one TickMsg after a tick interval.
func tickCmd(loop uint64, tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Loop: loop, Time: t}
	})
}
